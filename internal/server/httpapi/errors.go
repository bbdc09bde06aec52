package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// fail maps a service error onto a status code. Internal details are logged,
// never returned.
func (s *HTTPServer) fail(c *gin.Context, err error) {
	var maxBytes *http.MaxBytesError

	switch {
	case errors.Is(err, common.ErrNotFoundOrExpired):
		abort(c, http.StatusNotFound, common.ErrNotFoundOrExpired.Error())
	case errors.Is(err, common.ErrorNotFound):
		abort(c, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrPayloadTooLarge):
		abort(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.As(err, &maxBytes):
		abort(c, http.StatusRequestEntityTooLarge, common.ErrPayloadTooLarge.Error())
	case errors.Is(err, common.ErrValidation):
		abort(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrAlreadyExists):
		abort(c, http.StatusConflict, "already exists")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		abort(c, http.StatusUnauthorized, "unauthorized")
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		abort(c, http.StatusInternalServerError, "internal error")
	}
}
