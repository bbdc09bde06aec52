package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
	"github.com/gin-gonic/gin"
)

type folderRequest struct {
	Name string `json:"name"`
}

// shareRequest accepts the duration as a number or a string such as "7d".
type shareRequest struct {
	Duration any `json:"duration"`
}

func (s *HTTPServer) createFolder(c *gin.Context) {
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", common.ErrValidation, err))
		return
	}

	folder, err := s.folders.Create(c.Request.Context(), identityFrom(c), req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, folder)
}

func (s *HTTPServer) listFolders(c *gin.Context) {
	folders, err := s.folders.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, folders)
}

func (s *HTTPServer) getFolder(c *gin.Context) {
	folder, err := s.folders.Get(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

func (s *HTTPServer) renameFolder(c *gin.Context) {
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", common.ErrValidation, err))
		return
	}

	folder, err := s.folders.Rename(c.Request.Context(), identityFrom(c), c.Param("id"), req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

func (s *HTTPServer) deleteFolder(c *gin.Context) {
	if err := s.folders.Delete(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) createShare(c *gin.Context) {
	raw := c.Query("duration")

	var req shareRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.fail(c, fmt.Errorf("%w: %w", common.ErrValidation, err))
			return
		}
	}
	switch d := req.Duration.(type) {
	case nil:
	case float64:
		// %v would print large numbers in exponent form.
		raw = strconv.FormatFloat(d, 'f', -1, 64)
	default:
		raw = fmt.Sprint(d)
	}

	link, err := s.shares.Create(c.Request.Context(), identityFrom(c), c.Param("id"), services.ParseDurationDays(raw))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}
