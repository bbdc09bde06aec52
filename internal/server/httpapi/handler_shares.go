package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) accessShare(c *gin.Context) {
	view, err := s.shares.Access(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *HTTPServer) downloadSharedFile(c *gin.Context) {
	file, obj, err := s.shares.OpenFile(c.Request.Context(), c.Param("id"), c.Param("fileId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	serveBlob(c, file, obj)
}
