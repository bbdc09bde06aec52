package httpapi

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) uploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			s.fail(c, fmt.Errorf("%w: file is required", common.ErrValidation))
			return
		}
		s.fail(c, fmt.Errorf("%w: %w", common.ErrValidation, err))
		return
	}

	body, err := header.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer body.Close()

	in := services.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        body,
	}
	if folderID := c.PostForm("folderId"); folderID != "" {
		in.FolderID = &folderID
	}

	file, err := s.files.Upload(c.Request.Context(), identityFrom(c), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

func (s *HTTPServer) listUnfiled(c *gin.Context) {
	files, err := s.files.ListUnfiled(c.Request.Context(), identityFrom(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (s *HTTPServer) getFile(c *gin.Context) {
	file, err := s.files.Get(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

func (s *HTTPServer) downloadFile(c *gin.Context) {
	file, obj, err := s.files.Download(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	serveBlob(c, file, obj)
}

func (s *HTTPServer) deleteFile(c *gin.Context) {
	if err := s.files.Delete(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// serveBlob streams a local blob with range support, or redirects to a
// remote one.
func serveBlob(c *gin.Context, file *models.File, obj *blobstore.Object) {
	if obj.RedirectURL != "" {
		c.Redirect(http.StatusFound, obj.RedirectURL)
		return
	}
	defer obj.Body.Close()

	if file.MimeType != "" {
		c.Header("Content-Type", file.MimeType)
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	http.ServeContent(c.Writer, c.Request, file.Name, obj.ModTime, obj.Body)
}
