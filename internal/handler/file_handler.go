package handler

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal-api/pkg/response"
)

type fileOpener interface {
	Open(ctx context.Context, token string) (io.ReadCloser, string, error)
}

// FileHandler serves stored files behind signed tokens.
type FileHandler struct {
	files fileOpener
}

// NewFileHandler constructs FileHandler.
func NewFileHandler(files fileOpener) *FileHandler {
	return &FileHandler{files: files}
}

// Download godoc
// @Summary Download a stored CV or submission file
// @Tags Files
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /files/download [get]
func (h *FileHandler) Download(c *gin.Context) {
	rc, name, err := h.files.Open(c.Request.Context(), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(name))
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}
