package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/response"
)

const maxUploadBytes = 10 << 20

type MediaHandler struct {
	Media  *application.MediaService
	Logger *logrus.Logger
}

func NewMediaHandler(media *application.MediaService, logger *logrus.Logger) *MediaHandler {
	return &MediaHandler{Media: media, Logger: logger}
}

// uploadRequest is the JSON form of an upload; Data is base64 or a data URI.
type uploadRequest struct {
	Data        string `json:"data" binding:"required"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Chunked     bool   `json:"chunked"`
}

// readUpload accepts multipart form data with a "file" part, or a JSON
// uploadRequest. It writes the error response itself and reports false.
func readUpload(c *gin.Context) (application.UploadInput, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"file": "is required"})
			return application.UploadInput{}, false
		}
		if fh.Size > maxUploadBytes {
			response.Error[any](c, http.StatusRequestEntityTooLarge, "file too large", nil)
			return application.UploadInput{}, false
		}
		f, err := fh.Open()
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"file": err.Error()})
			return application.UploadInput{}, false
		}
		defer func() { _ = f.Close() }()
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"file": err.Error()})
			return application.UploadInput{}, false
		}
		chunked, _ := strconv.ParseBool(c.PostForm("chunked"))
		return application.UploadInput{
			Data:        data,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Chunked:     chunked,
		}, true
	}

	var req uploadRequest
	if !bindJSON(c, &req) {
		return application.UploadInput{}, false
	}
	if len(req.Data) > maxUploadBytes*4/3+64 {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return application.UploadInput{}, false
	}
	return application.UploadInput{
		Base64:      req.Data,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Chunked:     req.Chunked,
	}, true
}

// trackProgress attaches a progress callback that records every reported percentage.
func trackProgress(in *application.UploadInput) *[]int {
	steps := make([]int, 0, 4)
	in.Progress = func(p int) { steps = append(steps, p) }
	return &steps
}

// UploadProductImage POST /api/admin/media/products
func (h *MediaHandler) UploadProductImage(c *gin.Context) {
	in, ok := readUpload(c)
	if !ok {
		return
	}
	steps := trackProgress(&in)
	url, err := h.Media.UploadProductImage(c.Request.Context(), middleware.CurrentSession(c), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusCreated, gin.H{"url": url}, "image uploaded", map[string]any{"progress": *steps})
}
