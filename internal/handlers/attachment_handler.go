package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/services"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"github.com/mentorlog/mentorlog-api/pkg/storage"
	"go.uber.org/zap"
)

const uploadFormField = "files"

// AttachmentHandler handles files attached to mentorship logs
type AttachmentHandler struct {
	service services.AttachmentServiceInterface
}

func NewAttachmentHandler(service services.AttachmentServiceInterface) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// Upload handles POST /api/attachments/upload/:log_id
func (h *AttachmentHandler) Upload(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}

	headers := form.File[uploadFormField]
	files := make([]models.UploadFile, 0, len(headers))
	for _, fh := range headers {
		data, readErr := readUpload(fh)
		if readErr != nil {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("Could not read file %s", fh.Filename), readErr)
			return
		}
		files = append(files, models.UploadFile{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	attachments, err := h.service.Upload(c.Request.Context(), actor, c.Param("log_id"), files)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	logger.Info("Attachments uploaded",
		zap.String("log_id", c.Param("log_id")),
		zap.Int("count", len(attachments)),
		zap.String("user_id", actor.ID))
	c.JSON(http.StatusCreated, attachments)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// List handles GET /api/attachments/:log_id
func (h *AttachmentHandler) List(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	attachments, err := h.service.List(c.Request.Context(), actor, c.Param("log_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, attachments)
}

// Download handles GET /api/attachments/download/:id
func (h *AttachmentHandler) Download(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	attachment, obj, err := h.service.Download(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeFor(attachment.FileName)
	}

	extra := map[string]string{"Content-Disposition": storage.ContentDisposition(attachment.FileName)}
	size := obj.Size
	if size <= 0 {
		size = -1
	} else {
		extra["X-File-Size"] = strconv.FormatInt(size, 10)
	}
	c.DataFromReader(http.StatusOK, size, contentType, obj.Body, extra)
}

// URL handles GET /api/attachments/url/:id
func (h *AttachmentHandler) URL(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	resp, err := h.service.URL(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /api/attachments/:id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
