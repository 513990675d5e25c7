package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/repository"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"github.com/mentorlog/mentorlog-api/pkg/metrics"
	"github.com/mentorlog/mentorlog-api/pkg/storage"
	"go.uber.org/zap"
)

// ErrStorageDisabled is returned by attachment operations when no bucket is configured.
var ErrStorageDisabled = errors.New("file storage is not configured")

const msgAttachmentNotFound = "Attachment not found"

// ObjectStorage is the subset of the S3 client used for attachments.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) (*storage.Object, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key, fileName string) (string, error)
}

// AttachmentService stores log attachments in object storage with their
// metadata in Postgres.
type AttachmentService struct {
	attachments repository.AttachmentStore
	logs        repository.MentorshipLogStore
	storage     ObjectStorage
	maxFileSize int64
}

// NewAttachmentService creates a new AttachmentService. A nil store disables uploads.
func NewAttachmentService(attachments repository.AttachmentStore, logs repository.MentorshipLogStore, store ObjectStorage, maxFileSize int64) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		logs:        logs,
		storage:     store,
		maxFileSize: maxFileSize,
	}
}

func (s *AttachmentService) enabled() error {
	if s.storage == nil {
		return ErrStorageDisabled
	}
	return nil
}

// validateUpload converts storage validation errors into client messages.
func validateUpload(f models.UploadFile, maxSize int64) error {
	err := storage.ValidateFile(f.FileName, int64(len(f.Data)), maxSize)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrExtensionNotAllowed):
		return badRequest(fmt.Sprintf("File type %s not allowed. Allowed types: %s",
			strings.ToLower(filepath.Ext(f.FileName)), strings.Join(storage.AllowedExtensions, ", ")))
	case errors.Is(err, storage.ErrFileTooLarge):
		return badRequest(fmt.Sprintf("File %s exceeds maximum size of %dMB", f.FileName, maxSize/(1024*1024)))
	default:
		return badRequest(err.Error())
	}
}

// Upload validates every file before storing any of them.
func (s *AttachmentService) Upload(ctx context.Context, actor *models.User, logID string, files []models.UploadFile) ([]*models.Attachment, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	log, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}
	if !canManageLogRecords(actor, log.MentorID) {
		return nil, forbidden("You can only manage attachments for your own logs")
	}
	if len(files) == 0 {
		return nil, badRequest("No files provided")
	}
	for _, f := range files {
		if err := validateUpload(f, s.maxFileSize); err != nil {
			metrics.AttachmentUploads.WithLabelValues("rejected").Inc()
			return nil, err
		}
	}

	created := make([]*models.Attachment, 0, len(files))
	for _, f := range files {
		name := storage.SanitizeFileName(f.FileName)
		key := storage.AttachmentKey(logID, name)
		contentType := f.ContentType
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = storage.ContentTypeFor(name)
		}

		if err := s.storage.Upload(ctx, key, f.Data, contentType); err != nil {
			metrics.AttachmentUploads.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to upload file: %w", err)
		}

		size := int64(len(f.Data))
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		uploader := actor.ID
		a, err := s.attachments.Create(ctx, &models.Attachment{
			MentorshipLogID: logID,
			FileName:        name,
			FilePath:        key,
			FileSize:        &size,
			FileType:        &ext,
			UploadedBy:      &uploader,
		})
		if err != nil {
			metrics.AttachmentUploads.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to save attachment: %w", err)
		}
		metrics.AttachmentUploads.WithLabelValues("success").Inc()
		created = append(created, a)
	}

	logger.Info("Attachments uploaded", zap.String("log_id", logID), zap.Int("count", len(created)))
	return created, nil
}

func (s *AttachmentService) List(ctx context.Context, actor *models.User, logID string) ([]*models.Attachment, error) {
	log, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}
	if !canReadLog(actor, log) {
		return nil, forbidden("You don't have permission to view this log")
	}
	return s.attachments.ListByLog(ctx, logID)
}

// readable loads an attachment the actor may read.
func (s *AttachmentService) readable(ctx context.Context, actor *models.User, id string) (*models.Attachment, error) {
	a, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgAttachmentNotFound)
	}
	log, err := s.logs.GetByID(ctx, a.MentorshipLogID)
	if err != nil {
		return nil, lookupError(err, msgLogNotFound)
	}
	if !canReadLog(actor, log) {
		return nil, forbidden("You don't have permission to view this log")
	}
	return a, nil
}

// Download opens the stored object. The caller closes Body.
func (s *AttachmentService) Download(ctx context.Context, actor *models.User, id string) (*models.Attachment, *storage.Object, error) {
	if err := s.enabled(); err != nil {
		return nil, nil, err
	}
	a, err := s.readable(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.storage.Download(ctx, a.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, notFound("File not found in storage")
		}
		return nil, nil, fmt.Errorf("failed to download file: %w", err)
	}
	return a, obj, nil
}

func (s *AttachmentService) URL(ctx context.Context, actor *models.User, id string) (*models.AttachmentURLResponse, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	a, err := s.readable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	url, err := s.storage.PresignedURL(ctx, a.FilePath, a.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to get file URL: %w", err)
	}
	return &models.AttachmentURLResponse{URL: url, Filename: a.FileName}, nil
}

// Delete removes the row even if the object could not be deleted.
func (s *AttachmentService) Delete(ctx context.Context, actor *models.User, id string) error {
	a, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return lookupError(err, msgAttachmentNotFound)
	}
	log, err := s.logs.GetByID(ctx, a.MentorshipLogID)
	if err != nil {
		return lookupError(err, msgLogNotFound)
	}
	if !canManageLogRecords(actor, log.MentorID) {
		return forbidden("You can only manage attachments for your own logs")
	}

	if s.storage != nil {
		if err := s.storage.Delete(ctx, a.FilePath); err != nil {
			logger.LogError(err, "Failed to delete attachment object",
				zap.String("attachment_id", id),
				zap.String("key", a.FilePath))
		}
	}

	if err := s.attachments.Delete(ctx, id); err != nil {
		return lookupError(err, msgAttachmentNotFound)
	}
	logger.Info("Attachment deleted", zap.String("attachment_id", id))
	return nil
}
