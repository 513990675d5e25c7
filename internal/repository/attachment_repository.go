package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorlog/mentorlog-api/internal/models"
)

// AttachmentStore is the attachment metadata access used by services.
type AttachmentStore interface {
	GetByID(ctx context.Context, id string) (*models.Attachment, error)
	ListByLog(ctx context.Context, logID string) ([]*models.Attachment, error)
	Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error)
	Delete(ctx context.Context, id string) error
}

// AttachmentRepository stores attachment metadata. File bodies live in object storage.
type AttachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(pool *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{pool: pool}
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (a *models.Attachment, err error) {
	ctx, done := track(ctx, "attachments.get_by_id")
	defer done(&err)

	a, err = models.ScanAttachment(r.pool.QueryRow(ctx, `SELECT `+models.AttachmentColumns+` FROM attachments a WHERE a.id = $1`, id))
	if err != nil {
		if err = mapError(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return a, nil
}

func (r *AttachmentRepository) ListByLog(ctx context.Context, logID string) (items []*models.Attachment, err error) {
	ctx, done := track(ctx, "attachments.list_by_log")
	defer done(&err)

	rows, err := r.pool.Query(ctx, `SELECT `+models.AttachmentColumns+`
		FROM attachments a WHERE a.mentorship_log_id = $1 ORDER BY a.created_at, a.id`, logID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	items, err = models.ScanAttachments(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan attachments: %w", err)
	}
	return items, nil
}

func (r *AttachmentRepository) Create(ctx context.Context, a *models.Attachment) (created *models.Attachment, err error) {
	ctx, done := track(ctx, "attachments.create")
	defer done(&err)

	created, err = models.ScanAttachment(r.pool.QueryRow(ctx, `
		INSERT INTO attachments AS a (mentorship_log_id, file_name, file_path, file_size, file_type, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+models.AttachmentColumns,
		a.MentorshipLogID, a.FileName, a.FilePath, a.FileSize, a.FileType, a.UploadedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment: %w", mapError(err))
	}
	return created, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, done := track(ctx, "attachments.delete")
	defer done(&err)

	tag, err := r.pool.Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ AttachmentStore = (*AttachmentRepository)(nil)
