package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorlog/mentorlog-api/internal/models"
)

// CommentStore is the comment data access used by services.
type CommentStore interface {
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByLog(ctx context.Context, logID string) ([]*models.Comment, error)
	Create(ctx context.Context, logID, userID, text string, specialist bool) (*models.Comment, error)
	UpdateText(ctx context.Context, id, text string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// CommentRepository handles log comments
type CommentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

const commentFrom = `
	FROM log_comments c
	JOIN users u ON u.id = c.user_id`

func (r *CommentRepository) GetByID(ctx context.Context, id string) (comment *models.Comment, err error) {
	ctx, done := track(ctx, "comments.get_by_id")
	defer done(&err)

	comment, err = models.ScanComment(r.pool.QueryRow(ctx, `SELECT `+models.CommentColumns+commentFrom+` WHERE c.id = $1`, id))
	if err != nil {
		if err = mapError(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

// ListByLog returns the log's comments, oldest first.
func (r *CommentRepository) ListByLog(ctx context.Context, logID string) (comments []*models.Comment, err error) {
	ctx, done := track(ctx, "comments.list_by_log")
	defer done(&err)

	query := `SELECT ` + models.CommentColumns + commentFrom + ` WHERE c.mentorship_log_id = $1 ORDER BY c.created_at, c.id`
	rows, err := r.pool.Query(ctx, query, logID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	comments, err = models.ScanComments(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan comments: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) Create(ctx context.Context, logID, userID, text string, specialist bool) (comment *models.Comment, err error) {
	ctx, done := track(ctx, "comments.create")
	defer done(&err)

	var id string
	err = r.pool.QueryRow(ctx, `
		INSERT INTO log_comments (mentorship_log_id, user_id, comment_text, is_specialist_comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, logID, userID, text, specialist).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", mapError(err))
	}
	return r.GetByID(ctx, id)
}

func (r *CommentRepository) UpdateText(ctx context.Context, id, text string) (comment *models.Comment, err error) {
	ctx, done := track(ctx, "comments.update")
	defer done(&err)

	tag, err := r.pool.Exec(ctx, `UPDATE log_comments SET comment_text = $2, updated_at = NOW() WHERE id = $1`, id, text)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *CommentRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, done := track(ctx, "comments.delete")
	defer done(&err)

	tag, err := r.pool.Exec(ctx, `DELETE FROM log_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ CommentStore = (*CommentRepository)(nil)
