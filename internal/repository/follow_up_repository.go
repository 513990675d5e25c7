package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorlog/mentorlog-api/internal/models"
)

// FollowUpStore is the follow-up data access used by services.
type FollowUpStore interface {
	GetByID(ctx context.Context, id string) (*models.FollowUp, error)
	List(ctx context.Context, filter models.FollowUpFilter) ([]*models.FollowUp, int, error)
	Create(ctx context.Context, logID string, input models.FollowUpInput) (*models.FollowUp, error)
	Update(ctx context.Context, followUp *models.FollowUp) (*models.FollowUp, error)
	Delete(ctx context.Context, id string) error
}

// FollowUpRepository handles follow-up data access
type FollowUpRepository struct {
	pool *pgxpool.Pool
}

// NewFollowUpRepository creates a new follow-up repository
func NewFollowUpRepository(pool *pgxpool.Pool) *FollowUpRepository {
	return &FollowUpRepository{pool: pool}
}

const followUpFrom = `
	FROM follow_ups fu
	JOIN mentorship_logs l ON l.id = fu.mentorship_log_id`

func (r *FollowUpRepository) GetByID(ctx context.Context, id string) (followUp *models.FollowUp, err error) {
	ctx, done := track(ctx, "follow_ups.get_by_id")
	defer done(&err)

	query := `SELECT ` + models.FollowUpColumns + followUpFrom + ` WHERE fu.id = $1`
	followUp, err = models.ScanFollowUp(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err = mapError(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get follow-up: %w", err)
	}
	return followUp, nil
}

func (r *FollowUpRepository) List(ctx context.Context, filter models.FollowUpFilter) (items []*models.FollowUp, total int, err error) {
	ctx, done := track(ctx, "follow_ups.list")
	defer done(&err)

	var w whereBuilder
	if filter.RestrictToUser != "" {
		p := w.arg(filter.RestrictToUser)
		w.addRaw("(l.mentor_id = " + p + " OR fu.assigned_to = " + p + ")")
	}
	if filter.Status != "" {
		w.add("fu.status = ?::follow_up_status", filter.Status)
	}
	if filter.MentorshipLogID != "" {
		w.add("fu.mentorship_log_id = ?", filter.MentorshipLogID)
	}
	if filter.AssignedTo != "" {
		w.add("fu.assigned_to = ?", filter.AssignedTo)
	}
	if filter.Priority != "" {
		w.add("fu.priority = ?", filter.Priority)
	}

	if err = r.pool.QueryRow(ctx, `SELECT COUNT(*)`+followUpFrom+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count follow-ups: %w", err)
	}

	page := filter.Page.Normalize()
	suffix, args := w.page(page.Limit, page.Skip)
	query := `SELECT ` + models.FollowUpColumns + followUpFrom + w.sql() + ` ORDER BY fu.created_at DESC, fu.id` + suffix

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	items, err = models.ScanFollowUps(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan follow-ups: %w", err)
	}
	return items, total, nil
}

func (r *FollowUpRepository) Create(ctx context.Context, logID string, in models.FollowUpInput) (followUp *models.FollowUp, err error) {
	ctx, done := track(ctx, "follow_ups.create")
	defer done(&err)

	query := `
		INSERT INTO follow_ups (mentorship_log_id, action_item, responsible_person, assigned_to,
			target_date, resources_needed, priority, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var id string
	err = r.pool.QueryRow(ctx, query, logID, in.ActionItem, in.ResponsiblePerson, in.AssignedTo,
		in.TargetDate, in.ResourcesNeeded, in.Priority, in.Notes).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create follow-up: %w", mapError(err))
	}
	return r.GetByID(ctx, id)
}

func (r *FollowUpRepository) Update(ctx context.Context, f *models.FollowUp) (updated *models.FollowUp, err error) {
	ctx, done := track(ctx, "follow_ups.update")
	defer done(&err)

	query := `
		UPDATE follow_ups SET
			action_item = $2, responsible_person = $3, assigned_to = $4, target_date = $5,
			resources_needed = $6, priority = $7, status = $8::follow_up_status, notes = $9,
			completed_at = $10, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, f.ID, f.ActionItem, f.ResponsiblePerson, f.AssignedTo,
		f.TargetDate, f.ResourcesNeeded, f.Priority, string(f.Status), f.Notes, f.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update follow-up: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, f.ID)
}

func (r *FollowUpRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, done := track(ctx, "follow_ups.delete")
	defer done(&err)

	tag, err := r.pool.Exec(ctx, `DELETE FROM follow_ups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete follow-up: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ FollowUpStore = (*FollowUpRepository)(nil)
