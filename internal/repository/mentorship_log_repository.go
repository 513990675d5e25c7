package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	"github.com/mentorlog/mentorlog-api/pkg/workflow"
)

// ErrStaleState is returned when a log's status changed between read and write.
var ErrStaleState = errors.New("log status changed concurrently")

// MentorshipLogStore is the mentorship log data access used by services.
type MentorshipLogStore interface {
	GetByID(ctx context.Context, id string) (*models.MentorshipLog, error)
	GetDetail(ctx context.Context, id string) (*models.MentorshipLog, error)
	List(ctx context.Context, filter models.MentorshipLogFilter, vis models.LogVisibility) ([]*models.MentorshipLog, int, error)
	Create(ctx context.Context, log *models.MentorshipLog, skills []models.SkillsTransferInput, followUps []models.FollowUpInput) (*models.MentorshipLog, error)
	Update(ctx context.Context, log *models.MentorshipLog, skills []models.SkillsTransferInput, followUps []models.FollowUpInput) (*models.MentorshipLog, error)
	UpdateState(ctx context.Context, id string, from workflow.Status, state workflow.State) error
	Delete(ctx context.Context, id string) error
}

// MentorshipLogRepository handles logs and the records nested under them.
type MentorshipLogRepository struct {
	pool *pgxpool.Pool
}

// NewMentorshipLogRepository creates a new mentorship log repository
func NewMentorshipLogRepository(pool *pgxpool.Pool) *MentorshipLogRepository {
	return &MentorshipLogRepository{pool: pool}
}

const logFrom = `
	FROM mentorship_logs l
	JOIN facilities f ON f.id = l.facility_id
	JOIN users m ON m.id = l.mentor_id`

// GetByID loads the log row with its facility and mentor summaries.
func (r *MentorshipLogRepository) GetByID(ctx context.Context, id string) (log *models.MentorshipLog, err error) {
	ctx, done := track(ctx, "mentorship_logs.get_by_id")
	defer done(&err)

	query := `SELECT ` + models.MentorshipLogColumns + logFrom + ` WHERE l.id = $1`
	log, err = models.ScanMentorshipLog(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err = mapError(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get mentorship log: %w", err)
	}
	return log, nil
}

// GetDetail loads the log together with approver, skills transfers,
// follow-ups, attachments and comments.
func (r *MentorshipLogRepository) GetDetail(ctx context.Context, id string) (*models.MentorshipLog, error) {
	log, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detailCtx, done := track(ctx, "mentorship_logs.get_detail")
	err = r.loadDetails(detailCtx, log)
	done(&err)
	if err != nil {
		return nil, err
	}
	return log, nil
}

func (r *MentorshipLogRepository) loadDetails(ctx context.Context, log *models.MentorshipLog) error {
	if log.ApprovedBy != nil {
		var approver models.UserSummary
		var role string
		err := r.pool.QueryRow(ctx, `SELECT id, name, email, role::text FROM users WHERE id = $1`, *log.ApprovedBy).
			Scan(&approver.ID, &approver.Name, &approver.Email, &role)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to load approver: %w", err)
		}
		if err == nil {
			approver.Role = authz.Role(role)
			log.Approver = &approver
		}
	}

	skills, err := r.skillsTransfers(ctx, log.ID)
	if err != nil {
		return err
	}
	log.SkillsTransfers = skills

	rows, err := r.pool.Query(ctx, `SELECT `+models.FollowUpColumns+`
		FROM follow_ups fu JOIN mentorship_logs l ON l.id = fu.mentorship_log_id
		WHERE fu.mentorship_log_id = $1 ORDER BY fu.created_at, fu.id`, log.ID)
	if err != nil {
		return fmt.Errorf("failed to load follow-ups: %w", err)
	}
	followUps, err := models.ScanFollowUps(rows)
	if err != nil {
		return fmt.Errorf("failed to scan follow-ups: %w", err)
	}
	log.FollowUps = derefAll(followUps)

	rows, err = r.pool.Query(ctx, `SELECT `+models.AttachmentColumns+`
		FROM attachments a WHERE a.mentorship_log_id = $1 ORDER BY a.created_at, a.id`, log.ID)
	if err != nil {
		return fmt.Errorf("failed to load attachments: %w", err)
	}
	attachments, err := models.ScanAttachments(rows)
	if err != nil {
		return fmt.Errorf("failed to scan attachments: %w", err)
	}
	log.Attachments = derefAll(attachments)

	rows, err = r.pool.Query(ctx, `SELECT `+models.CommentColumns+`
		FROM log_comments c JOIN users u ON u.id = c.user_id
		WHERE c.mentorship_log_id = $1 ORDER BY c.created_at, c.id`, log.ID)
	if err != nil {
		return fmt.Errorf("failed to load comments: %w", err)
	}
	comments, err := models.ScanComments(rows)
	if err != nil {
		return fmt.Errorf("failed to scan comments: %w", err)
	}
	log.Comments = derefAll(comments)

	log.Normalize()
	return nil
}

func (r *MentorshipLogRepository) skillsTransfers(ctx context.Context, logID string) ([]models.SkillsTransfer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, mentorship_log_id, skill_knowledge_transferred, recipient_name, recipient_cadre,
			method, competency_level, followup_needed, created_at
		FROM skills_transfers WHERE mentorship_log_id = $1 ORDER BY created_at, id`, logID)
	if err != nil {
		return nil, fmt.Errorf("failed to load skills transfers: %w", err)
	}
	defer rows.Close()

	items := []models.SkillsTransfer{}
	for rows.Next() {
		var s models.SkillsTransfer
		if err := rows.Scan(&s.ID, &s.MentorshipLogID, &s.SkillKnowledgeTransferred, &s.RecipientName,
			&s.RecipientCadre, &s.Method, &s.CompetencyLevel, &s.FollowupNeeded, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan skills transfer: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// visibilityClause restricts rows to what the viewer may see. Admins and
// unrestricted viewers get no clause.
func visibilityClause(w *whereBuilder, vis models.LogVisibility) {
	if vis.All {
		return
	}
	viewer := w.arg(vis.ViewerID)
	parts := "l.mentor_id = " + viewer
	if vis.IncludeMentees {
		parts += " OR m.supervisor_id = " + viewer
	}
	if len(vis.Specializations) > 0 {
		areas := w.arg(vis.Specializations)
		parts += " OR (l.status IN ('submitted', 'approved') AND l.thematic_areas ?| " + areas + "::text[])"
	}
	w.addRaw("(" + parts + ")")
}

func (r *MentorshipLogRepository) List(ctx context.Context, filter models.MentorshipLogFilter, vis models.LogVisibility) (logs []*models.MentorshipLog, total int, err error) {
	ctx, done := track(ctx, "mentorship_logs.list")
	defer done(&err)

	var w whereBuilder
	visibilityClause(&w, vis)
	if filter.FacilityID != "" {
		w.add("l.facility_id = ?", filter.FacilityID)
	}
	if filter.MentorID != "" {
		w.add("l.mentor_id = ?", filter.MentorID)
	}
	if filter.Status != "" {
		w.add("l.status = ?::log_status", filter.Status)
	}
	if filter.VisitDateFrom != nil {
		w.add("l.visit_date >= ?::date", filter.VisitDateFrom.Format(time.DateOnly))
	}
	if filter.VisitDateTo != nil {
		w.add("l.visit_date <= ?::date", filter.VisitDateTo.Format(time.DateOnly))
	}

	if err = r.pool.QueryRow(ctx, `SELECT COUNT(*)`+logFrom+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count mentorship logs: %w", err)
	}

	page := filter.Page.Normalize()
	suffix, args := w.page(page.Limit, page.Skip)
	query := `SELECT ` + models.MentorshipLogColumns + logFrom + w.sql() +
		` ORDER BY l.visit_date DESC, l.created_at DESC, l.id` + suffix

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list mentorship logs: %w", err)
	}
	logs, err = models.ScanMentorshipLogs(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan mentorship logs: %w", err)
	}
	return logs, total, nil
}

// Create inserts a draft log with its nested records in one transaction.
func (r *MentorshipLogRepository) Create(ctx context.Context, log *models.MentorshipLog, skills []models.SkillsTransferInput, followUps []models.FollowUpInput) (created *models.MentorshipLog, err error) {
	ctx, done := track(ctx, "mentorship_logs.create")
	defer done(&err)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	query := `
		INSERT INTO mentorship_logs (
			facility_id, mentor_id, visit_date, status, interaction_type, duration_hours, duration_minutes,
			mentees_present, activities_conducted, activities_other_specify, thematic_areas,
			thematic_areas_other_specify, strengths_observed, gaps_identified, root_causes,
			challenges_encountered, solutions_proposed, support_needed, success_stories, attachment_types
		) VALUES ($1, $2, $3, 'draft', $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`
	var id string
	err = tx.QueryRow(ctx, query,
		log.FacilityID, log.MentorID, log.VisitDate, log.InteractionType, log.DurationHours, log.DurationMinutes,
		log.MenteesPresent, log.ActivitiesConducted, log.ActivitiesOtherSpecify, log.ThematicAreas,
		log.ThematicAreasOtherSpecify, log.StrengthsObserved, log.GapsIdentified, log.RootCauses,
		log.ChallengesEncountered, log.SolutionsProposed, log.SupportNeeded, log.SuccessStories, log.AttachmentTypes,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create mentorship log: %w", mapError(err))
	}

	if err = insertSkills(ctx, tx, id, skills); err != nil {
		return nil, err
	}
	if err = insertFollowUps(ctx, tx, id, followUps); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit mentorship log: %w", err)
	}
	return r.GetDetail(ctx, id)
}

// Update writes the editable columns. A non-nil skills or followUps list
// replaces the stored one.
func (r *MentorshipLogRepository) Update(ctx context.Context, log *models.MentorshipLog, skills []models.SkillsTransferInput, followUps []models.FollowUpInput) (updated *models.MentorshipLog, err error) {
	ctx, done := track(ctx, "mentorship_logs.update")
	defer done(&err)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	query := `
		UPDATE mentorship_logs SET
			facility_id = $2, visit_date = $3, interaction_type = $4, duration_hours = $5,
			duration_minutes = $6, mentees_present = $7, activities_conducted = $8,
			activities_other_specify = $9, thematic_areas = $10, thematic_areas_other_specify = $11,
			strengths_observed = $12, gaps_identified = $13, root_causes = $14,
			challenges_encountered = $15, solutions_proposed = $16, support_needed = $17,
			success_stories = $18, attachment_types = $19, updated_at = NOW()
		WHERE id = $1 AND status = 'draft'
	`
	tag, err := tx.Exec(ctx, query,
		log.ID, log.FacilityID, log.VisitDate, log.InteractionType, log.DurationHours,
		log.DurationMinutes, log.MenteesPresent, log.ActivitiesConducted,
		log.ActivitiesOtherSpecify, log.ThematicAreas, log.ThematicAreasOtherSpecify,
		log.StrengthsObserved, log.GapsIdentified, log.RootCauses,
		log.ChallengesEncountered, log.SolutionsProposed, log.SupportNeeded,
		log.SuccessStories, log.AttachmentTypes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update mentorship log: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrStaleState
	}

	if skills != nil {
		if _, err = tx.Exec(ctx, `DELETE FROM skills_transfers WHERE mentorship_log_id = $1`, log.ID); err != nil {
			return nil, fmt.Errorf("failed to clear skills transfers: %w", err)
		}
		if err = insertSkills(ctx, tx, log.ID, skills); err != nil {
			return nil, err
		}
	}
	if followUps != nil {
		if _, err = tx.Exec(ctx, `DELETE FROM follow_ups WHERE mentorship_log_id = $1`, log.ID); err != nil {
			return nil, fmt.Errorf("failed to clear follow-ups: %w", err)
		}
		if err = insertFollowUps(ctx, tx, log.ID, followUps); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit mentorship log: %w", err)
	}
	return r.GetDetail(ctx, log.ID)
}

// UpdateState persists a workflow transition. The write only applies while
// the log is still in status from.
func (r *MentorshipLogRepository) UpdateState(ctx context.Context, id string, from workflow.Status, state workflow.State) (err error) {
	ctx, done := track(ctx, "mentorship_logs.update_state")
	defer done(&err)

	query := `
		UPDATE mentorship_logs SET
			status = $3::log_status, submitted_at = $4, approved_at = $5, approved_by = $6,
			rejected_at = $7, rejection_reason = $8, updated_at = NOW()
		WHERE id = $1 AND status = $2::log_status
	`
	tag, err := r.pool.Exec(ctx, query, id, string(from), string(state.Status),
		state.SubmittedAt, state.ApprovedAt, state.ApprovedBy, state.RejectedAt, state.RejectionReason)
	if err != nil {
		return fmt.Errorf("failed to update log status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleState
	}
	return nil
}

// Delete removes the log. Nested rows go with it through ON DELETE CASCADE.
func (r *MentorshipLogRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, done := track(ctx, "mentorship_logs.delete")
	defer done(&err)

	tag, err := r.pool.Exec(ctx, `DELETE FROM mentorship_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mentorship log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertSkills(ctx context.Context, tx pgx.Tx, logID string, skills []models.SkillsTransferInput) error {
	for _, s := range skills {
		_, err := tx.Exec(ctx, `
			INSERT INTO skills_transfers (mentorship_log_id, skill_knowledge_transferred, recipient_name,
				recipient_cadre, method, competency_level, followup_needed)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			logID, s.SkillKnowledgeTransferred, s.RecipientName, s.RecipientCadre, s.Method,
			s.CompetencyLevel, s.FollowupNeeded,
		)
		if err != nil {
			return fmt.Errorf("failed to add skills transfer: %w", err)
		}
	}
	return nil
}

func insertFollowUps(ctx context.Context, tx pgx.Tx, logID string, followUps []models.FollowUpInput) error {
	for _, f := range followUps {
		_, err := tx.Exec(ctx, `
			INSERT INTO follow_ups (mentorship_log_id, action_item, responsible_person, assigned_to,
				target_date, resources_needed, priority, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			logID, f.ActionItem, f.ResponsiblePerson, f.AssignedTo, f.TargetDate,
			f.ResourcesNeeded, f.Priority, f.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to add follow-up: %w", mapError(err))
		}
	}
	return nil
}

func derefAll[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		out = append(out, *it)
	}
	return out
}

var _ MentorshipLogStore = (*MentorshipLogRepository)(nil)
