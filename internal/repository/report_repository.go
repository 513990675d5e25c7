package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorlog/mentorlog-api/internal/models"
)

// ReportStore runs the aggregate queries behind /api/reports.
type ReportStore interface {
	CountLogsByStatus(ctx context.Context) (map[string]int, error)
	CountFacilities(ctx context.Context) (int, error)
	CountMentors(ctx context.Context) (int, error)
	CountFollowUpsByStatus(ctx context.Context) (map[string]int, error)
	LogReport(ctx context.Context, filter models.LogReportFilter) (*models.LogReport, error)
	FollowUpReport(ctx context.Context, filter models.FollowUpReportFilter, today time.Time) (*models.FollowUpReport, error)
	FacilityCoverage(ctx context.Context, state string) (*models.FacilityCoverageReport, error)
}

// ReportRepository is read-only.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

func (r *ReportRepository) CountLogsByStatus(ctx context.Context) (counts map[string]int, err error) {
	ctx, done := track(ctx, "reports.logs_by_status")
	defer done(&err)
	return r.countBy(ctx, `SELECT status::text, COUNT(*) FROM mentorship_logs GROUP BY status`)
}

func (r *ReportRepository) CountFollowUpsByStatus(ctx context.Context) (counts map[string]int, err error) {
	ctx, done := track(ctx, "reports.follow_ups_by_status")
	defer done(&err)
	return r.countBy(ctx, `SELECT status::text, COUNT(*) FROM follow_ups GROUP BY status`)
}

func (r *ReportRepository) CountFacilities(ctx context.Context) (n int, err error) {
	ctx, done := track(ctx, "reports.count_facilities")
	defer done(&err)
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM facilities`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count facilities: %w", err)
	}
	return n, nil
}

// CountMentors counts users with the mentor role.
func (r *ReportRepository) CountMentors(ctx context.Context) (n int, err error) {
	ctx, done := track(ctx, "reports.count_mentors")
	defer done(&err)
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'mentor'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count mentors: %w", err)
	}
	return n, nil
}

func (r *ReportRepository) countBy(ctx context.Context, query string, args ...interface{}) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group counts: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("failed to scan group count: %w", err)
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

func (r *ReportRepository) LogReport(ctx context.Context, filter models.LogReportFilter) (report *models.LogReport, err error) {
	ctx, done := track(ctx, "reports.mentorship_logs")
	defer done(&err)

	var w whereBuilder
	if filter.StartDate != nil {
		w.add("l.visit_date >= ?::date", filter.StartDate.Format(time.DateOnly))
	}
	if filter.EndDate != nil {
		w.add("l.visit_date <= ?::date", filter.EndDate.Format(time.DateOnly))
	}
	if filter.MentorID != "" {
		w.add("l.mentor_id = ?", filter.MentorID)
	}
	if filter.FacilityID != "" {
		w.add("l.facility_id = ?", filter.FacilityID)
	}
	if filter.Status != "" {
		w.add("l.status = ?::log_status", filter.Status)
	}
	from := `
		FROM mentorship_logs l
		JOIN facilities f ON f.id = l.facility_id
		JOIN users m ON m.id = l.mentor_id` + w.sql()

	report = &models.LogReport{
		LogsByMentor:   []models.MentorCount{},
		LogsByFacility: []models.FacilityCount{},
		LogsByState:    []models.StateCount{},
	}

	if err = r.pool.QueryRow(ctx, `SELECT COUNT(*)`+from, w.args...).Scan(&report.TotalCount); err != nil {
		return nil, fmt.Errorf("failed to count logs: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT m.id, m.name, COUNT(*)`+from+` GROUP BY m.id, m.name ORDER BY COUNT(*) DESC, m.name`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group logs by mentor: %w", err)
	}
	report.LogsByMentor, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.MentorCount, error) {
		var c models.MentorCount
		err := row.Scan(&c.MentorID, &c.MentorName, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan logs by mentor: %w", err)
	}

	rows, err = r.pool.Query(ctx, `SELECT f.id, f.name, COUNT(*)`+from+` GROUP BY f.id, f.name ORDER BY COUNT(*) DESC, f.name`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group logs by facility: %w", err)
	}
	report.LogsByFacility, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FacilityCount, error) {
		var c models.FacilityCount
		err := row.Scan(&c.FacilityID, &c.FacilityName, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan logs by facility: %w", err)
	}

	rows, err = r.pool.Query(ctx, `SELECT f.state, COUNT(*)`+from+` GROUP BY f.state ORDER BY f.state NULLS LAST`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group logs by state: %w", err)
	}
	report.LogsByState, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StateCount, error) {
		var c models.StateCount
		err := row.Scan(&c.State, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan logs by state: %w", err)
	}

	return report, nil
}

// FollowUpReport counts follow-ups. Pending and overdue counts ignore the
// status filter but honour priority.
func (r *ReportRepository) FollowUpReport(ctx context.Context, filter models.FollowUpReportFilter, today time.Time) (report *models.FollowUpReport, err error) {
	ctx, done := track(ctx, "reports.follow_ups")
	defer done(&err)

	var priority interface{}
	if filter.Priority != "" {
		priority = filter.Priority
	}
	var status interface{}
	if filter.Status != "" {
		status = filter.Status
	}

	query := `
		SELECT
			COUNT(*) FILTER (WHERE ($1::text IS NULL OR status::text = $1)),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status IN ('pending', 'in_progress') AND target_date < $3::date)
		FROM follow_ups
		WHERE ($2::text IS NULL OR priority = $2)
	`
	report = &models.FollowUpReport{}
	err = r.pool.QueryRow(ctx, query, status, priority, today.Format(time.DateOnly)).
		Scan(&report.TotalCount, &report.PendingCount, &report.OverdueCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count follow-ups: %w", err)
	}

	report.ByStatus, err = r.countBy(ctx, `
		SELECT status::text, COUNT(*) FROM follow_ups
		WHERE ($1::text IS NULL OR status::text = $1) AND ($2::text IS NULL OR priority = $2)
		GROUP BY status`, status, priority)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// FacilityCoverage lists every facility with its visit count and last visit.
func (r *ReportRepository) FacilityCoverage(ctx context.Context, state string) (report *models.FacilityCoverageReport, err error) {
	ctx, done := track(ctx, "reports.facility_coverage")
	defer done(&err)

	var w whereBuilder
	if state != "" {
		w.add("f.state = ?", state)
	}
	query := `
		SELECT f.id, f.name, f.code, f.state, f.lga, COUNT(l.id), MAX(l.visit_date)::text
		FROM facilities f
		LEFT JOIN mentorship_logs l ON l.facility_id = f.id` + w.sql() + `
		GROUP BY f.id, f.name, f.code, f.state, f.lga
		ORDER BY f.state NULLS LAST, f.lga NULLS LAST, f.name
	`
	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load facility coverage: %w", err)
	}
	facilities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FacilityVisits, error) {
		var v models.FacilityVisits
		err := row.Scan(&v.FacilityID, &v.FacilityName, &v.FacilityCode, &v.State, &v.LGA, &v.VisitCount, &v.LastVisitDate)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan facility coverage: %w", err)
	}
	return BuildCoverage(facilities), nil
}

// BuildCoverage derives the visited and unvisited totals.
func BuildCoverage(facilities []models.FacilityVisits) *models.FacilityCoverageReport {
	report := &models.FacilityCoverageReport{Facilities: facilities}
	if report.Facilities == nil {
		report.Facilities = []models.FacilityVisits{}
	}
	for _, f := range report.Facilities {
		if f.VisitCount > 0 {
			report.VisitedFacilities++
		} else {
			report.UnvisitedFacilities++
		}
	}
	report.TotalFacilities = len(report.Facilities)
	return report
}

var _ ReportStore = (*ReportRepository)(nil)
