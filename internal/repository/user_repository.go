package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorlog/mentorlog-api/internal/models"
)

// UserStore is the user data access used by services.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User, replaceSpecializations bool) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) (*models.User, error)
	Delete(ctx context.Context, id string) error
	HasLogs(ctx context.Context, id string) (bool, error)
	IsSupervisorOf(ctx context.Context, supervisorID, mentorID string) (bool, error)
	ListSpecialists(ctx context.Context, areas []string, excludeUserID string) ([]*models.User, error)
}

// UserRepository handles users and their specializations.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user *models.User, err error) {
	ctx, done := track(ctx, "users.get_by_id")
	defer done(&err)
	return r.getOne(ctx, "u.id = $1", id)
}

// GetByEmail matches the email case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user *models.User, err error) {
	ctx, done := track(ctx, "users.get_by_email")
	defer done(&err)
	return r.getOne(ctx, "lower(u.email) = lower($1)", email)
}

func (r *UserRepository) getOne(ctx context.Context, cond string, arg interface{}) (*models.User, error) {
	query := `SELECT ` + models.UserColumns + ` FROM users u WHERE ` + cond

	user, err := models.ScanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if err = mapError(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	specs, err := r.specializations(ctx, r.pool, user.ID)
	if err != nil {
		return nil, err
	}
	user.Specializations = specs
	return user, nil
}

func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) (users []*models.User, total int, err error) {
	ctx, done := track(ctx, "users.list")
	defer done(&err)

	var w whereBuilder
	if filter.Role != nil {
		w.add("u.role = ?::user_role", string(*filter.Role))
	}
	if filter.IsActive != nil {
		w.add("u.is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		p := w.arg(likePattern(filter.Search))
		w.addRaw("(u.name ILIKE " + p + " OR u.email ILIKE " + p + ")")
	}

	if err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users u`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	page := filter.Page.Normalize()
	suffix, args := w.page(page.Limit, page.Skip)
	query := `SELECT ` + models.UserColumns + ` FROM users u` + w.sql() + ` ORDER BY u.name, u.id` + suffix

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	users, err = models.ScanUsers(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan users: %w", err)
	}

	if err = r.attachSpecializations(ctx, users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Create inserts the user and its specializations in one transaction.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (created *models.User, err error) {
	ctx, done := track(ctx, "users.create")
	defer done(&err)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	query := `
		INSERT INTO users (email, password_hash, name, designation, region_state, role, supervisor_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6::user_role, $7, $8)
		RETURNING id
	`
	var id string
	err = tx.QueryRow(ctx, query,
		user.Email, user.PasswordHash, user.Name, user.Designation, user.RegionState,
		string(user.Role), user.SupervisorID, user.IsActive,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", mapError(err))
	}

	if err = r.replaceSpecializations(ctx, tx, id, user.Specializations); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit user: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update writes every column of user. Specializations are only touched when
// replaceSpecializations is set.
func (r *UserRepository) Update(ctx context.Context, user *models.User, replaceSpecializations bool) (updated *models.User, err error) {
	ctx, done := track(ctx, "users.update")
	defer done(&err)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	query := `
		UPDATE users SET
			email = $2, password_hash = $3, name = $4, designation = $5, region_state = $6,
			role = $7::user_role, supervisor_id = $8, is_active = $9, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := tx.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Designation, user.RegionState,
		string(user.Role), user.SupervisorID, user.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if replaceSpecializations {
		if err = r.replaceSpecializations(ctx, tx, user.ID, user.Specializations); err != nil {
			return nil, err
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit user: %w", err)
	}
	return r.GetByID(ctx, user.ID)
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) (user *models.User, err error) {
	ctx, done := track(ctx, "users.set_active")
	defer done(&err)

	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, done := track(ctx, "users.delete")
	defer done(&err)

	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// HasLogs reports whether the user authored any mentorship log.
func (r *UserRepository) HasLogs(ctx context.Context, id string) (exists bool, err error) {
	ctx, done := track(ctx, "users.has_logs")
	defer done(&err)

	err = r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM mentorship_logs WHERE mentor_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user logs: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) IsSupervisorOf(ctx context.Context, supervisorID, mentorID string) (ok bool, err error) {
	ctx, done := track(ctx, "users.is_supervisor_of")
	defer done(&err)

	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND supervisor_id = $2)`,
		mentorID, supervisorID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check supervision: %w", err)
	}
	return ok, nil
}

// ListSpecialists returns active users specialised in any of areas.
func (r *UserRepository) ListSpecialists(ctx context.Context, areas []string, excludeUserID string) (users []*models.User, err error) {
	ctx, done := track(ctx, "users.list_specialists")
	defer done(&err)

	if len(areas) == 0 {
		return []*models.User{}, nil
	}

	query := `
		SELECT ` + models.UserColumns + `
		FROM users u
		WHERE u.is_active
			AND u.id <> $2
			AND EXISTS (
				SELECT 1 FROM user_specializations s
				WHERE s.user_id = u.id AND s.thematic_area = ANY($1)
			)
		ORDER BY u.name
	`
	rows, err := r.pool.Query(ctx, query, areas, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list specialists: %w", err)
	}
	users, err = models.ScanUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan specialists: %w", err)
	}
	if err = r.attachSpecializations(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func (r *UserRepository) specializations(ctx context.Context, q querier, userID string) ([]string, error) {
	rows, err := q.Query(ctx,
		`SELECT thematic_area FROM user_specializations WHERE user_id = $1 ORDER BY thematic_area`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load specializations: %w", err)
	}
	areas, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan specializations: %w", err)
	}
	if areas == nil {
		areas = []string{}
	}
	return areas, nil
}

func (r *UserRepository) attachSpecializations(ctx context.Context, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]string, len(users))
	byID := make(map[string]*models.User, len(users))
	for i, u := range users {
		ids[i] = u.ID
		byID[u.ID] = u
	}

	rows, err := r.pool.Query(ctx,
		`SELECT user_id, thematic_area FROM user_specializations WHERE user_id = ANY($1) ORDER BY thematic_area`, ids)
	if err != nil {
		return fmt.Errorf("failed to load specializations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, area string
		if err := rows.Scan(&userID, &area); err != nil {
			return fmt.Errorf("failed to scan specialization: %w", err)
		}
		if u := byID[userID]; u != nil {
			u.Specializations = append(u.Specializations, area)
		}
	}
	return rows.Err()
}

func (r *UserRepository) replaceSpecializations(ctx context.Context, tx pgx.Tx, userID string, areas []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM user_specializations WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear specializations: %w", err)
	}
	for _, area := range uniqueStrings(areas) {
		_, err := tx.Exec(ctx,
			`INSERT INTO user_specializations (user_id, thematic_area) VALUES ($1, $2)`, userID, area)
		if err != nil {
			return fmt.Errorf("failed to add specialization: %w", err)
		}
	}
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

var _ UserStore = (*UserRepository)(nil)
