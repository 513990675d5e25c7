package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorlog/mentorlog-api/internal/models"
)

// FacilityStore is the facility data access used by services.
type FacilityStore interface {
	GetByID(ctx context.Context, id string) (*models.Facility, error)
	List(ctx context.Context, filter models.FacilityFilter) ([]*models.Facility, int, error)
	Create(ctx context.Context, facility *models.Facility) (*models.Facility, error)
	Update(ctx context.Context, facility *models.Facility) (*models.Facility, error)
	Delete(ctx context.Context, id string) error
	HasLogs(ctx context.Context, id string) (bool, error)
}

// FacilityRepository handles facility data access
type FacilityRepository struct {
	pool *pgxpool.Pool
}

// NewFacilityRepository creates a new facility repository
func NewFacilityRepository(pool *pgxpool.Pool) *FacilityRepository {
	return &FacilityRepository{pool: pool}
}

func (r *FacilityRepository) GetByID(ctx context.Context, id string) (facility *models.Facility, err error) {
	ctx, done := track(ctx, "facilities.get_by_id")
	defer done(&err)

	query := `SELECT ` + models.FacilityColumns + ` FROM facilities f WHERE f.id = $1`
	facility, err = models.ScanFacility(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err = mapError(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get facility: %w", err)
	}
	return facility, nil
}

func (r *FacilityRepository) List(ctx context.Context, filter models.FacilityFilter) (facilities []*models.Facility, total int, err error) {
	ctx, done := track(ctx, "facilities.list")
	defer done(&err)

	var w whereBuilder
	if filter.State != "" {
		w.add("lower(f.state) = lower(?)", filter.State)
	}
	if filter.LGA != "" {
		w.add("lower(f.lga) = lower(?)", filter.LGA)
	}
	if filter.FacilityType != "" {
		w.add("lower(f.facility_type) = lower(?)", filter.FacilityType)
	}
	if filter.Search != "" {
		p := w.arg(likePattern(filter.Search))
		w.addRaw("(f.name ILIKE " + p + " OR f.code ILIKE " + p + ")")
	}

	if err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM facilities f`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count facilities: %w", err)
	}

	page := filter.Page.Normalize()
	suffix, args := w.page(page.Limit, page.Skip)
	query := `SELECT ` + models.FacilityColumns + ` FROM facilities f` + w.sql() +
		` ORDER BY f.state NULLS LAST, f.lga NULLS LAST, f.name, f.id` + suffix

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list facilities: %w", err)
	}
	facilities, err = models.ScanFacilities(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan facilities: %w", err)
	}
	return facilities, total, nil
}

func (r *FacilityRepository) Create(ctx context.Context, f *models.Facility) (created *models.Facility, err error) {
	ctx, done := track(ctx, "facilities.create")
	defer done(&err)

	query := `
		INSERT INTO facilities AS f (name, code, location, state, lga, facility_type, contact_person, contact_email, contact_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + models.FacilityColumns

	created, err = models.ScanFacility(r.pool.QueryRow(ctx, query,
		f.Name, f.Code, f.Location, f.State, f.LGA, f.FacilityType, f.ContactPerson, f.ContactEmail, f.ContactPhone,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create facility: %w", mapError(err))
	}
	return created, nil
}

func (r *FacilityRepository) Update(ctx context.Context, f *models.Facility) (updated *models.Facility, err error) {
	ctx, done := track(ctx, "facilities.update")
	defer done(&err)

	query := `
		UPDATE facilities f SET
			name = $2, code = $3, location = $4, state = $5, lga = $6, facility_type = $7,
			contact_person = $8, contact_email = $9, contact_phone = $10, updated_at = NOW()
		WHERE f.id = $1
		RETURNING ` + models.FacilityColumns

	updated, err = models.ScanFacility(r.pool.QueryRow(ctx, query,
		f.ID, f.Name, f.Code, f.Location, f.State, f.LGA, f.FacilityType, f.ContactPerson, f.ContactEmail, f.ContactPhone,
	))
	if err != nil {
		if err = mapError(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update facility: %w", err)
	}
	return updated, nil
}

func (r *FacilityRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, done := track(ctx, "facilities.delete")
	defer done(&err)

	tag, err := r.pool.Exec(ctx, `DELETE FROM facilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete facility: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FacilityRepository) HasLogs(ctx context.Context, id string) (exists bool, err error) {
	ctx, done := track(ctx, "facilities.has_logs")
	defer done(&err)

	err = r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM mentorship_logs WHERE facility_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check facility logs: %w", err)
	}
	return exists, nil
}

var _ FacilityStore = (*FacilityRepository)(nil)
