package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/repository"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"go.uber.org/zap"
)

// FacilityService manages health facilities.
type FacilityService struct {
	facilities repository.FacilityStore
}

// NewFacilityService creates a new FacilityService
func NewFacilityService(facilities repository.FacilityStore) *FacilityService {
	return &FacilityService{facilities: facilities}
}

func (s *FacilityService) List(ctx context.Context, filter models.FacilityFilter) (models.Paginated[*models.Facility], error) {
	filter.Page = filter.Page.Normalize()
	items, total, err := s.facilities.List(ctx, filter)
	if err != nil {
		return models.Paginated[*models.Facility]{}, err
	}
	return models.NewPaginated(items, total, filter.Page), nil
}

func (s *FacilityService) Get(ctx context.Context, id string) (*models.Facility, error) {
	f, err := s.facilities.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgFacilityNotFound)
	}
	return f, nil
}

func (s *FacilityService) Create(ctx context.Context, req *models.FacilityRequest) (*models.Facility, error) {
	f, err := s.facilities.Create(ctx, &models.Facility{
		Name:          req.Name,
		Code:          req.Code,
		Location:      req.Location,
		State:         req.State,
		LGA:           req.LGA,
		FacilityType:  req.FacilityType,
		ContactPerson: req.ContactPerson,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
	})
	if err != nil {
		return nil, duplicateCode(err, req.Code)
	}
	logger.Info("Facility created", zap.String("facility_id", f.ID))
	return f, nil
}

func (s *FacilityService) Update(ctx context.Context, id string, req *models.FacilityUpdateRequest) (*models.Facility, error) {
	f, err := s.facilities.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgFacilityNotFound)
	}

	if req.Name != nil {
		f.Name = *req.Name
	}
	setIfPresent(&f.Code, req.Code)
	setIfPresent(&f.Location, req.Location)
	setIfPresent(&f.State, req.State)
	setIfPresent(&f.LGA, req.LGA)
	setIfPresent(&f.FacilityType, req.FacilityType)
	setIfPresent(&f.ContactPerson, req.ContactPerson)
	setIfPresent(&f.ContactEmail, req.ContactEmail)
	setIfPresent(&f.ContactPhone, req.ContactPhone)

	updated, err := s.facilities.Update(ctx, f)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(msgFacilityNotFound)
		}
		return nil, duplicateCode(err, f.Code)
	}
	logger.Info("Facility updated", zap.String("facility_id", id))
	return updated, nil
}

// Delete refuses while mentorship logs reference the facility.
func (s *FacilityService) Delete(ctx context.Context, id string) error {
	if _, err := s.facilities.GetByID(ctx, id); err != nil {
		return lookupError(err, msgFacilityNotFound)
	}

	hasLogs, err := s.facilities.HasLogs(ctx, id)
	if err != nil {
		return err
	}
	if hasLogs {
		return badRequest("Cannot delete facility with associated mentorship logs")
	}

	if err := s.facilities.Delete(ctx, id); err != nil {
		return lookupError(err, msgFacilityNotFound)
	}
	logger.Info("Facility deleted", zap.String("facility_id", id))
	return nil
}

func duplicateCode(err error, code *string) error {
	if errors.Is(err, repository.ErrDuplicate) && code != nil {
		return badRequest(fmt.Sprintf("Facility with code '%s' already exists", *code))
	}
	return err
}
