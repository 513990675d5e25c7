package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/internal/repository"
	"github.com/mentorlog/mentorlog-api/internal/services"
	apperrors "github.com/mentorlog/mentorlog-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFacilityService_List_DefaultsLimit(t *testing.T) {
	facilities := new(MockFacilityStore)
	service := services.NewFacilityService(facilities)
	ctx := context.Background()

	facilities.On("List", ctx, models.FacilityFilter{State: "Lagos", Page: models.Page{Limit: 100}}).
		Return([]*models.Facility{{ID: "f1"}}, 7, nil).Once()

	page, err := service.List(ctx, models.FacilityFilter{State: "Lagos"})
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 100, page.Limit)
}

func TestFacilityService_Create_DuplicateCode(t *testing.T) {
	facilities := new(MockFacilityStore)
	service := services.NewFacilityService(facilities)
	ctx := context.Background()

	dup := fmt.Errorf("facilities_code_key: %w", repository.ErrDuplicate)
	facilities.On("Create", ctx, mock.Anything).Return(nil, dup).Once()

	_, err := service.Create(ctx, &models.FacilityRequest{Name: "PHC", Code: strPtr("LAG-001")})
	assertAppError(t, err, apperrors.ErrInvalidInput, "Facility with code 'LAG-001' already exists")
}

func TestFacilityService_Update_PartialFields(t *testing.T) {
	facilities := new(MockFacilityStore)
	service := services.NewFacilityService(facilities)
	ctx := context.Background()

	existing := &models.Facility{ID: "f1", Name: "Old", State: strPtr("Kano")}
	facilities.On("GetByID", ctx, "f1").Return(existing, nil).Once()
	facilities.On("Update", ctx, mock.MatchedBy(func(f *models.Facility) bool {
		return f.Name == "New" && *f.State == "Kano"
	})).Return(existing, nil).Once()

	_, err := service.Update(ctx, "f1", &models.FacilityUpdateRequest{Name: strPtr("New")})
	require.NoError(t, err)
	facilities.AssertExpectations(t)
}

func TestFacilityService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("referenced by logs", func(t *testing.T) {
		facilities := new(MockFacilityStore)
		facilities.On("GetByID", ctx, "f1").Return(&models.Facility{ID: "f1"}, nil).Once()
		facilities.On("HasLogs", ctx, "f1").Return(true, nil).Once()

		err := services.NewFacilityService(facilities).Delete(ctx, "f1")
		assertAppError(t, err, apperrors.ErrInvalidInput, "Cannot delete facility with associated mentorship logs")
		facilities.AssertNotCalled(t, "Delete")
	})

	t.Run("missing", func(t *testing.T) {
		facilities := new(MockFacilityStore)
		facilities.On("GetByID", ctx, "f2").Return(nil, repository.ErrNotFound).Once()

		err := services.NewFacilityService(facilities).Delete(ctx, "f2")
		assertAppError(t, err, apperrors.ErrNotFound, "Facility not found")
	})

	t.Run("unreferenced", func(t *testing.T) {
		facilities := new(MockFacilityStore)
		facilities.On("GetByID", ctx, "f3").Return(&models.Facility{ID: "f3"}, nil).Once()
		facilities.On("HasLogs", ctx, "f3").Return(false, nil).Once()
		facilities.On("Delete", ctx, "f3").Return(nil).Once()

		assert.NoError(t, services.NewFacilityService(facilities).Delete(ctx, "f3"))
		facilities.AssertExpectations(t)
	})
}
