package services_test

import (
	"testing"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	apperrors "github.com/mentorlog/mentorlog-api/pkg/errors"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

func newUser(id string, role authz.Role, specializations ...string) *models.User {
	if specializations == nil {
		specializations = []string{}
	}
	return &models.User{
		ID:              id,
		Email:           id + "@example.org",
		Name:            "User " + id,
		Role:            role,
		IsActive:        true,
		Specializations: specializations,
	}
}

// assertAppError checks the sentinel and the client-facing detail.
func assertAppError(t *testing.T, err error, sentinel error, detail string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	got, ok := apperrors.Detail(err)
	assert.True(t, ok, "error carries no detail: %v", err)
	assert.Equal(t, detail, got)
}
