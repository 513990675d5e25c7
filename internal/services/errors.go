package services

import (
	"errors"

	"github.com/mentorlog/mentorlog-api/internal/repository"
	apperrors "github.com/mentorlog/mentorlog-api/pkg/errors"
)

// Detail messages shared by several services.
const (
	msgLogNotFound      = "Mentorship log not found"
	msgUserNotFound     = "User not found"
	msgFacilityNotFound = "Facility not found"
	msgFollowUpNotFound = "Follow-up not found"
	msgInvalidCreds     = "Invalid authentication credentials"
	msgInsufficient     = "Insufficient permissions"
)

func notFound(detail string) error { return apperrors.Wrap(apperrors.ErrNotFound, detail) }
func forbidden(detail string) error { return apperrors.Wrap(apperrors.ErrAccessDenied, detail) }
func badRequest(detail string) error { return apperrors.Wrap(apperrors.ErrInvalidInput, detail) }
func unauthorized(detail string) error { return apperrors.Wrap(apperrors.ErrUnauthorized, detail) }
func conflict(detail string) error { return apperrors.Wrap(apperrors.ErrConflict, detail) }

// lookupError turns a repository miss into a 404 with detail. Other errors
// pass through unchanged.
func lookupError(err error, detail string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(detail)
	}
	return err
}
