package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

func today(now Clock) models.Date {
	return models.DateOf(now().UTC())
}

// repoErr maps repository failures onto typed errors.
func repoErr(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrNotFound) {
		return apperrors.NotFound(resource)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Internal(fmt.Sprintf("failed to access %s", resource), err)
}

// quoteErr maps calculator failures: overlap is a conflict, everything else
// is an invalid request.
func quoteErr(err error) error {
	switch {
	case errors.Is(err, models.ErrDatesUnavailable):
		return apperrors.Conflict(err.Error())
	case errors.Is(err, models.ErrInvalidDateRange),
		errors.Is(err, models.ErrDateInPast),
		errors.Is(err, models.ErrInvalidPrice):
		return apperrors.Validation(err.Error(), nil)
	}
	return apperrors.Internal("failed to price booking", err)
}

func requireActor(actor *helpers.EnhancedClaims) error {
	if actor == nil {
		return apperrors.Unauthorized("authentication required")
	}
	return nil
}

func requireAdmin(actor *helpers.EnhancedClaims) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperrors.Forbidden("super_admin role required")
	}
	return nil
}

// pageBounds validates offset/limit, applying the default page size.
func pageBounds(offset, limit int) (int, int, error) {
	if offset < 0 {
		return 0, 0, apperrors.InvalidInput("offset must not be negative")
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	if limit < 0 || limit > MaxPageSize {
		return 0, 0, apperrors.InvalidInput(fmt.Sprintf("limit must be between 1 and %d", MaxPageSize))
	}
	return offset, limit, nil
}

func validate(v interface{}) error {
	if err := models.Validate.Struct(v); err != nil {
		return apperrors.FromValidation(err)
	}
	return nil
}
