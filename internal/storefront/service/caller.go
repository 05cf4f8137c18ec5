package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
)

var (
	ErrAuthenticationRequired = errors.New("you must be signed in to do that")
	ErrForbidden              = errors.New("you do not have permission to do that")
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
)

// ValidationError carries a message that is safe to show to the caller.
// errors.Is(err, ErrValidation) holds for every ValidationError.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// loadCaller resolves the explicit caller identity. Anonymous callers and
// sessions for users that no longer exist are both unauthenticated.
func loadCaller(ctx context.Context, users store.Users, callerID string) (domain.User, error) {
	if callerID == "" {
		return domain.User{}, ErrAuthenticationRequired
	}
	u, err := users.GetUserByID(ctx, callerID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrAuthenticationRequired
	}
	return u, err
}
