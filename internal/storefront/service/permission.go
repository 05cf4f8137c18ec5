package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// RequirePermission returns ErrForbidden unless user holds at least one of
// required.
func RequirePermission(user domain.User, required ...domain.Permission) error {
	if !user.Permissions.Intersects(required...) {
		return ErrForbidden
	}
	return nil
}

// CanMutateItem reports whether caller owns item or holds one of required.
func CanMutateItem(caller domain.User, item domain.Item, required ...domain.Permission) bool {
	return item.OwnedBy(caller.ID) || caller.Permissions.Intersects(required...)
}

// PermissionService manages the permission sets attached to users.
type PermissionService struct {
	Store store.Store
}

var permissionManagers = []domain.Permission{domain.PermissionAdmin, domain.PermissionPermissionUpdate}

// UpdatePermissions replaces the target user's permission set.
func (s *PermissionService) UpdatePermissions(ctx context.Context, callerID, userID string, raw []string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Parse before touching the store
	perms, bad, ok := domain.ParsePermissions(raw)
	if !ok {
		return domain.User{}, invalid(fmt.Sprintf("unknown permission %q", bad))
	}

	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 2. Authorize the caller
		caller, err := loadCaller(ctx, tx.Users(), callerID)
		if err != nil {
			return err
		}
		if err := RequirePermission(caller, permissionManagers...); err != nil {
			log.Warn("permission update denied", slog.String("caller_id", caller.ID), slog.String("user_id", userID))
			return err
		}

		// 3. Replace the target's set
		if err := tx.Users().UpdatePermissions(ctx, userID, perms); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		updated, err = tx.Users().GetUserByID(ctx, userID)
		return err
	})
	if err != nil {
		if !isClientError(err) {
			log.Error("failed to update permissions", slog.String("user_id", userID), slog.Any("error", err))
		}
		return domain.User{}, err
	}

	log.Info("permissions updated",
		slog.String("caller_id", callerID),
		slog.String("user_id", userID),
		slog.String("permissions", perms.Encode()),
	)
	return updated, nil
}

// ListUsers returns every user for the permissions page.
func (s *PermissionService) ListUsers(ctx context.Context, callerID string) ([]domain.User, error) {
	caller, err := loadCaller(ctx, s.Store.Users(), callerID)
	if err != nil {
		return nil, err
	}
	if err := RequirePermission(caller, permissionManagers...); err != nil {
		return nil, err
	}
	return s.Store.Users().ListUsers(ctx)
}

// isClientError reports whether err is one of the caller-facing sentinels.
func isClientError(err error) bool {
	for _, target := range []error{
		ErrAuthenticationRequired,
		ErrForbidden,
		ErrNotFound,
		ErrValidation,
		ErrInvalidOrExpiredToken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
