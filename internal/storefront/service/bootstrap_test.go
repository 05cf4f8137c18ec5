package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestBootstrapService(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &BootstrapService{Store: st, Token: "let-me-in"}

	done, err := svc.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, done)

	_, err = svc.Bootstrap(ctx, "wrong", "Admin", "admin@example.com", "pw")
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)

	admin, err := svc.Bootstrap(ctx, "let-me-in", "Admin", "Admin@Example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", admin.Email)
	require.True(t, admin.Permissions.Has(domain.PermissionAdmin))
	require.True(t, admin.Permissions.Has(domain.PermissionUser))
	require.NoError(t, cryptox.VerifyPassword("pw", admin.PasswordHash))

	done, err = svc.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.True(t, done)

	_, err = svc.Bootstrap(ctx, "let-me-in", "Again", "again@example.com", "pw")
	require.ErrorIs(t, err, ErrAlreadyBootstrapped)
}

func TestBootstrapService_DisabledWithoutToken(t *testing.T) {
	svc := &BootstrapService{Store: newTestStore(t)}
	_, err := svc.Bootstrap(context.Background(), "", "Admin", "admin@example.com", "pw")
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)
}
