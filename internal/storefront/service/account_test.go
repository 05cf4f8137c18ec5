package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Signup(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sessions := newTestSessions(t)
	svc := &AccountService{Store: st, Sessions: sessions}

	u, sess, err := svc.Signup(ctx, "Wes", "  Wes@Example.COM ", "hunter22")
	require.NoError(t, err)
	require.Equal(t, "wes@example.com", u.Email)
	require.Equal(t, domain.Permissions{domain.PermissionUser}, u.Permissions)
	require.NotEqual(t, "hunter22", u.PasswordHash)

	id, err := sessions.Verify(sess.Token)
	require.NoError(t, err)
	require.Equal(t, u.ID, id)

	t.Run("duplicate email", func(t *testing.T) {
		_, _, err := svc.Signup(ctx, "Other", "wes@example.com", "pw")
		require.ErrorIs(t, err, ErrEmailTaken)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, _, err := svc.Signup(ctx, "", "a@example.com", "pw")
		require.ErrorIs(t, err, ErrValidation)
		_, _, err = svc.Signup(ctx, "A", "not-an-email", "pw")
		require.ErrorIs(t, err, ErrValidation)
		_, _, err = svc.Signup(ctx, "A", "a@example.com", "")
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestAccountService_Signin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sessions := newTestSessions(t)
	svc := &AccountService{Store: st, Sessions: sessions}
	seeded := seedUser(t, st, "wes@example.com", domain.PermissionUser)

	t.Run("success is case insensitive on email", func(t *testing.T) {
		u, sess, err := svc.Signin(ctx, "WES@example.com", "hunter22")
		require.NoError(t, err)
		require.Equal(t, seeded.ID, u.ID)

		id, err := sessions.Verify(sess.Token)
		require.NoError(t, err)
		require.Equal(t, seeded.ID, id)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Signin(ctx, "nobody@example.com", "hunter22")
		require.ErrorIs(t, err, ErrNoSuchUser)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Signin(ctx, "wes@example.com", "hunter23")
		require.ErrorIs(t, err, ErrInvalidPassword)
	})
}

func TestAccountService_CurrentUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AccountService{Store: st, Sessions: newTestSessions(t)}
	u := seedUser(t, st, "wes@example.com", domain.PermissionUser)

	got, err := svc.CurrentUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)

	_, err = svc.CurrentUser(ctx, "")
	require.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = svc.CurrentUser(ctx, "01HZZZZZZZZZZZZZZZZZZZZZZZ")
	require.ErrorIs(t, err, ErrAuthenticationRequired)

	require.Equal(t, SignoutMessage, svc.Signout(ctx, u.ID))
}
