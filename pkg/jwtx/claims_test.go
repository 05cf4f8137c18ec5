package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewSessionClaims(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := jwtx.NewSessionClaims("01HUSER", "storefront", time.Hour, now)

	require.Equal(t, "01HUSER", c.Subject)
	require.Equal(t, "01HUSER", c.UserID)
	require.Equal(t, "storefront", c.Issuer)
	require.Equal(t, now, c.IssuedAt.Time)
	require.Equal(t, now.Add(time.Hour), c.ExpiresAt.Time)
}

func TestClaimsIdentity(t *testing.T) {
	c := jwtx.Claims{UserID: "legacy"}
	require.Equal(t, "legacy", c.Identity())

	c.Subject = "sub"
	require.Equal(t, "sub", c.Identity())
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "storefront"}}

	require.NoError(t, c.ValidateIssuer("storefront"))
	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("other"), jwtx.ErrIssuer)
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid", func(t *testing.T) {
		c := jwtx.NewSessionClaims("u", "", time.Minute, now)
		require.NoError(t, c.ValidateExpiry(now, 0))
	})

	t.Run("expired", func(t *testing.T) {
		c := jwtx.NewSessionClaims("u", "", time.Minute, now.Add(-2*time.Minute))
		require.ErrorIs(t, c.ValidateExpiry(now, 0), jwtx.ErrExpired)
	})

	t.Run("expired within leeway", func(t *testing.T) {
		c := jwtx.NewSessionClaims("u", "", time.Minute, now.Add(-61*time.Second))
		require.NoError(t, c.ValidateExpiry(now, 5*time.Second))
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := jwtx.NewSessionClaims("u", "", time.Minute, now)
		c.NotBefore = jwt.NewNumericDate(now.Add(time.Hour))
		require.ErrorIs(t, c.ValidateExpiry(now, 0), jwtx.ErrNotYetValid)
	})
}
