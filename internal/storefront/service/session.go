package service

import (
	"errors"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

var ErrInvalidSession = errors.New("invalid session")

// SessionService mints and verifies the stateless session credential. The
// secret lives inside Signer and Verifier; nothing here reads global state.
//
// Sessions cannot be revoked before they expire. Keep TTL short where that
// matters; the default mirrors the one-year cookie storefront clients expect.
type SessionService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	TTL       time.Duration
}

// Mint signs a session for u starting at now.
func (s *SessionService) Mint(u domain.User, now time.Time) (Session, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	claims := jwtx.NewSessionClaims(u.ID, s.Issuer, ttl, now)
	tok, err := s.Signer.Sign(claims)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, ExpiresAt: claims.ExpiresAt.Time, TTL: ttl}, nil
}

// Verify returns the user ID carried by a valid token.
func (s *SessionService) Verify(token string) (string, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return "", errors.Join(ErrInvalidSession, err)
	}
	return claims.Identity(), nil
}
