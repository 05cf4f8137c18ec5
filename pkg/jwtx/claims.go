package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL matches the lifetime of the session cookie.
const DefaultSessionTTL = 365 * 24 * time.Hour

// Claims are the session claims carried in the storefront cookie.
type Claims struct {
	jwt.RegisteredClaims

	// UserID duplicates "sub" under the name older storefront clients read.
	UserID string `json:"userId"`
}

// NewSessionClaims builds claims for a user session starting at now.
func NewSessionClaims(userID, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	}
}

// Identity returns the user the token was minted for.
func (c *Claims) Identity() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.UserID
}

// ValidateIssuer checks the issuer when one is expected.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" || c.Issuer == expected {
		return nil
	}
	return ErrIssuer
}

// ValidateExpiry ensures the token hasn't expired, allowing leeway for clock skew.
func (c *Claims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
