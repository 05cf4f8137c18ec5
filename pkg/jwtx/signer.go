package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret accepted for signing sessions.
const MinSecretLength = 16

// Signer is anything that can sign session claims.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs claims with a shared HMAC secret.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 returns a signer for the given secret.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &HS256Signer{secret: secret}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign returns the compact JWS for claims.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

var ErrWeakSecret = errors.New("jwtx: signing secret too short")
