package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string
	Email        string // lowercased, unique
	Name         string
	PasswordHash string // argon2id, or bcrypt for imported accounts
	Permissions  Permissions

	// ResetTokenHash and ResetTokenExpiry are both set or both nil.
	ResetTokenHash   *string
	ResetTokenExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPendingReset reports whether the user holds a reset token that is still
// valid at now.
func (u User) HasPendingReset(now time.Time) bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now)
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
