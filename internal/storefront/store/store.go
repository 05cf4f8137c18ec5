package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by the sqlite and
// postgres drivers. Repositories hang off it so a Tx exposes the same surface
// and nested transactions are impossible by construction.
type Store interface {
	Users() Users
	Items() Items

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByResetTokenHash matches only tokens expiring strictly after notBefore.
	GetUserByResetTokenHash(ctx context.Context, hash string, notBefore time.Time) (domain.User, error)

	// ListUsers returns every user ordered by email.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	UpdatePermissions(ctx context.Context, userID string, perms domain.Permissions) error

	// SetResetToken stores a token fingerprint and expiry, replacing any
	// previous pair.
	SetResetToken(ctx context.Context, userID, hash string, expiry time.Time) error

	// ConsumeResetToken sets the password hash and clears the reset pair only
	// while the stored fingerprint still equals hash. It returns ErrNotFound
	// when no row changed, so at most one caller wins per token.
	ConsumeResetToken(ctx context.Context, userID, hash, newPasswordHash string) error

	IsEmpty(ctx context.Context) (bool, error)
}

type Items interface {
	GetItemByID(ctx context.Context, id string) (domain.Item, error)

	// ListItems returns items newest first.
	ListItems(ctx context.Context, limit, offset int) ([]domain.Item, error)

	CreateItem(ctx context.Context, it domain.Item) error

	// UpdateItem applies a partial update and bumps updated_at.
	UpdateItem(ctx context.Context, id string, upd domain.ItemUpdate) error

	DeleteItem(ctx context.Context, id string) error
}
