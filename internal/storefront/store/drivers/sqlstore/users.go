package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, name, password_hash, permissions,
	reset_token_hash, reset_token_expiry, created_at, updated_at`

type userRow struct {
	ID               string         `db:"id"`
	Email            string         `db:"email"`
	Name             string         `db:"name"`
	PasswordHash     string         `db:"password_hash"`
	Permissions      string         `db:"permissions"`
	ResetTokenHash   sql.NullString `db:"reset_token_hash"`
	ResetTokenExpiry sql.NullTime   `db:"reset_token_expiry"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r userRow) toDomain() domain.User {
	u := domain.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		Permissions:  domain.DecodePermissions(r.Permissions),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	// Both or neither; a half-set pair is treated as absent.
	if r.ResetTokenHash.Valid && r.ResetTokenExpiry.Valid {
		hash := r.ResetTokenHash.String
		exp := r.ResetTokenExpiry.Time.UTC()
		u.ResetTokenHash = &hash
		u.ResetTokenExpiry = &exp
	}
	return u
}

type usersRepo struct {
	db       sqlx.ExtContext
	isUnique UniqueViolationFunc
}

func (r *usersRepo) getOne(ctx context.Context, where string, args ...any) (domain.User, error) {
	var row userRow
	q := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + where)
	if err := sqlx.GetContext(ctx, r.db, &row, q, args...); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `email = ?`, email)
}

func (r *usersRepo) GetUserByResetTokenHash(
	ctx context.Context,
	hash string,
	notBefore time.Time,
) (domain.User, error) {
	return r.getOne(ctx, `reset_token_hash = ? AND reset_token_expiry > ?`, hash, notBefore.UTC())
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	q := `SELECT ` + userColumns + ` FROM users ORDER BY email`
	if err := sqlx.SelectContext(ctx, r.db, &rows, q); err != nil {
		return nil, err
	}
	out := make([]domain.User, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	q := r.db.Rebind(`INSERT INTO users
		(id, email, name, password_hash, permissions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Permissions.Encode(),
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	if err != nil && r.isUnique != nil && r.isUnique(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *usersRepo) UpdatePermissions(ctx context.Context, userID string, perms domain.Permissions) error {
	q := r.db.Rebind(`UPDATE users SET permissions = ?, updated_at = ? WHERE id = ?`)
	return expectOne(r.db.ExecContext(ctx, q, perms.Encode(), time.Now().UTC(), userID))
}

func (r *usersRepo) SetResetToken(ctx context.Context, userID, hash string, expiry time.Time) error {
	q := r.db.Rebind(`UPDATE users
		SET reset_token_hash = ?, reset_token_expiry = ?, updated_at = ?
		WHERE id = ?`)
	return expectOne(r.db.ExecContext(ctx, q, hash, expiry.UTC(), time.Now().UTC(), userID))
}

func (r *usersRepo) ConsumeResetToken(ctx context.Context, userID, hash, newPasswordHash string) error {
	q := r.db.Rebind(`UPDATE users
		SET password_hash = ?, reset_token_hash = NULL, reset_token_expiry = NULL, updated_at = ?
		WHERE id = ? AND reset_token_hash = ?`)
	return expectOne(r.db.ExecContext(ctx, q, newPasswordHash, time.Now().UTC(), userID, hash))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return false, err
	}
	return n == 0, nil
}
