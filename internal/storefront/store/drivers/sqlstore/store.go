// Package sqlstore implements the storefront repositories on top of sqlx so
// the sqlite and postgres drivers share one set of queries. Queries are
// written with '?' placeholders and rebound for the connection's dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/jmoiron/sqlx"
)

// UniqueViolationFunc reports whether err is a unique constraint violation in
// the driver's dialect.
type UniqueViolationFunc func(error) bool

// Store is the dialect-neutral part of a driver. Drivers embed it and add
// ApplyMigrations.
type Store struct {
	db       *sqlx.DB
	isUnique UniqueViolationFunc
}

func New(db *sqlx.DB, isUnique UniqueViolationFunc) *Store {
	return &Store{db: db, isUnique: isUnique}
}

// DB exposes the underlying handle for migrations.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Close() error                   { return s.db.Close() }
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Users() store.Users { return &usersRepo{db: s.db, isUnique: s.isUnique} }
func (s *Store) Items() store.Items { return &itemsRepo{db: s.db} }

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, isUnique: s.isUnique}, nil
}

// WithTx runs fn in a transaction, rolling back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type txStore struct {
	tx       *sqlx.Tx
	isUnique UniqueViolationFunc
}

func (t *txStore) Users() store.Users { return &usersRepo{db: t.tx, isUnique: t.isUnique} }
func (t *txStore) Items() store.Items { return &itemsRepo{db: t.tx} }

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Nested transactions are not supported.
func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }
func (t *txStore) WithTx(context.Context, func(store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error     { return nil }
func (t *txStore) Close() error               { return nil }
func (t *txStore) Ping(context.Context) error { return nil }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// expectOne turns an UPDATE/DELETE that touched no rows into ErrNotFound.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
