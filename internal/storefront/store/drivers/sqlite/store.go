package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/sqlstore"
	"github.com/jmoiron/sqlx"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func init() {
	// sqlx only knows the cgo driver name; modernc registers as "sqlite".
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// FileDSN returns the DSN for an on-disk database. Write transactions start
// with BEGIN IMMEDIATE so they wait on busy_timeout instead of failing with
// SQLITE_BUSY when a read lock cannot be upgraded.
func FileDSN(path string) string {
	return fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
}

type Store struct {
	*sqlstore.Store
	dsn string
}

// NewStore opens a modernc sqlite database. In-memory databases are pinned to
// a single connection so every query sees the same database.
func NewStore(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{Store: sqlstore.New(db, isUniqueViolation), dsn: dsn}, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
