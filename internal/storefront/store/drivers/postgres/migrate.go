package postgres

import (
	"context"

	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// ApplyMigrations runs the embedded goose migrations.
func (s *Store) ApplyMigrations() error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(context.Background(), s.DB().DB, ".")
}
