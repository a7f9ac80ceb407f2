package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate applies all pending schema migrations.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	gd, err := dialect.goose()
	if err != nil {
		return err
	}

	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return errors.Join(ErrMigrateFailed, err)
	}

	provider, err := goose.NewProvider(gd, db, fsys)
	if err != nil {
		return errors.Join(ErrMigrateFailed, err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return errors.Join(ErrMigrateFailed, err)
	}
	return nil
}
