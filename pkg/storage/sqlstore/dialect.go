package sqlstore

import (
	"fmt"

	"github.com/pressly/goose/v3"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) goose() (goose.Dialect, error) {
	switch d {
	case DialectSQLite:
		return goose.DialectSQLite3, nil
	case DialectPostgres:
		return goose.DialectPostgres, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, string(d))
	}
}

type queries struct {
	get    string
	upsert string
	remove string
}

func (d Dialect) queries() (queries, error) {
	switch d {
	case DialectSQLite:
		return queries{
			get: `SELECT value FROM kv_items WHERE key = ?`,
			upsert: `INSERT INTO kv_items (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			remove: `DELETE FROM kv_items WHERE key = ?`,
		}, nil
	case DialectPostgres:
		return queries{
			get: `SELECT value FROM kv_items WHERE key = $1`,
			upsert: `INSERT INTO kv_items (key, value, updated_at) VALUES ($1, $2, $3)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			remove: `DELETE FROM kv_items WHERE key = $1`,
		}, nil
	default:
		return queries{}, fmt.Errorf("%w: %q", ErrUnknownDialect, string(d))
	}
}
