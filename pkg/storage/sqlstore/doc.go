// Package sqlstore implements storage.Storage on a database/sql table.
//
// Two dialects are supported: SQLite through the pure-Go modernc.org/sqlite
// driver and PostgreSQL through pgx. The kv_items table is created by goose
// from migrations embedded in the binary, so a fresh database file is usable
// right after Open:
//
//	db, err := sqlstore.OpenSQLite(ctx, "sessionkit.db")
//	if err != nil {
//		return err
//	}
//	store, err := sqlstore.New(ctx, db, sqlstore.DialectSQLite)
//
// Writes are single-statement upserts, so a reader never observes a partially
// written value.
package sqlstore
