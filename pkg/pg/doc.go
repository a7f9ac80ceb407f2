// Package pg connects to PostgreSQL through a pgx connection pool. It is
// used when the persisted session lives in Postgres
// (SESSION_STORAGE_DRIVER=postgres).
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//	db := pg.OpenDB(pool) // database/sql view over the same pool
//
// Connect retries with a linearly growing delay so several clients starting
// together do not hammer the server in lockstep. Probe is the readiness check
// for a pool; pass it the tables the caller depends on.
package pg
