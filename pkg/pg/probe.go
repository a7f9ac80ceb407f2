package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const tableExistsQuery = `SELECT EXISTS (
	SELECT 1 FROM information_schema.tables
	WHERE table_schema = current_schema() AND table_name = $1
)`

// Probe returns a readiness check that pings pool and confirms every table in
// tables exists in the current schema, so a database whose migrations never
// ran reports unready instead of failing the first session write. Each call
// is bounded by cfg.PingTimeout.
func Probe(pool *pgxpool.Pool, cfg Config, tables ...string) func(context.Context) error {
	return func(ctx context.Context) error {
		if cfg.PingTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.PingTimeout)
			defer cancel()
		}

		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		for _, table := range tables {
			var found bool
			if err := pool.QueryRow(ctx, tableExistsQuery, table).Scan(&found); err != nil {
				return errors.Join(ErrHealthcheckFailed, err)
			}
			if !found {
				return errors.Join(ErrHealthcheckFailed, fmt.Errorf("%w: %s", ErrMissingTable, table))
			}
		}
		return nil
	}
}
