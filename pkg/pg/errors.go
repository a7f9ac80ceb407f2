package pg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEmptyConnectionString = errors.New("pg.empty_connection_string")
	ErrInvalidConfig         = errors.New("pg.invalid_config")
	ErrConnectionFailed      = errors.New("pg.connection_failed")
	ErrHealthcheckFailed     = errors.New("pg.healthcheck_failed")
	ErrMissingTable          = errors.New("pg.missing_table")
)

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
