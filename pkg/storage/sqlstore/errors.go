package sqlstore

import "errors"

var (
	ErrUnknownDialect = errors.New("sqlstore.unknown_dialect")
	ErrOpenFailed     = errors.New("sqlstore.open_failed")
	ErrMigrateFailed  = errors.New("sqlstore.migrate_failed")
)
