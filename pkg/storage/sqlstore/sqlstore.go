package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/sessionkit/pkg/pg"
	"github.com/dmitrymomot/sessionkit/pkg/storage"
)

// Table holds one row per stored item.
const Table = "kv_items"

// Store is a storage.Storage backed by the kv_items table.
type Store struct {
	db  *sql.DB
	q   queries
	now func() time.Time
}

type Option func(*Store)

// WithClock sets the clock used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New migrates db and returns a Store using it.
func New(ctx context.Context, db *sql.DB, dialect Dialect, opts ...Option) (*Store, error) {
	q, err := dialect.queries()
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db, dialect); err != nil {
		return nil, err
	}

	s := &Store{db: db, q: q, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// OpenSQLite opens (and creates if needed) the SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Join(ErrOpenFailed, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpenFailed, err)
	}
	return db, nil
}

// NewPostgres builds a Store over a pgx pool. The returned *sql.DB must be
// closed by the caller before the pool.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, opts ...Option) (*Store, *sql.DB, error) {
	db := pg.OpenDB(pool)
	s, err := New(ctx, db, DialectPostgres, opts...)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return s, db, nil
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, storage.ErrInvalidKey
	}
	var value string
	err := s.db.QueryRowContext(ctx, s.q.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Join(storage.ErrReadFailed, err)
	}
	return value, true, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	if _, err := s.db.ExecContext(ctx, s.q.upsert, key, value, s.now().Unix()); err != nil {
		return errors.Join(storage.ErrWriteFailed, err)
	}
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	if _, err := s.db.ExecContext(ctx, s.q.remove, key); err != nil {
		return errors.Join(storage.ErrRemoveFailed, err)
	}
	return nil
}
