package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/storage"
)

// DefaultKey is the storage key holding the persisted record.
const DefaultKey = "sessionkit.auth.session"

// Store reads and writes the persisted session record. It never decides
// liveness and never surfaces storage failures on Read.
type Store struct {
	backend storage.Storage
	key     string
	logger  *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey overrides the storage key. Empty keys are ignored.
func WithKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithStoreLogger sets the logger used for swallowed storage failures.
func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a Store on top of backend.
func NewStore(backend storage.Storage, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("session.store"), logger.Key(s.key))
	return s
}

// Key returns the storage key used by the store.
func (s *Store) Key() string {
	return s.key
}

// Read returns the persisted session, which may be expired. Storage errors
// are logged and reported as absent. An undecodable record is removed.
func (s *Store) Read(ctx context.Context) (*Session, bool) {
	raw, ok, err := s.backend.GetItem(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read persisted session", logger.Error(err))
		return nil, false
	}
	if !ok || raw == "" {
		return nil, false
	}

	sess, err := Decode(raw)
	if err != nil {
		s.logger.DebugContext(ctx, "discarding undecodable session record", logger.Error(err))
		if err := s.backend.RemoveItem(ctx, s.key); err != nil {
			s.logger.WarnContext(ctx, "failed to remove undecodable session record", logger.Error(err))
		}
		return nil, false
	}
	return sess, true
}

// Write persists sess, replacing any previous record.
func (s *Store) Write(ctx context.Context, sess *Session) error {
	raw, err := Encode(sess)
	if err != nil {
		return err
	}
	return s.backend.SetItem(ctx, s.key, raw)
}

// Clear removes the persisted record. Clearing an absent record is not an error.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.RemoveItem(ctx, s.key)
}
