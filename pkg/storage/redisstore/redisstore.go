// Package redisstore implements storage.Storage on top of Redis.
package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionkit/pkg/storage"
)

// Store keeps items under prefix+key.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL expires items after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, storage.ErrInvalidKey
	}
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Join(storage.ErrReadFailed, err)
	}
	return v, true, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return errors.Join(storage.ErrWriteFailed, err)
	}
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(storage.ErrRemoveFailed, err)
	}
	return nil
}
