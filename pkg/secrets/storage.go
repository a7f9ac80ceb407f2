package secrets

import (
	"context"
	"errors"

	"github.com/dmitrymomot/sessionkit/pkg/storage"
)

// SealedStorage encrypts values before they reach the wrapped storage.
type SealedStorage struct {
	inner storage.Storage
	box   *Box
}

var _ storage.Storage = (*SealedStorage)(nil)

func NewSealedStorage(inner storage.Storage, box *Box) *SealedStorage {
	return &SealedStorage{inner: inner, box: box}
}

// GetItem reports values that fail to open as read errors.
func (s *SealedStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	sealed, ok, err := s.inner.GetItem(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	value, err := s.box.OpenString(sealed, []byte(key))
	if err != nil {
		return "", false, errors.Join(storage.ErrReadFailed, err)
	}
	return value, true, nil
}

func (s *SealedStorage) SetItem(ctx context.Context, key, value string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	sealed, err := s.box.SealString(value, []byte(key))
	if err != nil {
		return errors.Join(storage.ErrWriteFailed, err)
	}
	return s.inner.SetItem(ctx, key, sealed)
}

func (s *SealedStorage) RemoveItem(ctx context.Context, key string) error {
	return s.inner.RemoveItem(ctx, key)
}
