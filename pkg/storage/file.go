package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const lockFileName = ".lock"

// FileStorage stores each key in its own file inside a directory.
type FileStorage struct {
	dir string
	mu  sync.Mutex
}

// NewFileStorage creates dir with 0700 permissions when missing.
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, ErrMissingDir
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Join(ErrWriteFailed, err)
	}
	return &FileStorage{dir: dir}, nil
}

// Dir returns the directory backing the storage.
func (f *FileStorage) Dir() string {
	return f.dir
}

func (f *FileStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	var (
		value string
		found bool
	)
	err := f.withLock(ctx, func() error {
		data, err := os.ReadFile(f.path(key))
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return errors.Join(ErrReadFailed, err)
		}
		value, found = string(data), true
		return nil
	})
	return value, found, err
}

func (f *FileStorage) SetItem(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return f.withLock(ctx, func() error {
		if err := writeFileAtomic(f.dir, f.path(key), []byte(value)); err != nil {
			return errors.Join(ErrWriteFailed, err)
		}
		return nil
	})
}

func (f *FileStorage) RemoveItem(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return f.withLock(ctx, func() error {
		err := os.Remove(f.path(key))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrRemoveFailed, err)
		}
		syncDir(f.dir)
		return nil
	})
}

// path maps a key to a file name that cannot escape the directory.
func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, base64.RawURLEncoding.EncodeToString([]byte(key))+".item")
}

func (f *FileStorage) withLock(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	lf, err := os.OpenFile(filepath.Join(f.dir, lockFileName), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return errors.Join(ErrLockFailed, err)
	}
	defer lf.Close()

	if err := lockFile(lf); err != nil {
		return errors.Join(ErrLockFailed, err)
	}
	defer unlockFile(lf) //nolint:errcheck

	return fn()
}

func writeFileAtomic(dir, target string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := tmp.Chmod(0o600); err != nil && !errors.Is(err, errors.ErrUnsupported) {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return err
	}
	syncDir(dir)
	return nil
}
