package storage

import "errors"

var (
	ErrInvalidKey      = errors.New("storage.invalid_key")
	ErrUnknownDriver   = errors.New("storage.unknown_driver")
	ErrMissingDir      = errors.New("storage.missing_dir")
	ErrLockFailed      = errors.New("storage.lock_failed")
	ErrReadFailed      = errors.New("storage.read_failed")
	ErrWriteFailed     = errors.New("storage.write_failed")
	ErrRemoveFailed    = errors.New("storage.remove_failed")
	ErrStorageDisabled = errors.New("storage.disabled")
)
