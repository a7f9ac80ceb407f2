// Package storage provides the string key/value surface used to persist the
// client session, together with in-memory and file-backed implementations.
//
// Every backend implements Storage:
//
//	GetItem(ctx, key) (value string, ok bool, err error)
//	SetItem(ctx, key, value) error
//	RemoveItem(ctx, key) error
//
// GetItem reports ok=false for a missing key; err is reserved for backend
// failures. RemoveItem on a missing key is not an error. Empty keys are
// rejected with ErrInvalidKey by every implementation.
//
// MemoryStorage keeps values in process memory and is used when persistence
// is disabled. FileStorage keeps one file per key in a directory. Writes go to
// a temporary file that is fsynced and renamed over the target, so readers see
// either the previous or the new value, never a partial one. Operations hold
// an exclusive lock on <dir>/.lock, which serializes several processes
// sharing the same directory.
//
// Redis and SQL backends live in the redisstore and sqlstore subpackages.
package storage
