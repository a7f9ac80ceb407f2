package storage

import (
	"context"
	"strings"
)

// Storage is a durable string key/value store.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Driver names a storage backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverRedis    Driver = "redis"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver maps a case-insensitive name to a Driver.
func ParseDriver(name string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(name))); d {
	case DriverMemory, DriverFile, DriverRedis, DriverSQLite, DriverPostgres:
		return d, nil
	case "":
		return DriverFile, nil
	default:
		return "", ErrUnknownDriver
	}
}

// Config selects and configures the storage backend for the persisted session.
type Config struct {
	Driver      string `env:"SESSION_STORAGE_DRIVER" envDefault:"file"`
	Dir         string `env:"SESSION_STORAGE_DIR" envDefault:".sessionkit"`
	SQLitePath  string `env:"SESSION_STORAGE_SQLITE_PATH" envDefault:"sessionkit.db"`
	Key         string `env:"SESSION_STORAGE_KEY" envDefault:"sessionkit.auth.session"`
	RedisPrefix string `env:"SESSION_STORAGE_REDIS_PREFIX" envDefault:"sessionkit:"`
	Persist     bool   `env:"SESSION_PERSIST" envDefault:"true"`

	// EncryptionKey is a base64 32-byte key. When set, records are sealed
	// before they reach the backend.
	EncryptionKey string `env:"SESSION_ENCRYPTION_KEY"`
}

// EffectiveDriver returns the configured driver, or DriverMemory when
// persistence is turned off.
func (c Config) EffectiveDriver() (Driver, error) {
	if !c.Persist {
		return DriverMemory, nil
	}
	return ParseDriver(c.Driver)
}

func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}
