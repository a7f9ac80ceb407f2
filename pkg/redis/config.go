package redis

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // redis://:password@host:6379/0
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
	PingTimeout    time.Duration `env:"REDIS_PING_TIMEOUT" envDefault:"2s"`
}

// Options parses ConnectionURL into client options.
func (c Config) Options() (*redis.Options, error) {
	if c.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}
	opts, err := redis.ParseURL(c.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	if c.PingTimeout > 0 {
		opts.ReadTimeout = c.PingTimeout
		opts.WriteTimeout = c.PingTimeout
	}
	return opts, nil
}
