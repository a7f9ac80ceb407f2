package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Probe returns a readiness check for the session record kept under key. It
// pings the server and, when key exists, confirms it holds a string value;
// any other type makes every session read fail with WRONGTYPE. An empty key
// skips the type check. Each call is bounded by cfg.PingTimeout.
func Probe(client redis.UniversalClient, cfg Config, key string) func(context.Context) error {
	return func(ctx context.Context) error {
		if cfg.PingTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.PingTimeout)
			defer cancel()
		}

		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if key == "" {
			return nil
		}

		typ, err := client.Type(ctx, key).Result()
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if typ != "none" && typ != "string" {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("%w: %q is a %s", ErrWrongKeyType, key, typ))
		}
		return nil
	}
}
