// Package redis connects to the Redis server that can back the persisted
// session when SESSION_STORAGE_DRIVER=redis.
//
// Connect parses a redis:// URL and pings the server, retrying a fixed number
// of times before giving up. Probe returns a readiness check that also
// verifies the session key has not been overwritten with a non-string value.
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Configuration is read from REDIS_URL, REDIS_RETRY_ATTEMPTS,
// REDIS_RETRY_INTERVAL, REDIS_CONNECT_TIMEOUT and REDIS_PING_TIMEOUT.
package redis
