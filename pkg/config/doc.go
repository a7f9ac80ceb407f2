// Package config loads typed configuration from environment variables.
//
// Load parses a struct annotated with `env` tags (github.com/caarlos0/env/v11)
// after loading a `.env` file once through github.com/joho/godotenv. Each
// configuration type is parsed at most once per process and served from a
// cache afterwards; Reset clears the cache for tests.
//
//	var cfg gotrue.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// LoadEnv loads additional dotenv files explicitly, for example a path given
// on the command line.
package config
