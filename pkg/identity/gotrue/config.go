package gotrue

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is loaded from the environment with config.Load.
type Config struct {
	URL           string        `env:"AUTH_URL,required"`      // project URL, e.g. https://xyz.supabase.co
	AnonKey       string        `env:"AUTH_ANON_KEY,required"` // sent as the apikey header
	HTTPTimeout   time.Duration `env:"AUTH_HTTP_TIMEOUT" envDefault:"10s"`
	AutoRefresh   bool          `env:"AUTH_AUTO_REFRESH" envDefault:"true"`
	RefreshTick   time.Duration `env:"AUTH_REFRESH_TICK" envDefault:"30s"`
	RefreshMargin time.Duration `env:"AUTH_REFRESH_MARGIN" envDefault:"90s"`
}

func (c Config) endpoint() (string, error) {
	if c.URL == "" {
		return "", fmt.Errorf("%w: URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidConfig)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if c.AnonKey == "" {
		return "", fmt.Errorf("%w: anon key is required", ErrInvalidConfig)
	}
	return strings.TrimRight(u.String(), "/") + "/auth/v1", nil
}
