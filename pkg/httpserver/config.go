package httpserver

import "time"

type Config struct {
	Addr            string        `env:"METRICS_ADDR"` // empty disables the endpoint
	ReadTimeout     time.Duration `env:"METRICS_READ_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"METRICS_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Enabled reports whether an address was configured.
func (c Config) Enabled() bool {
	return c.Addr != ""
}

func NewFromConfig(cfg Config, opts ...Option) *Server {
	configOpts := make([]Option, 0, 3+len(opts))
	if cfg.Addr != "" {
		configOpts = append(configOpts, WithAddr(cfg.Addr))
	}
	if cfg.ReadTimeout > 0 {
		configOpts = append(configOpts, WithReadTimeout(cfg.ReadTimeout))
	}
	if cfg.ShutdownTimeout > 0 {
		configOpts = append(configOpts, WithShutdownTimeout(cfg.ShutdownTimeout))
	}
	return New(append(configOpts, opts...)...)
}
