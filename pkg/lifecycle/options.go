package lifecycle

import (
	"log/slog"

	"github.com/dmitrymomot/sessionkit/pkg/session"
	"github.com/dmitrymomot/sessionkit/pkg/sessioncache"
)

type Option func(*Manager)

// WithCache shares an existing cache. By default the manager creates one.
func WithCache(c *sessioncache.Cache) Option {
	return func(m *Manager) {
		if c != nil {
			m.cache = c
		}
	}
}

// WithValidator sets the validator used for every liveness check.
func WithValidator(v *session.Validator) Option {
	return func(m *Manager) {
		if v != nil {
			m.validator = v
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics records manager activity. Metrics are off by default.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}
