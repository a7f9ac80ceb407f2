package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/requestid"
)

// Probe reports an error when a dependency is not ready.
type Probe func(context.Context) error

// OpsHandler serves metrics from g and the health endpoints.
func OpsHandler(g prometheus.Gatherer, log *slog.Logger, probes ...Probe) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	})
	mux.HandleFunc("GET /readyz", ReadinessHandler(log, probes...))
	return requestid.Middleware(mux)
}

// ReadinessHandler runs probes in order and stops at the first failure.
func ReadinessHandler(log *slog.Logger, probes ...Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		for _, probe := range probes {
			if err := probe(ctx); err != nil {
				log.WarnContext(ctx, "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
