package lifecycle

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of a Manager. A nil *Metrics
// records nothing.
type Metrics struct {
	Operations      *prometheus.CounterVec
	Events          *prometheus.CounterVec
	StorageErrors   *prometheus.CounterVec
	Phase           *prometheus.GaugeVec
	SignedIn        prometheus.Gauge
	StartupDuration prometheus.Histogram
}

// NewMetrics creates and registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sessionkit",
				Name:      "operations_total",
				Help:      "Session operations by name and result",
			},
			[]string{"operation", "result"}, // result=ok/error
		),
		Events: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sessionkit",
				Name:      "backend_events_total",
				Help:      "Identity backend events by kind and outcome",
			},
			[]string{"kind", "outcome"}, // outcome=applied/stale/failed
		),
		StorageErrors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sessionkit",
				Name:      "storage_errors_total",
				Help:      "Swallowed persisted session storage failures",
			},
			[]string{"operation"}, // operation=write/clear
		),
		Phase: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "sessionkit",
				Name:      "phase",
				Help:      "1 for the current manager phase, 0 otherwise",
			},
			[]string{"phase"},
		),
		SignedIn: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "sessionkit",
				Name:      "signed_in",
				Help:      "1 while a session is published",
			},
		),
		StartupDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "sessionkit",
				Name:      "startup_duration_seconds",
				Help:      "Duration of startup reconciliation",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

func (m *Metrics) operation(name string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Operations.WithLabelValues(name, result).Inc()
}

func (m *Metrics) event(kind, outcome string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) storageError(op string) {
	if m == nil {
		return
	}
	m.StorageErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) phase(p Phase) {
	if m == nil {
		return
	}
	for _, candidate := range []Phase{PhaseInitializing, PhaseReady, PhaseFailed, PhaseClosed} {
		v := 0.0
		if candidate == p {
			v = 1
		}
		m.Phase.WithLabelValues(candidate.String()).Set(v)
	}
}

func (m *Metrics) signedIn(v bool) {
	if m == nil {
		return
	}
	if v {
		m.SignedIn.Set(1)
		return
	}
	m.SignedIn.Set(0)
}

func (m *Metrics) startup(d time.Duration) {
	if m == nil {
		return
	}
	m.StartupDuration.Observe(d.Seconds())
}
