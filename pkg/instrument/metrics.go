package instrument

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the runtime metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "inplace").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for mount and reconcile duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// Gatherer serves the /metrics endpoint.
	// Default: the Registry when it is a *prometheus.Registry, otherwise
	// prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// MetricsOption configures the runtime metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry. A *prometheus.Registry is also
// used as the gatherer for Handler.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
		if g, ok := registry.(prometheus.Gatherer); ok {
			c.Gatherer = g
		}
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "inplace",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
		Gatherer:  prometheus.DefaultGatherer,
	}
}

// Metrics holds the Prometheus collectors of one runtime.
// All methods are safe on a nil receiver.
type Metrics struct {
	gatherer prometheus.Gatherer

	mountsTotal       *prometheus.CounterVec
	mountDuration     prometheus.Histogram
	reconcilesTotal   prometheus.Counter
	reconcileDuration prometheus.Histogram
	patchesTotal      *prometheus.CounterVec
	driftTotal        prometheus.Counter
	slotMismatches    prometheus.Counter
	notifications     prometheus.Counter
	eventsTotal       *prometheus.CounterVec
	liveSessions      prometheus.Gauge
}

// NewMetrics registers the runtime collectors.
//
// Metrics collected:
//   - inplace_mounts_total: Counter of mounts by component and status
//   - inplace_mount_duration_seconds: Histogram of mount duration
//   - inplace_reconciles_total: Counter of reconciliations
//   - inplace_reconcile_duration_seconds: Histogram of reconcile duration
//   - inplace_patches_total: Counter of applied patches by op
//   - inplace_shape_drift_total: Counter of structural drift warnings
//   - inplace_slot_mismatches_total: Counter of slot/child count mismatches
//   - inplace_change_notifications_total: Counter of state change notifications
//   - inplace_events_total: Counter of dispatched events by type and status
//   - inplace_live_sessions: Gauge of connected preview sessions
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		gatherer: config.Gatherer,

		mountsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounts_total",
			Help:        "Total number of component mounts",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "status"}),

		mountDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mount_duration_seconds",
			Help:        "Component mount duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		reconcilesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reconciles_total",
			Help:        "Total number of in-place reconciliations",
			ConstLabels: config.ConstLabels,
		}),

		reconcileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reconcile_duration_seconds",
			Help:        "Reconciliation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		patchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_total",
			Help:        "Total number of patches applied to live structures",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		driftTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "shape_drift_total",
			Help:        "Total number of structural shape drift warnings",
			ConstLabels: config.ConstLabels,
		}),

		slotMismatches: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "slot_mismatches_total",
			Help:        "Total number of placeholder/child count mismatches",
			ConstLabels: config.ConstLabels,
		}),

		notifications: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "change_notifications_total",
			Help:        "Total number of state change notifications",
			ConstLabels: config.ConstLabels,
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of dispatched events",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "status"}),

		liveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_sessions",
			Help:        "Number of connected live preview sessions",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordMount records one component mount.
func (m *Metrics) RecordMount(component string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.mountsTotal.WithLabelValues(component, status(err)).Inc()
	m.mountDuration.Observe(d.Seconds())
}

// RecordReconcile records one reconciliation and its duration.
func (m *Metrics) RecordReconcile(d time.Duration) {
	if m == nil {
		return
	}
	m.reconcilesTotal.Inc()
	m.reconcileDuration.Observe(d.Seconds())
}

// RecordPatch records one applied patch.
func (m *Metrics) RecordPatch(op string) {
	if m == nil {
		return
	}
	m.patchesTotal.WithLabelValues(op).Inc()
}

// RecordDrift records n structural drift warnings.
func (m *Metrics) RecordDrift(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.driftTotal.Add(float64(n))
}

// RecordSlotMismatch records a placeholder/child count mismatch.
func (m *Metrics) RecordSlotMismatch() {
	if m == nil {
		return
	}
	m.slotMismatches.Inc()
}

// RecordNotification records a state change notification.
func (m *Metrics) RecordNotification() {
	if m == nil {
		return
	}
	m.notifications.Inc()
}

// RecordEvent records one dispatched event.
func (m *Metrics) RecordEvent(event string, err error) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(event, status(err)).Inc()
}

// SessionOpened increments the live session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.liveSessions.Inc()
}

// SessionClosed decrements the live session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.liveSessions.Dec()
}

// Handler serves the gathered metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
