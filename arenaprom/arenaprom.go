// Package arenaprom exports stackarena events as Prometheus metrics.
package arenaprom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pavanmanishd/stackarena"
)

// DefaultNamespace prefixes every metric name unless WithNamespace is used.
const DefaultNamespace = "stackarena"

// Option configures an Observer.
type Option func(*config)

type config struct {
	namespace   string
	constLabels prometheus.Labels
}

// WithNamespace sets the metric name prefix.
func WithNamespace(ns string) Option {
	return func(c *config) {
		c.namespace = ns
	}
}

// WithConstLabels attaches fixed labels, e.g. an arena name, to every metric.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *config) {
		c.constLabels = labels
	}
}

// Observer implements stackarena.Observer on top of Prometheus collectors.
type Observer struct {
	allocs    *prometheus.CounterVec
	frees     *prometheus.CounterVec
	requested *prometheus.CounterVec
	used      prometheus.Gauge
}

var _ stackarena.Observer = (*Observer)(nil)

// New creates an Observer and registers its collectors with reg.
// A nil reg selects prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, opts ...Option) (*Observer, error) {
	cfg := config{namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(&cfg)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &Observer{
		allocs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "allocations_total",
			Help:        "Arena allocations by outcome (local, fallback, failed).",
			ConstLabels: cfg.constLabels,
		}, []string{"outcome"}),
		frees: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "deallocations_total",
			Help:        "Arena deallocations by outcome (reclaimed, shadowed, fallback).",
			ConstLabels: cfg.constLabels,
		}, []string{"outcome"}),
		requested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "requested_bytes_total",
			Help:        "Bytes requested from or returned to the arena.",
			ConstLabels: cfg.constLabels,
		}, []string{"op"}),
		used: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.namespace,
			Name:        "used_bytes",
			Help:        "Arena bytes in front of the cursor after the last operation.",
			ConstLabels: cfg.constLabels,
		}),
	}

	for _, c := range []prometheus.Collector{o.allocs, o.frees, o.requested, o.used} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Observe records e.
func (o *Observer) Observe(e stackarena.Event) {
	switch e.Op {
	case stackarena.OpAlloc:
		o.allocs.WithLabelValues(e.Outcome.String()).Inc()
	case stackarena.OpFree:
		o.frees.WithLabelValues(e.Outcome.String()).Inc()
	}
	if e.Requested > 0 {
		o.requested.WithLabelValues(e.Op.String()).Add(float64(e.Requested))
	}
	o.used.Set(float64(e.Used))
}
