// Package metrics counts registry events with Prometheus. A Collector is both
// a decorator.Observer and a prometheus.Collector:
//
//	collector := metrics.New()
//	prometheus.MustRegister(collector)
//	reg := decorator.NewRegistry(decorator.WithObserver(collector))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-presenter/pkg/decorator"
)

const (
	OutcomeDirect   = "direct"
	OutcomeFallback = "fallback"
)

// Option configures a Collector.
type Option func(*config)

type config struct {
	namespace   string
	constLabels prometheus.Labels
}

// WithNamespace prefixes every metric name. The default is "presenter".
func WithNamespace(namespace string) Option {
	return func(c *config) {
		c.namespace = namespace
	}
}

// WithConstLabels attaches labels to every metric.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *config) {
		c.constLabels = labels
	}
}

// Collector records resolutions, failures, cache hits and constructions.
type Collector struct {
	resolutions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	decorations *prometheus.CounterVec
}

var _ decorator.Observer = (*Collector)(nil)
var _ prometheus.Collector = (*Collector)(nil)

// New builds an unregistered Collector.
func New(opts ...Option) *Collector {
	cfg := config{namespace: "presenter"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.constLabels,
		}, labels)
	}
	return &Collector{
		resolutions: counter("resolutions_total", "Presenter resolutions by model, version and outcome.", "model", "version", "decorator", "outcome"),
		failures:    counter("resolution_failures_total", "Resolutions that found no presenter.", "model", "version"),
		cacheHits:   counter("cache_hits_total", "Presenters served from a model's decoration cache.", "decorator"),
		decorations: counter("decorations_total", "Presenters constructed.", "decorator"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.resolutions.Describe(ch)
	c.failures.Describe(ch)
	c.cacheHits.Describe(ch)
	c.decorations.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.resolutions.Collect(ch)
	c.failures.Collect(ch)
	c.cacheHits.Collect(ch)
	c.decorations.Collect(ch)
}

func (c *Collector) Resolved(model, version, decorator string, fallback bool) {
	outcome := OutcomeDirect
	if fallback {
		outcome = OutcomeFallback
	}
	c.resolutions.WithLabelValues(model, version, decorator, outcome).Inc()
}

func (c *Collector) Unresolved(model, version string) {
	c.failures.WithLabelValues(model, version).Inc()
}

func (c *Collector) CacheHit(decorator string) {
	c.cacheHits.WithLabelValues(decorator).Inc()
}

func (c *Collector) Decorated(decorator string) {
	c.decorations.WithLabelValues(decorator).Inc()
}

// Resolutions exposes the resolution counter, mainly for tests.
func (c *Collector) Resolutions() *prometheus.CounterVec { return c.resolutions }

// Failures exposes the failure counter.
func (c *Collector) Failures() *prometheus.CounterVec { return c.failures }

// CacheHits exposes the cache hit counter.
func (c *Collector) CacheHits() *prometheus.CounterVec { return c.cacheHits }

// Decorations exposes the construction counter.
func (c *Collector) Decorations() *prometheus.CounterVec { return c.decorations }
