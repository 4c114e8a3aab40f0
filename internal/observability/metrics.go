// Package observability records container activity as Prometheus metrics and
// OpenTelemetry spans.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/beanforge/internal/definition"
)

// MetricsConfig configures container metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace" validate:"required_if=Enabled true"`
}

// DefaultMetricsConfig returns the default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "beanforge",
	}
}

// Metrics holds the container's Prometheus collectors.
type Metrics struct {
	registry prometheus.Registerer

	beansCreated     *prometheus.CounterVec
	beanFailures     *prometheus.CounterVec
	creationDuration *prometheus.HistogramVec
	guardDecisions   *prometheus.CounterVec
	classifications  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with registerer. A nil
// registerer gets a fresh registry.
func NewMetrics(config MetricsConfig, registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}

	namespace := config.Namespace
	m := &Metrics{
		registry: registerer,
		beansCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "beans_created_total",
				Help:      "Total number of bean instances created",
			},
			[]string{"scope"},
		),
		beanFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bean_creation_failures_total",
				Help:      "Total number of failed bean creations",
			},
			[]string{"phase"},
		),
		creationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bean_creation_duration_seconds",
				Help:      "Time spent creating one bean, including its dependencies",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"scope"},
		),
		guardDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guard_decisions_total",
				Help:      "Bean method calls on full configuration units by outcome",
			},
			[]string{"decision"},
		),
		classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifications_total",
				Help:      "Definitions classified by configuration mode",
			},
			[]string{"mode"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.beansCreated,
		m.beanFailures,
		m.creationDuration,
		m.guardDecisions,
		m.classifications,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return m, nil
}

// Registerer returns the registerer the collectors were added to.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}

func (m *Metrics) BeanCreated(_ string, scope definition.Scope, elapsed time.Duration) {
	label := scopeLabel(scope)
	m.beansCreated.WithLabelValues(label).Inc()
	m.creationDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

func (m *Metrics) BeanFailed(_ string, phase string) {
	m.beanFailures.WithLabelValues(phase).Inc()
}

// GuardDecision counts one guard outcome.
func (m *Metrics) GuardDecision(decision string) {
	m.guardDecisions.WithLabelValues(decision).Inc()
}

// Classified counts one classification result.
func (m *Metrics) Classified(mode string) {
	m.classifications.WithLabelValues(mode).Inc()
}

func scopeLabel(scope definition.Scope) string {
	if scope == "" {
		return string(definition.ScopeSingleton)
	}
	return string(scope)
}
