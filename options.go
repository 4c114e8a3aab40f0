package beanforge

import (
	"github.com/prometheus/client_golang/prometheus"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/xraph/beanforge/internal/metadata"
	"github.com/xraph/beanforge/logger"
)

type options struct {
	config         Config
	logger         logger.Logger
	reader         metadata.Reader
	metrics        bool
	registerer     prometheus.Registerer
	tracing        bool
	tracerProvider oteltrace.TracerProvider
}

// Option configures New.
type Option func(*options)

// WithConfig replaces the default configuration.
func WithConfig(config Config) Option {
	return func(o *options) { o.config = config }
}

// WithLogger sets the container logger. Without it a logger is built from
// Config.Logging.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetadataReader sets the reader used for classes known only by name. It
// is consulted before descriptors loaded from Config.Descriptors.
func WithMetadataReader(r metadata.Reader) Option {
	return func(o *options) { o.reader = r }
}

// WithMetrics enables metrics and registers the collectors with registerer.
// A nil registerer gets a private registry.
func WithMetrics(registerer prometheus.Registerer) Option {
	return func(o *options) {
		o.metrics = true
		o.registerer = registerer
	}
}

// WithTracerProvider enables tracing through provider.
func WithTracerProvider(provider oteltrace.TracerProvider) Option {
	return func(o *options) {
		o.tracing = true
		o.tracerProvider = provider
	}
}
