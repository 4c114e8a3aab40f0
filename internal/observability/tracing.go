package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/xraph/beanforge/internal/definition"
)

const instrumentationName = "github.com/xraph/beanforge"

// TracingConfig configures container tracing.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	ServiceName string `yaml:"serviceName" json:"serviceName" validate:"required_if=Enabled true"`
}

// DefaultTracingConfig returns the default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		Enabled:     false,
		ServiceName: "beanforge",
	}
}

// Tracer opens spans for bean creation and container refresh.
type Tracer struct {
	tracer      oteltrace.Tracer
	containerID string
	service     string
}

// NewTracer creates a tracer from provider. A nil provider uses the global one.
func NewTracer(provider oteltrace.TracerProvider, config TracingConfig, containerID string) *Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracer{
		tracer:      provider.Tracer(instrumentationName),
		containerID: containerID,
		service:     config.ServiceName,
	}
}

// StartCreation opens a span for one bean creation. Nested creations become
// child spans.
func (t *Tracer) StartCreation(ctx context.Context, name string, def *definition.Definition) (context.Context, func(error)) {
	attrs := []attribute.KeyValue{
		attribute.String("bean.name", name),
		attribute.String("bean.scope", scopeLabel(def.Scope)),
		attribute.String("beanforge.container_id", t.containerID),
	}
	if def.ClassName != "" {
		attrs = append(attrs, attribute.String("bean.class", def.ClassName))
	}
	if def.HasFactoryMethod() {
		attrs = append(attrs,
			attribute.String("bean.factory_bean", def.FactoryBeanName),
			attribute.String("bean.factory_method", def.FactoryMethodName),
		)
	}

	ctx, span := t.tracer.Start(ctx, "beanforge.create "+name, oteltrace.WithAttributes(attrs...))
	return ctx, func(err error) { finish(span, err) }
}

// StartRefresh opens the span covering one container refresh.
func (t *Tracer) StartRefresh(ctx context.Context) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, "beanforge.refresh", oteltrace.WithAttributes(
		attribute.String("beanforge.container_id", t.containerID),
		attribute.String("service.name", t.service),
	))
	return ctx, func(err error) { finish(span, err) }
}

func finish(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
