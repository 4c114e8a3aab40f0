package di

import (
	"context"
	"time"

	"github.com/xraph/beanforge/internal/definition"
)

// NameAware beans receive their bean name before initialization.
type NameAware interface {
	SetBeanName(name string)
}

// Initializer beans are initialized between the before-init and after-init
// interceptor phases.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Disposer singletons are disposed when the factory destroys its singletons,
// in reverse creation order.
type Disposer interface {
	Dispose(ctx context.Context) error
}

// Observer receives creation outcomes, typically to record metrics.
type Observer interface {
	BeanCreated(name string, scope definition.Scope, elapsed time.Duration)
	BeanFailed(name, phase string)
}

// Tracer opens a span around one bean creation. The returned function ends
// it with the creation's error.
type Tracer interface {
	StartCreation(ctx context.Context, name string, def *definition.Definition) (context.Context, func(err error))
}

type noopObserver struct{}

func (noopObserver) BeanCreated(string, definition.Scope, time.Duration) {}
func (noopObserver) BeanFailed(string, string)                            {}

type noopTracer struct{}

func (noopTracer) StartCreation(ctx context.Context, _ string, _ *definition.Definition) (context.Context, func(error)) {
	return ctx, func(error) {}
}
