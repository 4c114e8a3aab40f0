// Package beanforge is the lifecycle core of a dependency-injection container.
//
// It classifies registered definitions as full or lite configuration units,
// registers one definition per bean method of every unit, runs ordered
// lifecycle interceptors around every created bean and makes direct calls
// between the bean methods of a full unit share the container's singletons.
package beanforge

import (
	"context"
	"fmt"

	"github.com/xraph/beanforge/internal/di"
	"github.com/xraph/beanforge/internal/enhance"
	"github.com/xraph/beanforge/logger"
)

// App is a container instance. Every registry it uses is owned by the App.
type App interface {
	// ID identifies the container in logs, spans and metrics.
	ID() string
	Logger() logger.Logger
	Config() Config

	// Registration
	Register(name string, instance any) error
	RegisterUnit(name string, unit Unit) error
	RegisterDefinition(name string, def *Definition) error
	AddLifecycleInterceptor(i Interceptor) error
	AddFactoryInterceptor(i FactoryInterceptor) error

	// Lifecycle
	Refresh(ctx context.Context) error
	IsActive() bool
	Close(ctx context.Context) error

	// Lookup
	Bean(ctx context.Context, name string) (any, error)
	Dispatcher(ctx context.Context, unitName string) (Dispatcher, error)
	Definition(name string) (*Definition, error)
	BeanNames() []string
}

// New creates an inactive container. Call Refresh before looking up beans.
func New(opts ...Option) (App, error) {
	return newApp(opts...)
}

// MustNew creates a container or panics.
func MustNew(opts ...Option) App {
	a, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("beanforge: %v", err))
	}
	return a
}

type beanGetter func(ctx context.Context, name string) (any, error)

func (g beanGetter) GetBean(ctx context.Context, name string) (any, error) {
	return g(ctx, name)
}

// Get returns the bean named name as T.
func Get[T any](ctx context.Context, app App, name string) (T, error) {
	return di.Resolve[T](ctx, beanGetter(app.Bean), name)
}

// MustGet returns the bean named name as T or panics. Use only during startup.
func MustGet[T any](ctx context.Context, app App, name string) T {
	return di.Must[T](ctx, beanGetter(app.Bean), name)
}

// Call invokes a bean method of the unit registered as unitName. Calls on a
// full unit return the container's instance for singleton targets.
func Call[T any](ctx context.Context, app App, unitName, method string) (T, error) {
	var zero T
	d, err := app.Dispatcher(ctx, unitName)
	if err != nil {
		return zero, err
	}
	return enhance.Call[T](ctx, d, method)
}

// CallMethod invokes a sibling bean method from inside a method body. On a
// full unit the call observes the container's singletons.
func CallMethod[T any](ctx context.Context, self Dispatcher, method string) (T, error) {
	return enhance.Call[T](ctx, self, method)
}
