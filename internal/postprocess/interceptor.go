// Package postprocess holds the extension points run around bean creation:
// lifecycle interceptors that see every instance before and after its
// initialization, and factory-level interceptors that may adjust definitions
// before any instance exists.
package postprocess

import (
	"context"

	"github.com/xraph/beanforge/internal/definition"
	"github.com/xraph/beanforge/internal/errors"
)

// Result is the outcome of one interceptor step.
type Result struct {
	instance any
	stop     bool
}

// Replaced continues the chain with instance as the current bean. Returning
// the received instance unchanged is the usual pass-through.
func Replaced(instance any) Result {
	return Result{instance: instance}
}

// StopChain ends the current phase. The last real instance is kept.
func StopChain() Result {
	return Result{stop: true}
}

// Stopped reports whether the result ends the chain. A nil replacement also
// ends it.
func (r Result) Stopped() bool {
	return r.stop || r.instance == nil
}

// Instance returns the replacement instance.
func (r Result) Instance() any {
	return r.instance
}

// Interceptor is a named lifecycle interceptor. It must implement
// BeforeInitializer, AfterInitializer or InstantiationInterceptor.
type Interceptor interface {
	Name() string
}

// BeforeInitializer runs before the bean's own initialization callback.
type BeforeInitializer interface {
	BeforeInit(ctx context.Context, instance any, beanName string) (Result, error)
}

// AfterInitializer runs after the bean's own initialization callback.
type AfterInitializer interface {
	AfterInit(ctx context.Context, instance any, beanName string) (Result, error)
}

// InstantiationInterceptor may supply an instance before the container
// constructs one. Returning nil lets construction proceed.
type InstantiationInterceptor interface {
	BeforeInstantiation(ctx context.Context, def *definition.Definition, beanName string) (any, error)
}

// FactoryInterceptor runs once per refresh, after definitions are registered
// and before any instance is created. It may add, remove or adjust definitions.
type FactoryInterceptor interface {
	Name() string
	PostProcessDefinitions(ctx context.Context, registry definition.Registry) error
}

// InterceptorFunc is one phase of a function-backed interceptor.
type InterceptorFunc func(ctx context.Context, instance any, beanName string) (Result, error)

type funcInterceptor struct {
	name   string
	before InterceptorFunc
	after  InterceptorFunc
}

func (f *funcInterceptor) Name() string {
	return f.name
}

func (f *funcInterceptor) BeforeInit(ctx context.Context, instance any, beanName string) (Result, error) {
	if f.before == nil {
		return Replaced(instance), nil
	}
	return f.before(ctx, instance, beanName)
}

func (f *funcInterceptor) AfterInit(ctx context.Context, instance any, beanName string) (Result, error) {
	if f.after == nil {
		return Replaced(instance), nil
	}
	return f.after(ctx, instance, beanName)
}

// NewInterceptor creates a named interceptor from functions. Either phase may
// be nil, in which case it passes the instance through.
//
// Example:
//
//	audit := postprocess.NewInterceptor("audit", nil, func(ctx context.Context, bean any, name string) (postprocess.Result, error) {
//	    log.Printf("created %s", name)
//	    return postprocess.Replaced(bean), nil
//	})
func NewInterceptor(name string, before, after InterceptorFunc) Interceptor {
	return &funcInterceptor{name: name, before: before, after: after}
}

// Validate checks that i participates in at least one phase.
func Validate(i Interceptor) error {
	if i == nil {
		return errors.ErrInvalidInterceptor
	}
	switch i.(type) {
	case BeforeInitializer, AfterInitializer, InstantiationInterceptor:
		return nil
	default:
		return errors.ErrInvalidInterceptor
	}
}
