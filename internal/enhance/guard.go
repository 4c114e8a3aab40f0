package enhance

import (
	"context"
	"fmt"

	"github.com/xraph/beanforge/internal/definition"
	"github.com/xraph/beanforge/internal/errors"
	"github.com/xraph/beanforge/logger"
)

// BeanFactory is the part of the container the guard consults.
type BeanFactory interface {
	Definition(name string) (*definition.Definition, error)
	// Singleton returns a finished singleton without creating it.
	Singleton(name string) (any, bool)
	GetBean(ctx context.Context, name string) (any, error)
}

// Decision is the path the guard took for one call.
type Decision string

const (
	// DecisionPassthrough runs the body of a non-singleton bean method.
	DecisionPassthrough Decision = "passthrough"
	// DecisionCached returns a finished singleton.
	DecisionCached Decision = "cached"
	// DecisionInvoke runs the body of the authoritative invocation.
	DecisionInvoke Decision = "invoke"
	// DecisionDelegate asks the container for the bean.
	DecisionDelegate Decision = "delegate"
)

// DecisionObserver is notified of every guard decision.
type DecisionObserver func(unit, method string, decision Decision)

// Guard makes repeated calls to a singleton bean method of a full unit
// return the container's instance.
type Guard struct {
	factory  BeanFactory
	logger   logger.Logger
	observer DecisionObserver
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithGuardLogger sets the diagnostics logger.
func WithGuardLogger(l logger.Logger) GuardOption {
	return func(g *Guard) { g.logger = l }
}

// WithDecisionObserver registers a callback for guard decisions.
func WithDecisionObserver(o DecisionObserver) GuardOption {
	return func(g *Guard) { g.observer = o }
}

// NewGuard creates a guard backed by factory.
func NewGuard(factory BeanFactory, opts ...GuardOption) *Guard {
	g := &Guard{factory: factory, logger: logger.NewNoopLogger()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Intercept decides whether the call of m on unit runs body or returns the
// container's instance.
func (g *Guard) Intercept(ctx context.Context, unit string, m Method, body func(ctx context.Context) (any, error)) (any, error) {
	beanName := m.Bean()

	def, err := g.factory.Definition(beanName)
	if err != nil {
		g.logger.Error("bean method has no definition",
			logger.String("unit", unit),
			logger.String("method", m.Name),
			logger.BeanName(beanName),
		)
		return nil, errors.ErrConfigInconsistent(unit, m.Name)
	}

	if !def.IsSingleton() {
		g.observe(unit, m.Name, DecisionPassthrough)
		return body(ctx)
	}

	if instance, ok := g.factory.Singleton(beanName); ok {
		g.observe(unit, m.Name, DecisionCached)
		return instance, nil
	}

	if IsCurrentlyInvoked(ctx, unit, m.Name) {
		// a running body calling itself is a cycle
		if isRunning(ctx, unit, m.Name) {
			g.logger.Error("bean method calls itself",
				logger.String("unit", unit),
				logger.String("method", m.Name),
				logger.BeanName(beanName),
			)
			return nil, errors.ErrCircularDependency([]string{beanName, beanName})
		}
		g.observe(unit, m.Name, DecisionInvoke)
		return body(withRunning(ctx, Invocation{FactoryBean: unit, Method: m.Name}))
	}

	g.observe(unit, m.Name, DecisionDelegate)
	g.logger.Debug("delegating bean method call to container",
		logger.String("unit", unit),
		logger.String("method", m.Name),
		logger.BeanName(beanName),
	)
	return g.factory.GetBean(ctx, beanName)
}

func (g *Guard) observe(unit, method string, d Decision) {
	if g.observer != nil {
		g.observer(unit, method, d)
	}
}

type guardedDispatcher struct {
	unit    string
	methods map[string]Method
	guard   *Guard
}

// Wrap returns a dispatcher that sends every call on the full unit named
// unitName through guard.
func Wrap(unitName string, unit Unit, guard *Guard) Dispatcher {
	return &guardedDispatcher{
		unit:    unitName,
		methods: methodTable(unit),
		guard:   guard,
	}
}

func (d *guardedDispatcher) Call(ctx context.Context, name string) (any, error) {
	m, ok := d.methods[name]
	if !ok || m.Fn == nil {
		return nil, fmt.Errorf("unknown bean method %q on %s", name, d.unit)
	}
	return d.guard.Intercept(ctx, d.unit, m, func(ctx context.Context) (any, error) {
		return m.Fn(ctx, d)
	})
}
