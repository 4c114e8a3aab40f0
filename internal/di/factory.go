package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/xraph/beanforge/internal/configclass"
	"github.com/xraph/beanforge/internal/definition"
	"github.com/xraph/beanforge/internal/enhance"
	"github.com/xraph/beanforge/internal/errors"
	"github.com/xraph/beanforge/internal/postprocess"
	"github.com/xraph/beanforge/logger"
)

// Factory creates beans from definitions and owns the singleton registry.
type Factory struct {
	registry  definition.Registry
	invoker   *postprocess.Invoker
	guard     *enhance.Guard
	guardOpts []enhance.GuardOption
	logger    logger.Logger
	observer  Observer
	tracer    Tracer

	// flight collapses concurrent first accesses of one singleton;
	// createMu serializes singleton creation across call paths.
	flight   singleflight.Group
	createMu sync.Mutex

	mu          sync.RWMutex
	singletons  map[string]any
	dispatchers map[string]enhance.Dispatcher
	inCreation  map[string]int
	created     []string
	disposers   []disposable
}

type disposable struct {
	name     string
	disposer Disposer
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the factory logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Factory) { f.logger = l }
}

// WithObserver sets the creation observer.
func WithObserver(o Observer) Option {
	return func(f *Factory) { f.observer = o }
}

// WithTracer sets the creation tracer.
func WithTracer(t Tracer) Option {
	return func(f *Factory) { f.tracer = t }
}

// WithGuardOptions configures the guard used for full units.
func WithGuardOptions(opts ...enhance.GuardOption) Option {
	return func(f *Factory) { f.guardOpts = append(f.guardOpts, opts...) }
}

// NewFactory creates a factory over registry. Lifecycle interceptors are run
// through invoker.
func NewFactory(registry definition.Registry, invoker *postprocess.Invoker, opts ...Option) *Factory {
	f := &Factory{
		registry:    registry,
		invoker:     invoker,
		logger:      logger.NewNoopLogger(),
		observer:    noopObserver{},
		tracer:      noopTracer{},
		singletons:  make(map[string]any),
		dispatchers: make(map[string]enhance.Dispatcher),
		inCreation:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(f)
	}

	guardOpts := append([]enhance.GuardOption{enhance.WithGuardLogger(f.logger)}, f.guardOpts...)
	f.guard = enhance.NewGuard(f, guardOpts...)

	return f
}

// Definition returns the registered definition of name.
func (f *Factory) Definition(name string) (*definition.Definition, error) {
	return f.registry.Definition(name)
}

// Singleton returns a finished singleton without creating it.
func (f *Factory) Singleton(name string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.singletons[name]
	return v, ok
}

// SingletonNames returns the names of finished singletons in creation order.
func (f *Factory) SingletonNames() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.created...)
}

// IsCurrentlyInCreation reports whether name is being built on any call path.
func (f *Factory) IsCurrentlyInCreation(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.inCreation[name] > 0
}

// GetBean returns the bean registered under name, creating it if needed.
// Singletons are created once, however many callers ask concurrently.
func (f *Factory) GetBean(ctx context.Context, name string) (any, error) {
	def, err := f.registry.Definition(name)
	if err != nil {
		return nil, err
	}

	chain := creationChain(ctx)
	if inChain(chain, name) {
		cycle := append(append([]string(nil), chain...), name)
		return nil, errors.ErrCircularDependency(cycle)
	}

	if !def.IsSingleton() {
		if !def.IsPrototype() {
			return nil, errors.ErrInvalidDefinition(name, fmt.Sprintf("unsupported scope %q", def.Scope))
		}
		return f.create(ctx, name, def)
	}

	if v, ok := f.Singleton(name); ok {
		return v, nil
	}

	if f.holdsCreationLock(ctx) {
		return f.createSingleton(ctx, name, def)
	}

	// waiters share one flight; it runs detached from the first caller's cancellation
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := f.flight.Do(name, func() (any, error) {
		f.createMu.Lock()
		defer f.createMu.Unlock()
		return f.createSingleton(f.withCreationLock(flightCtx), name, def)
	})
	return v, err
}

func (f *Factory) createSingleton(ctx context.Context, name string, def *definition.Definition) (any, error) {
	if v, ok := f.Singleton(name); ok {
		return v, nil
	}

	instance, err := f.create(ctx, name, def)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.singletons[name] = instance
	f.created = append(f.created, name)
	if d, ok := instance.(Disposer); ok {
		f.disposers = append(f.disposers, disposable{name: name, disposer: d})
	}
	f.mu.Unlock()

	return instance, nil
}

func (f *Factory) create(ctx context.Context, name string, def *definition.Definition) (any, error) {
	ctx = withCreation(ctx, name)
	ctx, end := f.tracer.StartCreation(ctx, name, def)
	start := time.Now()

	f.markInCreation(name)
	defer f.unmarkInCreation(name)

	instance, err := f.build(ctx, name, def)
	end(err)

	if err != nil {
		phase := errors.PhaseInstantiate
		var ce *errors.CreationError
		if errors.As(err, &ce) && ce.Bean == name {
			phase = ce.Phase
		}
		f.observer.BeanFailed(name, phase)

		if len(creationChain(ctx)) == 1 {
			f.logger.Error("bean creation failed",
				logger.BeanName(name),
				logger.String("phase", phase),
				logger.Error(err),
			)
		}
		return nil, err
	}

	elapsed := time.Since(start)
	f.observer.BeanCreated(name, def.Scope, elapsed)
	f.logger.Debug("bean created",
		logger.BeanName(name),
		logger.String("scope", string(def.Scope)),
		logger.Duration("elapsed", elapsed),
	)

	return instance, nil
}

// build runs the creation steps for one bean.
func (f *Factory) build(ctx context.Context, name string, def *definition.Definition) (any, error) {
	for _, dep := range def.DependsOn {
		if _, err := f.GetBean(ctx, dep); err != nil {
			return nil, errors.NewCreationError(name, errors.PhaseInstantiate, fmt.Errorf("depends on %s: %w", dep, err))
		}
	}

	supplied, err := f.invoker.ApplyBeforeInstantiation(ctx, def, name)
	if err != nil {
		return nil, err
	}
	if supplied != nil {
		return f.invoker.ApplyAfterInit(ctx, supplied, name)
	}

	raw, err := f.instantiate(ctx, name, def)
	if err != nil {
		return nil, errors.NewCreationError(name, errors.PhaseInstantiate, err)
	}
	if raw == nil {
		return nil, errors.NewCreationError(name, errors.PhaseInstantiate, errors.ErrNilInstance)
	}

	if aware, ok := raw.(NameAware); ok {
		aware.SetBeanName(name)
	}

	current, err := f.invoker.ApplyBeforeInit(ctx, raw, name)
	if err != nil {
		return nil, err
	}

	if init, ok := current.(Initializer); ok {
		if err := init.Initialize(ctx); err != nil {
			return nil, errors.NewCreationError(name, errors.PhaseInit, err)
		}
	}

	return f.invoker.ApplyAfterInit(ctx, current, name)
}

func (f *Factory) instantiate(ctx context.Context, name string, def *definition.Definition) (any, error) {
	if def.HasFactoryMethod() {
		d, err := f.Dispatcher(ctx, def.FactoryBeanName)
		if err != nil {
			return nil, err
		}
		return d.Call(enhance.WithInvocation(ctx, def.FactoryBeanName, def.FactoryMethodName), def.FactoryMethodName)
	}

	if def.Supplier == nil {
		return nil, errors.ErrInvalidDefinition(name, "definition has no supplier")
	}
	return def.Supplier(ctx)
}

// Dispatcher returns the dispatcher of the unit bean unitName. Full units get
// a guarded dispatcher; every other unit gets a plain one.
func (f *Factory) Dispatcher(ctx context.Context, unitName string) (enhance.Dispatcher, error) {
	f.mu.RLock()
	d, ok := f.dispatchers[unitName]
	f.mu.RUnlock()
	if ok {
		return d, nil
	}

	unitDef, err := f.registry.Definition(unitName)
	if err != nil {
		return nil, err
	}

	instance, err := f.GetBean(ctx, unitName)
	if err != nil {
		return nil, err
	}

	unit, ok := instance.(enhance.Unit)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", errors.ErrNotAUnit, unitName, instance)
	}

	if configclass.IsFullConfigurationClass(unitDef) {
		d = enhance.Wrap(unitName, unit, f.guard)
	} else {
		d = enhance.Plain(unit)
	}

	if unitDef.IsSingleton() {
		f.mu.Lock()
		f.dispatchers[unitName] = d
		f.mu.Unlock()
	}

	return d, nil
}

// PreInstantiateSingletons creates every non-lazy singleton. Beans follow
// their depends-on targets and factory units; otherwise registration order
// is kept.
func (f *Factory) PreInstantiateSingletons(ctx context.Context) error {
	graph := NewDependencyGraph()
	for _, name := range f.registry.Names() {
		def, err := f.registry.Definition(name)
		if err != nil {
			continue
		}
		deps := append([]string(nil), def.DependsOn...)
		if def.HasFactoryMethod() {
			deps = append(deps, def.FactoryBeanName)
		}
		graph.AddNode(name, deps)
	}

	order, err := graph.TopologicalSort()
	if err != nil {
		return err
	}

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return err
		}

		def, err := f.registry.Definition(name)
		if err != nil {
			continue
		}
		if !def.IsSingleton() || def.Lazy {
			continue
		}

		if _, err := f.GetBean(ctx, name); err != nil {
			return err
		}
	}

	f.logger.Debug("singletons pre-instantiated", logger.Int("count", len(f.SingletonNames())))
	return nil
}

// DestroySingletons disposes singletons in reverse creation order and clears
// the registry. Every disposer runs; failures are combined.
func (f *Factory) DestroySingletons(ctx context.Context) error {
	f.mu.Lock()
	disposers := f.disposers
	f.singletons = make(map[string]any)
	f.dispatchers = make(map[string]enhance.Dispatcher)
	f.created = nil
	f.disposers = nil
	f.mu.Unlock()

	var errs error
	for i := len(disposers) - 1; i >= 0; i-- {
		d := disposers[i]
		if err := d.disposer.Dispose(ctx); err != nil {
			f.logger.Warn("failed to dispose bean",
				logger.BeanName(d.name),
				logger.Error(err),
			)
			errs = multierr.Append(errs, fmt.Errorf("dispose %s: %w", d.name, err))
		}
	}

	return errs
}

func (f *Factory) markInCreation(name string) {
	f.mu.Lock()
	f.inCreation[name]++
	f.mu.Unlock()
}

func (f *Factory) unmarkInCreation(name string) {
	f.mu.Lock()
	f.inCreation[name]--
	if f.inCreation[name] <= 0 {
		delete(f.inCreation, name)
	}
	f.mu.Unlock()
}
