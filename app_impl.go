package beanforge

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/xraph/beanforge/internal/configclass"
	"github.com/xraph/beanforge/internal/definition"
	"github.com/xraph/beanforge/internal/di"
	"github.com/xraph/beanforge/internal/enhance"
	"github.com/xraph/beanforge/internal/errors"
	"github.com/xraph/beanforge/internal/metadata"
	"github.com/xraph/beanforge/internal/observability"
	"github.com/xraph/beanforge/internal/postprocess"
	"github.com/xraph/beanforge/logger"
)

var (
	interceptorType        = reflect.TypeOf((*postprocess.Interceptor)(nil)).Elem()
	beforeInitType         = reflect.TypeOf((*postprocess.BeforeInitializer)(nil)).Elem()
	afterInitType          = reflect.TypeOf((*postprocess.AfterInitializer)(nil)).Elem()
	instantiationType      = reflect.TypeOf((*postprocess.InstantiationInterceptor)(nil)).Elem()
	factoryInterceptorType = reflect.TypeOf((*postprocess.FactoryInterceptor)(nil)).Elem()
)

func isFactoryInterceptor(t reflect.Type) bool {
	return t.Implements(factoryInterceptorType)
}

func isLifecycleInterceptor(t reflect.Type) bool {
	if !t.Implements(interceptorType) {
		return false
	}
	return t.Implements(beforeInitType) || t.Implements(afterInitType) || t.Implements(instantiationType)
}

type app struct {
	id     string
	config Config
	logger logger.Logger

	registry           *definition.MemoryRegistry
	lifecycle          *postprocess.Registry[postprocess.Interceptor]
	factoryInterceptor *postprocess.Registry[postprocess.FactoryInterceptor]
	processor          *configclass.Processor
	factory            *di.Factory

	tracer *observability.Tracer

	// lifecycleMu serializes Refresh and Close.
	lifecycleMu sync.Mutex

	mu    sync.RWMutex
	state state
}

type state int

const (
	stateInactive state = iota
	stateRefreshing
	stateActive
)

func newApp(opts ...Option) (*app, error) {
	o := &options{config: DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}
	cfg := o.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()

	l := o.logger
	if l == nil {
		l = logger.NewLogger(cfg.Logging)
	}
	l = l.With(logger.String("container_id", id))

	reader, err := buildReader(o.reader, cfg.Descriptors)
	if err != nil {
		return nil, err
	}

	a := &app{
		id:                 id,
		config:             cfg,
		logger:             l,
		registry:           definition.NewRegistry(cfg.AllowDefinitionOverriding),
		lifecycle:          postprocess.NewRegistry[postprocess.Interceptor](),
		factoryInterceptor: postprocess.NewRegistry[postprocess.FactoryInterceptor](),
	}

	classifierOpts := []configclass.Option{
		configclass.WithReader(reader),
		configclass.WithIntrospector(enhance.Introspect),
		configclass.WithLogger(l.Named("classifier")),
	}
	factoryOpts := []di.Option{di.WithLogger(l.Named("factory"))}

	if o.metrics || cfg.Metrics.Enabled {
		if cfg.Metrics.Namespace == "" {
			cfg.Metrics.Namespace = observability.DefaultMetricsConfig().Namespace
		}
		m, err := observability.NewMetrics(cfg.Metrics, o.registerer)
		if err != nil {
			return nil, err
		}
		classifierOpts = append(classifierOpts, configclass.WithObserver(func(_ string, tag configclass.Tag) {
			m.Classified(tag.String())
		}))
		factoryOpts = append(factoryOpts,
			di.WithObserver(m),
			di.WithGuardOptions(enhance.WithDecisionObserver(func(_, _ string, d enhance.Decision) {
				m.GuardDecision(string(d))
			})),
		)
	}

	if o.tracing || cfg.Tracing.Enabled {
		a.tracer = observability.NewTracer(o.tracerProvider, cfg.Tracing, id)
		factoryOpts = append(factoryOpts, di.WithTracer(a.tracer))
	}

	a.processor = configclass.NewProcessor(configclass.NewClassifier(classifierOpts...), l.Named("processor"))
	a.factoryInterceptor.Register(a.processor)
	a.factory = di.NewFactory(a.registry, postprocess.NewInvoker(a.lifecycle, l.Named("interceptors")), factoryOpts...)

	return a, nil
}

// buildReader consults custom first, then the descriptors loaded from paths.
func buildReader(custom metadata.Reader, paths []string) (metadata.Reader, error) {
	store := metadata.NewDescriptorStore()
	for _, path := range paths {
		if err := store.LoadFile(path); err != nil {
			return nil, errors.ErrConfigError("failed to load class descriptors", err)
		}
	}
	if custom == nil {
		return store, nil
	}
	if store.Len() == 0 {
		return custom, nil
	}
	return metadata.ReaderFunc(func(className string) (metadata.View, error) {
		view, err := custom.Read(className)
		if err == nil {
			return view, nil
		}
		if fallback, ferr := store.Read(className); ferr == nil {
			return fallback, nil
		}
		return nil, err
	}), nil
}

func (a *app) ID() string            { return a.id }
func (a *app) Logger() logger.Logger { return a.logger }
func (a *app) Config() Config        { return a.config }
func (a *app) BeanNames() []string   { return a.registry.Names() }

func (a *app) Definition(name string) (*Definition, error) {
	return a.registry.Definition(name)
}

func (a *app) Register(name string, instance any) error {
	if instance == nil {
		return errors.ErrInvalidDefinition(name, "instance is nil")
	}
	return a.RegisterDefinition(name, definition.ForValue(instance))
}

func (a *app) RegisterUnit(name string, unit Unit) error {
	if unit == nil {
		return errors.ErrInvalidDefinition(name, "unit is nil")
	}
	def := definition.ForValue(unit)
	desc, err := enhance.Describe(def.ClassName, unit)
	if err != nil {
		return errors.ErrInvalidDefinition(name, err.Error())
	}
	def.Metadata = desc
	return a.RegisterDefinition(name, def)
}

func (a *app) RegisterDefinition(name string, def *Definition) error {
	if err := a.registry.RegisterDefinition(name, def); err != nil {
		return err
	}
	a.logger.Debug("definition registered",
		logger.BeanName(name),
		logger.String("class", def.ClassName),
	)
	return nil
}

// AddLifecycleInterceptor registers i for every bean created from now on.
// Adding an interceptor that is already registered moves it to the end of
// its order bucket.
func (a *app) AddLifecycleInterceptor(i Interceptor) error {
	if err := postprocess.Validate(i); err != nil {
		return err
	}
	a.lifecycle.Register(i)
	return nil
}

func (a *app) AddFactoryInterceptor(i FactoryInterceptor) error {
	if i == nil {
		return fmt.Errorf("%w: factory interceptor is nil", errors.ErrInvalidInterceptor)
	}

	if a.currentState() != stateInactive {
		return errors.ErrContainerState("add factory interceptor", errors.ErrContainerActive)
	}

	a.factoryInterceptor.Register(i)
	return nil
}

func (a *app) IsActive() bool {
	return a.currentState() == stateActive
}

func (a *app) currentState() state {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *app) setState(s state) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Refresh runs the factory interceptors over the registered definitions,
// registers lifecycle interceptors declared as beans and creates every
// non-lazy singleton. A failed refresh destroys what it created. Beans may be
// looked up while the refresh is running.
func (a *app) Refresh(ctx context.Context) (err error) {
	a.lifecycleMu.Lock()
	defer a.lifecycleMu.Unlock()

	if a.currentState() != stateInactive {
		return errors.ErrContainerState("refresh", errors.ErrContainerActive)
	}
	a.setState(stateRefreshing)

	if a.tracer != nil {
		var end func(error)
		ctx, end = a.tracer.StartRefresh(ctx)
		defer func() { end(err) }()
	}

	start := time.Now()
	a.logger.Debug("refreshing container", logger.Int("definitions", a.registry.Len()))

	if err := a.refresh(ctx); err != nil {
		a.logger.Error("container refresh failed", logger.Error(err))
		err = multierr.Append(err, a.reset(ctx))
		a.setState(stateInactive)
		return err
	}

	a.setState(stateActive)
	a.logger.Info("container refreshed",
		logger.Int("definitions", a.registry.Len()),
		logger.Int("singletons", len(a.factory.SingletonNames())),
		logger.Strings("units", a.processor.Visited()),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (a *app) refresh(ctx context.Context) error {
	if err := postprocess.ApplyFactoryInterceptors(ctx, a.factoryInterceptor.OrderedView(), a.registry, a.logger); err != nil {
		return err
	}

	declaredFactory, err := discover[postprocess.FactoryInterceptor](ctx, a, "factory", isFactoryInterceptor)
	if err != nil {
		return err
	}
	if err := postprocess.ApplyFactoryInterceptors(ctx, declaredFactory, a.registry, a.logger); err != nil {
		return err
	}

	declared, err := discover[postprocess.Interceptor](ctx, a, "lifecycle", isLifecycleInterceptor)
	if err != nil {
		return err
	}
	for _, i := range declared {
		if err := postprocess.Validate(i); err != nil {
			return err
		}
		a.lifecycle.Register(i)
	}

	if !a.config.PreInstantiate {
		return nil
	}
	return a.factory.PreInstantiateSingletons(ctx)
}

// discover instantiates the definitions whose type matches and returns them
// in priority, order, registration order.
func discover[T any](ctx context.Context, a *app, kind string, matches func(reflect.Type) bool) ([]T, error) {
	found := postprocess.NewRegistry[T]()
	for _, name := range a.registry.Names() {
		def, err := a.registry.Definition(name)
		if err != nil || def.Type == nil || !matches(def.Type) {
			continue
		}

		bean, err := a.factory.GetBean(ctx, name)
		if err != nil {
			return nil, err
		}
		typed, ok := bean.(T)
		if !ok {
			return nil, fmt.Errorf("%w: bean %s is %T", errors.ErrTypeMismatch, name, bean)
		}
		found.Register(typed)
		a.logger.Debug("interceptor discovered",
			logger.BeanName(name),
			logger.String("kind", kind),
		)
	}
	return found.OrderedView(), nil
}

func (a *app) Bean(ctx context.Context, name string) (any, error) {
	if a.currentState() == stateInactive {
		return nil, errors.ErrContainerState("get bean "+name, errors.ErrContainerClosed)
	}
	return a.factory.GetBean(ctx, name)
}

func (a *app) Dispatcher(ctx context.Context, unitName string) (Dispatcher, error) {
	if a.currentState() == stateInactive {
		return nil, errors.ErrContainerState("dispatch "+unitName, errors.ErrContainerClosed)
	}
	return a.factory.Dispatcher(ctx, unitName)
}

// Close disposes singletons in reverse creation order and returns the
// container to its registered state, so it can be refreshed again.
// Interceptors do not survive a Close and must be added again.
func (a *app) Close(ctx context.Context) error {
	a.lifecycleMu.Lock()
	defer a.lifecycleMu.Unlock()

	if a.currentState() != stateActive {
		return errors.ErrContainerState("close", errors.ErrContainerClosed)
	}
	a.setState(stateInactive)

	if err := a.reset(ctx); err != nil {
		a.logger.Warn("container closed with errors", logger.Error(err))
		return err
	}
	a.logger.Info("container closed")
	return nil
}

// reset destroys singletons, drops the definitions derived from bean methods,
// clears classification results and discards every interceptor except the
// built-in configuration processor.
func (a *app) reset(ctx context.Context) error {
	err := a.factory.DestroySingletons(ctx)

	for _, name := range a.registry.Names() {
		def, derr := a.registry.Definition(name)
		if derr != nil {
			continue
		}
		if _, derived := def.Attribute(configclass.AttrDerivedFrom); derived {
			_ = a.registry.RemoveDefinition(name)
			continue
		}
		def.RemoveAttribute(configclass.AttrConfigurationClass)
		def.RemoveAttribute(configclass.AttrOrder)
	}

	a.lifecycle.Clear()
	a.factoryInterceptor.Clear()
	a.factoryInterceptor.Register(a.processor)

	return err
}
