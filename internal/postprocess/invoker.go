package postprocess

import (
	"context"
	"fmt"

	"github.com/xraph/beanforge/internal/definition"
	"github.com/xraph/beanforge/internal/errors"
	"github.com/xraph/beanforge/logger"
)

// Invoker runs the registered lifecycle interceptors for one bean at a time.
type Invoker struct {
	interceptors *Registry[Interceptor]
	logger       logger.Logger
}

// NewInvoker creates an invoker over the given registry.
func NewInvoker(interceptors *Registry[Interceptor], l logger.Logger) *Invoker {
	if l == nil {
		l = logger.NewNoopLogger()
	}
	return &Invoker{interceptors: interceptors, logger: l}
}

// ApplyBeforeInit feeds instance through every BeforeInitializer in order.
func (v *Invoker) ApplyBeforeInit(ctx context.Context, instance any, beanName string) (any, error) {
	return v.apply(ctx, instance, beanName, errors.PhaseBeforeInit, func(i Interceptor, current any) (Result, bool, error) {
		b, ok := i.(BeforeInitializer)
		if !ok {
			return Result{}, false, nil
		}
		res, err := b.BeforeInit(ctx, current, beanName)
		return res, true, err
	})
}

// ApplyAfterInit feeds instance through every AfterInitializer in order.
func (v *Invoker) ApplyAfterInit(ctx context.Context, instance any, beanName string) (any, error) {
	return v.apply(ctx, instance, beanName, errors.PhaseAfterInit, func(i Interceptor, current any) (Result, bool, error) {
		a, ok := i.(AfterInitializer)
		if !ok {
			return Result{}, false, nil
		}
		res, err := a.AfterInit(ctx, current, beanName)
		return res, true, err
	})
}

// ApplyBeforeInstantiation asks each InstantiationInterceptor in order for an
// instance. The first non-nil instance wins; nil means construct normally.
func (v *Invoker) ApplyBeforeInstantiation(ctx context.Context, def *definition.Definition, beanName string) (any, error) {
	for _, i := range v.interceptors.OrderedView() {
		ii, ok := i.(InstantiationInterceptor)
		if !ok {
			continue
		}

		instance, err := ii.BeforeInstantiation(ctx, def, beanName)
		if err != nil {
			return nil, errors.NewInterceptorError(beanName, errors.PhaseBeforeInstantiate, i.Name(), err)
		}
		if instance != nil {
			v.logger.Debug("instance supplied before instantiation",
				logger.BeanName(beanName),
				logger.String("interceptor", i.Name()),
			)
			return instance, nil
		}
	}
	return nil, nil
}

type step func(i Interceptor, current any) (res Result, applies bool, err error)

func (v *Invoker) apply(ctx context.Context, instance any, beanName, phase string, run step) (any, error) {
	current := instance

	for _, i := range v.interceptors.OrderedView() {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCreationError(beanName, phase, err)
		}

		res, applies, err := run(i, current)
		if !applies {
			continue
		}
		if err != nil {
			return nil, errors.NewInterceptorError(beanName, phase, i.Name(), err)
		}
		if res.Stopped() {
			v.logger.Debug("interceptor chain stopped",
				logger.BeanName(beanName),
				logger.String("phase", phase),
				logger.String("interceptor", i.Name()),
			)
			return current, nil
		}
		current = res.Instance()
	}

	return current, nil
}

// ApplyFactoryInterceptors runs every factory-level interceptor in precedence
// order. The first failure stops the run.
func ApplyFactoryInterceptors(ctx context.Context, interceptors []FactoryInterceptor, registry definition.Registry, l logger.Logger) error {
	for _, fi := range interceptors {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.Debug("running factory interceptor",
			logger.String("interceptor", fi.Name()),
			logger.Int("definitions", registry.Len()),
		)

		if err := fi.PostProcessDefinitions(ctx, registry); err != nil {
			l.Error("factory interceptor failed",
				logger.String("interceptor", fi.Name()),
				logger.Error(err),
			)
			return errors.NewInterceptorError("", errors.PhaseFactoryInterceptor, fi.Name(), fmt.Errorf("post-processing definitions: %w", err))
		}
	}
	return nil
}
