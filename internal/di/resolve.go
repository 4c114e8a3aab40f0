package di

import (
	"context"
	"fmt"

	"github.com/xraph/beanforge/internal/errors"
)

// Getter returns beans by name.
type Getter interface {
	GetBean(ctx context.Context, name string) (any, error)
}

// Resolve with type safety
func Resolve[T any](ctx context.Context, g Getter, name string) (T, error) {
	var zero T
	instance, err := g.GetBean(ctx, name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: bean %s is %T, not %T", errors.ErrTypeMismatch, name, instance, zero)
	}
	return typed, nil
}

// Must resolves or panics - use only during startup
func Must[T any](ctx context.Context, g Getter, name string) T {
	instance, err := Resolve[T](ctx, g, name)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", name, err))
	}
	return instance
}
