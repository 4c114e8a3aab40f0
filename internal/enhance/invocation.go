package enhance

import "context"

// Invocation names the factory method currently building a bean.
type Invocation struct {
	FactoryBean string
	Method      string
}

type invocationKey struct{}

// WithInvocation marks ctx as the authoritative call of method on factoryBean.
// The mark ends with the derived context, on return and on error alike.
func WithInvocation(ctx context.Context, factoryBean, method string) context.Context {
	return context.WithValue(ctx, invocationKey{}, Invocation{FactoryBean: factoryBean, Method: method})
}

// CurrentInvocation returns the factory method invocation carried by ctx.
func CurrentInvocation(ctx context.Context) (Invocation, bool) {
	inv, ok := ctx.Value(invocationKey{}).(Invocation)
	return inv, ok
}

// IsCurrentlyInvoked reports whether ctx carries the invocation of method on
// factoryBean.
func IsCurrentlyInvoked(ctx context.Context, factoryBean, method string) bool {
	inv, ok := CurrentInvocation(ctx)
	return ok && inv.FactoryBean == factoryBean && inv.Method == method
}

type runningKey struct{}

// withRunning marks ctx as inside the body of inv.
func withRunning(ctx context.Context, inv Invocation) context.Context {
	return context.WithValue(ctx, runningKey{}, inv)
}

func isRunning(ctx context.Context, factoryBean, method string) bool {
	inv, ok := ctx.Value(runningKey{}).(Invocation)
	return ok && inv.FactoryBean == factoryBean && inv.Method == method
}
