package di

import "context"

type chainKey struct{}

type lockKey struct{}

// creationChain returns the bean names being created on the current call path.
func creationChain(ctx context.Context) []string {
	chain, _ := ctx.Value(chainKey{}).([]string)
	return chain
}

func withCreation(ctx context.Context, name string) context.Context {
	chain := creationChain(ctx)
	next := make([]string, len(chain), len(chain)+1)
	copy(next, chain)
	return context.WithValue(ctx, chainKey{}, append(next, name))
}

func inChain(chain []string, name string) bool {
	for _, n := range chain {
		if n == name {
			return true
		}
	}
	return false
}

// holdsCreationLock reports whether the call path already owns f's creation lock.
func (f *Factory) holdsCreationLock(ctx context.Context) bool {
	owner, _ := ctx.Value(lockKey{}).(*Factory)
	return owner == f
}

func (f *Factory) withCreationLock(ctx context.Context) context.Context {
	return context.WithValue(ctx, lockKey{}, f)
}
