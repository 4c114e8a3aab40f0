package postprocess

import (
	"reflect"
	"sync"

	"github.com/xraph/beanforge/internal/ordering"
)

// Registry keeps interceptors in registration sequence and hands out the
// precedence-sorted view. Sorting is deferred until the view is requested
// after a mutation.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries []T
	sorted  []T
	dirty   bool
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Register appends item. Registering a value already present moves it to the
// end of the registration sequence.
func (r *Registry[T]) Register(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = remove(r.entries, item)
	r.entries = append(r.entries, item)
	r.dirty = true
}

// Remove deletes item and reports whether it was present.
func (r *Registry[T]) Remove(item T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.entries)
	r.entries = remove(r.entries, item)
	if len(r.entries) == before {
		return false
	}
	r.dirty = true
	return true
}

// Clear discards all entries.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	r.sorted = nil
	r.dirty = false
}

func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// OrderedView returns the entries sorted by precedence. Callers may keep the
// returned slice; later mutations do not affect it.
func (r *Registry[T]) OrderedView() []T {
	r.mu.RLock()
	if !r.dirty {
		view := r.sorted
		r.mu.RUnlock()
		return view
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dirty {
		r.sorted = ordering.Sort(r.entries)
		r.dirty = false
	}
	return r.sorted
}

func remove[T any](entries []T, item T) []T {
	out := entries[:0]
	for _, e := range entries {
		if !same(e, item) {
			out = append(out, e)
		}
	}
	// clear the tail so removed values can be collected
	var zero T
	for i := len(out); i < len(entries); i++ {
		entries[i] = zero
	}
	return out
}

func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
