package definition

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/xraph/beanforge/internal/metadata"
)

// Scope is the lifetime of instances produced from a definition.
type Scope string

const (
	ScopeSingleton Scope = "singleton"
	ScopePrototype Scope = "prototype"
)

// Supplier produces a raw instance for class-backed definitions.
type Supplier func(ctx context.Context) (any, error)

// Definition identifies a component to be constructed.
type Definition struct {
	// ClassName is the fully qualified class the definition builds.
	ClassName string
	// Type is set when the class is already loaded as a Go type.
	Type reflect.Type
	// Metadata is a pre-parsed view supplied by the scanning step, if any.
	Metadata metadata.View

	// FactoryBeanName and FactoryMethodName are set for instances produced by
	// a bean method of a configuration unit.
	FactoryBeanName   string
	FactoryMethodName string

	Scope     Scope
	Lazy      bool
	DependsOn []string
	Supplier  Supplier

	mu         sync.RWMutex
	attributes map[string]any
}

// New creates a singleton definition for a class.
func New(className string, supplier Supplier) *Definition {
	return &Definition{
		ClassName: className,
		Scope:     ScopeSingleton,
		Supplier:  supplier,
	}
}

// ForValue creates a singleton definition that always returns v.
func ForValue(v any) *Definition {
	t := reflect.TypeOf(v)
	return &Definition{
		ClassName: metadata.TypeName(t),
		Type:      t,
		Scope:     ScopeSingleton,
		Supplier: func(context.Context) (any, error) {
			return v, nil
		},
	}
}

// ForFactoryMethod creates the definition of a bean produced by a unit's method.
func ForFactoryMethod(factoryBean, method string, scope Scope) *Definition {
	if scope == "" {
		scope = ScopeSingleton
	}
	return &Definition{
		FactoryBeanName:   factoryBean,
		FactoryMethodName: method,
		Scope:             scope,
	}
}

// IsSingleton reports whether the definition has singleton scope. An empty
// scope counts as singleton.
func (d *Definition) IsSingleton() bool {
	return d.Scope == ScopeSingleton || d.Scope == ""
}

// IsPrototype reports whether the definition has prototype scope.
func (d *Definition) IsPrototype() bool {
	return d.Scope == ScopePrototype
}

// HasFactoryMethod reports whether instances come from a unit's method.
func (d *Definition) HasFactoryMethod() bool {
	return d.FactoryMethodName != ""
}

// SetAttribute stores a derived fact, overwriting any previous value.
func (d *Definition) SetAttribute(key string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.attributes == nil {
		d.attributes = make(map[string]any)
	}
	d.attributes[key] = value
}

// Attribute returns a stored fact.
func (d *Definition) Attribute(key string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.attributes[key]
	return v, ok
}

// RemoveAttribute deletes a stored fact and returns its previous value.
func (d *Definition) RemoveAttribute(key string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.attributes[key]
	delete(d.attributes, key)
	return v, ok
}

// AttributeNames returns the stored keys, sorted.
func (d *Definition) AttributeNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.attributes))
	for k := range d.attributes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
