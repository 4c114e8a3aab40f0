package definition

import (
	"sync"

	"github.com/xraph/beanforge/internal/errors"
)

// Registry holds definitions by bean name. Factory-level interceptors receive
// it to add, replace or adjust definitions before instantiation starts.
type Registry interface {
	RegisterDefinition(name string, def *Definition) error
	RemoveDefinition(name string) error
	Definition(name string) (*Definition, error)
	Contains(name string) bool
	// Names returns bean names in registration order.
	Names() []string
	Len() int
}

// MemoryRegistry is the in-memory Registry used by the container.
type MemoryRegistry struct {
	mu              sync.RWMutex
	defs            map[string]*Definition
	order           []string
	allowOverriding bool
}

// NewRegistry creates an empty registry.
func NewRegistry(allowOverriding bool) *MemoryRegistry {
	return &MemoryRegistry{
		defs:            make(map[string]*Definition),
		order:           make([]string, 0),
		allowOverriding: allowOverriding,
	}
}

// RegisterDefinition adds a definition. Replacing an existing name is only
// allowed when overriding is enabled; the replaced name keeps its position.
func (r *MemoryRegistry) RegisterDefinition(name string, def *Definition) error {
	if name == "" {
		return errors.ErrInvalidDefinition(name, "bean name cannot be empty")
	}
	if def == nil {
		return errors.ErrInvalidDefinition(name, "definition is nil")
	}
	if def.ClassName == "" && !def.HasFactoryMethod() {
		return errors.ErrInvalidDefinition(name, "definition needs a class name or a factory method")
	}
	if def.HasFactoryMethod() && def.FactoryBeanName == "" {
		return errors.ErrInvalidDefinition(name, "factory method "+def.FactoryMethodName+" has no factory bean")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[name]; exists {
		if !r.allowOverriding {
			return errors.ErrDefinitionAlreadyExists(name)
		}
		r.defs[name] = def
		return nil
	}

	r.defs[name] = def
	r.order = append(r.order, name)
	return nil
}

func (r *MemoryRegistry) RemoveDefinition(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[name]; !exists {
		return errors.ErrDefinitionNotFound(name)
	}
	delete(r.defs, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRegistry) Definition(name string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	if !ok {
		return nil, errors.ErrDefinitionNotFound(name)
	}
	return def, nil
}

func (r *MemoryRegistry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[name]
	return ok
}

func (r *MemoryRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}
