// Package enhance routes calls between the bean methods of a configuration
// unit. A unit publishes an explicit method table; sibling calls go through a
// Dispatcher so that full units can return the container's singleton instead
// of running a bean method body twice.
package enhance

import (
	"context"
	"fmt"
	"reflect"

	"github.com/xraph/beanforge/internal/definition"
	"github.com/xraph/beanforge/internal/errors"
	"github.com/xraph/beanforge/internal/metadata"
)

// Body is the implementation of a bean method. Calls to sibling bean methods
// must go through self.
type Body func(ctx context.Context, self Dispatcher) (any, error)

// Method is one entry of a unit's bean method table.
type Method struct {
	Name string
	// BeanName overrides the registered bean name; defaults to Name.
	BeanName    string
	Scope       definition.Scope
	Lazy        bool
	Annotations []metadata.Annotation
	Fn          Body
}

// Bean returns the bean name the method registers: BeanName, else the name
// attribute of a Bean annotation, else Name.
func (m Method) Bean() string {
	if m.BeanName != "" {
		return m.BeanName
	}
	for _, a := range m.Annotations {
		if a.Name != metadata.Bean {
			continue
		}
		if name, ok := metadata.StringAttribute(a.Attributes, metadata.AttrName); ok && name != "" {
			return name
		}
	}
	return m.Name
}

// Unit is a configuration unit: a value that produces beans from methods.
type Unit interface {
	BeanMethods() []Method
}

// Dispatcher invokes bean methods of one unit by name.
type Dispatcher interface {
	Call(ctx context.Context, method string) (any, error)
}

// Call invokes method through d and asserts its result to T.
func Call[T any](ctx context.Context, d Dispatcher, method string) (T, error) {
	var zero T
	v, err := d.Call(ctx, method)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: bean method %s returned %T, not %T", errors.ErrTypeMismatch, method, v, zero)
	}
	return typed, nil
}

func methodTable(unit Unit) map[string]Method {
	methods := unit.BeanMethods()
	table := make(map[string]Method, len(methods))
	for _, m := range methods {
		table[m.Name] = m
	}
	return table
}

type plainDispatcher struct {
	methods map[string]Method
}

// Plain returns a dispatcher that runs method bodies directly. Lite units and
// plain components use it: every sibling call executes the body again.
func Plain(unit Unit) Dispatcher {
	return &plainDispatcher{methods: methodTable(unit)}
}

func (d *plainDispatcher) Call(ctx context.Context, name string) (any, error) {
	m, ok := d.methods[name]
	if !ok || m.Fn == nil {
		return nil, fmt.Errorf("unknown bean method %q", name)
	}
	return m.Fn(ctx, d)
}

// Describe builds the class view of unit from its method table. Annotations
// declared by the unit's type through metadata.Annotated are included.
func Describe(className string, unit Unit) (*metadata.ClassDescriptor, error) {
	var annotations []metadata.Annotation
	if a, ok := unit.(metadata.Annotated); ok {
		annotations = a.Annotations()
	}

	methods := describeMethods(unit.BeanMethods())
	d := metadata.NewClassDescriptor(className, annotations, methods...)

	// surface duplicate or unnamed methods now rather than at refresh
	if _, err := d.Methods(); err != nil {
		return nil, err
	}
	return d, nil
}

// Introspect builds a view of a Go type, reading bean methods from Unit
// implementations and falling back to metadata.MethodDeclarer.
func Introspect(t reflect.Type) metadata.View {
	return metadata.IntrospectWith(t, resolveMethods)
}

func resolveMethods(sample any) ([]metadata.MethodDescriptor, bool, error) {
	if u, ok := sample.(Unit); ok {
		return describeMethods(u.BeanMethods()), true, nil
	}
	if d, ok := sample.(metadata.MethodDeclarer); ok {
		return d.DeclaredMethods(), true, nil
	}
	return nil, false, nil
}

func describeMethods(methods []Method) []metadata.MethodDescriptor {
	out := make([]metadata.MethodDescriptor, 0, len(methods))
	for _, m := range methods {
		attrs := map[string]any{}
		annotations := make([]metadata.Annotation, 0, len(m.Annotations)+1)
		for _, a := range m.Annotations {
			if a.Name == metadata.Bean {
				for k, v := range a.Attributes {
					attrs[k] = v
				}
				continue
			}
			annotations = append(annotations, a)
		}

		if m.BeanName != "" {
			attrs[metadata.AttrName] = m.BeanName
		}
		if m.Scope != "" {
			attrs[metadata.AttrScope] = string(m.Scope)
		}
		if m.Lazy {
			attrs[metadata.AttrLazy] = true
		}

		annotations = append(annotations, metadata.Annotation{Name: metadata.Bean, Attributes: attrs})
		out = append(out, metadata.MethodDescriptor{Name: m.Name, Annotations: annotations})
	}
	return out
}
