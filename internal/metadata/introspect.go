package metadata

import (
	"fmt"
	"reflect"
)

// Annotated is implemented by Go types that declare their annotations in code.
type Annotated interface {
	Annotations() []Annotation
}

// MethodDeclarer is implemented by Go types that declare annotated methods in code.
type MethodDeclarer interface {
	DeclaredMethods() []MethodDescriptor
}

// MethodResolver extracts the method section from a zero-value sample of a type.
// It reports ok=false when the sample does not declare methods at all.
type MethodResolver func(sample any) (methods []MethodDescriptor, ok bool, err error)

// TypeName returns the fully qualified name used as a definition's class name.
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Introspect builds a view of a loaded Go type using Annotated and MethodDeclarer.
func Introspect(t reflect.Type) View {
	return IntrospectWith(t, declaredMethods)
}

// IntrospectWith builds a view of t, resolving methods with resolver.
func IntrospectWith(t reflect.Type, resolver MethodResolver) View {
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	if base.Kind() == reflect.Interface {
		return &ClassDescriptor{Name: TypeName(base), Interface: true}
	}

	sample := reflect.New(base).Interface()

	var annotations []Annotation
	if a, ok := sample.(Annotated); ok {
		annotations = a.Annotations()
	}

	return NewLazyClassDescriptor(TypeName(base), false, annotations, func() (methods []MethodDescriptor, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("introspecting methods of %s panicked: %v", TypeName(base), r)
			}
		}()
		methods, _, err = resolver(sample)
		return methods, err
	})
}

func declaredMethods(sample any) ([]MethodDescriptor, bool, error) {
	d, ok := sample.(MethodDeclarer)
	if !ok {
		return nil, false, nil
	}
	return d.DeclaredMethods(), true, nil
}
