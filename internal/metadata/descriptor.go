package metadata

import (
	"fmt"
	"sync"
)

// MethodSource loads the method section of a class on demand.
type MethodSource func() ([]MethodDescriptor, error)

// ClassDescriptor is an explicit View built from data rather than reflection.
type ClassDescriptor struct {
	Name        string
	Interface   bool
	Annotations []Annotation

	methods MethodSource
	once    sync.Once
	loaded  []MethodDescriptor
	loadErr error
}

// NewClassDescriptor creates a descriptor whose methods are known up front.
func NewClassDescriptor(name string, annotations []Annotation, methods ...MethodDescriptor) *ClassDescriptor {
	return &ClassDescriptor{
		Name:        name,
		Annotations: annotations,
		methods: func() ([]MethodDescriptor, error) {
			return methods, nil
		},
	}
}

// NewLazyClassDescriptor creates a descriptor whose methods are loaded on
// first use. A failing source is reported by every method query.
func NewLazyClassDescriptor(name string, iface bool, annotations []Annotation, methods MethodSource) *ClassDescriptor {
	return &ClassDescriptor{
		Name:        name,
		Interface:   iface,
		Annotations: annotations,
		methods:     methods,
	}
}

func (d *ClassDescriptor) ClassName() string {
	return d.Name
}

func (d *ClassDescriptor) IsInterface() bool {
	return d.Interface
}

func (d *ClassDescriptor) IsAnnotated(annotation string) bool {
	_, ok := find(d.Annotations, annotation)
	return ok
}

func (d *ClassDescriptor) AnnotationAttributes(annotation string) (map[string]any, bool) {
	a, ok := find(d.Annotations, annotation)
	if !ok {
		return nil, false
	}
	if a.Attributes == nil {
		return map[string]any{}, true
	}
	return a.Attributes, true
}

func (d *ClassDescriptor) HasAnnotatedMethods(annotation string) (bool, error) {
	methods, err := d.AnnotatedMethods(annotation)
	if err != nil {
		return false, err
	}
	return len(methods) > 0, nil
}

func (d *ClassDescriptor) AnnotatedMethods(annotation string) ([]MethodDescriptor, error) {
	all, err := d.Methods()
	if err != nil {
		return nil, err
	}

	var out []MethodDescriptor
	for _, m := range all {
		if _, ok := m.Annotation(annotation); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// Methods returns every declared method, loading them once.
func (d *ClassDescriptor) Methods() ([]MethodDescriptor, error) {
	d.once.Do(func() {
		if d.methods == nil {
			return
		}
		methods, err := d.methods()
		if err != nil {
			d.loadErr = fmt.Errorf("class %s: reading methods: %w", d.Name, err)
			return
		}
		if err := validateMethods(methods); err != nil {
			d.loadErr = fmt.Errorf("class %s: %w", d.Name, err)
			return
		}
		d.loaded = methods
	})
	return d.loaded, d.loadErr
}

func validateMethods(methods []MethodDescriptor) error {
	seen := make(map[string]struct{}, len(methods))
	for i, m := range methods {
		if m.Name == "" {
			return fmt.Errorf("method #%d has no name", i)
		}
		if _, dup := seen[m.Name]; dup {
			return fmt.Errorf("method %s declared twice", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return nil
}
