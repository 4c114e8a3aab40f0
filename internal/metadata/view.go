// Package metadata describes the structure of a class without instantiating it:
// which annotations its type carries, which of its methods are annotated and
// whether it is an interface.
//
// Views come from three sources: descriptors already attached to a
// definition, reflection over a loaded Go type (Introspect), or stored
// descriptor documents read by name (DescriptorStore).
package metadata

// Annotation names understood by the container.
const (
	Configuration  = "Configuration"
	Component      = "Component"
	ComponentScan  = "ComponentScan"
	Import         = "Import"
	ImportResource = "ImportResource"
	Bean           = "Bean"
	Order          = "Order"
)

// Attribute keys read from annotations.
const (
	AttrValue = "value"
	AttrScope = "scope"
	AttrName  = "name"
	AttrLazy  = "lazy"
)

// Annotation is a named marker with optional attributes.
type Annotation struct {
	Name       string         `yaml:"name" json:"name"`
	Attributes map[string]any `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// MethodDescriptor describes one declared method.
type MethodDescriptor struct {
	Name        string       `yaml:"name" json:"name"`
	Annotations []Annotation `yaml:"annotations,omitempty" json:"annotations,omitempty"`
}

// Annotation returns the named annotation on the method.
func (m MethodDescriptor) Annotation(name string) (Annotation, bool) {
	return find(m.Annotations, name)
}

// View is a read-only description of a class.
type View interface {
	ClassName() string
	IsInterface() bool
	IsAnnotated(annotation string) bool
	AnnotationAttributes(annotation string) (map[string]any, bool)

	// HasAnnotatedMethods and AnnotatedMethods may fail when the method
	// section of a class cannot be read.
	HasAnnotatedMethods(annotation string) (bool, error)
	AnnotatedMethods(annotation string) ([]MethodDescriptor, error)
}

// Reader resolves a view by class name.
type Reader interface {
	Read(className string) (View, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(className string) (View, error)

func (f ReaderFunc) Read(className string) (View, error) {
	return f(className)
}

func find(annotations []Annotation, name string) (Annotation, bool) {
	for _, a := range annotations {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// IntAttribute reads a numeric attribute. Descriptor formats decode numbers
// differently (YAML as int, JSON as float64), so every numeric kind is accepted.
func IntAttribute(attrs map[string]any, key string) (int, bool) {
	v, ok := attrs[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// StringAttribute reads a string attribute.
func StringAttribute(attrs map[string]any, key string) (string, bool) {
	s, ok := attrs[key].(string)
	return s, ok
}
