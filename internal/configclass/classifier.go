// Package configclass decides whether a definition is a configuration unit.
//
// A unit carrying the Configuration marker is "full": calls between its bean
// methods are routed through the singleton guard. A unit that merely carries a
// component-style indicator or declares bean methods is "lite": its bean
// methods are plain calls. The result is recorded on the definition so the
// instantiation layer can decide whether to wrap the unit.
package configclass

import (
	"fmt"
	"reflect"

	"github.com/xraph/beanforge/internal/definition"
	"github.com/xraph/beanforge/internal/metadata"
	"github.com/xraph/beanforge/internal/ordering"
	"github.com/xraph/beanforge/logger"
)

// Tag is the classification recorded on a definition.
type Tag string

const (
	Full Tag = "full"
	Lite Tag = "lite"
	None Tag = ""
)

func (t Tag) String() string {
	if t == None {
		return "none"
	}
	return string(t)
}

// Definition attribute keys written by the classifier.
const (
	AttrConfigurationClass = "beanforge.configurationClass"
	AttrOrder              = "beanforge.order"
)

var candidateIndicators = []string{
	metadata.Component,
	metadata.ComponentScan,
	metadata.Import,
	metadata.ImportResource,
}

// Introspector builds a view of a loaded Go type.
type Introspector func(t reflect.Type) metadata.View

// Observer is notified of every classification result.
type Observer func(className string, tag Tag)

// Classifier tags definitions as full, lite or not a configuration unit.
type Classifier struct {
	reader     metadata.Reader
	introspect Introspector
	logger     logger.Logger
	observer   Observer
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithReader sets the reader used for classes known only by name.
func WithReader(r metadata.Reader) Option {
	return func(c *Classifier) { c.reader = r }
}

// WithIntrospector replaces the view builder used for loaded types.
func WithIntrospector(i Introspector) Option {
	return func(c *Classifier) { c.introspect = i }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Classifier) { c.logger = l }
}

// WithObserver registers a callback for classification results.
func WithObserver(o Observer) Option {
	return func(c *Classifier) { c.observer = o }
}

// NewClassifier creates a classifier.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		introspect: metadata.Introspect,
		logger:     logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check resolves the metadata of def and classifies it. Unreadable metadata
// is logged and yields None; it never fails the caller.
func (c *Classifier) Check(def *definition.Definition) Tag {
	if def.ClassName == "" || def.HasFactoryMethod() {
		tag, _, _ := c.Classify(def, nil)
		return tag
	}

	view, err := c.ResolveView(def)
	if err != nil {
		c.logger.Debug("could not read class metadata for configuration check",
			logger.String("class", def.ClassName),
			logger.Error(err),
		)
		tag, _, _ := c.Classify(def, nil)
		return tag
	}

	tag, _, _ := c.Classify(def, view)
	return tag
}

// ResolveView picks the metadata source for def: the pre-parsed view when it
// describes the same class, then the loaded Go type, then the reader.
func (c *Classifier) ResolveView(def *definition.Definition) (metadata.View, error) {
	if def.Metadata != nil && def.Metadata.ClassName() == def.ClassName {
		return def.Metadata, nil
	}
	if def.Type != nil {
		return c.introspect(def.Type), nil
	}
	if c.reader == nil {
		return nil, fmt.Errorf("no metadata source for class %s", def.ClassName)
	}
	return c.reader.Read(def.ClassName)
}

// Classify decides the tag of def from view and records it, together with the
// declared order, on the definition. A nil view classifies as None.
// Re-classification overwrites earlier results.
func (c *Classifier) Classify(def *definition.Definition, view metadata.View) (Tag, int, bool) {
	tag := None
	if view != nil && def.ClassName != "" && !def.HasFactoryMethod() {
		switch {
		case c.IsFullCandidate(view):
			tag = Full
		case c.IsLiteCandidate(view):
			tag = Lite
		}
	}

	if c.observer != nil {
		c.observer(def.ClassName, tag)
	}

	if tag == None {
		def.RemoveAttribute(AttrConfigurationClass)
		def.RemoveAttribute(AttrOrder)
		return None, ordering.LowestPrecedence, false
	}

	def.SetAttribute(AttrConfigurationClass, tag)

	order, ok := OrderFromView(view)
	if ok {
		def.SetAttribute(AttrOrder, order)
	} else {
		def.RemoveAttribute(AttrOrder)
		order = ordering.LowestPrecedence
	}

	c.logger.Debug("configuration class detected",
		logger.String("class", def.ClassName),
		logger.String("mode", tag.String()),
		logger.Bool("ordered", ok),
	)

	return tag, order, ok
}

// IsFullCandidate reports whether view carries the Configuration marker.
// Interfaces are never candidates.
func (c *Classifier) IsFullCandidate(view metadata.View) bool {
	if view.IsInterface() {
		return false
	}
	return view.IsAnnotated(metadata.Configuration)
}

// IsLiteCandidate reports whether view carries an indicator annotation or
// declares bean methods. Interfaces are never candidates.
func (c *Classifier) IsLiteCandidate(view metadata.View) bool {
	if view.IsInterface() {
		return false
	}

	for _, indicator := range candidateIndicators {
		if view.IsAnnotated(indicator) {
			return true
		}
	}

	return c.hasBeanMethods(view)
}

func (c *Classifier) hasBeanMethods(view metadata.View) (has bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("failed to introspect bean methods",
				logger.String("class", view.ClassName()),
				logger.Any("panic", r),
			)
			has = false
		}
	}()

	has, err := view.HasAnnotatedMethods(metadata.Bean)
	if err != nil {
		c.logger.Debug("failed to introspect bean methods",
			logger.String("class", view.ClassName()),
			logger.Error(err),
		)
		return false
	}
	return has
}

// OrderFromView reads the value of the Order annotation.
func OrderFromView(view metadata.View) (int, bool) {
	attrs, ok := view.AnnotationAttributes(metadata.Order)
	if !ok {
		return 0, false
	}
	return metadata.IntAttribute(attrs, metadata.AttrValue)
}

// TagOf returns the recorded tag of def.
func TagOf(def *definition.Definition) Tag {
	v, ok := def.Attribute(AttrConfigurationClass)
	if !ok {
		return None
	}
	tag, _ := v.(Tag)
	return tag
}

// IsFullConfigurationClass reports whether def was classified as full.
func IsFullConfigurationClass(def *definition.Definition) bool {
	return TagOf(def) == Full
}

// IsLiteConfigurationClass reports whether def was classified as lite.
func IsLiteConfigurationClass(def *definition.Definition) bool {
	return TagOf(def) == Lite
}

// GetOrder returns the recorded order of def, or ordering.LowestPrecedence.
func GetOrder(def *definition.Definition) int {
	v, ok := def.Attribute(AttrOrder)
	if !ok {
		return ordering.LowestPrecedence
	}
	order, ok := v.(int)
	if !ok {
		return ordering.LowestPrecedence
	}
	return order
}
