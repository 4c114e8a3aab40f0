package configclass

import (
	"context"

	"github.com/xraph/beanforge/internal/definition"
	"github.com/xraph/beanforge/internal/metadata"
	"github.com/xraph/beanforge/internal/ordering"
	"github.com/xraph/beanforge/logger"
)

// AttrDerivedFrom marks definitions registered for a unit's bean method. Its
// value is the unit's bean name.
const AttrDerivedFrom = "beanforge.derivedFrom"

// Processor is the built-in factory-level interceptor. It classifies every
// registered definition and registers one definition per bean method of each
// configuration unit, visiting units in ascending order.
type Processor struct {
	classifier *Classifier
	logger     logger.Logger
	visited    []string
}

// NewProcessor creates the processor.
func NewProcessor(classifier *Classifier, l logger.Logger) *Processor {
	if l == nil {
		l = logger.NewNoopLogger()
	}
	return &Processor{classifier: classifier, logger: l}
}

func (p *Processor) Name() string { return "configuration-class-processor" }

// Priority places the processor ahead of every other factory interceptor.
func (p *Processor) Priority() int { return ordering.HighestPrecedence }

// Visited returns the unit names handled by the last run, in visit order.
func (p *Processor) Visited() []string {
	return append([]string(nil), p.visited...)
}

type candidate struct {
	name  string
	def   *definition.Definition
	order int
}

func (p *Processor) PostProcessDefinitions(ctx context.Context, registry definition.Registry) error {
	p.visited = p.visited[:0]

	var candidates []candidate
	for _, name := range registry.Names() {
		def, err := registry.Definition(name)
		if err != nil {
			continue
		}
		if _, derived := def.Attribute(AttrDerivedFrom); derived {
			continue
		}
		if TagOf(def) != None {
			p.logger.Debug("definition already processed as configuration class",
				logger.BeanName(name),
			)
			continue
		}
		if p.classifier.Check(def) == None {
			continue
		}
		candidates = append(candidates, candidate{name: name, def: def, order: GetOrder(def)})
	}

	candidates = ordering.SortBy(candidates, func(c candidate) int { return c.order })

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.registerBeanMethods(registry, c); err != nil {
			return err
		}
		p.visited = append(p.visited, c.name)
	}

	return nil
}

func (p *Processor) registerBeanMethods(registry definition.Registry, c candidate) error {
	view, err := p.classifier.ResolveView(c.def)
	if err != nil {
		p.logger.Warn("skipping bean methods of unreadable unit",
			logger.BeanName(c.name),
			logger.Error(err),
		)
		return nil
	}

	methods, err := view.AnnotatedMethods(metadata.Bean)
	if err != nil {
		p.logger.Warn("skipping bean methods of unreadable unit",
			logger.BeanName(c.name),
			logger.Error(err),
		)
		return nil
	}

	for _, m := range methods {
		attrs := map[string]any{}
		if a, ok := m.Annotation(metadata.Bean); ok && a.Attributes != nil {
			attrs = a.Attributes
		}

		beanName := m.Name
		if n, ok := metadata.StringAttribute(attrs, metadata.AttrName); ok && n != "" {
			beanName = n
		}

		if registry.Contains(beanName) {
			p.logger.Info("keeping existing definition over bean method",
				logger.BeanName(beanName),
				logger.String("unit", c.name),
				logger.String("method", m.Name),
			)
			continue
		}

		scope := definition.ScopeSingleton
		if s, ok := metadata.StringAttribute(attrs, metadata.AttrScope); ok && s != "" {
			scope = definition.Scope(s)
		}

		def := definition.ForFactoryMethod(c.name, m.Name, scope)
		if lazy, ok := attrs[metadata.AttrLazy].(bool); ok {
			def.Lazy = lazy
		}
		def.SetAttribute(AttrDerivedFrom, c.name)

		if err := registry.RegisterDefinition(beanName, def); err != nil {
			return err
		}

		p.logger.Debug("registered bean method",
			logger.BeanName(beanName),
			logger.String("unit", c.name),
			logger.String("scope", string(scope)),
		)
	}

	return nil
}
