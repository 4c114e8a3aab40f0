package configclass

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/xraph/beanforge/internal/definition"
	"github.com/xraph/beanforge/internal/metadata"
	"github.com/xraph/beanforge/internal/ordering"
	"github.com/xraph/beanforge/logger"
)

func beanMethod(name string) metadata.MethodDescriptor {
	return metadata.MethodDescriptor{Name: name, Annotations: []metadata.Annotation{{Name: metadata.Bean}}}
}

func classDef(name string, view metadata.View) *definition.Definition {
	def := definition.New(name, nil)
	def.Metadata = view
	return def
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		view *metadata.ClassDescriptor
		want Tag
	}{
		{
			name: "configuration marker",
			view: metadata.NewClassDescriptor("app.Config", []metadata.Annotation{{Name: metadata.Configuration}}),
			want: Full,
		},
		{
			name: "configuration marker wins over indicators",
			view: metadata.NewClassDescriptor("app.Config", []metadata.Annotation{
				{Name: metadata.Component}, {Name: metadata.Configuration},
			}),
			want: Full,
		},
		{
			name: "component indicator",
			view: metadata.NewClassDescriptor("app.Config", []metadata.Annotation{{Name: metadata.Component}}),
			want: Lite,
		},
		{
			name: "component scan indicator",
			view: metadata.NewClassDescriptor("app.Config", []metadata.Annotation{{Name: metadata.ComponentScan}}),
			want: Lite,
		},
		{
			name: "import indicator",
			view: metadata.NewClassDescriptor("app.Config", []metadata.Annotation{{Name: metadata.Import}}),
			want: Lite,
		},
		{
			name: "import resource indicator",
			view: metadata.NewClassDescriptor("app.Config", []metadata.Annotation{{Name: metadata.ImportResource}}),
			want: Lite,
		},
		{
			name: "bean method only",
			view: metadata.NewClassDescriptor("app.Config", nil, beanMethod("clock")),
			want: Lite,
		},
		{
			name: "plain class",
			view: metadata.NewClassDescriptor("app.Config", nil, metadata.MethodDescriptor{Name: "helper"}),
			want: None,
		},
		{
			name: "interface with configuration marker",
			view: metadata.NewLazyClassDescriptor("app.Config", true,
				[]metadata.Annotation{{Name: metadata.Configuration}},
				func() ([]metadata.MethodDescriptor, error) {
					return []metadata.MethodDescriptor{beanMethod("clock")}, nil
				}),
			want: None,
		},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := classDef("app.Config", tt.view)

			tag, _, _ := c.Classify(def, tt.view)
			assert.Equal(t, tt.want, tag)
			assert.Equal(t, tt.want, TagOf(def))
			assert.Equal(t, tt.want == Full, IsFullConfigurationClass(def))
			assert.Equal(t, tt.want == Lite, IsLiteConfigurationClass(def))
		})
	}
}

func TestClassify_FactoryMethodDefinition(t *testing.T) {
	view := metadata.NewClassDescriptor("app.Config", []metadata.Annotation{{Name: metadata.Configuration}})
	def := definition.ForFactoryMethod("appConfig", "dataSource", "")
	def.ClassName = "app.Config"

	tag, order, ok := NewClassifier().Classify(def, view)
	assert.Equal(t, None, tag)
	assert.Equal(t, ordering.LowestPrecedence, order)
	assert.False(t, ok)
	assert.Empty(t, def.AttributeNames())
}

func TestClassify_MissingClassName(t *testing.T) {
	view := metadata.NewClassDescriptor("app.Config", []metadata.Annotation{{Name: metadata.Configuration}})
	def := &definition.Definition{Metadata: view}

	assert.Equal(t, None, NewClassifier().Check(def))
	assert.Empty(t, def.AttributeNames())
}

func TestClassify_Order(t *testing.T) {
	view := metadata.NewClassDescriptor("app.Config", []metadata.Annotation{
		{Name: metadata.Configuration},
		{Name: metadata.Order, Attributes: map[string]any{metadata.AttrValue: 5}},
	})
	def := classDef("app.Config", view)

	tag, order, ok := NewClassifier().Classify(def, view)
	assert.Equal(t, Full, tag)
	assert.True(t, ok)
	assert.Equal(t, 5, order)
	assert.Equal(t, 5, GetOrder(def))
}

func TestGetOrder_Unset(t *testing.T) {
	view := metadata.NewClassDescriptor("app.Config", nil, beanMethod("clock"))
	def := classDef("app.Config", view)

	NewClassifier().Check(def)
	assert.True(t, IsLiteConfigurationClass(def))
	assert.Equal(t, ordering.LowestPrecedence, GetOrder(def))

	def.SetAttribute(AttrOrder, "not a number")
	assert.Equal(t, ordering.LowestPrecedence, GetOrder(def))
}

func TestClassify_Idempotent(t *testing.T) {
	view := metadata.NewClassDescriptor("app.Config", []metadata.Annotation{
		{Name: metadata.Configuration},
		{Name: metadata.Order, Attributes: map[string]any{metadata.AttrValue: 1}},
	})
	def := classDef("app.Config", view)
	c := NewClassifier()

	first := c.Check(def)
	firstAttrs := def.AttributeNames()
	second := c.Check(def)

	assert.Equal(t, first, second)
	assert.Equal(t, firstAttrs, def.AttributeNames())
	assert.Equal(t, 1, GetOrder(def))
}

func TestClassify_ReclassificationClearsStaleAttributes(t *testing.T) {
	full := metadata.NewClassDescriptor("app.Config", []metadata.Annotation{
		{Name: metadata.Configuration},
		{Name: metadata.Order, Attributes: map[string]any{metadata.AttrValue: 1}},
	})
	def := classDef("app.Config", full)
	c := NewClassifier()
	require.Equal(t, Full, c.Check(def))

	lite := metadata.NewClassDescriptor("app.Config", []metadata.Annotation{{Name: metadata.Component}})
	def.Metadata = lite
	assert.Equal(t, Lite, c.Check(def))
	_, hasOrder := def.Attribute(AttrOrder)
	assert.False(t, hasOrder)

	def.Metadata = metadata.NewClassDescriptor("app.Config", nil)
	assert.Equal(t, None, c.Check(def))
	assert.Empty(t, def.AttributeNames())
}

func TestCheck_MethodIntrospectionFailureDegrades(t *testing.T) {
	view := metadata.NewLazyClassDescriptor("app.Broken", false, nil, func() ([]metadata.MethodDescriptor, error) {
		return nil, errors.New("class not found: app.Missing")
	})
	def := classDef("app.Broken", view)
	log := logger.NewTestLogger()

	tag := NewClassifier(WithLogger(log)).Check(def)

	assert.Equal(t, None, tag)
	assert.True(t, log.Contains("failed to introspect bean methods"))
	assert.Equal(t, 1, log.CountAt(zapcore.DebugLevel))
}

func TestCheck_MarkerSurvivesMethodFailure(t *testing.T) {
	view := metadata.NewLazyClassDescriptor("app.Broken", false,
		[]metadata.Annotation{{Name: metadata.Component}},
		func() ([]metadata.MethodDescriptor, error) {
			return nil, errors.New("boom")
		})
	def := classDef("app.Broken", view)

	assert.Equal(t, Lite, NewClassifier().Check(def))
}

type panickingView struct{ metadata.View }

func (panickingView) ClassName() string                                 { return "app.Panics" }
func (panickingView) IsInterface() bool                                 { return false }
func (panickingView) IsAnnotated(string) bool                           { return false }
func (panickingView) AnnotationAttributes(string) (map[string]any, bool) { return nil, false }
func (panickingView) HasAnnotatedMethods(string) (bool, error) {
	panic("broken reader")
}

func TestCheck_PanickingViewDegrades(t *testing.T) {
	def := classDef("app.Panics", panickingView{})
	log := logger.NewTestLogger()

	assert.NotPanics(t, func() {
		assert.Equal(t, None, NewClassifier(WithLogger(log)).Check(def))
	})
	assert.True(t, log.Contains("failed to introspect bean methods"))
}

func TestCheck_UnreadableMetadata(t *testing.T) {
	reader := metadata.NewDescriptorStore()
	def := definition.New("app.Unknown", nil)
	log := logger.NewTestLogger()

	tag := NewClassifier(WithReader(reader), WithLogger(log)).Check(def)

	assert.Equal(t, None, tag)
	assert.True(t, log.Contains("could not read class metadata for configuration check"))
}

func TestCheck_NoMetadataSource(t *testing.T) {
	def := definition.New("app.Unknown", nil)
	assert.Equal(t, None, NewClassifier().Check(def))
}

func TestResolveView(t *testing.T) {
	store := metadata.NewDescriptorStore()
	stored := metadata.NewClassDescriptor("app.Config", []metadata.Annotation{{Name: metadata.Component}})
	store.Add(stored)

	c := NewClassifier(WithReader(store))

	t.Run("attached view describing the same class", func(t *testing.T) {
		attached := metadata.NewClassDescriptor("app.Config", []metadata.Annotation{{Name: metadata.Configuration}})
		def := classDef("app.Config", attached)
		assert.Equal(t, Full, c.Check(def))
	})

	t.Run("attached view of another class falls back to the reader", func(t *testing.T) {
		other := metadata.NewClassDescriptor("app.Other", []metadata.Annotation{{Name: metadata.Configuration}})
		def := classDef("app.Config", other)
		assert.Equal(t, Lite, c.Check(def))
	})
}

type codeConfig struct{}

func (codeConfig) Annotations() []metadata.Annotation {
	return []metadata.Annotation{{Name: metadata.Configuration}}
}

func TestCheck_LoadedType(t *testing.T) {
	def := definition.ForValue(&codeConfig{})
	assert.Equal(t, Full, NewClassifier().Check(def))

	var introspected reflect.Type
	c := NewClassifier(WithIntrospector(func(t reflect.Type) metadata.View {
		introspected = t
		return metadata.NewClassDescriptor(metadata.TypeName(t), nil)
	}))
	assert.Equal(t, None, c.Check(definition.ForValue(&codeConfig{})))
	assert.Equal(t, reflect.TypeOf(&codeConfig{}), introspected)
}

func TestObserver(t *testing.T) {
	seen := map[string]Tag{}
	c := NewClassifier(WithObserver(func(className string, tag Tag) {
		seen[className] = tag
	}))

	full := metadata.NewClassDescriptor("app.Full", []metadata.Annotation{{Name: metadata.Configuration}})
	plain := metadata.NewClassDescriptor("app.Plain", nil)
	c.Check(classDef("app.Full", full))
	c.Check(classDef("app.Plain", plain))

	assert.Equal(t, map[string]Tag{"app.Full": Full, "app.Plain": None}, seen)
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "full", Full.String())
}

func TestProcessor_RegistersBeanMethods(t *testing.T) {
	reg := definition.NewRegistry(false)

	second := metadata.NewClassDescriptor("app.Second", []metadata.Annotation{
		{Name: metadata.Configuration},
		{Name: metadata.Order, Attributes: map[string]any{metadata.AttrValue: 2}},
	}, beanMethod("cache"))
	first := metadata.NewClassDescriptor("app.First", []metadata.Annotation{
		{Name: metadata.Component},
		{Name: metadata.Order, Attributes: map[string]any{metadata.AttrValue: 1}},
	},
		metadata.MethodDescriptor{Name: "clock", Annotations: []metadata.Annotation{{
			Name:       metadata.Bean,
			Attributes: map[string]any{metadata.AttrScope: "prototype", metadata.AttrName: "systemClock", metadata.AttrLazy: true},
		}}},
		metadata.MethodDescriptor{Name: "helper"},
	)
	unordered := metadata.NewClassDescriptor("app.Unordered", nil, beanMethod("pool"))

	require.NoError(t, reg.RegisterDefinition("unordered", classDef("app.Unordered", unordered)))
	require.NoError(t, reg.RegisterDefinition("second", classDef("app.Second", second)))
	require.NoError(t, reg.RegisterDefinition("first", classDef("app.First", first)))
	require.NoError(t, reg.RegisterDefinition("plain", definition.New("app.Plain", nil)))

	p := NewProcessor(NewClassifier(), nil)
	require.NoError(t, p.PostProcessDefinitions(context.Background(), reg))

	assert.Equal(t, []string{"first", "second", "unordered"}, p.Visited())
	assert.Equal(t, []string{"unordered", "second", "first", "plain", "systemClock", "cache", "pool"}, reg.Names())

	clock, err := reg.Definition("systemClock")
	require.NoError(t, err)
	assert.Equal(t, "first", clock.FactoryBeanName)
	assert.Equal(t, "clock", clock.FactoryMethodName)
	assert.True(t, clock.IsPrototype())
	assert.True(t, clock.Lazy)

	cache, err := reg.Definition("cache")
	require.NoError(t, err)
	assert.True(t, cache.IsSingleton())
	from, _ := cache.Attribute(AttrDerivedFrom)
	assert.Equal(t, "second", from)

	secondDef, _ := reg.Definition("second")
	assert.True(t, IsFullConfigurationClass(secondDef))
	firstDef, _ := reg.Definition("first")
	assert.True(t, IsLiteConfigurationClass(firstDef))
}

func TestProcessor_SecondRunSkipsProcessedUnits(t *testing.T) {
	reg := definition.NewRegistry(false)
	view := metadata.NewClassDescriptor("app.Config", []metadata.Annotation{{Name: metadata.Configuration}}, beanMethod("clock"))
	require.NoError(t, reg.RegisterDefinition("config", classDef("app.Config", view)))

	log := logger.NewTestLogger()
	p := NewProcessor(NewClassifier(), log)
	require.NoError(t, p.PostProcessDefinitions(context.Background(), reg))
	require.NoError(t, p.PostProcessDefinitions(context.Background(), reg))

	assert.Empty(t, p.Visited())
	assert.Equal(t, 2, reg.Len())
	assert.True(t, log.Contains("definition already processed as configuration class"))
}

func TestProcessor_KeepsExistingDefinition(t *testing.T) {
	reg := definition.NewRegistry(false)
	view := metadata.NewClassDescriptor("app.Config", []metadata.Annotation{{Name: metadata.Configuration}}, beanMethod("clock"))
	require.NoError(t, reg.RegisterDefinition("config", classDef("app.Config", view)))
	require.NoError(t, reg.RegisterDefinition("clock", definition.New("app.Clock", nil)))

	p := NewProcessor(NewClassifier(), nil)
	require.NoError(t, p.PostProcessDefinitions(context.Background(), reg))

	clock, err := reg.Definition("clock")
	require.NoError(t, err)
	assert.False(t, clock.HasFactoryMethod())
}

func TestProcessor_UnreadableMethodsAreSkipped(t *testing.T) {
	reg := definition.NewRegistry(false)
	view := metadata.NewLazyClassDescriptor("app.Config", false,
		[]metadata.Annotation{{Name: metadata.Configuration}},
		func() ([]metadata.MethodDescriptor, error) { return nil, errors.New("boom") })
	require.NoError(t, reg.RegisterDefinition("config", classDef("app.Config", view)))

	log := logger.NewTestLogger()
	p := NewProcessor(NewClassifier(), log)
	require.NoError(t, p.PostProcessDefinitions(context.Background(), reg))

	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, log.CountAt(zapcore.WarnLevel))
}

func TestProcessor_Priority(t *testing.T) {
	p := NewProcessor(NewClassifier(), nil)
	b, v := ordering.Weigh(p)
	assert.Equal(t, ordering.BucketPriority, b)
	assert.Equal(t, ordering.HighestPrecedence, v)
}
