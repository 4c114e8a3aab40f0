package definition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/beanforge/internal/errors"
)

type clock struct{}

func TestDefinition_Attributes(t *testing.T) {
	def := New("app.Config", nil)

	_, ok := def.Attribute("tag")
	assert.False(t, ok)

	def.SetAttribute("tag", "full")
	def.SetAttribute("tag", "lite")
	def.SetAttribute("order", 3)

	v, ok := def.Attribute("tag")
	require.True(t, ok)
	assert.Equal(t, "lite", v)
	assert.Equal(t, []string{"order", "tag"}, def.AttributeNames())

	prev, ok := def.RemoveAttribute("order")
	assert.True(t, ok)
	assert.Equal(t, 3, prev)
	assert.Equal(t, []string{"tag"}, def.AttributeNames())
}

func TestDefinition_Scope(t *testing.T) {
	def := &Definition{ClassName: "x"}
	assert.True(t, def.IsSingleton())

	def.Scope = ScopePrototype
	assert.False(t, def.IsSingleton())
	assert.True(t, def.IsPrototype())

	def.Scope = "request"
	assert.False(t, def.IsSingleton())
	assert.False(t, def.IsPrototype())
}

func TestForValue(t *testing.T) {
	c := &clock{}
	def := ForValue(c)

	assert.Equal(t, "github.com/xraph/beanforge/internal/definition.clock", def.ClassName)
	got, err := def.Supplier(context.Background())
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestForFactoryMethod(t *testing.T) {
	def := ForFactoryMethod("appConfig", "dataSource", "")
	assert.True(t, def.HasFactoryMethod())
	assert.True(t, def.IsSingleton())
	assert.Equal(t, "appConfig", def.FactoryBeanName)
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry(false)

	require.NoError(t, r.RegisterDefinition("b", New("app.B", nil)))
	require.NoError(t, r.RegisterDefinition("a", New("app.A", nil)))

	assert.Equal(t, []string{"b", "a"}, r.Names())
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Contains("a"))

	def, err := r.Definition("a")
	require.NoError(t, err)
	assert.Equal(t, "app.A", def.ClassName)

	_, err = r.Definition("missing")
	assert.True(t, errors.IsDefinitionNotFound(err))
}

func TestRegistry_Duplicate(t *testing.T) {
	r := NewRegistry(false)
	require.NoError(t, r.RegisterDefinition("a", New("app.A", nil)))

	err := r.RegisterDefinition("a", New("app.A2", nil))
	assert.ErrorIs(t, err, errors.ErrDefinitionAlreadyExistsSentinel)
}

func TestRegistry_Overriding(t *testing.T) {
	r := NewRegistry(true)
	require.NoError(t, r.RegisterDefinition("a", New("app.A", nil)))
	require.NoError(t, r.RegisterDefinition("b", New("app.B", nil)))
	require.NoError(t, r.RegisterDefinition("a", New("app.A2", nil)))

	def, err := r.Definition("a")
	require.NoError(t, err)
	assert.Equal(t, "app.A2", def.ClassName)
	assert.Equal(t, []string{"a", "b"}, r.Names())
}

func TestRegistry_Invalid(t *testing.T) {
	r := NewRegistry(false)

	assert.ErrorIs(t, r.RegisterDefinition("", New("x", nil)), errors.ErrInvalidDefinitionSentinel)
	assert.ErrorIs(t, r.RegisterDefinition("x", nil), errors.ErrInvalidDefinitionSentinel)
	assert.ErrorIs(t, r.RegisterDefinition("x", &Definition{}), errors.ErrInvalidDefinitionSentinel)
	assert.ErrorIs(t, r.RegisterDefinition("x", &Definition{FactoryMethodName: "m"}), errors.ErrInvalidDefinitionSentinel)
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry(false)
	require.NoError(t, r.RegisterDefinition("a", New("app.A", nil)))
	require.NoError(t, r.RegisterDefinition("b", New("app.B", nil)))

	require.NoError(t, r.RemoveDefinition("a"))
	assert.Equal(t, []string{"b"}, r.Names())
	assert.True(t, errors.IsDefinitionNotFound(r.RemoveDefinition("a")))
}
