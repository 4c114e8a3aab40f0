package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/xraph/beanforge/internal/errors"
)

const yamlDoc = `
classes:
  - name: app.Config
    annotations:
      - name: Configuration
      - name: Order
        attributes: {value: 2}
    methods:
      - name: dataSource
        annotations:
          - name: Bean
            attributes: {scope: prototype}
      - name: helper
  - name: app.Repository
    interface: true
    annotations:
      - name: Component
  - name: app.Broken
    annotations:
      - name: Component
    methods: "not a list"
`

const jsonDoc = `{
  "classes": [
    {
      "name": "app.Lite",
      "methods": [
        {"name": "clock", "annotations": [{"name": "Bean"}]}
      ],
      "annotations": [{"name": "Order", "attributes": {"value": 7}}]
    },
    {"name": "app.Bad", "methods": {"name": 1}}
  ]
}`

func TestDescriptorStore_LoadYAML(t *testing.T) {
	store := NewDescriptorStore()
	require.NoError(t, store.LoadYAML(strings.NewReader(yamlDoc)))
	assert.Equal(t, []string{"app.Broken", "app.Config", "app.Repository"}, store.Names())

	view, err := store.Read("app.Config")
	require.NoError(t, err)

	assert.Equal(t, "app.Config", view.ClassName())
	assert.True(t, view.IsAnnotated(Configuration))
	assert.False(t, view.IsInterface())

	attrs, ok := view.AnnotationAttributes(Order)
	require.True(t, ok)
	order, ok := IntAttribute(attrs, AttrValue)
	require.True(t, ok)
	assert.Equal(t, 2, order)

	has, err := view.HasAnnotatedMethods(Bean)
	require.NoError(t, err)
	assert.True(t, has)

	methods, err := view.AnnotatedMethods(Bean)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "dataSource", methods[0].Name)
	bean, _ := methods[0].Annotation(Bean)
	assert.Equal(t, "prototype", bean.Attributes[AttrScope])

	repo, err := store.Read("app.Repository")
	require.NoError(t, err)
	assert.True(t, repo.IsInterface())
}

func TestDescriptorStore_MalformedMethods(t *testing.T) {
	store := NewDescriptorStore()
	require.NoError(t, store.LoadYAML(strings.NewReader(yamlDoc)))

	view, err := store.Read("app.Broken")
	require.NoError(t, err)

	// type-level data stays readable
	assert.True(t, view.IsAnnotated(Component))

	_, err = view.HasAnnotatedMethods(Bean)
	assert.Error(t, err)

	// failure is sticky
	_, err = view.AnnotatedMethods(Bean)
	assert.Error(t, err)
}

func TestDescriptorStore_LoadJSON(t *testing.T) {
	store := NewDescriptorStore()
	require.NoError(t, store.LoadJSON(strings.NewReader(jsonDoc)))

	view, err := store.Read("app.Lite")
	require.NoError(t, err)

	attrs, ok := view.AnnotationAttributes(Order)
	require.True(t, ok)
	order, ok := IntAttribute(attrs, AttrValue)
	require.True(t, ok)
	assert.Equal(t, 7, order)

	has, err := view.HasAnnotatedMethods(Bean)
	require.NoError(t, err)
	assert.True(t, has)

	bad, err := store.Read("app.Bad")
	require.NoError(t, err)
	_, err = bad.HasAnnotatedMethods(Bean)
	assert.Error(t, err)
}

func TestDescriptorStore_UnknownClass(t *testing.T) {
	store := NewDescriptorStore()

	_, err := store.Read("missing.Type")
	assert.ErrorIs(t, err, errs.ErrMetadataUnreadable)
}

func TestDescriptorStore_LoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "classes.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlDoc), 0o600))
	jsonPath := filepath.Join(dir, "classes.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonDoc), 0o600))
	txtPath := filepath.Join(dir, "classes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o600))

	store := NewDescriptorStore()
	require.NoError(t, store.LoadFile(yamlPath))
	require.NoError(t, store.LoadFile(jsonPath))
	assert.Equal(t, 5, store.Len())

	assert.True(t, errs.Is(store.LoadFile(txtPath), errs.ErrConfigErrorSentinel))
	assert.Error(t, store.LoadFile(filepath.Join(dir, "absent.yaml")))
}

func TestDescriptorStore_EmptyAndInvalid(t *testing.T) {
	store := NewDescriptorStore()
	assert.NoError(t, store.LoadYAML(strings.NewReader("")))
	assert.Error(t, store.LoadYAML(strings.NewReader("classes: [{annotations: []}]")))
	assert.Error(t, store.LoadJSON(strings.NewReader("{")))
}

func TestClassDescriptor_DuplicateMethods(t *testing.T) {
	d := NewClassDescriptor("app.Dup", nil,
		MethodDescriptor{Name: "a", Annotations: []Annotation{{Name: Bean}}},
		MethodDescriptor{Name: "a"},
	)

	_, err := d.HasAnnotatedMethods(Bean)
	assert.Error(t, err)
}

func TestClassDescriptor_SourceError(t *testing.T) {
	d := NewLazyClassDescriptor("app.Missing", false, nil, func() ([]MethodDescriptor, error) {
		return nil, errors.New("dependency class not found")
	})

	_, err := d.AnnotatedMethods(Bean)
	assert.ErrorContains(t, err, "dependency class not found")
}

type annotatedConfig struct{}

func (annotatedConfig) Annotations() []Annotation {
	return []Annotation{{Name: Configuration}}
}

func (annotatedConfig) DeclaredMethods() []MethodDescriptor {
	return []MethodDescriptor{{Name: "clock", Annotations: []Annotation{{Name: Bean}}}}
}

type panickingMethods struct{}

func (*panickingMethods) DeclaredMethods() []MethodDescriptor {
	panic("method table not initialised")
}

type service interface{ Serve() }

func TestIntrospect(t *testing.T) {
	view := Introspect(reflect.TypeOf(&annotatedConfig{}))

	assert.Equal(t, "github.com/xraph/beanforge/internal/metadata.annotatedConfig", view.ClassName())
	assert.True(t, view.IsAnnotated(Configuration))

	has, err := view.HasAnnotatedMethods(Bean)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestIntrospect_Interface(t *testing.T) {
	view := Introspect(reflect.TypeOf((*service)(nil)).Elem())

	assert.True(t, view.IsInterface())
	has, err := view.HasAnnotatedMethods(Bean)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestIntrospect_PanicBecomesError(t *testing.T) {
	view := Introspect(reflect.TypeOf(panickingMethods{}))

	_, err := view.HasAnnotatedMethods(Bean)
	assert.ErrorContains(t, err, "panicked")
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "", TypeName(nil))
	assert.Equal(t, "int", TypeName(reflect.TypeOf(0)))
	assert.Equal(t, "github.com/xraph/beanforge/internal/metadata.annotatedConfig", TypeName(reflect.TypeOf(annotatedConfig{})))
}

func TestIntAttribute(t *testing.T) {
	attrs := map[string]any{"i": 1, "f": 2.0, "i64": int64(3), "s": "x"}

	v, ok := IntAttribute(attrs, "i")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = IntAttribute(attrs, "f")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = IntAttribute(attrs, "i64")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = IntAttribute(attrs, "s")
	assert.False(t, ok)
	_, ok = IntAttribute(attrs, "absent")
	assert.False(t, ok)

	s, ok := StringAttribute(attrs, "s")
	assert.True(t, ok)
	assert.Equal(t, "x", s)
}
