package metadata

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/xraph/beanforge/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DescriptorStore holds class descriptors read from stored documents.
//
// Documents list classes under a top-level "classes" key. The "methods"
// section of each class is kept undecoded until a method query needs it, so a
// malformed section only affects the classes that are actually inspected.
//
//	classes:
//	  - name: app.Config
//	    annotations:
//	      - name: Configuration
//	      - name: Order
//	        attributes: {value: 1}
//	    methods:
//	      - name: dataSource
//	        annotations: [{name: Bean}]
type DescriptorStore struct {
	mu      sync.RWMutex
	classes map[string]*ClassDescriptor
}

// NewDescriptorStore creates an empty store.
func NewDescriptorStore() *DescriptorStore {
	return &DescriptorStore{classes: make(map[string]*ClassDescriptor)}
}

type yamlDocument struct {
	Classes []yamlClass `yaml:"classes"`
}

type yamlClass struct {
	Name        string       `yaml:"name"`
	Interface   bool         `yaml:"interface"`
	Annotations []Annotation `yaml:"annotations"`
	Methods     yaml.Node    `yaml:"methods"`
}

type jsonDocument struct {
	Classes []jsonClass `json:"classes"`
}

type jsonClass struct {
	Name        string              `json:"name"`
	Interface   bool                `json:"interface"`
	Annotations []Annotation        `json:"annotations"`
	Methods     jsoniter.RawMessage `json:"methods"`
}

// Add registers a descriptor, replacing any previous one with the same name.
func (s *DescriptorStore) Add(d *ClassDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes[d.Name] = d
}

// Read implements Reader.
func (s *DescriptorStore) Read(className string) (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.classes[className]
	if !ok {
		return nil, fmt.Errorf("%w: no descriptor for class %s", errors.ErrMetadataUnreadable, className)
	}
	return d, nil
}

// Names returns the stored class names, sorted.
func (s *DescriptorStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.classes))
	for name := range s.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored descriptors.
func (s *DescriptorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.classes)
}

// LoadYAML reads a YAML descriptor document.
func (s *DescriptorStore) LoadYAML(r io.Reader) error {
	var doc yamlDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil
		}
		return errors.ErrConfigError("failed to parse YAML descriptors", err)
	}

	for _, c := range doc.Classes {
		if c.Name == "" {
			return errors.ErrConfigError("descriptor without class name", nil)
		}
		node := c.Methods
		s.Add(NewLazyClassDescriptor(c.Name, c.Interface, c.Annotations, func() ([]MethodDescriptor, error) {
			if node.Kind == 0 {
				return nil, nil
			}
			var methods []MethodDescriptor
			if err := node.Decode(&methods); err != nil {
				return nil, err
			}
			return methods, nil
		}))
	}
	return nil
}

// LoadJSON reads a JSON descriptor document.
func (s *DescriptorStore) LoadJSON(r io.Reader) error {
	var doc jsonDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return errors.ErrConfigError("failed to parse JSON descriptors", err)
	}

	for _, c := range doc.Classes {
		if c.Name == "" {
			return errors.ErrConfigError("descriptor without class name", nil)
		}
		raw := c.Methods
		s.Add(NewLazyClassDescriptor(c.Name, c.Interface, c.Annotations, func() ([]MethodDescriptor, error) {
			if len(bytes.TrimSpace(raw)) == 0 || string(raw) == "null" {
				return nil, nil
			}
			var methods []MethodDescriptor
			if err := json.Unmarshal(raw, &methods); err != nil {
				return nil, err
			}
			return methods, nil
		}))
	}
	return nil
}

// LoadFile reads a descriptor document, choosing the format by extension.
func (s *DescriptorStore) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.ErrConfigError("failed to open descriptor file "+path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return s.LoadYAML(f)
	case ".json":
		return s.LoadJSON(f)
	default:
		return errors.ErrConfigError("unsupported descriptor format "+filepath.Ext(path), nil)
	}
}
