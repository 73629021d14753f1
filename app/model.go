// Package app provides the field-mapping model that orchestrates the
// domain components: containers with their effective field mappings,
// the processor/modifier registries, template inheritance and the
// extraction engine.
package app

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/artpar/fieldmap/domain/datapath"
	"github.com/artpar/fieldmap/domain/diag"
	"github.com/artpar/fieldmap/domain/registry"
	"github.com/artpar/fieldmap/domain/template"
	"github.com/artpar/fieldmap/pkg/ordered"
)

// Model owns containers, registries and templates. Models can be
// chained through a parent, which `^` references resolve against.
type Model struct {
	parent *Model
	logger zerolog.Logger

	attrsMu sync.RWMutex
	attrs   map[string]any

	mu         sync.RWMutex
	containers map[string]*Container
	order      []string

	// Processors and Modifiers hold the named transforms available to
	// every chain this model executes. Populate them before the first
	// extraction; the registries tolerate later additions.
	Processors *registry.Processors
	Modifiers  *registry.Modifiers

	// Templates holds described field mappings reusable through
	// extends clauses.
	Templates *template.Registry
}

// ModelConfig configures a Model. All fields are optional.
type ModelConfig struct {
	// Parent is the model `^` references resolve against.
	Parent *Model

	// Attrs seeds the model's own attributes, readable through `&`
	// (and `^` from child models).
	Attrs map[string]any

	// Logger receives diagnostics at debug level. The zero value
	// discards everything.
	Logger zerolog.Logger
}

// NewModel creates an empty model.
func NewModel(cfg ModelConfig) *Model {
	attrs := cfg.Attrs
	if attrs == nil {
		attrs = make(map[string]any)
	}
	return &Model{
		parent:     cfg.Parent,
		logger:     cfg.Logger,
		attrs:      attrs,
		containers: make(map[string]*Container),
		Processors: registry.NewProcessors(),
		Modifiers:  registry.NewModifiers(),
		Templates:  template.NewRegistry(),
	}
}

// Parent returns the parent model, nil when the model is a root.
func (m *Model) Parent() *Model {
	return m.parent
}

// Attr reads a nested value from the model's attributes.
func (m *Model) Attr(path ...string) (any, bool) {
	m.attrsMu.RLock()
	defer m.attrsMu.RUnlock()
	return datapath.Lookup(m.attrs, path...)
}

// SetAttr stores a top-level attribute value.
func (m *Model) SetAttr(key string, value any) {
	m.attrsMu.Lock()
	defer m.attrsMu.Unlock()
	m.attrs[key] = value
}

// Describe registers a reusable field-mapping template. The
// declaration may extend previously described templates.
func (m *Model) Describe(decl string, fields *ordered.Map) diag.List {
	diags := m.Templates.Describe(decl, fields)
	m.logDiags(diags)
	return diags
}

// Declare creates a container: the declaration's extends clause is
// resolved against described templates once, here, and the resulting
// field mapping is fixed for the container's lifetime. Declaring a
// name twice is an error. Resolution problems (unknown templates) are
// returned as diagnostics, not errors.
func (m *Model) Declare(decl string, fields *ordered.Map, data any) (*Container, diag.List, error) {
	if fields == nil {
		fields = ordered.NewMap()
	}
	name, effective, diags := m.Templates.Resolve(decl, fields)
	m.logDiags(diags)
	if name == "" {
		return nil, diags, diag.Diagnostic{Kind: diag.Configuration, Message: "declare: empty container name", Err: diag.ErrEmptyName}
	}

	c := &Container{name: name, fields: effective, data: data, model: m}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.containers[name]; exists {
		return nil, diags, diag.Diagnostic{
			Kind:      diag.Configuration,
			Container: name,
			Message:   fmt.Sprintf("container %q already declared", name),
		}
	}
	m.containers[name] = c
	m.order = append(m.order, name)
	return c, diags, nil
}

// Container returns the container declared under name.
func (m *Model) Container(name string) (*Container, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.containers[name]
	return c, ok
}

// Containers returns the declared container names in declaration order.
func (m *Model) Containers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *Model) logDiags(diags diag.List) {
	for _, d := range diags {
		m.logger.Debug().
			Str("kind", d.Kind.String()).
			Str("container", d.Container).
			Str("field", d.Field).
			Msg(d.Error())
	}
}
