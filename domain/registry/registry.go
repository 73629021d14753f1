// Package registry holds the named value-transform functions a model
// executes: processors (pure single-value transforms) and modifiers
// (parameterized transforms that may also halt a chain). Registries are
// meant to be populated before the first extraction; the lock makes
// late registration safe for concurrent readers.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/artpar/fieldmap/domain/diag"
)

// Processor transforms a single value. A nil input means the source
// value was absent; processors coerce it like any other value.
type Processor func(v any) any

// Modification is a modifier's verdict on the accumulator.
type Modification struct {
	// Value replaces the accumulator when Replace is true.
	Value   any
	Replace bool
	// Break stops the chain immediately after this modifier.
	Break bool
	// Err marks the invocation as failed: the executor reports it and
	// leaves the accumulator untouched, ignoring Value and Break.
	Err error
}

// Modifier transforms a value using decoded JSON parameters.
type Modifier func(v any, params any) Modification

// Processors is a named store of Processor functions.
type Processors struct {
	mu    sync.RWMutex
	funcs map[string]Processor
}

// NewProcessors creates an empty processor registry.
func NewProcessors() *Processors {
	return &Processors{funcs: make(map[string]Processor)}
}

// Register adds fn under name. Empty names and nil functions are
// configuration errors.
func (r *Processors) Register(name string, fn Processor) error {
	if name == "" {
		return diag.Diagnostic{Kind: diag.Configuration, Message: "register processor", Err: diag.ErrEmptyName}
	}
	if fn == nil {
		return diag.Diagnostic{Kind: diag.Configuration, Field: name, Message: "register processor", Err: diag.ErrNilFunc}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
	return nil
}

// RegisterAll merges fns additively; existing names are overwritten.
// The first invalid entry fails the whole call.
func (r *Processors) RegisterAll(fns map[string]Processor) error {
	// validate before mutating so a bad batch leaves the registry unchanged
	for name, fn := range fns {
		if name == "" {
			return diag.Diagnostic{Kind: diag.Configuration, Message: "register processors", Err: diag.ErrEmptyName}
		}
		if fn == nil {
			return diag.Diagnostic{Kind: diag.Configuration, Field: name, Message: "register processors", Err: diag.ErrNilFunc}
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, fn := range fns {
		r.funcs[name] = fn
	}
	return nil
}

// Get returns the processor registered under name.
func (r *Processors) Get(name string) (Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Has reports whether name is registered.
func (r *Processors) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns all registered names, sorted.
func (r *Processors) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Modifiers is a named store of Modifier functions.
type Modifiers struct {
	mu    sync.RWMutex
	funcs map[string]Modifier
}

// NewModifiers creates an empty modifier registry.
func NewModifiers() *Modifiers {
	return &Modifiers{funcs: make(map[string]Modifier)}
}

// Register adds fn under name. Empty names and nil functions are
// configuration errors.
func (r *Modifiers) Register(name string, fn Modifier) error {
	if name == "" {
		return diag.Diagnostic{Kind: diag.Configuration, Message: "register modifier", Err: diag.ErrEmptyName}
	}
	if fn == nil {
		return diag.Diagnostic{Kind: diag.Configuration, Field: name, Message: "register modifier", Err: diag.ErrNilFunc}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
	return nil
}

// RegisterAll merges fns additively; existing names are overwritten.
// The first invalid entry fails the whole call.
func (r *Modifiers) RegisterAll(fns map[string]Modifier) error {
	for name, fn := range fns {
		if name == "" {
			return diag.Diagnostic{Kind: diag.Configuration, Message: "register modifiers", Err: diag.ErrEmptyName}
		}
		if fn == nil {
			return diag.Diagnostic{Kind: diag.Configuration, Field: name, Message: "register modifiers", Err: diag.ErrNilFunc}
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, fn := range fns {
		r.funcs[name] = fn
	}
	return nil
}

// Get returns the modifier registered under name.
func (r *Modifiers) Get(name string) (Modifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Has reports whether name is registered.
func (r *Modifiers) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns all registered names, sorted.
func (r *Modifiers) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe summarizes both registries for logs and the validate command.
func Describe(p *Processors, m *Modifiers) string {
	return fmt.Sprintf("%d processors, %d modifiers", len(p.Names()), len(m.Names()))
}
