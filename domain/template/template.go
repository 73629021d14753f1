// Package template resolves container inheritance. A declaration name
// may carry an extends clause:
//
//	search extends pagination
//	search extends [pagination, audit]
//
// Templates named in the clause are merged left to right (later wins on
// key collision) and the container's own fields are layered last. A
// template registered with Describe is resolved the same way at
// registration time, so templates can extend templates without forward
// references.
package template

import (
	"strings"
	"sync"

	"github.com/artpar/fieldmap/domain/diag"
	"github.com/artpar/fieldmap/pkg/ordered"
)

const extendsSep = " extends "

// Declaration is a parsed container or template declaration name.
type Declaration struct {
	Name    string
	Parents []string
}

// ParseDeclaration splits a declaration into the canonical name and the
// template names it extends. Without a clause the whole (trimmed)
// string is the name.
func ParseDeclaration(decl string) Declaration {
	parts := strings.SplitN(decl, extendsSep, 2)
	d := Declaration{Name: strings.TrimSpace(parts[0])}
	if len(parts) == 1 {
		return d
	}
	clause := strings.TrimSpace(parts[1])
	if strings.HasPrefix(clause, "[") && strings.HasSuffix(clause, "]") {
		for _, name := range strings.Split(clause[1:len(clause)-1], ",") {
			if name = strings.TrimSpace(name); name != "" {
				d.Parents = append(d.Parents, name)
			}
		}
		return d
	}
	if clause != "" {
		d.Parents = append(d.Parents, clause)
	}
	return d
}

// Registry stores described templates by canonical name.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*ordered.Map
}

// NewRegistry creates an empty template registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*ordered.Map)}
}

// Describe registers fields under the declaration's canonical name,
// first resolving any extends clause against already-described
// templates. Unknown parents are reported and skipped.
func (r *Registry) Describe(decl string, fields *ordered.Map) diag.List {
	d := ParseDeclaration(decl)
	merged, diags := r.merge(d, fields)
	r.mu.Lock()
	r.templates[d.Name] = merged
	r.mu.Unlock()
	return diags
}

// Resolve produces the canonical name and effective field mapping for a
// container declaration. The registry itself is not modified.
func (r *Registry) Resolve(decl string, own *ordered.Map) (string, *ordered.Map, diag.List) {
	d := ParseDeclaration(decl)
	merged, diags := r.merge(d, own)
	return d.Name, merged, diags
}

// Get returns a copy of the template described under name.
func (r *Registry) Get(name string) (*ordered.Map, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.templates[name]
	if !ok {
		return nil, false
	}
	return tpl.Clone(), true
}

// Has reports whether a template is described under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[name]
	return ok
}

// Names returns the described template names in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

func (r *Registry) merge(d Declaration, own *ordered.Map) (*ordered.Map, diag.List) {
	var diags diag.List
	out := ordered.NewMap()
	r.mu.RLock()
	for _, parent := range d.Parents {
		tpl, ok := r.templates[parent]
		if !ok {
			diags = diags.Add(diag.Diagnostic{
				Kind:      diag.Reference,
				Container: d.Name,
				Message:   "extends " + parent,
				Err:       diag.ErrUnknownTemplate,
			})
			continue
		}
		out.Merge(tpl)
	}
	r.mu.RUnlock()
	out.Merge(own)
	return out, diags
}
