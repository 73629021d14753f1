// Package diag defines the structured diagnostics the engine reports
// instead of failing. Extraction is designed to degrade locally: a bad
// field spec, a missing reference, or an unregistered function affects
// only the field that named it, and the cause is recorded here.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a diagnostic.
type Kind int

const (
	// Configuration marks invalid setup: empty registration names,
	// nil functions, empty field mappings.
	Configuration Kind = iota
	// Reference marks lookups that named something absent: unknown
	// containers, templates, processors, missing data roots.
	Reference
	// Parse marks malformed input that was skipped: bad modifier
	// params, unparsable guard expressions.
	Parse
	// RecursionLimit marks an indirection cycle cut by the resolver.
	RecursionLimit
)

// String returns the kind's stable name, used in logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Reference:
		return "reference"
	case Parse:
		return "parse"
	case RecursionLimit:
		return "recursion_limit"
	default:
		return "unknown"
	}
}

// Common causes, usable with errors.Is on Diagnostic.Err.
var (
	ErrEmptyName        = errors.New("name must not be empty")
	ErrNilFunc          = errors.New("function must not be nil")
	ErrNotRegistered    = errors.New("not registered")
	ErrUnknownContainer = errors.New("unknown container")
	ErrUnknownTemplate  = errors.New("unknown template")
	ErrMissingRoot      = errors.New("data root unavailable")
	ErrEmptyMapping     = errors.New("field mapping is empty")
	ErrRecursionLimit   = errors.New("indirection cycle detected")
)

// Diagnostic records one degradation event (value type).
type Diagnostic struct {
	Kind      Kind
	Container string
	Field     string
	Message   string
	Err       error
}

// Error makes a Diagnostic usable as an error value.
func (d Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(d.Kind.String())
	if d.Container != "" {
		b.WriteString(" container=")
		b.WriteString(d.Container)
	}
	if d.Field != "" {
		b.WriteString(" field=")
		b.WriteString(d.Field)
	}
	if d.Message != "" {
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	if d.Err != nil {
		b.WriteString(": ")
		b.WriteString(d.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (d Diagnostic) Unwrap() error {
	return d.Err
}

// New builds a diagnostic with a formatted message.
func New(kind Kind, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// List accumulates diagnostics in the order they occurred.
type List []Diagnostic

// Add appends d and returns the extended list.
func (l List) Add(d Diagnostic) List {
	return append(l, d)
}

// Merge appends all of other and returns the extended list.
func (l List) Merge(other List) List {
	return append(l, other...)
}

// HasKind reports whether any diagnostic has the given kind.
func (l List) HasKind(k Kind) bool {
	for _, d := range l {
		if d.Kind == k {
			return true
		}
	}
	return false
}

// Filter returns the diagnostics of the given kind, keeping order.
func (l List) Filter(k Kind) List {
	var out List
	for _, d := range l {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Strings renders each diagnostic on its own line, for CLI output.
func (l List) Strings() []string {
	out := make([]string, len(l))
	for i, d := range l {
		out[i] = d.Error()
	}
	return out
}
