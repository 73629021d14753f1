// Package fieldspec parses field-spec keys, the left-hand side of a
// field mapping entry. A key locates a source value, optionally renames
// the output and optionally gates inclusion behind a guard expression:
//
//	[<marker>.]<path>.<property>[ as <alias>][ if(<guardExpr>)]
//
// where the marker is `^` (parent model), `&` (the model itself) or
// `@<container>` (another container's data). Without a marker the whole
// reference is a property directly on the container's own data; dots in
// it carry no path meaning.
//
// Parsing is total: malformed input degrades to a plain own-field
// reference with no alias and no guard, it never fails.
package fieldspec

import "strings"

// RefKind says where a reference resolves.
type RefKind int

const (
	// RefOwn reads the container's own data.
	RefOwn RefKind = iota
	// RefParent reads the parent model's attributes.
	RefParent
	// RefSelf reads the owning model's attributes.
	RefSelf
	// RefContainer reads another container's data by name.
	RefContainer
)

// String returns the kind's name for logs and test output.
func (k RefKind) String() string {
	switch k {
	case RefOwn:
		return "own"
	case RefParent:
		return "parent"
	case RefSelf:
		return "self"
	case RefContainer:
		return "container"
	default:
		return "unknown"
	}
}

// Ref is a parsed source reference.
type Ref struct {
	Kind      RefKind
	Container string   // set for RefContainer
	Path      []string // intermediate segments under the resolved root
	Property  string   // final segment, the value's key
}

// Spec is a fully parsed field-spec key.
type Spec struct {
	Raw   string
	Ref   Ref
	Alias string // output name override, empty when absent
	Guard string // guard expression without the if(...) wrapper, empty when absent
}

// Key returns the output key the extracted value is stored under:
// the alias when present, else the referenced property.
func (s Spec) Key() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Ref.Property
}

const (
	guardOpen  = "if("
	aliasSep   = " as "
	containerMarker = "@"
)

// Parse decomposes a field-spec key. It never fails; anything it cannot
// interpret is treated as a literal own-field property name.
func Parse(key string) Spec {
	s := Spec{Raw: key}
	rest := key

	// Guard clause: from the first "if(" to the last ")" in the key,
	// mirroring a greedy capture. No closing paren means no guard.
	if start := strings.Index(rest, guardOpen); start >= 0 {
		if end := strings.LastIndex(rest, ")"); end > start+len(guardOpen)-1 {
			s.Guard = strings.TrimSpace(rest[start+len(guardOpen) : end])
			rest = rest[:start] + rest[end+1:]
		}
	}

	// Alias clause: the literal " as " separator. Only the first two
	// parts are meaningful; anything after a second separator is
	// discarded.
	if parts := strings.Split(rest, aliasSep); len(parts) > 1 {
		rest = parts[0]
		s.Alias = strings.TrimSpace(parts[1])
	}

	s.Ref = ParseRef(strings.TrimSpace(rest))
	return s
}

// ParseRef interprets a source reference. The first dot segment decides
// the kind: `^` parent, `&` self, `@name` another container. Everything
// else, including a bare marker with nothing after it, is an own-field
// reference whose property is the whole string.
func ParseRef(ref string) Ref {
	segs := strings.Split(ref, ".")
	if len(segs) < 2 {
		return Ref{Kind: RefOwn, Property: ref}
	}
	head, tail := segs[0], segs[1:]
	switch {
	case head == "^":
		return externalRef(RefParent, "", tail)
	case head == "&":
		return externalRef(RefSelf, "", tail)
	case len(head) > 1 && strings.HasPrefix(head, containerMarker):
		return externalRef(RefContainer, head[1:], tail)
	default:
		return Ref{Kind: RefOwn, Property: ref}
	}
}

func externalRef(kind RefKind, container string, segs []string) Ref {
	return Ref{
		Kind:      kind,
		Container: container,
		Path:      segs[:len(segs)-1],
		Property:  segs[len(segs)-1],
	}
}

// IsExternal reports whether the reference resolves outside the
// container's own data.
func (r Ref) IsExternal() bool {
	return r.Kind != RefOwn
}

// FullPath returns path plus property as one slice, ready for a nested
// lookup under the resolved root.
func (r Ref) FullPath() []string {
	out := make([]string, 0, len(r.Path)+1)
	out = append(out, r.Path...)
	return append(out, r.Property)
}
