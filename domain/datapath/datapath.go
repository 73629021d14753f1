// Package datapath walks dotted paths through decoded JSON and YAML
// values. It replaces implicit property reflection with an explicit
// lookup that reports absence instead of inventing zero values.
package datapath

import (
	"strconv"
	"strings"
)

// Lookup walks root segment by segment and returns the value at the
// end of the path with true, or (nil, false) at the first segment that
// cannot be resolved. Maps are traversed by key, slices by decimal
// index. An empty path returns root itself. Lookup never panics.
func Lookup(root any, path ...string) (any, bool) {
	cur := root
	for _, seg := range path {
		next, ok := step(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// LookupDotted splits a dotted path and looks it up. An empty string
// returns root itself.
func LookupDotted(root any, dotted string) (any, bool) {
	if dotted == "" {
		return root, true
	}
	return Lookup(root, strings.Split(dotted, ".")...)
}

func step(v any, seg string) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		out, ok := t[seg]
		return out, ok
	case map[any]any:
		// yaml.v2-style decoding; yaml.v3 produces map[string]any but
		// callers may hand us values from either.
		out, ok := t[seg]
		return out, ok
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(t) {
			return nil, false
		}
		return t[i], true
	default:
		return nil, false
	}
}
