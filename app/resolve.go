package app

import (
	"strings"

	"github.com/artpar/fieldmap/domain/diag"
	"github.com/artpar/fieldmap/domain/fieldspec"
)

// resolveSpec follows indirect processor-spec references. A spec
// starting with `@container.<path>.<field>` is replaced by the spec
// stored in that container's field mapping under the final path
// segment, repeatedly, until the spec is concrete. Visited
// container+field pairs are tracked; meeting one again cuts the cycle
// and yields an empty chain, as does any broken link on the way.
func (m *Model) resolveSpec(spec string) (string, diag.List) {
	var diags diag.List
	var visited map[string]bool

	for strings.HasPrefix(spec, "@") {
		ref := fieldspec.ParseRef(spec)
		if ref.Kind != fieldspec.RefContainer {
			// "@" with no container name parses as a literal; treat it
			// as concrete rather than loop on it
			return spec, diags
		}

		step := ref.Container + "\x00" + ref.Property
		if visited[step] {
			diags = diags.Add(diag.Diagnostic{
				Kind:      diag.RecursionLimit,
				Container: ref.Container,
				Field:     ref.Property,
				Message:   "resolving " + spec,
				Err:       diag.ErrRecursionLimit,
			})
			return "", diags
		}
		if visited == nil {
			visited = make(map[string]bool)
		}
		visited[step] = true

		other, ok := m.Container(ref.Container)
		if !ok {
			diags = diags.Add(diag.Diagnostic{
				Kind:      diag.Reference,
				Container: ref.Container,
				Field:     ref.Property,
				Message:   "indirect spec " + spec,
				Err:       diag.ErrUnknownContainer,
			})
			return "", diags
		}

		next, ok := other.Spec(ref.Property)
		if !ok {
			diags = diags.Add(diag.Diagnostic{
				Kind:      diag.Reference,
				Container: ref.Container,
				Field:     ref.Property,
				Message:   "indirect spec " + spec + ": no such field",
				Err:       diag.ErrNotRegistered,
			})
			return "", diags
		}
		spec = next
	}
	return spec, diags
}
