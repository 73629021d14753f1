package app

import (
	"github.com/artpar/fieldmap/domain/chain"
	"github.com/artpar/fieldmap/domain/condition"
	"github.com/artpar/fieldmap/domain/datapath"
	"github.com/artpar/fieldmap/domain/diag"
	"github.com/artpar/fieldmap/domain/fieldspec"
	"github.com/artpar/fieldmap/pkg/ordered"
)

// Result is the outcome of one extraction: the ordered output mapping
// plus everything that degraded along the way.
type Result struct {
	Container string
	Fields    *ordered.Map
	Diags     diag.List
}

// Extract produces the output mapping for a declared container. The
// only hard error is an unknown container name; everything else
// degrades per field and is reported in Result.Diags.
func (m *Model) Extract(name string) (*Result, error) {
	c, ok := m.Container(name)
	if !ok {
		return nil, diag.Diagnostic{Kind: diag.Reference, Container: name, Err: diag.ErrUnknownContainer}
	}
	return m.extract(c), nil
}

func (m *Model) extract(c *Container) *Result {
	res := &Result{Container: c.name, Fields: ordered.NewMap()}

	if c.fields.Len() == 0 {
		res.Diags = res.Diags.Add(diag.Diagnostic{
			Kind:      diag.Configuration,
			Container: c.name,
			Err:       diag.ErrEmptyMapping,
		})
		m.logDiags(res.Diags)
		return res
	}

	data := c.Data()
	for _, entry := range c.fields.Items() {
		spec := fieldspec.Parse(entry.Key)

		if spec.Guard != "" {
			ok, err := condition.Evaluate(spec.Guard, m.conditionResolver(c))
			if err != nil {
				res.Diags = res.Diags.Add(diag.Diagnostic{
					Kind:      diag.Parse,
					Container: c.name,
					Field:     entry.Key,
					Message:   "guard " + spec.Guard,
					Err:       err,
				})
				continue
			}
			if !ok {
				// a false guard omits the key entirely
				continue
			}
		}

		value, diags := m.readSource(c, data, spec.Ref)
		res.Diags = res.Diags.Merge(stamp(diags, c.name, entry.Key))

		chainSpec, diags := m.resolveSpec(toString(entry.Value))
		res.Diags = res.Diags.Merge(stamp(diags, c.name, entry.Key))

		out, diags := chain.Run(chainSpec, value, m.Processors, m.Modifiers)
		res.Diags = res.Diags.Merge(stamp(diags, c.name, entry.Key))

		res.Fields.Set(spec.Key(), out)
	}

	m.logDiags(res.Diags)
	m.logger.Debug().
		Str("container", c.name).
		Int("fields", res.Fields.Len()).
		Int("diagnostics", len(res.Diags)).
		Msg("extracted")
	return res
}

// readSource resolves the reference's root and reads the value under
// it. A missing root (no parent model, unknown container) is reported;
// a merely absent value is a plain nil.
func (m *Model) readSource(c *Container, data any, ref fieldspec.Ref) (any, diag.List) {
	switch ref.Kind {
	case fieldspec.RefParent:
		if m.parent == nil {
			return nil, diag.List{{Kind: diag.Reference, Message: "parent reference without parent model", Err: diag.ErrMissingRoot}}
		}
		v, _ := m.parent.Attr(ref.FullPath()...)
		return v, nil
	case fieldspec.RefSelf:
		v, _ := m.Attr(ref.FullPath()...)
		return v, nil
	case fieldspec.RefContainer:
		other, ok := m.Container(ref.Container)
		if !ok {
			return nil, diag.List{{Kind: diag.Reference, Message: "source container " + ref.Container, Err: diag.ErrUnknownContainer}}
		}
		v, _ := other.Field(ref.FullPath()...)
		return v, nil
	default:
		// own fields are flat keys on the container data; dots in the
		// property carry no path meaning
		v, _ := datapath.Lookup(data, ref.Property)
		return v, nil
	}
}

// conditionResolver resolves guard references the same way field
// sources resolve, but reports absence instead of diagnostics.
func (m *Model) conditionResolver(c *Container) condition.Resolver {
	return func(ref fieldspec.Ref) (any, bool) {
		switch ref.Kind {
		case fieldspec.RefParent:
			if m.parent == nil {
				return nil, false
			}
			return m.parent.Attr(ref.FullPath()...)
		case fieldspec.RefSelf:
			return m.Attr(ref.FullPath()...)
		case fieldspec.RefContainer:
			other, ok := m.Container(ref.Container)
			if !ok {
				return nil, false
			}
			return other.Field(ref.FullPath()...)
		default:
			return datapath.Lookup(c.Data(), ref.Property)
		}
	}
}

// stamp fills in container/field attribution on diagnostics produced
// by components that do not know it.
func stamp(diags diag.List, container, field string) diag.List {
	for i := range diags {
		if diags[i].Container == "" {
			diags[i].Container = container
		}
		if diags[i].Field == "" {
			diags[i].Field = field
		}
	}
	return diags
}
