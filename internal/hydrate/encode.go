package hydrate

import (
	"slices"

	"github.com/goliatone/go-rna/idprop"
)

// Plain converts a group back into plain JSON values. Int entries stay
// ints, ghost entries are included and references become {"$id": name}.
func Plain(group *idprop.Property) map[string]any {
	if group == nil || group.Type() != idprop.Group {
		return nil
	}
	out := make(map[string]any, len(group.Properties()))
	for _, child := range group.Properties() {
		out[child.Name] = plainValue(child)
	}
	return out
}

// Value converts a single entry into its plain JSON value.
func Value(p *idprop.Property) any {
	if p == nil {
		return nil
	}
	return plainValue(p)
}

func plainValue(p *idprop.Property) any {
	switch p.Type() {
	case idprop.String:
		return p.Str()
	case idprop.Int:
		return p.Int()
	case idprop.Float:
		return float64(p.Float())
	case idprop.Double:
		return p.Double()
	case idprop.Array:
		switch p.Subtype() {
		case idprop.Int:
			return slices.Clone(p.Ints())
		case idprop.Float:
			values := make([]float64, 0, p.Len())
			for _, f := range p.Floats() {
				values = append(values, float64(f))
			}
			return values
		default:
			return slices.Clone(p.Doubles())
		}
	case idprop.Group:
		return Plain(p)
	case idprop.IDPArray:
		items := make([]any, 0, p.Len())
		for _, item := range p.Items() {
			items = append(items, Plain(item))
		}
		return items
	case idprop.ID:
		if named, ok := p.Ref().(idprop.Named); ok {
			return map[string]any{RefKey: named.RefName()}
		}
		return nil
	}
	return nil
}
