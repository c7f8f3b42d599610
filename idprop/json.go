package idprop

import (
	"encoding/json"
	"fmt"
)

// Named is implemented by foreign references that can be persisted by name.
type Named interface {
	RefName() string
}

// RefName is the decoded form of a persisted foreign reference. Callers
// relink it to a live object after loading.
type RefName string

// RefName implements Named.
func (r RefName) RefName() string {
	return string(r)
}

type jsonProperty struct {
	Name    string          `json:"name,omitempty"`
	Type    string          `json:"type"`
	Subtype string          `json:"subtype,omitempty"`
	Flag    Flag            `json:"flag,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
	UI      *jsonUI         `json:"ui,omitempty"`
}

type jsonUI struct {
	Description string    `json:"description,omitempty"`
	Subtype     int       `json:"subtype,omitempty"`
	Int         *IntUI    `json:"int,omitempty"`
	Float       *FloatUI  `json:"float,omitempty"`
	String      *StringUI `json:"string,omitempty"`
}

// MarshalJSON encodes the entry with its tag, flags and UI data.
func (p *Property) MarshalJSON() ([]byte, error) {
	doc := jsonProperty{
		Name: p.Name,
		Type: p.typ.String(),
		Flag: p.Flag,
	}
	if p.ui != nil {
		doc.UI = &jsonUI{
			Description: p.ui.Description,
			Subtype:     p.ui.Subtype,
			Int:         p.ui.Int,
			Float:       p.ui.Float,
			String:      p.ui.String,
		}
	}

	var (
		value any
		err   error
	)
	switch p.typ {
	case String:
		value = p.s
	case Int:
		value = p.i
	case Float:
		value = p.f
	case Double:
		value = p.d
	case Array:
		doc.Subtype = p.subtype.String()
		switch p.subtype {
		case Int:
			value = p.ints
		case Float:
			value = p.floats
		default:
			value = p.doubles
		}
	case Group, IDPArray:
		value = p.children
		if p.children == nil {
			value = []*Property{}
		}
	case ID:
		switch ref := p.id.(type) {
		case nil:
			value = nil
		case Named:
			value = ref.RefName()
		case string:
			value = ref
		default:
			return nil, fmt.Errorf("idprop: entry %q: cannot encode reference of type %T", p.Name, p.id)
		}
	}
	if value != nil {
		doc.Value, err = json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("idprop: entry %q: %w", p.Name, err)
		}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes an entry produced by MarshalJSON. ID references are
// restored as RefName values.
func (p *Property) UnmarshalJSON(data []byte) error {
	var doc jsonProperty
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("idprop: decode: %w", err)
	}
	typ, ok := ParseType(doc.Type)
	if !ok {
		return fmt.Errorf("idprop: entry %q: unknown type %q", doc.Name, doc.Type)
	}

	out := Property{Name: doc.Name, Flag: doc.Flag, typ: typ}
	if doc.UI != nil {
		out.ui = &UIData{
			Description: doc.UI.Description,
			Subtype:     doc.UI.Subtype,
			Int:         doc.UI.Int,
			Float:       doc.UI.Float,
			String:      doc.UI.String,
		}
	}

	var err error
	switch typ {
	case String:
		err = decodeValue(doc.Value, &out.s)
	case Int:
		err = decodeValue(doc.Value, &out.i)
	case Float:
		err = decodeValue(doc.Value, &out.f)
	case Double:
		err = decodeValue(doc.Value, &out.d)
	case Array:
		sub, ok := ParseType(doc.Subtype)
		if !ok {
			return fmt.Errorf("idprop: entry %q: unknown array subtype %q", doc.Name, doc.Subtype)
		}
		out.subtype = sub
		switch sub {
		case Int:
			out.ints = []int{}
			err = decodeValue(doc.Value, &out.ints)
		case Float:
			out.floats = []float32{}
			err = decodeValue(doc.Value, &out.floats)
		case Double:
			out.doubles = []float64{}
			err = decodeValue(doc.Value, &out.doubles)
		default:
			return fmt.Errorf("idprop: entry %q: unsupported array subtype %s", doc.Name, sub)
		}
	case Group, IDPArray:
		err = decodeValue(doc.Value, &out.children)
		if err == nil && typ == Group {
			seen := make(map[string]struct{}, len(out.children))
			for _, child := range out.children {
				if _, dup := seen[child.Name]; dup {
					return fmt.Errorf("idprop: group %q: duplicate entry %q", doc.Name, child.Name)
				}
				seen[child.Name] = struct{}{}
			}
		}
	case ID:
		var name *string
		err = decodeValue(doc.Value, &name)
		if err == nil && name != nil {
			out.id = RefName(*name)
		}
	}
	if err != nil {
		return fmt.Errorf("idprop: entry %q: %w", doc.Name, err)
	}
	*p = out
	return nil
}

func decodeValue(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, target)
}
