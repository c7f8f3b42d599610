package idprop

import (
	"fmt"
	"slices"
)

// Type is the immutable tag of a Property.
type Type int

const (
	String Type = iota
	Int
	Float
	Array
	Group
	ID
	Double
	IDPArray

	// NumTypes is the number of tags, used to size lookup tables.
	NumTypes
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Array:
		return "array"
	case Group:
		return "group"
	case ID:
		return "id"
	case Double:
		return "double"
	case IDPArray:
		return "idp_array"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// ParseType converts a tag name produced by Type.String back to a Type.
func ParseType(name string) (Type, bool) {
	for t := String; t < NumTypes; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// Flag holds per-entry state bits.
type Flag uint8

const (
	// FlagGhost marks an entry that was never explicitly assigned.
	FlagGhost Flag = 1 << iota
	// FlagOverridableLibrary allows editing the entry on a library override.
	FlagOverridableLibrary
	// FlagOverrideLibraryLocal marks an entry created locally on an override.
	FlagOverrideLibraryLocal
)

// Property is one entry of the dynamic store.
type Property struct {
	Name    string
	Flag    Flag
	typ     Type
	subtype Type

	i  int
	f  float32
	d  float64
	s  string
	id any

	ints    []int
	floats  []float32
	doubles []float64

	children []*Property
	ui       *UIData
}

// NewString returns a string entry.
func NewString(name, value string) *Property {
	return &Property{Name: name, typ: String, s: value}
}

// NewInt returns an int entry.
func NewInt(name string, value int) *Property {
	return &Property{Name: name, typ: Int, i: value}
}

// NewBool returns an int entry holding 0 or 1.
func NewBool(name string, value bool) *Property {
	return NewInt(name, boolToInt(value))
}

// NewFloat returns a single precision float entry.
func NewFloat(name string, value float32) *Property {
	return &Property{Name: name, typ: Float, f: value}
}

// NewDouble returns a double precision float entry.
func NewDouble(name string, value float64) *Property {
	return &Property{Name: name, typ: Double, d: value}
}

// NewIntArray returns an array entry with Int elements. values is copied.
func NewIntArray(name string, values []int) *Property {
	return &Property{Name: name, typ: Array, subtype: Int, ints: slices.Clone(nonNil(values))}
}

// NewFloatArray returns an array entry with Float elements. values is copied.
func NewFloatArray(name string, values []float32) *Property {
	return &Property{Name: name, typ: Array, subtype: Float, floats: slices.Clone(nonNil(values))}
}

// NewDoubleArray returns an array entry with Double elements. values is copied.
func NewDoubleArray(name string, values []float64) *Property {
	return &Property{Name: name, typ: Array, subtype: Double, doubles: slices.Clone(nonNil(values))}
}

// NewArray returns a zeroed array entry of length n with the given element tag.
func NewArray(name string, elem Type, n int) (*Property, error) {
	switch elem {
	case Int:
		return &Property{Name: name, typ: Array, subtype: Int, ints: make([]int, n)}, nil
	case Float:
		return &Property{Name: name, typ: Array, subtype: Float, floats: make([]float32, n)}, nil
	case Double:
		return &Property{Name: name, typ: Array, subtype: Double, doubles: make([]float64, n)}, nil
	default:
		return nil, fmt.Errorf("idprop: unsupported array element type %s", elem)
	}
}

// NewGroup returns an empty group entry.
func NewGroup(name string) *Property {
	return &Property{Name: name, typ: Group}
}

// NewIDRef returns an entry referencing a foreign identity-bearing object.
func NewIDRef(name string, ref any) *Property {
	return &Property{Name: name, typ: ID, id: ref}
}

// NewGroupArray returns an empty array-of-groups entry.
func NewGroupArray(name string) *Property {
	return &Property{Name: name, typ: IDPArray}
}

// Type returns the entry tag.
func (p *Property) Type() Type {
	return p.typ
}

// Subtype returns the element tag of an Array entry.
func (p *Property) Subtype() Type {
	return p.subtype
}

// IsGhost reports whether the entry was never explicitly assigned.
func (p *Property) IsGhost() bool {
	return p != nil && p.Flag&FlagGhost != 0
}

// Touch marks the entry as explicitly set.
func (p *Property) Touch() {
	if p != nil {
		p.Flag &^= FlagGhost
	}
}

// Int returns the value of an Int entry.
func (p *Property) Int() int {
	return p.i
}

// Bool returns the value of an Int entry interpreted as a boolean.
func (p *Property) Bool() bool {
	return p.i != 0
}

// SetInt assigns an Int entry.
func (p *Property) SetInt(value int) {
	p.i = value
}

// SetBool assigns an Int entry from a boolean.
func (p *Property) SetBool(value bool) {
	p.i = boolToInt(value)
}

// Float returns the value of a Float entry.
func (p *Property) Float() float32 {
	return p.f
}

// SetFloat assigns a Float entry.
func (p *Property) SetFloat(value float32) {
	p.f = value
}

// Double returns the value of a Double entry.
func (p *Property) Double() float64 {
	return p.d
}

// SetDouble assigns a Double entry.
func (p *Property) SetDouble(value float64) {
	p.d = value
}

// Str returns the value of a String entry.
func (p *Property) Str() string {
	return p.s
}

// SetStr assigns a String entry.
func (p *Property) SetStr(value string) {
	p.s = value
}

// Ref returns the referenced object of an ID entry.
func (p *Property) Ref() any {
	return p.id
}

// SetRef assigns an ID entry.
func (p *Property) SetRef(ref any) {
	p.id = ref
}

// Len returns the element count of Array, Group and IDPArray entries and the
// byte length of String entries.
func (p *Property) Len() int {
	switch p.typ {
	case Array:
		switch p.subtype {
		case Int:
			return len(p.ints)
		case Float:
			return len(p.floats)
		case Double:
			return len(p.doubles)
		}
		return 0
	case Group, IDPArray:
		return len(p.children)
	case String:
		return len(p.s)
	default:
		return 0
	}
}

// Ints exposes the storage of an Int array. Writes through the slice are
// visible to the entry.
func (p *Property) Ints() []int {
	return p.ints
}

// Floats exposes the storage of a Float array.
func (p *Property) Floats() []float32 {
	return p.floats
}

// Doubles exposes the storage of a Double array.
func (p *Property) Doubles() []float64 {
	return p.doubles
}

// Resize changes the length of an Array entry, zero filling new elements.
// The element tag is preserved.
func (p *Property) Resize(n int) {
	if p.typ != Array || n < 0 {
		return
	}
	switch p.subtype {
	case Int:
		p.ints = resize(p.ints, n)
	case Float:
		p.floats = resize(p.floats, n)
	case Double:
		p.doubles = resize(p.doubles, n)
	}
}

func resize[T any](values []T, n int) []T {
	if n <= len(values) {
		return values[:n:n]
	}
	out := make([]T, n)
	copy(out, values)
	return out
}

// Copy returns a deep copy of p. Foreign references are shared.
func (p *Property) Copy() *Property {
	if p == nil {
		return nil
	}
	out := *p
	out.ints = slices.Clone(p.ints)
	out.floats = slices.Clone(p.floats)
	out.doubles = slices.Clone(p.doubles)
	out.ui = p.ui.clone()
	if p.children != nil {
		out.children = make([]*Property, len(p.children))
		for i, child := range p.children {
			out.children[i] = child.Copy()
		}
	}
	return &out
}

// String implements fmt.Stringer for diagnostics.
func (p *Property) String() string {
	if p == nil {
		return "<nil>"
	}
	switch p.typ {
	case String:
		return fmt.Sprintf("%s=%q", p.Name, p.s)
	case Int:
		return fmt.Sprintf("%s=%d", p.Name, p.i)
	case Float:
		return fmt.Sprintf("%s=%g", p.Name, p.f)
	case Double:
		return fmt.Sprintf("%s=%g", p.Name, p.d)
	case Array:
		switch p.subtype {
		case Int:
			return fmt.Sprintf("%s=%v", p.Name, p.ints)
		case Float:
			return fmt.Sprintf("%s=%v", p.Name, p.floats)
		default:
			return fmt.Sprintf("%s=%v", p.Name, p.doubles)
		}
	case ID:
		return fmt.Sprintf("%s=<id %T>", p.Name, p.id)
	default:
		return fmt.Sprintf("%s=<%s len=%d>", p.Name, p.typ, len(p.children))
	}
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
