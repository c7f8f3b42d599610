package rna

import (
	"fmt"

	"github.com/goliatone/go-rna/idprop"
)

// PropertyDescriptor is the registered metadata of one struct field.
//
// Only the spec matching Type is consulted. Callbacks are optional: a kind
// without getter falls back to its default value, and a kind without setter
// stores writes in the instance's dynamic property store when the property
// is editable and the struct allows dynamic properties.
type PropertyDescriptor struct {
	Identifier  string
	Name        string
	Description string
	Icon        int

	Type     PropertyType
	Subtype  PropertySubType
	Flag     PropFlag
	Override OverrideFlag
	Intern   InternFlag

	// Note is posted to the redraw notifier after a write.
	Note Note
	// Recalc is tagged on the owning data block after a write, in addition
	// to RecalcCopyOnWrite.
	Recalc RecalcFlag

	// ArrayLength holds the fixed length of every dimension. Its length is
	// the array dimension; scalars leave it empty.
	ArrayLength []int
	// DynamicLength resolves per instance lengths into dims, one per
	// dimension, and returns the total length.
	DynamicLength func(ptr Ptr, dims []int) int

	// EditableFunc replaces Flag when deciding editability and may explain
	// a refusal.
	EditableFunc func(ptr Ptr) (PropFlag, string)
	ItemEditable func(ptr Ptr, index int) bool

	// Update runs after writes without an interactive context requirement.
	Update func(main *Main, scene any, ptr Ptr)
	// ContextUpdate runs when PropContextUpdate is set and a Context is
	// available.
	ContextUpdate func(c *Context, ptr Ptr)
	// ContextPropertyUpdate runs instead of ContextUpdate when
	// PropContextPropertyUpdate is set.
	ContextPropertyUpdate func(c *Context, ptr Ptr, prop *PropertyDescriptor)

	// RawOffset and RawType locate the value inside its struct when
	// InternRawAccess is set.
	RawOffset uintptr
	RawType   RawType

	Bool       BoolSpec
	Int        IntSpec
	Float      FloatSpec
	String     StringSpec
	Enum       EnumSpec
	Pointer    PointerSpec
	Collection CollectionSpec

	owner *StructDescriptor
}

// BoolSpec holds boolean callbacks and defaults.
type BoolSpec struct {
	Get        func(ptr Ptr) bool
	Set        func(ptr Ptr, value bool)
	GetArray   func(ptr Ptr, values []bool)
	SetArray   func(ptr Ptr, values []bool)
	GetEx      func(ptr Ptr, prop *PropertyDescriptor) bool
	SetEx      func(ptr Ptr, prop *PropertyDescriptor, value bool)
	GetArrayEx func(ptr Ptr, prop *PropertyDescriptor, values []bool)
	SetArrayEx func(ptr Ptr, prop *PropertyDescriptor, values []bool)

	GetDefault      func(ptr Ptr, prop *PropertyDescriptor) bool
	GetDefaultArray func(ptr Ptr, prop *PropertyDescriptor, values []bool)
	Default         bool
	DefaultArray    []bool
}

// IntSpec holds integer callbacks, ranges and defaults. A zero hard range
// means unbounded; a zero soft range follows the hard range.
type IntSpec struct {
	Get        func(ptr Ptr) int
	Set        func(ptr Ptr, value int)
	GetArray   func(ptr Ptr, values []int)
	SetArray   func(ptr Ptr, values []int)
	GetEx      func(ptr Ptr, prop *PropertyDescriptor) int
	SetEx      func(ptr Ptr, prop *PropertyDescriptor, value int)
	GetArrayEx func(ptr Ptr, prop *PropertyDescriptor, values []int)
	SetArrayEx func(ptr Ptr, prop *PropertyDescriptor, values []int)

	// Range narrows the hard and soft ranges per instance.
	Range   func(ptr Ptr) (min, max, softMin, softMax int)
	RangeEx func(ptr Ptr, prop *PropertyDescriptor) (min, max, softMin, softMax int)

	HardMin, HardMax int
	SoftMin, SoftMax int
	Step             int

	GetDefault      func(ptr Ptr, prop *PropertyDescriptor) int
	GetDefaultArray func(ptr Ptr, prop *PropertyDescriptor, values []int)
	Default         int
	DefaultArray    []int
}

// FloatSpec holds float callbacks, ranges and defaults. A zero hard range
// means unbounded; a zero soft range follows the hard range.
type FloatSpec struct {
	Get        func(ptr Ptr) float32
	Set        func(ptr Ptr, value float32)
	GetArray   func(ptr Ptr, values []float32)
	SetArray   func(ptr Ptr, values []float32)
	GetEx      func(ptr Ptr, prop *PropertyDescriptor) float32
	SetEx      func(ptr Ptr, prop *PropertyDescriptor, value float32)
	GetArrayEx func(ptr Ptr, prop *PropertyDescriptor, values []float32)
	SetArrayEx func(ptr Ptr, prop *PropertyDescriptor, values []float32)

	Range   func(ptr Ptr) (min, max, softMin, softMax float32)
	RangeEx func(ptr Ptr, prop *PropertyDescriptor) (min, max, softMin, softMax float32)

	HardMin, HardMax float32
	SoftMin, SoftMax float32
	Step             float32
	Precision        int

	GetDefault      func(ptr Ptr, prop *PropertyDescriptor) float32
	GetDefaultArray func(ptr Ptr, prop *PropertyDescriptor, values []float32)
	Default         float32
	DefaultArray    []float32
}

// StringSpec holds string callbacks and defaults. MaxLength of zero means
// unlimited.
type StringSpec struct {
	Get   func(ptr Ptr) string
	Set   func(ptr Ptr, value string)
	GetEx func(ptr Ptr, prop *PropertyDescriptor) string
	SetEx func(ptr Ptr, prop *PropertyDescriptor, value string)

	MaxLength  int
	GetDefault func(ptr Ptr, prop *PropertyDescriptor) string
	Default    string
}

// EnumSpec holds enum callbacks, items and defaults.
type EnumSpec struct {
	Get   func(ptr Ptr) int
	Set   func(ptr Ptr, value int)
	GetEx func(ptr Ptr, prop *PropertyDescriptor) int
	SetEx func(ptr Ptr, prop *PropertyDescriptor, value int)

	Items *EnumTable
	// ItemsFunc produces per instance items. It only runs with an
	// interactive Context; otherwise Items is used.
	ItemsFunc func(c *Context, ptr Ptr, prop *PropertyDescriptor) *EnumTable

	GetDefault func(ptr Ptr, prop *PropertyDescriptor) int
	Default    int
}

// PointerSpec holds pointer callbacks and the referenced type.
type PointerSpec struct {
	Get func(ptr Ptr) Ptr
	Set func(ptr Ptr, value Ptr)
	// Poll filters values accepted by Set.
	Poll func(ptr Ptr, value Ptr) bool

	Type     *StructDescriptor
	TypeFunc func(ptr Ptr) *StructDescriptor
}

// CollectionSpec holds collection callbacks and the item type.
type CollectionSpec struct {
	Length func(ptr Ptr) int
	// Item returns the raw data of the item at index.
	Item func(ptr Ptr, index int) any

	LookupInt    func(ptr Ptr, index int) (Ptr, bool)
	LookupString func(ptr Ptr, key string) (Ptr, bool)

	// Raw exposes contiguous items for bulk transfer, see InternRawArray.
	Raw func(ptr Ptr) (RawItems, bool)

	Type *StructDescriptor
}

// Owner returns the struct the property was registered on.
func (p *PropertyDescriptor) Owner() *StructDescriptor {
	return p.owner
}

// IsArray reports whether the property has array storage.
func (p *PropertyDescriptor) IsArray() bool {
	return p.DynamicLength != nil || p.totalLength() > 0
}

func (p *PropertyDescriptor) hasGetter() bool {
	switch p.Type {
	case TypeBoolean:
		s := &p.Bool
		return s.Get != nil || s.GetEx != nil || s.GetArray != nil || s.GetArrayEx != nil
	case TypeInt:
		s := &p.Int
		return s.Get != nil || s.GetEx != nil || s.GetArray != nil || s.GetArrayEx != nil
	case TypeFloat:
		s := &p.Float
		return s.Get != nil || s.GetEx != nil || s.GetArray != nil || s.GetArrayEx != nil
	case TypeString:
		return p.String.Get != nil || p.String.GetEx != nil
	case TypeEnum:
		return p.Enum.Get != nil || p.Enum.GetEx != nil
	case TypePointer:
		return p.Pointer.Get != nil
	case TypeCollection:
		return p.Collection.Length != nil || p.Collection.Item != nil
	default:
		return false
	}
}

// Dimension returns the array dimension.
func (p *PropertyDescriptor) Dimension() int {
	return len(p.ArrayLength)
}

func (p *PropertyDescriptor) totalLength() int {
	if len(p.ArrayLength) == 0 {
		return 0
	}
	total := 1
	for _, n := range p.ArrayLength {
		total *= n
	}
	return total
}

// checkDefaults reports a static default array whose length differs from
// the declared array shape.
func (p *PropertyDescriptor) checkDefaults() error {
	var n int
	switch p.Type {
	case TypeBoolean:
		n = len(p.Bool.DefaultArray)
	case TypeInt:
		n = len(p.Int.DefaultArray)
	case TypeFloat:
		n = len(p.Float.DefaultArray)
	}
	if n == 0 || p.DynamicLength != nil {
		return nil
	}
	if total := p.totalLength(); n != total {
		return fmt.Errorf("%w: default array of %s has %d values, want %d", ErrArrayLength, p.Identifier, n, total)
	}
	return nil
}

// normalize fills registration defaults such as unbounded ranges.
func (p *PropertyDescriptor) normalize() {
	switch p.Type {
	case TypeInt:
		s := &p.Int
		if s.HardMin == 0 && s.HardMax == 0 {
			s.HardMin, s.HardMax = minInt, maxInt
			if p.Subtype == SubtypeUnsigned {
				s.HardMin = 0
			}
		}
		if s.SoftMin == 0 && s.SoftMax == 0 {
			s.SoftMin, s.SoftMax = s.HardMin, s.HardMax
		}
		if s.Step == 0 {
			s.Step = 1
		}
	case TypeFloat:
		s := &p.Float
		if s.HardMin == 0 && s.HardMax == 0 {
			s.HardMin, s.HardMax = -maxFloat, maxFloat
			if p.Subtype == SubtypeUnsigned {
				s.HardMin = 0
			}
		}
		if s.SoftMin == 0 && s.SoftMax == 0 {
			s.SoftMin, s.SoftMax = s.HardMin, s.HardMax
		}
		if s.Step == 0 {
			s.Step = 1
		}
		if s.Precision == 0 {
			s.Precision = 3
		}
	}
	if p.Name == "" {
		p.Name = p.Identifier
	}
}

// synthesized descriptors dispatch accessors for dynamic entries, indexed
// by entry tag.
var (
	groupItemString    = &PropertyDescriptor{Identifier: "string", Type: TypeString, Flag: PropEditable | PropIDProperty}
	groupItemInt       = &PropertyDescriptor{Identifier: "int", Type: TypeInt, Flag: PropEditable | PropIDProperty}
	groupItemFloat     = &PropertyDescriptor{Identifier: "float", Type: TypeFloat, Flag: PropEditable | PropIDProperty}
	groupItemDouble    = &PropertyDescriptor{Identifier: "double", Type: TypeFloat, Flag: PropEditable | PropIDProperty}
	groupItemGroup     = &PropertyDescriptor{Identifier: "group", Type: TypePointer, Flag: PropEditable | PropIDProperty}
	groupItemID        = &PropertyDescriptor{Identifier: "id", Type: TypePointer, Flag: PropEditable | PropIDProperty}
	groupItemIDPArray  = &PropertyDescriptor{Identifier: "idp_array", Type: TypeCollection, Flag: PropEditable | PropIDProperty}
	groupItemIntArr    = &PropertyDescriptor{Identifier: "int_array", Type: TypeInt, Flag: PropEditable | PropIDProperty, ArrayLength: []int{1}}
	groupItemFloatArr  = &PropertyDescriptor{Identifier: "float_array", Type: TypeFloat, Flag: PropEditable | PropIDProperty, ArrayLength: []int{1}}
	groupItemDoubleArr = &PropertyDescriptor{Identifier: "double_array", Type: TypeFloat, Flag: PropEditable | PropIDProperty, ArrayLength: []int{1}}

	typeMap      [idprop.NumTypes]*PropertyDescriptor
	arrayTypeMap [idprop.NumTypes]*PropertyDescriptor
)

func init() {
	for _, p := range []*PropertyDescriptor{
		groupItemString, groupItemInt, groupItemFloat, groupItemDouble,
		groupItemGroup, groupItemID, groupItemIDPArray,
		groupItemIntArr, groupItemFloatArr, groupItemDoubleArr,
	} {
		p.normalize()
	}
	groupItemGroup.Pointer.Type = PropertyGroupStruct
	groupItemID.Pointer.Type = IDStruct
	groupItemIDPArray.Collection.Type = PropertyGroupStruct

	typeMap[idprop.String] = groupItemString
	typeMap[idprop.Int] = groupItemInt
	typeMap[idprop.Float] = groupItemFloat
	typeMap[idprop.Double] = groupItemDouble
	typeMap[idprop.Group] = groupItemGroup
	typeMap[idprop.ID] = groupItemID
	typeMap[idprop.IDPArray] = groupItemIDPArray

	arrayTypeMap[idprop.Int] = groupItemIntArr
	arrayTypeMap[idprop.Float] = groupItemFloatArr
	arrayTypeMap[idprop.Double] = groupItemDoubleArr
}

// dispatchFor returns the synthesized descriptor serving entry.
func dispatchFor(entry *idprop.Property) *PropertyDescriptor {
	if entry == nil {
		return nil
	}
	if entry.Type() == idprop.Array {
		return arrayTypeMap[entry.Subtype()]
	}
	if t := entry.Type(); t >= 0 && t < idprop.NumTypes {
		return typeMap[t]
	}
	return nil
}
