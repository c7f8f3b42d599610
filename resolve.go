package rna

import (
	"iter"
	"strconv"
	"strings"

	"github.com/goliatone/go-rna/idprop"
)

// PropertyRef references either a registered descriptor or an entry of a
// dynamic property store. The zero value references nothing.
type PropertyRef struct {
	static  *PropertyDescriptor
	dynamic *idprop.Property
}

// StaticRef references a registered descriptor.
func StaticRef(prop *PropertyDescriptor) PropertyRef {
	return PropertyRef{static: prop}
}

// DynamicRef references a dynamic property entry.
func DynamicRef(entry *idprop.Property) PropertyRef {
	return PropertyRef{dynamic: entry}
}

// IsValid reports whether the reference points at anything.
func (r PropertyRef) IsValid() bool {
	return r.static != nil || r.dynamic != nil
}

// Static returns the referenced descriptor, or nil for dynamic references.
func (r PropertyRef) Static() *PropertyDescriptor {
	return r.static
}

// Dynamic returns the referenced entry, or nil for static references.
func (r PropertyRef) Dynamic() *idprop.Property {
	return r.dynamic
}

// Identifier returns the descriptor identifier or the entry name.
func (r PropertyRef) Identifier() string {
	switch {
	case r.static != nil:
		return r.static.Identifier
	case r.dynamic != nil:
		return r.dynamic.Name
	default:
		return ""
	}
}

// Outcome tells where a resolved property's value lives.
type Outcome int

const (
	// OutcomeNone is produced for invalid references.
	OutcomeNone Outcome = iota
	// OutcomeStatic dispatches to the descriptor callbacks or defaults.
	OutcomeStatic
	// OutcomeStaticOverride is a descriptor declared as a dynamic slot,
	// stored in a same named entry of the instance store.
	OutcomeStaticOverride
	// OutcomeDynamic is a pure dynamic entry.
	OutcomeDynamic
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStatic:
		return "static"
	case OutcomeStaticOverride:
		return "static_override"
	case OutcomeDynamic:
		return "dynamic"
	default:
		return "none"
	}
}

// ResolvedProperty is the normalized view produced for one access. It is
// not meant to be stored.
type ResolvedProperty struct {
	Ptr     Ptr
	Raw     PropertyRef
	Outcome Outcome
	// Prop is the descriptor accessors dispatch on. Dynamic entries are
	// served by synthesized descriptors.
	Prop *PropertyDescriptor
	// Entry is the live entry of the instance store, if any.
	Entry      *idprop.Property
	Identifier string
	IsArray    bool
	ArrayLen   int
	IsSet      bool
}

// Resolve unifies static and dynamic properties. A stale entry whose tag
// does not match the declared kind of a dynamic slot is deleted on the spot
// and the slot resolves as unset.
func (r *Registry) Resolve(ptr Ptr, ref PropertyRef) ResolvedProperty {
	rp := ResolvedProperty{Ptr: ptr, Raw: ref}

	switch {
	case ref.static != nil:
		prop := ref.static
		rp.Prop = prop
		rp.Identifier = prop.Identifier
		rp.IsArray = prop.IsArray()
		if rp.IsArray {
			rp.ArrayLen = staticArrayLength(ptr, prop)
		}

		if prop.Flag&PropIDProperty == 0 {
			rp.Outcome = OutcomeStatic
			rp.IsSet = true
			// Properties without getters keep materialized writes in the
			// instance store.
			if !prop.hasGetter() {
				if entry := findIDProperty(ptr, prop.Identifier); entry != nil && verifyValid(ptr, prop, entry) {
					rp.Entry = entry
				}
			}
			return rp
		}

		rp.Outcome = OutcomeStaticOverride
		entry := findIDProperty(ptr, prop.Identifier)
		if entry != nil && !verifyValid(ptr, prop, entry) {
			if group := StructIDProperties(ptr, false); group != nil {
				group.RemoveEntry(entry)
			}
			r.log(LogEvent{
				Kind:     LogSelfHeal,
				Struct:   structIdentifier(ptr.Type),
				Property: prop.Identifier,
				Owner:    ownerName(ptr),
				Message:  "removed dynamic entry of type " + entryKind(entry),
			})
			entry = nil
		}
		rp.Entry = entry
		rp.IsSet = entry != nil && !entry.IsGhost()

	case ref.dynamic != nil:
		raw := ref.dynamic
		rp.Outcome = OutcomeDynamic
		rp.Identifier = raw.Name
		rp.Prop = dispatchFor(raw)

		// raw may belong to another instance, such as a template.
		entry := findIDProperty(ptr, raw.Name)
		if entry != nil && (entry.Type() != raw.Type() || entry.Subtype() != raw.Subtype()) {
			entry = nil
		}
		rp.Entry = entry
		rp.IsSet = entry != nil
		if raw.Type() == idprop.Array {
			rp.IsArray = true
			if entry != nil {
				rp.ArrayLen = entry.Len()
			}
		}
	}
	return rp
}

// verifyValid checks that entry can serve the declared kind of prop.
func verifyValid(ptr Ptr, prop *PropertyDescriptor, entry *idprop.Property) bool {
	switch entry.Type() {
	case idprop.IDPArray:
		return prop.Type == TypeCollection
	case idprop.Array:
		if staticArrayLength(ptr, prop) != entry.Len() {
			return false
		}
		switch entry.Subtype() {
		case idprop.Float, idprop.Double:
			return prop.Type == TypeFloat
		case idprop.Int:
			return prop.Type == TypeBoolean || prop.Type == TypeInt || prop.Type == TypeEnum
		}
		return false
	case idprop.Int:
		return prop.Type == TypeBoolean || prop.Type == TypeInt || prop.Type == TypeEnum
	case idprop.Float, idprop.Double:
		return prop.Type == TypeFloat
	case idprop.String:
		return prop.Type == TypeString
	case idprop.Group, idprop.ID:
		return prop.Type == TypePointer
	default:
		return false
	}
}

func staticArrayLength(ptr Ptr, prop *PropertyDescriptor) int {
	if prop.DynamicLength != nil && !isNil(ptr.Data) {
		dims := make([]int, max(prop.Dimension(), 1))
		return prop.DynamicLength(ptr, dims)
	}
	return prop.totalLength()
}

// StructIDProperties returns the dynamic property group of the instance,
// creating it when create is set. It returns nil when the struct has no
// dynamic properties.
func StructIDProperties(ptr Ptr, create bool) *idprop.Property {
	if ptr.Type == nil || isNil(ptr.Data) {
		return nil
	}
	locate := ptr.Type.idPropertiesLocator()
	if locate == nil {
		return nil
	}
	return locate(ptr, create)
}

// StructIDPropertiesUnset removes the entry named identifier.
func StructIDPropertiesUnset(ptr Ptr, identifier string) bool {
	group := StructIDProperties(ptr, false)
	return group != nil && group.Remove(identifier)
}

func findIDProperty(ptr Ptr, name string) *idprop.Property {
	group := StructIDProperties(ptr, false)
	if group == nil || group.Type() != idprop.Group {
		return nil
	}
	return group.Get(name)
}

// FindProperty looks up identifier on the instance. The bracket form
// ["name"] resolves a dynamic entry of ptr itself; plain names resolve
// registered properties of the type and its bases, then dynamic entries.
// The returned reference is invalid when nothing matches.
func (r *Registry) FindProperty(ptr Ptr, identifier string) PropertyRef {
	if strings.HasPrefix(identifier, `["`) {
		res, err := r.PathResolve(ptr, identifier)
		if err == nil && res.Ptr.Same(ptr) {
			return res.Prop
		}
		return PropertyRef{}
	}
	if prop := r.StructFindProperty(ptr.Type, identifier); prop != nil {
		return StaticRef(prop)
	}
	if entry := findIDProperty(ptr, identifier); entry != nil {
		return DynamicRef(entry)
	}
	return PropertyRef{}
}

// StructProperties yields the registered properties of the instance type,
// most basic type first, followed by dynamic entries not backing a
// registered slot.
func (r *Registry) StructProperties(ptr Ptr) iter.Seq[PropertyRef] {
	return func(yield func(PropertyRef) bool) {
		seen := map[string]bool{}
		for prop := range ptr.Type.AllProperties() {
			seen[prop.Identifier] = true
			if !yield(StaticRef(prop)) {
				return
			}
		}
		group := StructIDProperties(ptr, false)
		if group == nil {
			return
		}
		for _, entry := range group.Properties() {
			if seen[entry.Name] {
				continue
			}
			if !yield(DynamicRef(entry)) {
				return
			}
		}
	}
}

// StructContainsProperty reports whether ref is one of the instance
// properties.
func (r *Registry) StructContainsProperty(ptr Ptr, ref PropertyRef) bool {
	for candidate := range r.StructProperties(ptr) {
		if candidate == ref {
			return true
		}
	}
	return false
}

// PropertyIsSet reports whether the property holds an explicit value.
// Static properties are always set.
func (r *Registry) PropertyIsSet(ptr Ptr, ref PropertyRef) bool {
	return r.Resolve(ptr, ref).IsSet
}

// PropertyUnset removes the dynamic entry backing the property so it falls
// back to its default.
func (r *Registry) PropertyUnset(ptr Ptr, ref PropertyRef) bool {
	rp := r.Resolve(ptr, ref)
	if rp.Entry == nil {
		return false
	}
	group := StructIDProperties(ptr, false)
	return group != nil && group.RemoveEntry(rp.Entry)
}

// PropertyIsIDProp reports whether ref is a pure dynamic entry.
func PropertyIsIDProp(ref PropertyRef) bool {
	return ref.dynamic != nil
}

// dispatch returns the descriptor used for metadata queries.
func dispatch(ref PropertyRef) *PropertyDescriptor {
	if ref.static != nil {
		return ref.static
	}
	return dispatchFor(ref.dynamic)
}

// PropertyTypeOf returns the kind of the property.
func PropertyTypeOf(ref PropertyRef) PropertyType {
	if prop := dispatch(ref); prop != nil {
		return prop.Type
	}
	return TypeBoolean
}

// PropertySubtype returns the subtype of the property. Dynamic entries
// report the subtype stored in their UI data.
func PropertySubtype(ref PropertyRef) PropertySubType {
	if ref.dynamic != nil {
		if ui := ref.dynamic.UI(); ui != nil {
			return PropertySubType(ui.Subtype)
		}
	}
	if prop := dispatch(ref); prop != nil {
		return prop.Subtype
	}
	return SubtypeNone
}

// PropertyFlag returns the behavior flags of the property.
func PropertyFlag(ref PropertyRef) PropFlag {
	if prop := dispatch(ref); prop != nil {
		return prop.Flag
	}
	return 0
}

// PropertyBuiltin reports whether the property is hidden from name lookup.
func PropertyBuiltin(ref PropertyRef) bool {
	prop := dispatch(ref)
	return prop != nil && prop.Intern&InternBuiltin != 0
}

func ownerName(ptr Ptr) string {
	if ptr.Owner == nil {
		return ""
	}
	return ptr.Owner.Name
}

func entryKind(entry *idprop.Property) string {
	if entry.Type() == idprop.Array {
		return entry.Type().String() + "[" + entry.Subtype().String() + "]" + strconv.Itoa(entry.Len())
	}
	return entry.Type().String()
}
