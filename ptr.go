package rna

import (
	"reflect"

	"github.com/google/uuid"

	"github.com/goliatone/go-rna/idprop"
)

// ID is the identity header embedded by data block types.
type ID struct {
	Name        string
	Flag        IDFlag
	SessionUUID uuid.UUID
	// Properties is the block's dynamic property group, created lazily.
	Properties *idprop.Property
	// Type is the registered struct of the embedding block.
	Type *StructDescriptor
}

// NewID returns an identity header for a block of type typ.
func NewID(name string, typ *StructDescriptor) ID {
	return ID{Name: name, SessionUUID: uuid.New(), Type: typ}
}

// IDRef returns id. Blocks embedding ID satisfy IDBlock through it.
func (id *ID) IDRef() *ID {
	return id
}

// IsLinked reports whether the block comes from another file.
func (id *ID) IsLinked() bool {
	return id != nil && id.Flag&IDLinked != 0
}

// IsOverrideLibrary reports whether the block is a library override.
func (id *ID) IsOverrideLibrary() bool {
	return id != nil && id.Flag&IDOverrideLibrary != 0
}

// IDBlock is implemented by data blocks embedding ID.
type IDBlock interface {
	IDRef() *ID
}

// Ptr is a non owning handle on one live instance: the owning data block,
// the most refined struct type and the instance data.
type Ptr struct {
	Owner *ID
	Type  *StructDescriptor
	Data  any
}

// NullPtr is the invalid handle.
var NullPtr = Ptr{}

// IsNull reports whether the handle lacks data, type or owner. Handles on
// unowned structs are null by this definition.
func (p Ptr) IsNull() bool {
	return isNil(p.Data) || p.Type == nil || p.Owner == nil
}

// IsValid reports whether the handle has data and a type.
func (p Ptr) IsValid() bool {
	return !isNil(p.Data) && p.Type != nil
}

// Same reports whether both handles view the same data through the same
// type.
func (p Ptr) Same(other Ptr) bool {
	return p.Type == other.Type && sameData(p.Data, other.Data)
}

// PointerFromID returns a handle on block refined from the ID base type.
func PointerFromID(block IDBlock) Ptr {
	if isNil(block) {
		return NullPtr
	}
	ptr := Ptr{Owner: block.IDRef(), Type: IDStruct, Data: block}
	ptr.Type = refine(ptr)
	return ptr
}

// PointerCreate returns a handle on data owned by owner, refined from typ.
func PointerCreate(owner *ID, typ *StructDescriptor, data any) Ptr {
	ptr := Ptr{Owner: owner, Type: typ, Data: data}
	if !isNil(data) {
		ptr.Type = refine(ptr)
	}
	return ptr
}

// PointerInheritRefine returns a handle on data nested in parent. The
// owner is inherited unless typ is itself a data block type, in which case
// data becomes its own owner.
func PointerInheritRefine(parent Ptr, typ *StructDescriptor, data any) Ptr {
	if isNil(data) || typ == nil {
		return NullPtr
	}
	ptr := Ptr{Type: typ, Data: data}
	if typ.IsID() {
		if block, ok := data.(IDBlock); ok {
			ptr.Owner = block.IDRef()
		}
	} else {
		ptr.Owner = parent.Owner
	}
	ptr.Type = refine(ptr)
	return ptr
}

// PointerRecast views ptr through the most specific type obtained by
// refining from each ancestor of its type. ptr is returned unchanged when
// no ancestor refines differently.
func PointerRecast(ptr Ptr) Ptr {
	out := ptr
	if ptr.Type == nil {
		return out
	}
	for base := ptr.Type.Base; base != nil; base = base.Base {
		candidate := PointerInheritRefine(ptr, base, ptr.Data)
		if candidate.Type != nil && candidate.Type != ptr.Type {
			out = candidate
		}
	}
	return out
}

// MainPointer returns an unowned handle on main.
func MainPointer(main *Main) Ptr {
	return Ptr{Type: MainStruct, Data: main}
}

// RegistryPointer returns an unowned handle exposing the registered types.
func (r *Registry) RegistryPointer() Ptr {
	return Ptr{Type: RegistryStruct, Data: r}
}

// refine applies the refine callbacks until a fixed point, at most
// MaxRefineDepth times.
func refine(ptr Ptr) *StructDescriptor {
	typ := ptr.Type
	for range MaxRefineDepth {
		if typ == nil || typ.Refine == nil {
			return typ
		}
		next := typ.Refine(Ptr{Owner: ptr.Owner, Type: typ, Data: ptr.Data})
		if next == nil || next == typ {
			return typ
		}
		typ = next
	}
	return typ
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

func sameData(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
