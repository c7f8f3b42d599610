package rna

import (
	"context"
	"fmt"

	"github.com/goliatone/go-rna/idprop"
)

// PointerType returns the struct type referenced by a pointer or
// collection property.
func (r *Registry) PointerType(ptr Ptr, ref PropertyRef) *StructDescriptor {
	prop := dispatch(ref)
	if prop == nil {
		return AnyTypeStruct
	}
	switch prop.Type {
	case TypePointer:
		if prop.Pointer.TypeFunc != nil {
			if typ := prop.Pointer.TypeFunc(ptr); typ != nil {
				return typ
			}
		}
		if prop.Pointer.Type != nil {
			return prop.Pointer.Type
		}
	case TypeCollection:
		if prop.Collection.Type != nil {
			return prop.Collection.Type
		}
	}
	return AnyTypeStruct
}

// PointerGet returns the instance referenced by a pointer property. A
// dynamic group slot without a value gets its backing group created on
// first access.
func (r *Registry) PointerGet(ptr Ptr, ref PropertyRef) Ptr {
	if lazyGroupSlot(ref) {
		r.groupMu.Lock()
		defer r.groupMu.Unlock()
	}
	rp, ok := r.resolveRead(ptr, ref, TypePointer)
	if !ok {
		return NullPtr
	}
	if rp.Entry != nil {
		return r.entryPointer(ptr, ref, rp.Entry)
	}
	prop := rp.Prop
	if prop.Pointer.Get != nil {
		return prop.Pointer.Get(ptr)
	}
	if rp.Outcome != OutcomeStaticOverride || r.PointerType(ptr, ref).IsID() {
		return NullPtr
	}
	group := r.ensureGroup(ptr, rp.Identifier)
	if group == nil {
		return NullPtr
	}
	return PointerInheritRefine(ptr, r.PointerType(ptr, ref), group)
}

func (r *Registry) entryPointer(ptr Ptr, ref PropertyRef, entry *idprop.Property) Ptr {
	switch entry.Type() {
	case idprop.Group:
		typ := PropertyGroupStruct
		if ref.static != nil {
			typ = r.PointerType(ptr, ref)
		}
		return PointerInheritRefine(ptr, typ, entry)
	case idprop.ID:
		if block, ok := entry.Ref().(IDBlock); ok {
			return PointerFromID(block)
		}
	}
	return NullPtr
}

// lazyGroupSlot reports whether reading ref may create its backing group.
// Lookup and creation for such slots both run under groupMu: the store is
// plain data, so a lookup outside the lock would race with a concurrent
// creation on the same instance.
func lazyGroupSlot(ref PropertyRef) bool {
	prop := ref.static
	return prop != nil && prop.Type == TypePointer && prop.Pointer.Get == nil
}

// ensureGroup returns the group entry named name, creating it when
// missing. Callers hold groupMu from the lookup that led here, so the
// store is checked again before anything is added.
func (r *Registry) ensureGroup(ptr Ptr, name string) *idprop.Property {
	store := StructIDProperties(ptr, true)
	if store == nil {
		return nil
	}
	if entry := store.Get(name); entry != nil {
		if entry.Type() == idprop.Group {
			return entry
		}
		return nil
	}
	group := idprop.NewGroup(name)
	store.Add(group)
	return group
}

// PointerSet assigns value to a pointer property. The value must be of the
// referenced type and pass the poll callback. A null value clears the
// reference.
func (r *Registry) PointerSet(ctx context.Context, ptr Ptr, ref PropertyRef, value Ptr) error {
	rp, err := r.resolveWrite(ptr, ref, TypePointer, -1)
	if err != nil {
		return err
	}
	typ := r.PointerType(ptr, ref)
	if value.IsValid() {
		if !value.Type.IsA(typ) {
			return fmt.Errorf("%w: %s.%s expects %s, got %s", ErrTypeMismatch, structIdentifier(ptr.Type), rp.Identifier, typ.Identifier, value.Type.Identifier)
		}
		if poll := rp.Prop.Pointer.Poll; poll != nil && !poll(ptr, value) {
			return propertyError(ErrPollRejected, ptr, rp.Identifier)
		}
	}

	prop := rp.Prop
	switch {
	case rp.Entry != nil && rp.Entry.Type() == idprop.ID:
		rp.Entry.SetRef(pointerData(value))
		rp.Entry.Touch()
	case rp.Entry != nil:
		return propertyError(ErrUnsupported, ptr, rp.Identifier)
	case prop.Pointer.Set != nil:
		prop.Pointer.Set(ptr, value)
	case typ.IsID():
		if !ptr.Type.IDPropertiesDatablockAllowed() {
			return propertyError(ErrUnsupported, ptr, rp.Identifier)
		}
		if err := r.materialize(ptr, rp, idprop.NewIDRef(rp.Identifier, pointerData(value))); err != nil {
			return err
		}
	default:
		return propertyError(ErrUnsupported, ptr, rp.Identifier)
	}
	r.Update(ctx, ptr, ref)
	return nil
}

func pointerData(value Ptr) any {
	if !value.IsValid() {
		return nil
	}
	return value.Data
}

// PointerAdd creates the backing group of a dynamic group slot when it has
// none yet and returns a handle on it.
func (r *Registry) PointerAdd(ctx context.Context, ptr Ptr, ref PropertyRef) (Ptr, error) {
	group, created, err := r.addGroup(ptr, ref)
	if err != nil {
		return NullPtr, err
	}
	if created {
		r.Update(ctx, ptr, ref)
	}
	return PointerInheritRefine(ptr, r.PointerType(ptr, ref), group), nil
}

func (r *Registry) addGroup(ptr Ptr, ref PropertyRef) (*idprop.Property, bool, error) {
	if lazyGroupSlot(ref) {
		r.groupMu.Lock()
		defer r.groupMu.Unlock()
	}
	rp, err := r.resolveWrite(ptr, ref, TypePointer, -1)
	if err != nil {
		return nil, false, err
	}
	if rp.Outcome == OutcomeStatic || r.PointerType(ptr, ref).IsID() {
		return nil, false, propertyError(ErrUnsupported, ptr, rp.Identifier)
	}
	if !ptr.Type.IDPropertiesCheck() {
		return nil, false, propertyError(ErrUnsupported, ptr, rp.Identifier)
	}
	group := r.ensureGroup(ptr, rp.Identifier)
	if group == nil {
		return nil, false, fmt.Errorf("%w: %s.%s holds an entry of another type", ErrTypeMismatch, structIdentifier(ptr.Type), rp.Identifier)
	}
	return group, rp.Entry == nil, nil
}

// PointerRemove deletes the entry backing a dynamic pointer slot.
func (r *Registry) PointerRemove(ctx context.Context, ptr Ptr, ref PropertyRef) error {
	rp, err := r.resolveWrite(ptr, ref, TypePointer, -1)
	if err != nil {
		return err
	}
	if rp.Entry == nil {
		return propertyError(ErrNotFound, ptr, rp.Identifier)
	}
	group := StructIDProperties(ptr, false)
	if group == nil || !group.RemoveEntry(rp.Entry) {
		return propertyError(ErrNotFound, ptr, rp.Identifier)
	}
	r.Update(ctx, ptr, ref)
	return nil
}
