package rna

import (
	"context"
	"iter"

	"github.com/goliatone/go-rna/idprop"
)

// CollectionIterator walks the items of a collection property:
//
//	for it := reg.CollectionBegin(ptr, ref); it.Valid; it.Next() {
//		use(it.Ptr)
//	}
//	it.End()
type CollectionIterator struct {
	reg    *Registry
	parent Ptr
	ref    PropertyRef
	prop   *PropertyDescriptor
	entry  *idprop.Property
	typ    *StructDescriptor
	length int

	// Index is the position of the current item.
	Index int
	// Ptr is the handle on the current item.
	Ptr Ptr
	// Valid is false once the iterator is exhausted.
	Valid bool
}

// CollectionBegin starts an iteration over the collection.
func (r *Registry) CollectionBegin(ptr Ptr, ref PropertyRef) *CollectionIterator {
	it := &CollectionIterator{reg: r, parent: ptr, ref: ref}
	rp, ok := r.resolveRead(ptr, ref, TypeCollection)
	if !ok {
		return it
	}
	it.prop = rp.Prop
	it.entry = rp.Entry
	it.typ = r.PointerType(ptr, ref)
	it.length = r.collectionLength(ptr, rp)
	it.Index = -1
	it.Next()
	return it
}

// Next advances to the following item.
func (it *CollectionIterator) Next() {
	it.Index++
	if it.Index >= it.length {
		it.Valid = false
		it.Ptr = NullPtr
		return
	}
	it.Ptr = it.reg.collectionItem(it.parent, it.prop, it.entry, it.typ, it.Index)
	it.Valid = true
}

// End releases the iterator.
func (it *CollectionIterator) End() {
	it.Valid = false
	it.Ptr = NullPtr
	it.entry = nil
}

// CollectionSeq yields the index and handle of every item.
func (r *Registry) CollectionSeq(ptr Ptr, ref PropertyRef) iter.Seq2[int, Ptr] {
	return func(yield func(int, Ptr) bool) {
		it := r.CollectionBegin(ptr, ref)
		defer it.End()
		for ; it.Valid; it.Next() {
			if !yield(it.Index, it.Ptr) {
				return
			}
		}
	}
}

// CollectionLength returns the number of items.
func (r *Registry) CollectionLength(ptr Ptr, ref PropertyRef) int {
	rp, ok := r.resolveRead(ptr, ref, TypeCollection)
	if !ok {
		return 0
	}
	return r.collectionLength(ptr, rp)
}

func (r *Registry) collectionLength(ptr Ptr, rp ResolvedProperty) int {
	if rp.Entry != nil {
		return rp.Entry.Len()
	}
	if rp.Outcome == OutcomeStatic && rp.Prop.Collection.Length != nil {
		return rp.Prop.Collection.Length(ptr)
	}
	return 0
}

func (r *Registry) collectionItem(parent Ptr, prop *PropertyDescriptor, entry *idprop.Property, typ *StructDescriptor, index int) Ptr {
	if entry != nil {
		return PointerInheritRefine(parent, typ, entry.Item(index))
	}
	if prop.Collection.Item == nil {
		return NullPtr
	}
	return PointerInheritRefine(parent, typ, prop.Collection.Item(parent, index))
}

// CollectionLookupInt returns the item at index.
func (r *Registry) CollectionLookupInt(ptr Ptr, ref PropertyRef, index int) (Ptr, bool) {
	rp, ok := r.resolveRead(ptr, ref, TypeCollection)
	if !ok || index < 0 {
		return NullPtr, false
	}
	if rp.Entry == nil && rp.Prop.Collection.LookupInt != nil {
		item, found := rp.Prop.Collection.LookupInt(ptr, index)
		if !found {
			return NullPtr, false
		}
		return item, true
	}
	if index >= r.collectionLength(ptr, rp) {
		return NullPtr, false
	}
	item := r.collectionItem(ptr, rp.Prop, rp.Entry, r.PointerType(ptr, ref), index)
	return item, item.IsValid()
}

// CollectionLookupString returns the item whose name is key and its
// index. Without a lookup callback the items' name property is compared
// one by one. The index is -1 when a callback answered or nothing matched.
func (r *Registry) CollectionLookupString(ptr Ptr, ref PropertyRef, key string) (Ptr, int, bool) {
	rp, ok := r.resolveRead(ptr, ref, TypeCollection)
	if !ok {
		return NullPtr, -1, false
	}
	if rp.Entry == nil && rp.Prop.Collection.LookupString != nil {
		item, found := rp.Prop.Collection.LookupString(ptr, key)
		if !found {
			return NullPtr, -1, false
		}
		return item, -1, true
	}
	for index, item := range r.CollectionSeq(ptr, ref) {
		nameProp := item.Type.NameProp()
		if nameProp == nil {
			continue
		}
		if r.StringGet(item, StaticRef(nameProp)) == key {
			return item, index, true
		}
	}
	return NullPtr, -1, false
}

// collectionEntry returns the group array backing a dynamic collection,
// creating it for registered dynamic slots when create is set.
func (r *Registry) collectionEntry(ptr Ptr, ref PropertyRef, create bool) (ResolvedProperty, *idprop.Property, error) {
	rp, err := r.resolveWrite(ptr, ref, TypeCollection, -1)
	if err != nil {
		return rp, nil, err
	}
	if rp.Entry != nil {
		return rp, rp.Entry, nil
	}
	if rp.Outcome == OutcomeStatic || !create {
		return rp, nil, propertyError(ErrUnsupported, ptr, rp.Identifier)
	}
	entry := idprop.NewGroupArray(rp.Identifier)
	if err := r.materialize(ptr, rp, entry); err != nil {
		return rp, nil, err
	}
	return rp, entry, nil
}

// checkInsertable rejects structural edits on library overrides unless the
// collection is a dynamic slot allowing insertion.
func (r *Registry) checkInsertable(ptr Ptr, ref PropertyRef) error {
	if r.CollectionInsertable(ptr, ref) {
		return nil
	}
	return &EditError{Struct: structIdentifier(ptr.Type), Property: ref.Identifier(), Reason: ReasonOverride}
}

// CollectionAdd appends a new item to a dynamic collection and returns it.
func (r *Registry) CollectionAdd(ctx context.Context, ptr Ptr, ref PropertyRef) (Ptr, error) {
	if err := r.checkInsertable(ptr, ref); err != nil {
		if _, werr := r.resolveWrite(ptr, ref, TypeCollection, -1); werr != nil {
			return NullPtr, werr
		}
		return NullPtr, err
	}
	_, entry, err := r.collectionEntry(ptr, ref, true)
	if err != nil {
		return NullPtr, err
	}
	item := entry.Append()
	r.Update(ctx, ptr, ref)
	return PointerInheritRefine(ptr, r.PointerType(ptr, ref), item), nil
}

// CollectionRemove deletes the item at index of a dynamic collection.
func (r *Registry) CollectionRemove(ctx context.Context, ptr Ptr, ref PropertyRef, index int) error {
	rp, entry, err := r.collectionEntry(ptr, ref, false)
	if err != nil {
		return err
	}
	if !entry.RemoveAt(index) {
		return propertyError(ErrIndexOutOfRange, ptr, rp.Identifier)
	}
	r.Update(ctx, ptr, ref)
	return nil
}

// CollectionMove relocates the item at from to position to.
func (r *Registry) CollectionMove(ctx context.Context, ptr Ptr, ref PropertyRef, from, to int) error {
	if err := r.checkInsertable(ptr, ref); err != nil {
		if _, werr := r.resolveWrite(ptr, ref, TypeCollection, -1); werr != nil {
			return werr
		}
		return err
	}
	rp, entry, err := r.collectionEntry(ptr, ref, false)
	if err != nil {
		return err
	}
	if !entry.Move(from, to) {
		return propertyError(ErrIndexOutOfRange, ptr, rp.Identifier)
	}
	r.Update(ctx, ptr, ref)
	return nil
}

// CollectionClear removes every item of a dynamic collection.
func (r *Registry) CollectionClear(ctx context.Context, ptr Ptr, ref PropertyRef) error {
	_, entry, err := r.collectionEntry(ptr, ref, false)
	if err != nil {
		return err
	}
	entry.Clear()
	r.Update(ctx, ptr, ref)
	return nil
}
