package rna

import (
	"context"
	"fmt"

	"github.com/goliatone/go-rna/idprop"
)

// EnumGet returns the value of an enum property.
func (r *Registry) EnumGet(ptr Ptr, ref PropertyRef) int {
	rp, ok := r.resolveRead(ptr, ref, TypeEnum)
	if !ok {
		return 0
	}
	if rp.Entry != nil {
		return rp.Entry.Int()
	}
	prop := rp.Prop
	switch {
	case prop.Enum.Get != nil:
		return prop.Enum.Get(ptr)
	case prop.Enum.GetEx != nil:
		return prop.Enum.GetEx(ptr, prop)
	}
	return r.EnumGetDefault(ptr, ref)
}

// EnumSet writes an enum property. The value is not checked against the
// items, use EnumSetIdentifier for checked writes.
func (r *Registry) EnumSet(ctx context.Context, ptr Ptr, ref PropertyRef, value int) error {
	rp, err := r.resolveWrite(ptr, ref, TypeEnum, -1)
	if err != nil {
		return err
	}
	prop := rp.Prop
	switch {
	case rp.Entry != nil:
		rp.Entry.SetInt(value)
		rp.Entry.Touch()
	case prop.Enum.Set != nil:
		prop.Enum.Set(ptr, value)
	case prop.Enum.SetEx != nil:
		prop.Enum.SetEx(ptr, prop, value)
	default:
		if err := r.materialize(ptr, rp, idprop.NewInt(rp.Identifier, value)); err != nil {
			return err
		}
	}
	r.Update(ctx, ptr, ref)
	return nil
}

// EnumSetIdentifier writes the value of the item named identifier. Flag
// enums accept a single flag identifier.
func (r *Registry) EnumSetIdentifier(ctx context.Context, ptr Ptr, ref PropertyRef, identifier string) error {
	value, ok := r.EnumValue(ctx, ptr, ref, identifier)
	if !ok {
		return fmt.Errorf("%w: enum item %q of %s.%s", ErrNotFound, identifier, structIdentifier(ptr.Type), ref.Identifier())
	}
	return r.EnumSet(ctx, ptr, ref, value)
}

// EnumItems returns the items of an enum property. Per instance item
// callbacks only run when ctx carries an interactive Context; otherwise
// the static table is returned.
func (r *Registry) EnumItems(ctx context.Context, ptr Ptr, ref PropertyRef) *EnumTable {
	prop := ref.static
	if prop == nil || prop.Type != TypeEnum {
		return NewEnumTable()
	}
	if c := ContextFrom(ctx); c != nil && prop.Enum.ItemsFunc != nil {
		if items := prop.Enum.ItemsFunc(c, ptr, prop); items != nil {
			return items
		}
	}
	if prop.Enum.Items == nil {
		return NewEnumTable()
	}
	return prop.Enum.Items
}

// EnumIdentifier returns the identifier of the item holding value.
func (r *Registry) EnumIdentifier(ctx context.Context, ptr Ptr, ref PropertyRef, value int) (string, bool) {
	return r.EnumItems(ctx, ptr, ref).Identifier(value)
}

// EnumValue returns the value of the item named identifier.
func (r *Registry) EnumValue(ctx context.Context, ptr Ptr, ref PropertyRef, identifier string) (int, bool) {
	return r.EnumItems(ctx, ptr, ref).Value(identifier)
}

// EnumBitflagIdentifiers returns the identifiers of the flags set in the
// value of a flag enum.
func (r *Registry) EnumBitflagIdentifiers(ctx context.Context, ptr Ptr, ref PropertyRef) []string {
	return r.EnumItems(ctx, ptr, ref).BitflagIdentifiers(r.EnumGet(ptr, ref))
}

// EnumGetDefault returns the default of an enum property. A default that
// names no item of a non flag enum falls back to the first item.
func (r *Registry) EnumGetDefault(ptr Ptr, ref PropertyRef) int {
	prop := ref.static
	if prop == nil {
		return 0
	}
	value := prop.Enum.Default
	if prop.Enum.GetDefault != nil {
		value = prop.Enum.GetDefault(ptr, prop)
	}
	if prop.Flag&PropEnumFlag != 0 || prop.Enum.Items == nil {
		return value
	}
	if _, ok := prop.Enum.Items.FindValue(value); ok {
		return value
	}
	for _, item := range prop.Enum.Items.Items() {
		if item.Identifier != "" {
			return item.Value
		}
	}
	return value
}
