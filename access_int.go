package rna

import (
	"context"
	"fmt"

	"github.com/goliatone/go-rna/idprop"
)

// IntGet returns the value of a scalar int property.
func (r *Registry) IntGet(ptr Ptr, ref PropertyRef) int {
	rp, ok := r.resolveRead(ptr, ref, TypeInt)
	if !ok {
		return 0
	}
	if rp.Entry != nil {
		return rp.Entry.Int()
	}
	prop := rp.Prop
	switch {
	case prop.Int.Get != nil:
		return prop.Int.Get(ptr)
	case prop.Int.GetEx != nil:
		return prop.Int.GetEx(ptr, prop)
	}
	return r.IntGetDefault(ptr, ref)
}

// IntSet clamps value to the hard range, writes it and runs the change
// notifications.
func (r *Registry) IntSet(ctx context.Context, ptr Ptr, ref PropertyRef, value int) error {
	rp, err := r.resolveWrite(ptr, ref, TypeInt, -1)
	if err != nil {
		return err
	}
	r.IntClamp(ptr, ref, &value)

	prop := rp.Prop
	switch {
	case rp.Entry != nil:
		rp.Entry.SetInt(value)
		rp.Entry.Touch()
	case prop.Int.Set != nil:
		prop.Int.Set(ptr, value)
	case prop.Int.SetEx != nil:
		prop.Int.SetEx(ptr, prop, value)
	default:
		if err := r.materialize(ptr, rp, idprop.NewInt(rp.Identifier, value)); err != nil {
			return err
		}
	}
	r.Update(ctx, ptr, ref)
	return nil
}

// IntGetArray copies the array into values and returns the number of
// elements written, never more than the array length.
func (r *Registry) IntGetArray(ptr Ptr, ref PropertyRef, values []int) int {
	rp, ok := r.resolveRead(ptr, ref, TypeInt)
	if !ok || len(values) == 0 {
		return 0
	}
	if !rp.IsArray {
		values[0] = r.IntGet(ptr, ref)
		return 1
	}
	n := min(len(values), rp.ArrayLen)
	if rp.Entry != nil {
		if rp.Entry.Type() != idprop.Array {
			values[0] = rp.Entry.Int()
			return 1
		}
		return copy(values[:n], rp.Entry.Ints())
	}
	prop := rp.Prop
	buf := arrayBuffer(values, rp.ArrayLen)
	switch {
	case prop.Int.GetArray != nil:
		prop.Int.GetArray(ptr, buf)
	case prop.Int.GetArrayEx != nil:
		prop.Int.GetArrayEx(ptr, prop, buf)
	default:
		r.IntGetDefaultArray(ptr, ref, buf)
	}
	copy(values[:n], buf)
	return n
}

// IntSetArray clamps and writes the whole array from values.
func (r *Registry) IntSetArray(ctx context.Context, ptr Ptr, ref PropertyRef, values []int) error {
	rp, err := r.resolveWrite(ptr, ref, TypeInt, -1)
	if err != nil {
		return err
	}
	if !rp.IsArray {
		if len(values) == 0 {
			return propertyError(ErrArrayLength, ptr, rp.Identifier)
		}
		return r.IntSet(ctx, ptr, ref, values[0])
	}
	length := writeLength(rp, len(values))
	if len(values) < length {
		return fmt.Errorf("%w: %s.%s needs %d values, got %d", ErrArrayLength, structIdentifier(ptr.Type), rp.Identifier, length, len(values))
	}
	clamped := make([]int, length)
	lo, hi := r.IntRange(ptr, ref)
	for i, v := range values[:length] {
		clamped[i], _ = clamp(v, lo, hi)
	}

	prop := rp.Prop
	switch {
	case rp.Entry != nil:
		if rp.Entry.Type() != idprop.Array {
			rp.Entry.SetInt(clamped[0])
		} else {
			copy(rp.Entry.Ints(), clamped)
		}
		rp.Entry.Touch()
	case prop.Int.SetArray != nil:
		prop.Int.SetArray(ptr, clamped)
	case prop.Int.SetArrayEx != nil:
		prop.Int.SetArrayEx(ptr, prop, clamped)
	default:
		if err := r.materialize(ptr, rp, idprop.NewIntArray(rp.Identifier, clamped)); err != nil {
			return err
		}
	}
	r.Update(ctx, ptr, ref)
	return nil
}

// IntGetIndex returns one element of an int array.
func (r *Registry) IntGetIndex(ptr Ptr, ref PropertyRef, index int) int {
	length := r.ArrayLength(ptr, ref)
	if index < 0 || index >= length {
		return 0
	}
	values := make([]int, length)
	r.IntGetArray(ptr, ref, values)
	return values[index]
}

// IntSetIndex writes one element of an int array.
func (r *Registry) IntSetIndex(ctx context.Context, ptr Ptr, ref PropertyRef, index int, value int) error {
	length := r.ArrayLength(ptr, ref)
	if index < 0 || index >= length {
		return propertyError(ErrIndexOutOfRange, ptr, ref.Identifier())
	}
	if err := r.checkEditable(ptr, ref, index); err != nil {
		return err
	}
	values := make([]int, length)
	r.IntGetArray(ptr, ref, values)
	values[index] = value
	return r.IntSetArray(ctx, ptr, ref, values)
}

// IntGetDefault returns the default of a scalar int property. Dynamic
// entries use the default stored in their UI data.
func (r *Registry) IntGetDefault(ptr Ptr, ref PropertyRef) int {
	if ref.dynamic != nil {
		if ui := ref.dynamic.UI(); ui != nil && ui.Int != nil {
			return ui.Int.Default
		}
		return 0
	}
	prop := ref.static
	if prop == nil {
		return 0
	}
	if prop.Int.GetDefault != nil {
		return prop.Int.GetDefault(ptr, prop)
	}
	return prop.Int.Default
}

// IntGetDefaultArray copies the array default into values.
func (r *Registry) IntGetDefaultArray(ptr Ptr, ref PropertyRef, values []int) {
	if ref.dynamic != nil {
		fill(values, 0)
		if ui := ref.dynamic.UI(); ui != nil && ui.Int != nil {
			fill(values, ui.Int.Default)
			copy(values, ui.Int.DefaultArray)
		}
		return
	}
	prop := ref.static
	if prop == nil {
		return
	}
	switch {
	case prop.Int.GetDefaultArray != nil:
		prop.Int.GetDefaultArray(ptr, prop, values)
	case prop.Int.DefaultArray != nil:
		fill(values, prop.Int.Default)
		copy(values, prop.Int.DefaultArray)
	default:
		fill(values, prop.Int.Default)
	}
}
