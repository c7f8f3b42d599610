package rna

import (
	"context"
	"fmt"

	"github.com/goliatone/go-rna/idprop"
)

// BoolGet returns the value of a scalar boolean property.
func (r *Registry) BoolGet(ptr Ptr, ref PropertyRef) bool {
	rp, ok := r.resolveRead(ptr, ref, TypeBoolean)
	if !ok {
		return false
	}
	if rp.Entry != nil {
		return rp.Entry.Bool()
	}
	prop := rp.Prop
	switch {
	case prop.Bool.Get != nil:
		return prop.Bool.Get(ptr)
	case prop.Bool.GetEx != nil:
		return prop.Bool.GetEx(ptr, prop)
	}
	return r.BoolGetDefault(ptr, ref)
}

// BoolSet writes a scalar boolean property and runs the change
// notifications.
func (r *Registry) BoolSet(ctx context.Context, ptr Ptr, ref PropertyRef, value bool) error {
	rp, err := r.resolveWrite(ptr, ref, TypeBoolean, -1)
	if err != nil {
		return err
	}
	prop := rp.Prop
	switch {
	case rp.Entry != nil:
		rp.Entry.SetBool(value)
		rp.Entry.Touch()
	case prop.Bool.Set != nil:
		prop.Bool.Set(ptr, value)
	case prop.Bool.SetEx != nil:
		prop.Bool.SetEx(ptr, prop, value)
	default:
		if err := r.materialize(ptr, rp, idprop.NewBool(rp.Identifier, value)); err != nil {
			return err
		}
	}
	r.Update(ctx, ptr, ref)
	return nil
}

// BoolGetArray copies the array into values and returns the number of
// elements written, never more than the array length.
func (r *Registry) BoolGetArray(ptr Ptr, ref PropertyRef, values []bool) int {
	rp, ok := r.resolveRead(ptr, ref, TypeBoolean)
	if !ok || len(values) == 0 {
		return 0
	}
	if !rp.IsArray {
		values[0] = r.BoolGet(ptr, ref)
		return 1
	}
	n := min(len(values), rp.ArrayLen)
	if rp.Entry != nil {
		if rp.Entry.Type() != idprop.Array {
			values[0] = rp.Entry.Bool()
			return 1
		}
		for i, v := range rp.Entry.Ints()[:n] {
			values[i] = v != 0
		}
		return n
	}
	prop := rp.Prop
	buf := arrayBuffer(values, rp.ArrayLen)
	switch {
	case prop.Bool.GetArray != nil:
		prop.Bool.GetArray(ptr, buf)
	case prop.Bool.GetArrayEx != nil:
		prop.Bool.GetArrayEx(ptr, prop, buf)
	default:
		r.BoolGetDefaultArray(ptr, ref, buf)
	}
	copy(values[:n], buf)
	return n
}

// BoolSetArray writes the whole array from values.
func (r *Registry) BoolSetArray(ctx context.Context, ptr Ptr, ref PropertyRef, values []bool) error {
	rp, err := r.resolveWrite(ptr, ref, TypeBoolean, -1)
	if err != nil {
		return err
	}
	if !rp.IsArray {
		if len(values) == 0 {
			return propertyError(ErrArrayLength, ptr, rp.Identifier)
		}
		return r.BoolSet(ctx, ptr, ref, values[0])
	}
	length := writeLength(rp, len(values))
	if len(values) < length {
		return fmt.Errorf("%w: %s.%s needs %d values, got %d", ErrArrayLength, structIdentifier(ptr.Type), rp.Identifier, length, len(values))
	}
	values = values[:length]

	prop := rp.Prop
	switch {
	case rp.Entry != nil:
		if rp.Entry.Type() != idprop.Array {
			rp.Entry.SetBool(values[0])
		} else {
			ints := rp.Entry.Ints()
			for i, v := range values {
				ints[i] = boolInt(v)
			}
		}
		rp.Entry.Touch()
	case prop.Bool.SetArray != nil:
		prop.Bool.SetArray(ptr, values)
	case prop.Bool.SetArrayEx != nil:
		prop.Bool.SetArrayEx(ptr, prop, values)
	default:
		ints := make([]int, len(values))
		for i, v := range values {
			ints[i] = boolInt(v)
		}
		if err := r.materialize(ptr, rp, idprop.NewIntArray(rp.Identifier, ints)); err != nil {
			return err
		}
	}
	r.Update(ctx, ptr, ref)
	return nil
}

// BoolGetIndex returns one element of a boolean array.
func (r *Registry) BoolGetIndex(ptr Ptr, ref PropertyRef, index int) bool {
	length := r.ArrayLength(ptr, ref)
	if index < 0 || index >= length {
		return false
	}
	values := make([]bool, length)
	r.BoolGetArray(ptr, ref, values)
	return values[index]
}

// BoolSetIndex writes one element of a boolean array.
func (r *Registry) BoolSetIndex(ctx context.Context, ptr Ptr, ref PropertyRef, index int, value bool) error {
	length := r.ArrayLength(ptr, ref)
	if index < 0 || index >= length {
		return propertyError(ErrIndexOutOfRange, ptr, ref.Identifier())
	}
	if err := r.checkEditable(ptr, ref, index); err != nil {
		return err
	}
	values := make([]bool, length)
	r.BoolGetArray(ptr, ref, values)
	values[index] = value
	return r.BoolSetArray(ctx, ptr, ref, values)
}

// BoolGetDefault returns the default of a scalar boolean property.
func (r *Registry) BoolGetDefault(ptr Ptr, ref PropertyRef) bool {
	if ref.dynamic != nil {
		if ui := ref.dynamic.UI(); ui != nil && ui.Int != nil {
			return ui.Int.Default != 0
		}
		return false
	}
	prop := ref.static
	if prop == nil {
		return false
	}
	if prop.Bool.GetDefault != nil {
		return prop.Bool.GetDefault(ptr, prop)
	}
	return prop.Bool.Default
}

// BoolGetDefaultArray copies the array default into values.
func (r *Registry) BoolGetDefaultArray(ptr Ptr, ref PropertyRef, values []bool) {
	if ref.dynamic != nil {
		var defaults []int
		if ui := ref.dynamic.UI(); ui != nil && ui.Int != nil {
			defaults = ui.Int.DefaultArray
			fill(values, ui.Int.Default != 0)
		} else {
			fill(values, false)
		}
		for i := range min(len(values), len(defaults)) {
			values[i] = defaults[i] != 0
		}
		return
	}
	prop := ref.static
	if prop == nil {
		return
	}
	switch {
	case prop.Bool.GetDefaultArray != nil:
		prop.Bool.GetDefaultArray(ptr, prop, values)
	case prop.Bool.DefaultArray != nil:
		fill(values, prop.Bool.Default)
		copy(values, prop.Bool.DefaultArray)
	default:
		fill(values, prop.Bool.Default)
	}
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// arrayBuffer returns values when it can hold length elements, otherwise a
// new slice.
func arrayBuffer[T any](values []T, length int) []T {
	if len(values) >= length {
		return values[:length]
	}
	return make([]T, length)
}
