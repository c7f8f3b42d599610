package rna

import (
	"context"
	"fmt"

	"github.com/goliatone/go-rna/idprop"
)

// FloatGet returns the value of a scalar float property. Double entries
// are narrowed.
func (r *Registry) FloatGet(ptr Ptr, ref PropertyRef) float32 {
	rp, ok := r.resolveRead(ptr, ref, TypeFloat)
	if !ok {
		return 0
	}
	if rp.Entry != nil {
		return entryFloat(rp.Entry)
	}
	prop := rp.Prop
	switch {
	case prop.Float.Get != nil:
		return prop.Float.Get(ptr)
	case prop.Float.GetEx != nil:
		return prop.Float.GetEx(ptr, prop)
	}
	return r.FloatGetDefault(ptr, ref)
}

// FloatSet clamps value to the hard range, writes it and runs the change
// notifications.
func (r *Registry) FloatSet(ctx context.Context, ptr Ptr, ref PropertyRef, value float32) error {
	rp, err := r.resolveWrite(ptr, ref, TypeFloat, -1)
	if err != nil {
		return err
	}
	r.FloatClamp(ptr, ref, &value)

	prop := rp.Prop
	switch {
	case rp.Entry != nil:
		setEntryFloat(rp.Entry, value)
		rp.Entry.Touch()
	case prop.Float.Set != nil:
		prop.Float.Set(ptr, value)
	case prop.Float.SetEx != nil:
		prop.Float.SetEx(ptr, prop, value)
	default:
		if err := r.materialize(ptr, rp, idprop.NewFloat(rp.Identifier, value)); err != nil {
			return err
		}
	}
	r.Update(ctx, ptr, ref)
	return nil
}

// FloatGetArray copies the array into values and returns the number of
// elements written, never more than the array length.
func (r *Registry) FloatGetArray(ptr Ptr, ref PropertyRef, values []float32) int {
	rp, ok := r.resolveRead(ptr, ref, TypeFloat)
	if !ok || len(values) == 0 {
		return 0
	}
	if !rp.IsArray {
		values[0] = r.FloatGet(ptr, ref)
		return 1
	}
	n := min(len(values), rp.ArrayLen)
	if rp.Entry != nil {
		if rp.Entry.Type() != idprop.Array {
			values[0] = entryFloat(rp.Entry)
			return 1
		}
		if rp.Entry.Subtype() == idprop.Double {
			for i, v := range rp.Entry.Doubles()[:n] {
				values[i] = float32(v)
			}
			return n
		}
		return copy(values[:n], rp.Entry.Floats())
	}
	prop := rp.Prop
	buf := arrayBuffer(values, rp.ArrayLen)
	switch {
	case prop.Float.GetArray != nil:
		prop.Float.GetArray(ptr, buf)
	case prop.Float.GetArrayEx != nil:
		prop.Float.GetArrayEx(ptr, prop, buf)
	default:
		r.FloatGetDefaultArray(ptr, ref, buf)
	}
	copy(values[:n], buf)
	return n
}

// FloatSetArray clamps and writes the whole array from values.
func (r *Registry) FloatSetArray(ctx context.Context, ptr Ptr, ref PropertyRef, values []float32) error {
	rp, err := r.resolveWrite(ptr, ref, TypeFloat, -1)
	if err != nil {
		return err
	}
	if !rp.IsArray {
		if len(values) == 0 {
			return propertyError(ErrArrayLength, ptr, rp.Identifier)
		}
		return r.FloatSet(ctx, ptr, ref, values[0])
	}
	length := writeLength(rp, len(values))
	if len(values) < length {
		return fmt.Errorf("%w: %s.%s needs %d values, got %d", ErrArrayLength, structIdentifier(ptr.Type), rp.Identifier, length, len(values))
	}
	clamped := make([]float32, length)
	lo, hi := r.FloatRange(ptr, ref)
	for i, v := range values[:length] {
		clamped[i], _ = clamp(v, lo, hi)
	}

	prop := rp.Prop
	switch {
	case rp.Entry != nil:
		switch {
		case rp.Entry.Type() != idprop.Array:
			setEntryFloat(rp.Entry, clamped[0])
		case rp.Entry.Subtype() == idprop.Double:
			doubles := rp.Entry.Doubles()
			for i, v := range clamped {
				doubles[i] = float64(v)
			}
		default:
			copy(rp.Entry.Floats(), clamped)
		}
		rp.Entry.Touch()
	case prop.Float.SetArray != nil:
		prop.Float.SetArray(ptr, clamped)
	case prop.Float.SetArrayEx != nil:
		prop.Float.SetArrayEx(ptr, prop, clamped)
	default:
		if err := r.materialize(ptr, rp, idprop.NewFloatArray(rp.Identifier, clamped)); err != nil {
			return err
		}
	}
	r.Update(ctx, ptr, ref)
	return nil
}

// FloatGetIndex returns one element of a float array.
func (r *Registry) FloatGetIndex(ptr Ptr, ref PropertyRef, index int) float32 {
	length := r.ArrayLength(ptr, ref)
	if index < 0 || index >= length {
		return 0
	}
	values := make([]float32, length)
	r.FloatGetArray(ptr, ref, values)
	return values[index]
}

// FloatSetIndex writes one element of a float array.
func (r *Registry) FloatSetIndex(ctx context.Context, ptr Ptr, ref PropertyRef, index int, value float32) error {
	length := r.ArrayLength(ptr, ref)
	if index < 0 || index >= length {
		return propertyError(ErrIndexOutOfRange, ptr, ref.Identifier())
	}
	if err := r.checkEditable(ptr, ref, index); err != nil {
		return err
	}
	values := make([]float32, length)
	r.FloatGetArray(ptr, ref, values)
	values[index] = value
	return r.FloatSetArray(ctx, ptr, ref, values)
}

// FloatGetDefault returns the default of a scalar float property.
func (r *Registry) FloatGetDefault(ptr Ptr, ref PropertyRef) float32 {
	if ref.dynamic != nil {
		if ui := ref.dynamic.UI(); ui != nil && ui.Float != nil {
			return float32(ui.Float.Default)
		}
		return 0
	}
	prop := ref.static
	if prop == nil {
		return 0
	}
	if prop.Float.GetDefault != nil {
		return prop.Float.GetDefault(ptr, prop)
	}
	return prop.Float.Default
}

// FloatGetDefaultArray copies the array default into values.
func (r *Registry) FloatGetDefaultArray(ptr Ptr, ref PropertyRef, values []float32) {
	if ref.dynamic != nil {
		fill(values, 0)
		if ui := ref.dynamic.UI(); ui != nil && ui.Float != nil {
			fill(values, float32(ui.Float.Default))
			for i := range min(len(values), len(ui.Float.DefaultArray)) {
				values[i] = float32(ui.Float.DefaultArray[i])
			}
		}
		return
	}
	prop := ref.static
	if prop == nil {
		return
	}
	switch {
	case prop.Float.GetDefaultArray != nil:
		prop.Float.GetDefaultArray(ptr, prop, values)
	case prop.Float.DefaultArray != nil:
		fill(values, prop.Float.Default)
		copy(values, prop.Float.DefaultArray)
	default:
		fill(values, prop.Float.Default)
	}
}

func entryFloat(entry *idprop.Property) float32 {
	if entry.Type() == idprop.Double {
		return float32(entry.Double())
	}
	return entry.Float()
}

func setEntryFloat(entry *idprop.Property, value float32) {
	if entry.Type() == idprop.Double {
		entry.SetDouble(float64(value))
		return
	}
	entry.SetFloat(value)
}
