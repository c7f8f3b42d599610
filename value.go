package rna

import (
	"context"
	"fmt"
	"reflect"
)

// Get returns the value of the property as a plain Go value: bool, int,
// float64, string, the item identifier of enums (a []string for flag
// enums), Ptr for pointers and []Ptr for collections. Arrays are returned
// as slices of the element kind.
func (r *Registry) Get(ctx context.Context, ptr Ptr, ref PropertyRef) (any, error) {
	rp := r.Resolve(ptr, ref)
	if rp.Prop == nil {
		return nil, propertyError(ErrNotFound, ptr, ref.Identifier())
	}
	n := r.ArrayLength(ptr, ref)
	switch rp.Prop.Type {
	case TypeBoolean:
		if rp.IsArray {
			values := make([]bool, n)
			r.BoolGetArray(ptr, ref, values)
			return values, nil
		}
		return r.BoolGet(ptr, ref), nil
	case TypeInt:
		if rp.IsArray {
			values := make([]int, n)
			r.IntGetArray(ptr, ref, values)
			return values, nil
		}
		return r.IntGet(ptr, ref), nil
	case TypeFloat:
		if rp.IsArray {
			values := make([]float32, n)
			r.FloatGetArray(ptr, ref, values)
			out := make([]float64, n)
			for i, v := range values {
				out[i] = float64(v)
			}
			return out, nil
		}
		return float64(r.FloatGet(ptr, ref)), nil
	case TypeString:
		return r.StringGet(ptr, ref), nil
	case TypeEnum:
		if PropertyFlag(ref)&PropEnumFlag != 0 {
			return r.EnumBitflagIdentifiers(ctx, ptr, ref), nil
		}
		value := r.EnumGet(ptr, ref)
		if id, ok := r.EnumIdentifier(ctx, ptr, ref, value); ok {
			return id, nil
		}
		return value, nil
	case TypePointer:
		return r.PointerGet(ptr, ref), nil
	case TypeCollection:
		var items []Ptr
		for _, item := range r.CollectionSeq(ptr, ref) {
			items = append(items, item)
		}
		return items, nil
	}
	return nil, propertyError(ErrUnsupported, ptr, rp.Identifier)
}

// GetIndex returns one element of an array property, or the whole value
// when index is negative.
func (r *Registry) GetIndex(ctx context.Context, ptr Ptr, ref PropertyRef, index int) (any, error) {
	if index < 0 {
		return r.Get(ctx, ptr, ref)
	}
	if index >= r.ArrayLength(ptr, ref) {
		return nil, propertyError(ErrIndexOutOfRange, ptr, ref.Identifier())
	}
	switch PropertyTypeOf(ref) {
	case TypeBoolean:
		return r.BoolGetIndex(ptr, ref, index), nil
	case TypeInt:
		return r.IntGetIndex(ptr, ref, index), nil
	case TypeFloat:
		return float64(r.FloatGetIndex(ptr, ref, index)), nil
	}
	return nil, propertyError(ErrUnsupported, ptr, ref.Identifier())
}

// Set writes a plain Go value, converting between numeric kinds. Enums
// accept an identifier or a number, pointers a Ptr or an IDBlock.
func (r *Registry) Set(ctx context.Context, ptr Ptr, ref PropertyRef, value any) error {
	prop := dispatch(ref)
	if prop == nil {
		return propertyError(ErrNotFound, ptr, ref.Identifier())
	}
	mismatch := func() error {
		return fmt.Errorf("%w: cannot assign %T to %s.%s (%s)", ErrTypeMismatch, value, structIdentifier(ptr.Type), ref.Identifier(), prop.Type)
	}
	rv := reflect.ValueOf(value)
	isSlice := rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array)

	switch prop.Type {
	case TypeBoolean:
		if isSlice {
			values := make([]bool, rv.Len())
			for i := range values {
				b, ok := toBool(rv.Index(i))
				if !ok {
					return mismatch()
				}
				values[i] = b
			}
			return r.BoolSetArray(ctx, ptr, ref, values)
		}
		b, ok := toBool(rv)
		if !ok {
			return mismatch()
		}
		return r.BoolSet(ctx, ptr, ref, b)

	case TypeInt:
		if isSlice {
			values := make([]int, rv.Len())
			for i := range values {
				f, ok := toFloat(rv.Index(i))
				if !ok {
					return mismatch()
				}
				values[i] = int(f)
			}
			return r.IntSetArray(ctx, ptr, ref, values)
		}
		f, ok := toFloat(rv)
		if !ok {
			return mismatch()
		}
		return r.IntSet(ctx, ptr, ref, int(f))

	case TypeFloat:
		if isSlice {
			values := make([]float32, rv.Len())
			for i := range values {
				f, ok := toFloat(rv.Index(i))
				if !ok {
					return mismatch()
				}
				values[i] = float32(f)
			}
			return r.FloatSetArray(ctx, ptr, ref, values)
		}
		f, ok := toFloat(rv)
		if !ok {
			return mismatch()
		}
		return r.FloatSet(ctx, ptr, ref, float32(f))

	case TypeString:
		s, ok := value.(string)
		if !ok {
			return mismatch()
		}
		return r.StringSet(ctx, ptr, ref, s)

	case TypeEnum:
		if s, ok := value.(string); ok {
			return r.EnumSetIdentifier(ctx, ptr, ref, s)
		}
		f, ok := toFloat(rv)
		if !ok {
			return mismatch()
		}
		return r.EnumSet(ctx, ptr, ref, int(f))

	case TypePointer:
		switch v := value.(type) {
		case nil:
			return r.PointerSet(ctx, ptr, ref, NullPtr)
		case Ptr:
			return r.PointerSet(ctx, ptr, ref, v)
		case IDBlock:
			return r.PointerSet(ctx, ptr, ref, PointerFromID(v))
		}
		return mismatch()
	}
	return propertyError(ErrUnsupported, ptr, ref.Identifier())
}

// SetIndex writes one element of an array property, or the whole value
// when index is negative.
func (r *Registry) SetIndex(ctx context.Context, ptr Ptr, ref PropertyRef, index int, value any) error {
	if index < 0 {
		return r.Set(ctx, ptr, ref, value)
	}
	rv := reflect.ValueOf(value)
	switch PropertyTypeOf(ref) {
	case TypeBoolean:
		if b, ok := toBool(rv); ok {
			return r.BoolSetIndex(ctx, ptr, ref, index, b)
		}
	case TypeInt:
		if f, ok := toFloat(rv); ok {
			return r.IntSetIndex(ctx, ptr, ref, index, int(f))
		}
	case TypeFloat:
		if f, ok := toFloat(rv); ok {
			return r.FloatSetIndex(ctx, ptr, ref, index, float32(f))
		}
	default:
		return propertyError(ErrUnsupported, ptr, ref.Identifier())
	}
	return fmt.Errorf("%w: cannot assign %T to %s.%s[%d]", ErrTypeMismatch, value, structIdentifier(ptr.Type), ref.Identifier(), index)
}

func toFloat(v reflect.Value) (float64, bool) {
	if !v.IsValid() {
		return 0, false
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Bool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	case reflect.Interface:
		return toFloat(v.Elem())
	default:
		return 0, false
	}
}

func toBool(v reflect.Value) (bool, bool) {
	if v.IsValid() && v.Kind() == reflect.Bool {
		return v.Bool(), true
	}
	f, ok := toFloat(v)
	return f != 0, ok
}
