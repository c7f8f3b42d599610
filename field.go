package rna

import (
	"fmt"
	"math"
	"reflect"
)

// BindField completes prop with callbacks reading and writing the exported
// field of struct T named field. Instances must hold a *T. The kind, array
// length and raw layout follow the field type; narrow integer fields get
// their type bounds as hard range unless prop sets one.
//
// Supported field types are bool, integers, floats, string and fixed
// arrays of the numeric kinds up to three dimensions. An integer field
// bound to a prop of TypeEnum stays an enum.
func BindField[T any](field string, prop *PropertyDescriptor) (*PropertyDescriptor, error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("rna: bind %s: %s is not a struct", field, typ)
	}
	sf, ok := typ.FieldByName(field)
	if !ok || !sf.IsExported() {
		return nil, fmt.Errorf("%w: field %s.%s", ErrNotFound, typ, field)
	}
	if prop == nil {
		prop = &PropertyDescriptor{}
	}
	if prop.Identifier == "" {
		prop.Identifier = field
	}

	elem := sf.Type
	var dims []int
	for elem.Kind() == reflect.Array {
		dims = append(dims, elem.Len())
		elem = elem.Elem()
	}
	if len(dims) > MaxArrayDimension {
		return nil, fmt.Errorf("rna: bind %s: %d dimensions", field, len(dims))
	}
	if len(dims) > 0 {
		prop.ArrayLength = dims
	}

	index := sf.Index
	value := func(ptr Ptr) reflect.Value {
		return reflect.ValueOf(ptr.Data).Elem().FieldByIndex(index)
	}
	// flat visits the elements of a possibly nested array in memory order.
	flat := func(v reflect.Value, visit func(i int, e reflect.Value)) {
		i := 0
		var walk func(v reflect.Value)
		walk = func(v reflect.Value) {
			if v.Kind() != reflect.Array {
				visit(i, v)
				i++
				return
			}
			for j := range v.Len() {
				walk(v.Index(j))
			}
		}
		walk(v)
	}

	switch elem.Kind() {
	case reflect.Bool:
		prop.Type = TypeBoolean
		prop.Bool.Get = func(ptr Ptr) bool { return value(ptr).Bool() }
		prop.Bool.Set = func(ptr Ptr, v bool) { value(ptr).SetBool(v) }
		prop.Bool.GetArray = func(ptr Ptr, values []bool) {
			flat(value(ptr), func(i int, e reflect.Value) { values[i] = e.Bool() })
		}
		prop.Bool.SetArray = func(ptr Ptr, values []bool) {
			flat(value(ptr), func(i int, e reflect.Value) { e.SetBool(values[i]) })
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32:
		get := intGetter(elem.Kind())
		set := intSetter(elem.Kind())
		if prop.Type == TypeEnum && len(dims) == 0 {
			prop.Enum.Get = func(ptr Ptr) int { return get(value(ptr)) }
			prop.Enum.Set = func(ptr Ptr, v int) { set(value(ptr), v) }
			break
		}
		prop.Type = TypeInt
		prop.Int.Get = func(ptr Ptr) int { return get(value(ptr)) }
		prop.Int.Set = func(ptr Ptr, v int) { set(value(ptr), v) }
		prop.Int.GetArray = func(ptr Ptr, values []int) {
			flat(value(ptr), func(i int, e reflect.Value) { values[i] = get(e) })
		}
		prop.Int.SetArray = func(ptr Ptr, values []int) {
			flat(value(ptr), func(i int, e reflect.Value) { set(e, values[i]) })
		}
		if prop.Int.HardMin == 0 && prop.Int.HardMax == 0 {
			prop.Int.HardMin, prop.Int.HardMax = intBounds(elem.Kind())
		}

	case reflect.Float32, reflect.Float64:
		prop.Type = TypeFloat
		prop.Float.Get = func(ptr Ptr) float32 { return float32(value(ptr).Float()) }
		prop.Float.Set = func(ptr Ptr, v float32) { value(ptr).SetFloat(float64(v)) }
		prop.Float.GetArray = func(ptr Ptr, values []float32) {
			flat(value(ptr), func(i int, e reflect.Value) { values[i] = float32(e.Float()) })
		}
		prop.Float.SetArray = func(ptr Ptr, values []float32) {
			flat(value(ptr), func(i int, e reflect.Value) { e.SetFloat(float64(values[i])) })
		}

	case reflect.String:
		if len(dims) > 0 {
			return nil, fmt.Errorf("%w: string array field %s", ErrUnsupported, field)
		}
		prop.Type = TypeString
		prop.String.Get = func(ptr Ptr) string { return value(ptr).String() }
		prop.String.Set = func(ptr Ptr, v string) { value(ptr).SetString(v) }

	default:
		return nil, fmt.Errorf("%w: field %s of kind %s", ErrUnsupported, field, elem.Kind())
	}

	if raw := rawTypeOf(elem.Kind()); raw != RawNone {
		prop.RawOffset = sf.Offset
		prop.RawType = raw
		prop.Intern |= InternRawAccess
	}
	return prop, nil
}

// MustBindField is BindField that panics on error.
func MustBindField[T any](field string, prop *PropertyDescriptor) *PropertyDescriptor {
	bound, err := BindField[T](field, prop)
	if err != nil {
		panic(err)
	}
	return bound
}

// BindCollection returns a collection property over the slice returned by
// items. Items are exposed as *E and support raw transfer.
func BindCollection[E any](identifier string, typ *StructDescriptor, items func(ptr Ptr) []E) *PropertyDescriptor {
	return &PropertyDescriptor{
		Identifier: identifier,
		Type:       TypeCollection,
		Intern:     InternRawArray,
		Collection: CollectionSpec{
			Type:   typ,
			Length: func(ptr Ptr) int { return len(items(ptr)) },
			Item: func(ptr Ptr, index int) any {
				s := items(ptr)
				if index < 0 || index >= len(s) {
					return nil
				}
				return &s[index]
			},
			Raw: func(ptr Ptr) (RawItems, bool) {
				return RawItemsOf(items(ptr)), true
			},
		},
	}
}

func intGetter(kind reflect.Kind) func(reflect.Value) int {
	switch kind {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return func(v reflect.Value) int { return int(v.Uint()) }
	default:
		return func(v reflect.Value) int { return int(v.Int()) }
	}
}

func intSetter(kind reflect.Kind) func(reflect.Value, int) {
	switch kind {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return func(v reflect.Value, x int) { v.SetUint(uint64(max(x, 0))) }
	default:
		return func(v reflect.Value, x int) { v.SetInt(int64(x)) }
	}
}

func intBounds(kind reflect.Kind) (int, int) {
	switch kind {
	case reflect.Int8:
		return math.MinInt8, math.MaxInt8
	case reflect.Int16:
		return math.MinInt16, math.MaxInt16
	case reflect.Uint8:
		return 0, math.MaxUint8
	case reflect.Uint16:
		return 0, math.MaxUint16
	case reflect.Uint32:
		return 0, maxInt
	default:
		return 0, 0
	}
}

func rawTypeOf(kind reflect.Kind) RawType {
	switch kind {
	case reflect.Bool:
		return RawBool
	case reflect.Int8:
		return RawInt8
	case reflect.Uint8:
		return RawUint8
	case reflect.Int16:
		return RawInt16
	case reflect.Uint16:
		return RawUint16
	case reflect.Int32:
		return RawInt32
	case reflect.Int64:
		return RawInt64
	case reflect.Int:
		return RawInt
	case reflect.Float32:
		return RawFloat32
	case reflect.Float64:
		return RawFloat64
	default:
		return RawNone
	}
}
