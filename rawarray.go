package rna

import (
	"context"
	"fmt"
	"unsafe"
)

// RawType is the in-memory element type of a raw accessible property.
type RawType int

const (
	RawNone RawType = iota
	RawBool
	RawInt8
	RawUint8
	RawInt16
	RawUint16
	RawInt32
	RawInt64
	RawInt
	RawFloat32
	RawFloat64
)

// Size returns the element size in bytes.
func (t RawType) Size() uintptr {
	switch t {
	case RawBool, RawInt8, RawUint8:
		return 1
	case RawInt16, RawUint16:
		return 2
	case RawInt32, RawFloat32:
		return 4
	case RawInt64, RawFloat64:
		return 8
	case RawInt:
		return unsafe.Sizeof(int(0))
	default:
		return 0
	}
}

func (t RawType) isFloat() bool {
	return t == RawFloat32 || t == RawFloat64
}

// RawItems locates the items of a collection stored back to back in one
// slice.
type RawItems struct {
	Base   unsafe.Pointer
	Stride uintptr
	Len    int
}

// RawItemsOf exposes a slice of items for raw transfer.
func RawItemsOf[E any](items []E) RawItems {
	if len(items) == 0 {
		return RawItems{}
	}
	var zero E
	return RawItems{
		Base:   unsafe.Pointer(unsafe.SliceData(items)),
		Stride: unsafe.Sizeof(zero),
		Len:    len(items),
	}
}

// RawArray is a contiguous view of one property across every item of a
// collection.
type RawArray struct {
	Items  RawItems
	Offset uintptr
	Type   RawType
	// ElemLen is the number of elements per item.
	ElemLen int
}

// RawArrayOf returns the raw view of itemProp across the items of coll.
// ok is false unless the collection declares InternRawArray and the item
// property InternRawAccess with a fixed length.
func (r *Registry) RawArrayOf(ptr Ptr, coll PropertyRef, itemProp *PropertyDescriptor) (RawArray, bool) {
	prop := coll.static
	if prop == nil || prop.Type != TypeCollection || prop.Flag&PropIDProperty != 0 {
		return RawArray{}, false
	}
	if prop.Intern&InternRawArray == 0 || prop.Collection.Raw == nil {
		return RawArray{}, false
	}
	if itemProp == nil || itemProp.Intern&InternRawAccess == 0 || itemProp.RawType == RawNone || itemProp.DynamicLength != nil {
		return RawArray{}, false
	}
	items, ok := prop.Collection.Raw(ptr)
	if !ok {
		return RawArray{}, false
	}
	return RawArray{
		Items:   items,
		Offset:  itemProp.RawOffset,
		Type:    itemProp.RawType,
		ElemLen: max(itemProp.totalLength(), 1),
	}, true
}

// stridedCopy copies n blocks of size bytes between memory laid out with
// the given strides. Packed layouts collapse into a single copy.
func stridedCopy(dst unsafe.Pointer, dstStride uintptr, src unsafe.Pointer, srcStride uintptr, size uintptr, n int) {
	if n <= 0 || size == 0 {
		return
	}
	if dstStride == size && srcStride == size {
		total := size * uintptr(n)
		copy(unsafe.Slice((*byte)(dst), total), unsafe.Slice((*byte)(src), total))
		return
	}
	for i := range uintptr(n) {
		d := unsafe.Slice((*byte)(unsafe.Add(dst, i*dstStride)), size)
		s := unsafe.Slice((*byte)(unsafe.Add(src, i*srcStride)), size)
		copy(d, s)
	}
}

// RawMode selects the direction of a raw transfer.
type RawMode int

const (
	RawGet RawMode = iota
	RawSet
)

// rawBuffer is a typed flat buffer handed in by the caller.
type rawBuffer struct {
	typ  RawType
	base unsafe.Pointer
	n    int
}

func rawBufferOf(buffer any) (rawBuffer, bool) {
	switch b := buffer.(type) {
	case []bool:
		return newRawBuffer(RawBool, b), true
	case []int8:
		return newRawBuffer(RawInt8, b), true
	case []uint8:
		return newRawBuffer(RawUint8, b), true
	case []int16:
		return newRawBuffer(RawInt16, b), true
	case []uint16:
		return newRawBuffer(RawUint16, b), true
	case []int32:
		return newRawBuffer(RawInt32, b), true
	case []int64:
		return newRawBuffer(RawInt64, b), true
	case []int:
		return newRawBuffer(RawInt, b), true
	case []float32:
		return newRawBuffer(RawFloat32, b), true
	case []float64:
		return newRawBuffer(RawFloat64, b), true
	default:
		return rawBuffer{}, false
	}
}

func newRawBuffer[T any](typ RawType, values []T) rawBuffer {
	return rawBuffer{typ: typ, base: unsafe.Pointer(unsafe.SliceData(values)), n: len(values)}
}

func (b rawBuffer) at(i int) unsafe.Pointer {
	return unsafe.Add(b.base, uintptr(i)*b.typ.Size())
}

func (b rawBuffer) float(i int) float64 {
	p := b.at(i)
	switch b.typ {
	case RawFloat32:
		return float64(*(*float32)(p))
	case RawFloat64:
		return *(*float64)(p)
	default:
		return float64(b.int(i))
	}
}

func (b rawBuffer) int(i int) int64 {
	p := b.at(i)
	switch b.typ {
	case RawBool:
		if *(*bool)(p) {
			return 1
		}
		return 0
	case RawInt8:
		return int64(*(*int8)(p))
	case RawUint8:
		return int64(*(*uint8)(p))
	case RawInt16:
		return int64(*(*int16)(p))
	case RawUint16:
		return int64(*(*uint16)(p))
	case RawInt32:
		return int64(*(*int32)(p))
	case RawInt64:
		return *(*int64)(p)
	case RawInt:
		return int64(*(*int)(p))
	default:
		return int64(b.float(i))
	}
}

func (b rawBuffer) setFloat(i int, v float64) {
	p := b.at(i)
	switch b.typ {
	case RawFloat32:
		*(*float32)(p) = float32(v)
	case RawFloat64:
		*(*float64)(p) = v
	default:
		b.setInt(i, int64(v))
	}
}

func (b rawBuffer) setInt(i int, v int64) {
	p := b.at(i)
	switch b.typ {
	case RawBool:
		*(*bool)(p) = v != 0
	case RawInt8:
		*(*int8)(p) = int8(v)
	case RawUint8:
		*(*uint8)(p) = uint8(v)
	case RawInt16:
		*(*int16)(p) = int16(v)
	case RawUint16:
		*(*uint16)(p) = uint16(v)
	case RawInt32:
		*(*int32)(p) = int32(v)
	case RawInt64:
		*(*int64)(p) = v
	case RawInt:
		*(*int)(p) = int(v)
	default:
		b.setFloat(i, float64(v))
	}
}

// RawAccess transfers the property named itemProp of every item of coll
// into or out of buffer, a []bool, []intN, []uintN (8 and 16 bit), []int
// or []floatN slice whose length must equal items times elements per item.
// A raw view of the same element type is copied in one pass; anything
// else goes through the typed accessors with numeric conversion.
func (r *Registry) RawAccess(ctx context.Context, ptr Ptr, coll PropertyRef, itemProp string, mode RawMode, buffer any) error {
	buf, ok := rawBufferOf(buffer)
	if !ok {
		return fmt.Errorf("%w: raw buffer of type %T", ErrTypeMismatch, buffer)
	}
	if PropertyTypeOf(coll) != TypeCollection {
		return fmt.Errorf("%w: %s is not a collection", ErrTypeMismatch, coll.Identifier())
	}

	prop := r.StructFindProperty(r.PointerType(ptr, coll), itemProp)
	if raw, ok := r.RawArrayOf(ptr, coll, prop); ok && raw.Type == buf.typ {
		return r.rawCopy(ctx, ptr, coll, prop, raw, mode, buf)
	}
	return r.rawIterate(ctx, ptr, coll, itemProp, mode, buf)
}

func (r *Registry) rawCopy(ctx context.Context, ptr Ptr, coll PropertyRef, prop *PropertyDescriptor, raw RawArray, mode RawMode, buf rawBuffer) error {
	if buf.n != raw.Items.Len*raw.ElemLen {
		return fmt.Errorf("%w: %d values for %d items of %d", ErrRawLength, buf.n, raw.Items.Len, raw.ElemLen)
	}
	if raw.Items.Len == 0 {
		return nil
	}
	size := raw.Type.Size() * uintptr(raw.ElemLen)
	field := unsafe.Add(raw.Items.Base, raw.Offset)
	if mode == RawGet {
		stridedCopy(buf.base, size, field, raw.Items.Stride, size, raw.Items.Len)
		return nil
	}
	first, _ := r.CollectionLookupInt(ptr, coll, 0)
	if err := r.checkEditable(first, StaticRef(prop), -1); err != nil {
		return err
	}
	stridedCopy(field, raw.Items.Stride, buf.base, size, size, raw.Items.Len)
	ref := StaticRef(prop)
	for _, item := range r.CollectionSeq(ptr, coll) {
		r.Update(ctx, item, ref)
	}
	return nil
}

// rawIterate is the per item fallback. Items must share one array length;
// the buffer length is checked against the first item before anything is
// written, and the intermediate buffer is reused between items.
func (r *Registry) rawIterate(ctx context.Context, ptr Ptr, coll PropertyRef, itemProp string, mode RawMode, buf rawBuffer) error {
	var (
		offset  int
		itemLen = -1
		ints    []int
		floats  []float32
		bools   []bool
	)
	for _, item := range r.CollectionSeq(ptr, coll) {
		ref := r.FindProperty(item, itemProp)
		if !ref.IsValid() {
			return fmt.Errorf("%w: %s.%s", ErrNotFound, structIdentifier(item.Type), itemProp)
		}
		kind := PropertyTypeOf(ref)
		n := max(r.ArrayLength(item, ref), 1)
		if itemLen < 0 {
			itemLen = n
			if total := r.CollectionLength(ptr, coll) * n; total != buf.n {
				return fmt.Errorf("%w: %d values for %d elements", ErrRawLength, buf.n, total)
			}
			ints, floats, bools = make([]int, n), make([]float32, n), make([]bool, n)
		} else if n != itemLen {
			return fmt.Errorf("%w: %s has %d elements, expected %d", ErrRawLength, itemProp, n, itemLen)
		}
		if offset+n > buf.n {
			return fmt.Errorf("%w: buffer of %d is too short", ErrRawLength, buf.n)
		}

		var err error
		switch kind {
		case TypeBoolean:
			if mode == RawGet {
				r.BoolGetArray(item, ref, bools)
				for i, v := range bools {
					buf.setInt(offset+i, int64(boolInt(v)))
				}
			} else {
				for i := range bools {
					bools[i] = buf.int(offset+i) != 0
				}
				err = r.BoolSetArray(ctx, item, ref, bools)
			}
		case TypeInt:
			if mode == RawGet {
				r.IntGetArray(item, ref, ints)
				for i, v := range ints {
					buf.setInt(offset+i, int64(v))
				}
			} else {
				for i := range ints {
					ints[i] = int(buf.int(offset + i))
				}
				err = r.IntSetArray(ctx, item, ref, ints)
			}
		case TypeFloat:
			if mode == RawGet {
				r.FloatGetArray(item, ref, floats)
				for i, v := range floats {
					buf.setFloat(offset+i, float64(v))
				}
			} else {
				for i := range floats {
					floats[i] = float32(buf.float(offset + i))
				}
				err = r.FloatSetArray(ctx, item, ref, floats)
			}
		default:
			return fmt.Errorf("%w: %s is %s, not numeric", ErrTypeMismatch, itemProp, kind)
		}
		if err != nil {
			return err
		}
		offset += n
	}
	if offset != buf.n {
		return fmt.Errorf("%w: %d values for %d elements", ErrRawLength, buf.n, offset)
	}
	return nil
}
