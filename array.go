package rna

import (
	"unicode"

	"github.com/goliatone/go-rna/idprop"
)

// ArrayCheck reports whether the property has array storage.
func ArrayCheck(ref PropertyRef) bool {
	switch {
	case ref.static != nil:
		return ref.static.IsArray()
	case ref.dynamic != nil:
		return ref.dynamic.Type() == idprop.Array
	default:
		return false
	}
}

// ArrayLength returns the total element count of the property on ptr: the
// length callback when set, else the declared length, else the stored
// length of a dynamic entry. Scalars report zero.
func (r *Registry) ArrayLength(ptr Ptr, ref PropertyRef) int {
	return r.Resolve(ptr, ref).ArrayLen
}

// ArrayDimension returns the number of dimensions of an array property.
func ArrayDimension(ref PropertyRef) int {
	switch {
	case ref.static != nil && ref.static.IsArray():
		return max(ref.static.Dimension(), 1)
	case ArrayCheck(ref):
		return 1
	default:
		return 0
	}
}

// MultiArrayLength returns the length of dimension dim.
func (r *Registry) MultiArrayLength(ptr Ptr, ref PropertyRef, dim int) int {
	if dim < 0 || dim >= ArrayDimension(ref) {
		return 0
	}
	prop := ref.static
	if prop == nil {
		return r.ArrayLength(ptr, ref)
	}
	if prop.DynamicLength != nil && !isNil(ptr.Data) {
		dims := make([]int, ArrayDimension(ref))
		prop.DynamicLength(ptr, dims)
		return dims[dim]
	}
	return prop.ArrayLength[dim]
}

const (
	vectorItems     = "XYZW"
	quaternionItems = "WXYZ"
	colorItems      = "RGBA"
)

func itemChars(subtype PropertySubType) string {
	switch subtype {
	case SubtypeQuaternion, SubtypeAxisAngle:
		return quaternionItems
	case SubtypeTranslation, SubtypeDirection, SubtypeXYZ, SubtypeXYZLength,
		SubtypeEuler, SubtypeVelocity, SubtypeAcceleration, SubtypeCoords:
		return vectorItems
	case SubtypeColor, SubtypeColorGamma:
		return colorItems
	default:
		return ""
	}
}

// ArrayItemChar returns the component letter of element index, such as 'Y'
// for the second element of a translation, or 0 when the subtype has no
// component names.
func ArrayItemChar(ref PropertyRef, index int) rune {
	chars := itemChars(PropertySubtype(ref))
	if index < 0 || index >= len(chars) {
		return 0
	}
	return rune(chars[index])
}

// ArrayItemIndex is the inverse of ArrayItemChar. Letters are matched case
// insensitively; -1 is returned for unknown letters.
func (r *Registry) ArrayItemIndex(ptr Ptr, ref PropertyRef, char rune) int {
	if r.ArrayLength(ptr, ref) > 4 {
		return -1
	}
	chars := itemChars(PropertySubtype(ref))
	char = unicode.ToUpper(char)
	for i, c := range chars {
		if c == char {
			return i
		}
	}
	return -1
}
