package rna

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-rna/idprop"
)

func TestArrayItemChars(t *testing.T) {
	f := newLightFixture(t)
	ptr := PointerFromID(f.newLight("Lamp"))
	color := f.ref("color")
	offset := f.spotRef("offset")

	assert.Equal(t, 'R', ArrayItemChar(color, 0))
	assert.Equal(t, 'B', ArrayItemChar(color, 2))
	assert.Equal(t, 'Y', ArrayItemChar(offset, 1))
	assert.Equal(t, rune(0), ArrayItemChar(color, 4))
	assert.Equal(t, rune(0), ArrayItemChar(f.ref("energy"), 0))

	assert.Equal(t, 2, f.reg.ArrayItemIndex(ptr, color, 'b'))
	assert.Equal(t, 1, f.reg.ArrayItemIndex(ptr, color, 'G'))
	assert.Equal(t, -1, f.reg.ArrayItemIndex(ptr, color, 'X'))

	rot := &PropertyDescriptor{Identifier: "rotation", Type: TypeFloat, Subtype: SubtypeQuaternion, ArrayLength: []int{4}}
	assert.Equal(t, 'W', ArrayItemChar(StaticRef(rot), 0))
	assert.Equal(t, 3, f.reg.ArrayItemIndex(ptr, StaticRef(rot), 'z'))
}

func TestArrayShapes(t *testing.T) {
	f := newLightFixture(t)
	ptr := PointerFromID(f.newLight("Lamp"))

	assert.True(t, ArrayCheck(f.ref("color")))
	assert.False(t, ArrayCheck(f.ref("energy")))
	assert.Equal(t, 1, ArrayDimension(f.ref("color")))
	assert.Equal(t, 0, ArrayDimension(f.ref("energy")))
	assert.Equal(t, 3, f.reg.ArrayLength(ptr, f.ref("color")))
	assert.Equal(t, 0, f.reg.ArrayLength(ptr, f.ref("energy")))
	assert.Equal(t, 3, f.reg.MultiArrayLength(ptr, f.ref("color"), 0))

	tint := idprop.NewFloatArray("tint", []float32{1, 2, 3, 4})
	StructIDProperties(ptr, true).Add(tint)
	dynamic := DynamicRef(tint)
	assert.True(t, ArrayCheck(dynamic))
	assert.Equal(t, 1, ArrayDimension(dynamic))
	assert.Equal(t, 4, f.reg.ArrayLength(ptr, dynamic))
	assert.Equal(t, 4, f.reg.MultiArrayLength(ptr, dynamic, 0))
	assert.False(t, ArrayCheck(PropertyRef{}))
}

func TestArrayDynamicLength(t *testing.T) {
	f := newLightFixture(t)
	light := f.newLight("Lamp")
	ptr := PointerFromID(light)

	sizes := &PropertyDescriptor{
		Identifier: "sizes", Type: TypeFloat, ArrayLength: []int{8},
		DynamicLength: func(ptr Ptr, dims []int) int {
			dims[0] = len(ptr.Data.(*testLight).Spots)
			return dims[0]
		},
		Float: FloatSpec{GetArray: func(ptr Ptr, values []float32) {
			for i, spot := range ptr.Data.(*testLight).Spots {
				values[i] = spot.Size
			}
		}},
	}
	ref := StaticRef(sizes)
	assert.Equal(t, 5, f.reg.ArrayLength(ptr, ref))
	assert.Equal(t, 5, f.reg.MultiArrayLength(ptr, ref, 0))

	light.Spots = light.Spots[:2]
	assert.Equal(t, 2, f.reg.ArrayLength(ptr, ref))
	values := make([]float32, 2)
	f.reg.FloatGetArray(ptr, ref, values)
	assert.Equal(t, []float32{0, 1}, values)
}
