package rna

import (
	"context"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testGrid struct {
	Cells [2][3]int32
	Gain  uint8
	Tags  map[string]int
	Notes [2]string
}

func TestBindFieldNarrowIntegers(t *testing.T) {
	f := newLightFixture(t)
	level := f.spot.FindProperty("level")

	assert.Equal(t, TypeInt, level.Type)
	assert.Equal(t, math.MinInt16, level.Int.HardMin)
	assert.Equal(t, math.MaxInt16, level.Int.HardMax)
	assert.Equal(t, RawInt16, level.RawType)
	assert.Equal(t, unsafe.Offsetof(testSpot{}.Level), level.RawOffset)
	assert.NotZero(t, level.Intern&InternRawAccess)

	spot := &testSpot{}
	ptr := Ptr{Type: f.spot, Data: spot}
	require.NoError(t, f.reg.IntSet(context.Background(), ptr, f.spotRef("level"), 40000))
	assert.Equal(t, int16(math.MaxInt16), spot.Level)
}

func TestBindFieldKinds(t *testing.T) {
	f := newLightFixture(t)

	assert.Equal(t, TypeString, f.spot.FindProperty("name").Type)
	assert.Equal(t, TypeBoolean, f.spot.FindProperty("hidden").Type)
	assert.Equal(t, RawBool, f.spot.FindProperty("hidden").RawType)
	assert.Equal(t, TypeEnum, f.light.FindProperty("kind").Type, "enum binding keeps its type")
	assert.Equal(t, []int{3}, f.light.FindProperty("color").ArrayLength)

	gain := MustBindField[testGrid]("Gain", nil)
	assert.Equal(t, "Gain", gain.Identifier)
	assert.Equal(t, 0, gain.Int.HardMin)
	assert.Equal(t, math.MaxUint8, gain.Int.HardMax)
}

func TestBindFieldMultiDimensional(t *testing.T) {
	cells := MustBindField[testGrid]("Cells", &PropertyDescriptor{Identifier: "cells", Flag: PropEditable})
	grid := &StructDescriptor{Identifier: "Grid", Properties: []*PropertyDescriptor{cells}}
	reg := NewRegistry()
	require.NoError(t, reg.Register(grid))
	reg.Init()

	data := &testGrid{}
	ptr := Ptr{Type: grid, Data: data}
	ref := StaticRef(cells)

	assert.Equal(t, 2, ArrayDimension(ref))
	assert.Equal(t, 6, reg.ArrayLength(ptr, ref))
	assert.Equal(t, 2, reg.MultiArrayLength(ptr, ref, 0))
	assert.Equal(t, 3, reg.MultiArrayLength(ptr, ref, 1))
	assert.Equal(t, 0, reg.MultiArrayLength(ptr, ref, 2))

	require.NoError(t, reg.IntSetArray(context.Background(), ptr, ref, []int{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, [2][3]int32{{1, 2, 3}, {4, 5, 6}}, data.Cells)
	assert.Equal(t, 5, reg.IntGetIndex(ptr, ref, 4))
}

func TestBindFieldErrors(t *testing.T) {
	_, err := BindField[testGrid]("Missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = BindField[testGrid]("Tags", nil)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = BindField[testGrid]("Notes", nil)
	assert.ErrorIs(t, err, ErrUnsupported, "string arrays have no storage")

	_, err = BindField[int]("X", nil)
	assert.Error(t, err)

	assert.Panics(t, func() { MustBindField[testGrid]("Missing", nil) })
}

func TestBindCollectionItems(t *testing.T) {
	f := newLightFixture(t)
	light := f.newLight("Lamp")
	ptr := PointerFromID(light)
	spots := f.ref("spots")

	assert.Equal(t, 5, f.reg.CollectionLength(ptr, spots))
	item, ok := f.reg.CollectionLookupInt(ptr, spots, 2)
	require.True(t, ok)
	assert.Same(t, &light.Spots[2], item.Data)
	assert.Same(t, &light.ID, item.Owner)

	_, ok = f.reg.CollectionLookupInt(ptr, spots, 5)
	assert.False(t, ok)
}
