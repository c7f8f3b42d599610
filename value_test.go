package rna

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueGet(t *testing.T) {
	f := newLightFixture(t)
	light := f.newLight("Lamp")
	light.Color = [3]float32{0.5, 0.25, 1}
	ptr := PointerFromID(light)
	ctx := context.Background()

	get := func(name string) any {
		t.Helper()
		v, err := f.reg.Get(ctx, ptr, f.ref(name))
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, float64(10), get("energy"))
	assert.Equal(t, []float64{0.5, 0.25, 1}, get("color"))
	assert.Equal(t, 4, get("samples"))
	assert.Equal(t, "lamp", get("label"))
	assert.Equal(t, "POINT", get("kind"))
	assert.Equal(t, []string{"SHADOW"}, get("options"))
	assert.Equal(t, NullPtr, get("target"))

	spots, ok := get("spots").([]Ptr)
	require.True(t, ok)
	require.Len(t, spots, 5)
	assert.Same(t, &light.Spots[3], spots[3].Data)

	_, err := f.reg.Get(ctx, ptr, PropertyRef{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValueGetIndex(t *testing.T) {
	f := newLightFixture(t)
	light := f.newLight("Lamp")
	light.Color = [3]float32{0.5, 0.25, 1}
	ptr := PointerFromID(light)
	ctx := context.Background()

	v, err := f.reg.GetIndex(ctx, ptr, f.ref("color"), 1)
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)

	v, err = f.reg.GetIndex(ctx, ptr, f.ref("color"), -1)
	require.NoError(t, err)
	assert.Len(t, v, 3)

	_, err = f.reg.GetIndex(ctx, ptr, f.ref("color"), 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestValueSetConverts(t *testing.T) {
	f := newLightFixture(t)
	light := f.newLight("Lamp")
	ptr := PointerFromID(light)
	ctx := context.Background()

	require.NoError(t, f.reg.Set(ctx, ptr, f.ref("energy"), 7))
	assert.Equal(t, float32(7), light.Energy)

	require.NoError(t, f.reg.Set(ctx, ptr, f.ref("samples"), 12.9))
	assert.Equal(t, 12, f.reg.IntGet(ptr, f.ref("samples")))

	require.NoError(t, f.reg.Set(ctx, ptr, f.ref("color"), []int{1, 0, 2}))
	assert.Equal(t, [3]float32{1, 0, 1}, light.Color, "array writes clamp per element")

	require.NoError(t, f.reg.Set(ctx, ptr, f.ref("kind"), "SUN"))
	assert.Equal(t, 1, light.Kind)
	require.NoError(t, f.reg.Set(ctx, ptr, f.ref("kind"), 3))
	assert.Equal(t, 3, light.Kind)

	require.NoError(t, f.reg.Set(ctx, ptr, f.ref("options"), 6))
	v, err := f.reg.Get(ctx, ptr, f.ref("options"))
	require.NoError(t, err)
	assert.Equal(t, []string{"SPECULAR", "VOLUME"}, v)

	require.NoError(t, f.reg.Set(ctx, ptr, f.ref("label"), "spot"))
	assert.Equal(t, "spot", f.reg.StringGet(ptr, f.ref("label")))

	key := f.newLight("Key")
	require.NoError(t, f.reg.Set(ctx, ptr, f.ref("target"), key))
	assert.Same(t, &key.ID, f.reg.PointerGet(ptr, f.ref("target")).Owner)
	require.NoError(t, f.reg.Set(ctx, ptr, f.ref("target"), nil))
	assert.Equal(t, NullPtr, f.reg.PointerGet(ptr, f.ref("target")))

	item := PointerInheritRefine(ptr, f.spot, &light.Spots[0])
	require.NoError(t, f.reg.Set(ctx, item, f.spotRef("hidden"), 1))
	assert.True(t, light.Spots[0].Hidden)
}

func TestValueSetRejectsMismatches(t *testing.T) {
	f := newLightFixture(t)
	ptr := PointerFromID(f.newLight("Lamp"))
	ctx := context.Background()

	assert.ErrorIs(t, f.reg.Set(ctx, ptr, f.ref("label"), 5), ErrTypeMismatch)
	assert.ErrorIs(t, f.reg.Set(ctx, ptr, f.ref("energy"), "bright"), ErrTypeMismatch)
	assert.ErrorIs(t, f.reg.Set(ctx, ptr, f.ref("color"), []string{"r"}), ErrTypeMismatch)
	assert.ErrorIs(t, f.reg.Set(ctx, ptr, f.ref("target"), 3), ErrTypeMismatch)
	assert.ErrorIs(t, f.reg.Set(ctx, ptr, f.ref("spots"), nil), ErrUnsupported)
	assert.ErrorIs(t, f.reg.Set(ctx, ptr, PropertyRef{}, 1), ErrNotFound)
}

func TestValueSetIndex(t *testing.T) {
	f := newLightFixture(t)
	light := f.newLight("Lamp")
	ptr := PointerFromID(light)
	ctx := context.Background()

	require.NoError(t, f.reg.SetIndex(ctx, ptr, f.ref("color"), 1, 0.5))
	assert.Equal(t, float32(0.5), light.Color[1])

	require.NoError(t, f.reg.SetIndex(ctx, ptr, f.ref("color"), -1, []float64{0.1, 0.2, 0.3}))
	assert.InDelta(t, 0.3, light.Color[2], 1e-6)

	assert.ErrorIs(t, f.reg.SetIndex(ctx, ptr, f.ref("color"), 0, "red"), ErrTypeMismatch)
	assert.ErrorIs(t, f.reg.SetIndex(ctx, ptr, f.ref("label"), 0, "x"), ErrUnsupported)
}
