package rna

import (
	"context"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-rna/idprop"
)

func TestResolveOutcomes(t *testing.T) {
	f := newLightFixture(t)
	ptr := PointerFromID(f.newLight("Lamp"))

	rp := f.reg.Resolve(ptr, f.ref("energy"))
	assert.Equal(t, OutcomeStatic, rp.Outcome)
	assert.True(t, rp.IsSet)
	assert.Nil(t, rp.Entry)

	rp = f.reg.Resolve(ptr, f.ref("color"))
	assert.True(t, rp.IsArray)
	assert.Equal(t, 3, rp.ArrayLen)

	rp = f.reg.Resolve(ptr, f.ref("power"))
	assert.Equal(t, OutcomeStaticOverride, rp.Outcome)
	assert.False(t, rp.IsSet)

	template := idprop.NewIntArray("bands", []int{1, 2})
	rp = f.reg.Resolve(ptr, DynamicRef(template))
	assert.Equal(t, OutcomeDynamic, rp.Outcome)
	assert.False(t, rp.IsSet, "template entries do not belong to the instance")
	assert.True(t, rp.IsArray, spew.Sdump(template))

	rp = f.reg.Resolve(ptr, PropertyRef{})
	assert.Equal(t, OutcomeNone, rp.Outcome)
	assert.Nil(t, rp.Prop)
	assert.Equal(t, "none", rp.Outcome.String())
}

func TestResolveMissingPropertyIsTotal(t *testing.T) {
	f := newLightFixture(t)
	ptr := PointerFromID(f.newLight("Lamp"))
	missing := PropertyRef{}

	assert.Zero(t, f.reg.IntGet(ptr, missing))
	assert.Zero(t, f.reg.FloatGet(ptr, missing))
	assert.Empty(t, f.reg.StringGet(ptr, missing))
	assert.False(t, f.reg.PointerGet(ptr, missing).IsValid())
	assert.Zero(t, f.reg.CollectionLength(ptr, missing))
	assert.ErrorIs(t, f.reg.IntSet(context.Background(), ptr, missing, 1), ErrNotFound)

	assert.Zero(t, f.reg.IntGet(ptr, f.ref("energy")), "reading a float as int yields the zero value")
	assert.ErrorIs(t, f.reg.IntSet(context.Background(), ptr, f.ref("energy"), 1), ErrTypeMismatch)
}

func TestResolveSelfHealsStaleEntry(t *testing.T) {
	f := newLightFixture(t)
	light := f.newLight("Lamp")
	ptr := PointerFromID(light)

	group := StructIDProperties(ptr, true)
	require.True(t, group.Add(idprop.NewString("settings", "stale")))
	require.True(t, group.Add(idprop.NewIntArray("power", []int{1, 2})))

	rp := f.reg.Resolve(ptr, f.ref("settings"))
	assert.Nil(t, rp.Entry)
	assert.False(t, rp.IsSet)
	assert.Nil(t, group.Get("settings"), "stale entry is removed")

	rp = f.reg.Resolve(ptr, f.ref("power"))
	assert.Nil(t, rp.Entry)
	assert.Nil(t, group.Get("power"))

	require.Len(t, f.events, 2)
	assert.Equal(t, LogSelfHeal, f.events[0].Kind)
	assert.Equal(t, "Light", f.events[0].Struct)
	assert.Equal(t, "settings", f.events[0].Property)
	assert.Equal(t, "Lamp", f.events[0].Owner)

	f.reg.Resolve(ptr, f.ref("settings"))
	f.reg.Resolve(ptr, f.ref("power"))
	assert.Len(t, f.events, 2, "healing is idempotent")
}

func TestResolveKeepsCompatibleEntries(t *testing.T) {
	f := newLightFixture(t)
	ptr := PointerFromID(f.newLight("Lamp"))

	group := StructIDProperties(ptr, true)
	group.Add(idprop.NewDouble("power", 2.5))

	rp := f.reg.Resolve(ptr, f.ref("power"))
	require.NotNil(t, rp.Entry)
	assert.True(t, rp.IsSet)
	assert.InDelta(t, 2.5, f.reg.FloatGet(ptr, f.ref("power")), 1e-6)
	assert.Empty(t, f.events)
}

func TestFindPropertyDynamicBracket(t *testing.T) {
	f := newLightFixture(t)
	ptr := PointerFromID(f.newLight("Lamp"))
	ctx := context.Background()

	ref := f.reg.FindProperty(ptr, `["intensity_custom"]`)
	assert.False(t, ref.IsValid(), "no entry exists yet")

	template := idprop.NewFloat("intensity_custom", 0)
	require.NoError(t, f.reg.FloatSet(ctx, ptr, DynamicRef(template), 2.5))

	ref = f.reg.FindProperty(ptr, `["intensity_custom"]`)
	require.True(t, ref.IsValid())
	assert.True(t, PropertyIsIDProp(ref))
	assert.True(t, f.reg.PropertyIsSet(ptr, ref))
	assert.Equal(t, float32(2.5), f.reg.FloatGet(ptr, ref))
	assert.Equal(t, TypeFloat, PropertyTypeOf(ref))

	plain := f.reg.FindProperty(ptr, "intensity_custom")
	assert.Equal(t, ref, plain)
}

func TestFindPropertyPrefersRegistered(t *testing.T) {
	f := newLightFixture(t)
	ptr := PointerFromID(f.newLight("Lamp"))
	StructIDProperties(ptr, true).Add(idprop.NewString("energy", "shadowed"))

	ref := f.reg.FindProperty(ptr, "energy")
	require.NotNil(t, ref.Static())
	assert.Equal(t, "energy", ref.Identifier())

	name := f.reg.FindProperty(ptr, "name")
	assert.Same(t, IDStruct.FindProperty("name"), name.Static(), "base properties are found")
	assert.False(t, f.reg.FindProperty(ptr, "missing").IsValid())
}

func TestStructPropertiesListsDynamicEntriesLast(t *testing.T) {
	f := newLightFixture(t)
	ptr := PointerFromID(f.newLight("Lamp"))
	ctx := context.Background()

	require.NoError(t, f.reg.FloatSet(ctx, ptr, f.ref("power"), 3))
	StructIDProperties(ptr, true).Add(idprop.NewInt("extra", 1))

	var names []string
	for ref := range f.reg.StructProperties(ptr) {
		names = append(names, ref.Identifier())
	}
	assert.Equal(t, "name", names[0], "base properties come first")
	assert.Equal(t, "extra", names[len(names)-1])

	count := 0
	for _, name := range names {
		if name == "power" {
			count++
		}
	}
	assert.Equal(t, 1, count, "slot entries are not listed twice")
	assert.True(t, f.reg.StructContainsProperty(ptr, f.ref("energy")))
}

func TestPropertyUnsetFallsBackToDefault(t *testing.T) {
	f := newLightFixture(t)
	ptr := PointerFromID(f.newLight("Lamp"))
	ctx := context.Background()
	power := f.ref("power")

	assert.Equal(t, float32(1), f.reg.FloatGet(ptr, power))
	require.NoError(t, f.reg.FloatSet(ctx, ptr, power, 7))
	assert.True(t, f.reg.PropertyIsSet(ptr, power))
	assert.Equal(t, float32(7), f.reg.FloatGet(ptr, power))

	assert.True(t, f.reg.PropertyUnset(ptr, power))
	assert.False(t, f.reg.PropertyIsSet(ptr, power))
	assert.Equal(t, float32(1), f.reg.FloatGet(ptr, power))
	assert.False(t, f.reg.PropertyUnset(ptr, power))
}

func TestGhostEntriesReadButReportUnset(t *testing.T) {
	f := newLightFixture(t)
	ptr := PointerFromID(f.newLight("Lamp"))
	power := f.ref("power")

	entry := idprop.NewFloat("power", 3)
	entry.Flag |= idprop.FlagGhost
	StructIDProperties(ptr, true).Add(entry)

	assert.False(t, f.reg.PropertyIsSet(ptr, power))
	assert.Equal(t, float32(3), f.reg.FloatGet(ptr, power))

	require.NoError(t, f.reg.FloatSet(context.Background(), ptr, power, 4))
	assert.True(t, f.reg.PropertyIsSet(ptr, power))
	assert.False(t, entry.IsGhost())
}

func TestMaterializedStaticWritesAreRead(t *testing.T) {
	f := newLightFixture(t)
	ptr := PointerFromID(f.newLight("Lamp"))
	samples := f.ref("samples")

	assert.Nil(t, StructIDProperties(ptr, false))
	require.NoError(t, f.reg.IntSet(context.Background(), ptr, samples, 16))

	group := StructIDProperties(ptr, false)
	require.NotNil(t, group)
	require.NotNil(t, group.Get("samples"), "first write creates the entry")
	assert.Equal(t, 16, f.reg.IntGet(ptr, samples))

	require.NoError(t, f.reg.IntSet(context.Background(), ptr, samples, 32))
	assert.Len(t, group.Properties(), 1, "later writes reuse the entry")
	assert.Equal(t, 32, f.reg.IntGet(ptr, samples))
}

func TestMaterializeRequiresDynamicStore(t *testing.T) {
	plain := &StructDescriptor{
		Identifier: "Plain",
		Properties: []*PropertyDescriptor{
			{Identifier: "count", Type: TypeInt, Flag: PropEditable},
		},
	}
	reg := NewRegistry()
	require.NoError(t, reg.Register(plain))

	ptr := Ptr{Type: plain, Data: &testSpot{}}
	err := reg.IntSet(context.Background(), ptr, StaticRef(plain.Properties[0]), 3)
	assert.ErrorIs(t, err, ErrUnsupported)
}
