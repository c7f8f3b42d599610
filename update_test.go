package rna

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-rna/idprop"
)

func TestUpdateStaticWriteTagsFineGrained(t *testing.T) {
	f := newLightFixture(t)
	light := f.newLight("Lamp")
	ptr := PointerFromID(light)

	require.NoError(t, f.reg.FloatSet(context.Background(), ptr, f.ref("energy"), 5))

	require.Len(t, f.deps.tags, 1)
	assert.Same(t, &light.ID, f.deps.tags[0].ID)
	assert.Equal(t, RecalcParameters|RecalcCopyOnWrite, f.deps.tags[0].Flags)
	assert.Equal(t, []Note{NoteObject}, f.notes.notes)
	assert.Zero(t, f.deps.relations)
}

func TestUpdateDynamicWriteTagsCoarse(t *testing.T) {
	f := newLightFixture(t)
	light := f.newLight("Lamp")
	ptr := PointerFromID(light)
	ctx := context.Background()

	require.NoError(t, f.reg.FloatSet(ctx, ptr, DynamicRef(idprop.NewFloat("gain", 0)), 2))
	assert.Equal(t, []RecalcFlag{RecalcAll}, f.deps.flags())
	assert.Equal(t, []Note{NoteWindow}, f.notes.notes)

	f.reset()
	require.NoError(t, f.reg.FloatSet(ctx, ptr, f.ref("power"), 2))
	assert.Equal(t, []RecalcFlag{RecalcCopyOnWrite, RecalcAll}, f.deps.flags(), "dynamic slots get both tags")
	assert.Equal(t, []Note{NoteWindow}, f.notes.notes)
}

func TestUpdateUnownedStructsSkipDeps(t *testing.T) {
	f := newLightFixture(t)
	ptr := Ptr{Type: f.spot, Data: &testSpot{}}

	require.NoError(t, f.reg.FloatSet(context.Background(), ptr, f.spotRef("size"), 1))
	assert.Empty(t, f.deps.tags)
}

type testCamera struct {
	ID
}

func TestUpdateCallbacks(t *testing.T) {
	var (
		contextCalls  int
		propertyCalls int
		seenMain      *Main
		seenScene     any
	)
	camera := &StructDescriptor{Identifier: "Camera", Base: IDStruct, Flag: StructFlagID}
	camera.Properties = []*PropertyDescriptor{
		{
			Identifier: "lens", Type: TypeInt, Flag: PropEditable | PropContextUpdate,
			ContextUpdate: func(*Context, Ptr) { contextCalls++ },
		},
		{
			Identifier: "shift", Type: TypeInt, Flag: PropEditable | PropContextPropertyUpdate,
			ContextUpdate: func(*Context, Ptr) { contextCalls++ },
			ContextPropertyUpdate: func(_ *Context, _ Ptr, prop *PropertyDescriptor) {
				assert.Equal(t, "shift", prop.Identifier)
				propertyCalls++
			},
		},
		{
			Identifier: "clip", Type: TypeInt, Flag: PropEditable,
			Update: func(main *Main, scene any, _ Ptr) { seenMain, seenScene = main, scene },
		},
		{
			Identifier: "sensor", Type: TypeInt, Flag: PropEditable | PropNoDepsUpdate,
		},
	}
	deps := &recordingDeps{}
	reg := NewRegistry(WithDepsGraph(deps))
	require.NoError(t, reg.Register(camera))
	reg.Init()

	block := &testCamera{ID: NewID("Cam", camera)}
	ptr := PointerFromID(block)
	ref := func(name string) PropertyRef { return StaticRef(camera.FindProperty(name)) }
	main := NewMain(block)

	require.NoError(t, reg.IntSet(context.Background(), ptr, ref("lens"), 35))
	assert.Zero(t, contextCalls, "context callbacks need an interactive context")

	ctx := WithContext(context.Background(), &Context{Main: main, Scene: "scene"})
	require.NoError(t, reg.IntSet(ctx, ptr, ref("lens"), 50))
	assert.Equal(t, 1, contextCalls)

	require.NoError(t, reg.IntSet(ctx, ptr, ref("shift"), 2))
	assert.Equal(t, 1, contextCalls)
	assert.Equal(t, 1, propertyCalls)

	require.NoError(t, reg.IntSet(ctx, ptr, ref("clip"), 100))
	assert.Same(t, main, seenMain)
	assert.Equal(t, "scene", seenScene)

	reg.UpdateMain(nil, "other", ptr, ref("clip"))
	assert.Nil(t, seenMain)
	assert.Equal(t, "other", seenScene)

	deps.tags = nil
	require.NoError(t, reg.IntSet(ctx, ptr, ref("sensor"), 24))
	assert.Empty(t, deps.tags)

	assert.True(t, UpdateCheck(ref("lens")))
	assert.False(t, UpdateCheck(ref("sensor")))
	assert.False(t, UpdateCheck(PropertyRef{}))
}

func TestUpdateLogsFailedPublish(t *testing.T) {
	f := newLightFixture(t)
	ptr := PointerFromID(f.newLight("Lamp"))
	ctx := WithContext(context.Background(), &Context{Bus: failingBus{}})

	require.NoError(t, f.reg.FloatSet(ctx, ptr, f.ref("energy"), 3), "bus failures do not fail writes")
	require.Len(t, f.events, 1)
	assert.Equal(t, LogPublishFailed, f.events[0].Kind)
	assert.Equal(t, "energy", f.events[0].Property)
	assert.EqualError(t, f.events[0].Err, "bus offline")
}

func TestContextFrom(t *testing.T) {
	assert.Nil(t, ContextFrom(context.Background()))
	c := &Context{Scene: 1}
	assert.Same(t, c, ContextFrom(WithContext(context.Background(), c)))
}
