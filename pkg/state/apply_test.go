package state_test

import (
	"context"
	"testing"

	rna "github.com/goliatone/go-rna"
	"github.com/goliatone/go-rna/idprop"
	"github.com/goliatone/go-rna/pkg/activity"
	"github.com/goliatone/go-rna/pkg/state"
)

type chair struct {
	rna.ID
}

func TestResolverApplyInstallsMergedGroup(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	libGroup := chairGroup()
	libGroup.Add(idprop.NewString("finish", "oak"))
	if _, err := store.Save(ctx, state.Ref{Library: "props.blend", Name: "Chair"}, libGroup, state.Meta{SnapshotID: "lib-1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	local := idprop.NewGroup("")
	local.Add(idprop.NewString("finish", "walnut"))
	if _, err := store.Save(ctx, state.Ref{Name: "Chair"}, local, state.Meta{SnapshotID: "local-1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	chairStruct := &rna.StructDescriptor{Identifier: "Chair", Base: rna.IDStruct, Flag: rna.StructFlagID}
	reg := rna.NewRegistry()
	reg.MustRegister(chairStruct)
	reg.Init()
	block := &chair{ID: rna.NewID("Chair", chairStruct)}

	capture := &activity.CaptureHook{}
	resolver := state.Resolver{
		Store:   store,
		Emitter: activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true}),
	}
	if _, err := resolver.Apply(ctx, block, state.Ref{Name: "Chair"}, state.Ref{Library: "props.blend", Name: "Chair"}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	ptr := rna.PointerFromID(block)
	finish := reg.FindProperty(ptr, "finish")
	if got := reg.StringGet(ptr, finish); got != "walnut" {
		t.Fatalf("expected local finish, got %q", got)
	}
	legs := reg.FindProperty(ptr, "legs")
	if got := reg.IntGet(ptr, legs); got != 4 {
		t.Fatalf("expected library legs, got %d", got)
	}
	if !legs.Dynamic().IsGhost() {
		t.Fatalf("entries from weaker layers should be ghosts")
	}
	if finish.Dynamic().IsGhost() {
		t.Fatalf("entries from the strongest layer should not be ghosts")
	}

	if len(capture.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(capture.Events))
	}
	event := capture.Events[0]
	if event.Verb != activity.VerbLayersApplied || event.ObjectType != "Chair" || event.ObjectID != block.SessionUUID.String() {
		t.Fatalf("unexpected event %+v", event)
	}
	layers, _ := event.Metadata["layers"].([]string)
	if len(layers) != 2 || layers[0] != "local/Chair" || layers[1] != "lib/props.blend/Chair" {
		t.Fatalf("unexpected layers %v", event.Metadata["layers"])
	}
	if event.Metadata["snapshot_id"] != "local-1" {
		t.Fatalf("expected strongest snapshot id, got %v", event.Metadata["snapshot_id"])
	}
}
