package activity

import (
	"context"
	"testing"
)

func TestBuildPropertyChangedEventIncludesValues(t *testing.T) {
	meta := map[string]any{"custom": "value"}
	input := PropertyEventInput{
		ActorID:  " actor ",
		UserID:   " user ",
		TenantID: " tenant ",
		Struct:   "Light",
		Owner:    "Key",
		OwnerID:  "7d0c",
		Path:     "samples",
		Metadata: meta,
		OldValue: 4,
		NewValue: 64,
		Channel:  "editor",
	}

	event := BuildPropertyChangedEvent(input)

	if event.Verb != VerbPropertyChanged {
		t.Fatalf("expected verb %s got %s", VerbPropertyChanged, event.Verb)
	}
	if event.ObjectType != "Light" || event.ObjectID != "7d0c" || event.Path != "samples" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.ActorID != "actor" || event.UserID != "user" || event.TenantID != "tenant" {
		t.Fatalf("unexpected identity fields: %+v", event)
	}
	if event.Metadata["owner"] != "Key" {
		t.Fatalf("expected owner metadata, got %v", event.Metadata["owner"])
	}
	if event.Metadata["old_value"] != 4 || event.Metadata["new_value"] != 64 {
		t.Fatalf("expected old/new values, got %v %v", event.Metadata["old_value"], event.Metadata["new_value"])
	}
	event.Metadata["custom"] = "changed"
	if meta["custom"] != "value" {
		t.Fatalf("expected input metadata untouched")
	}
}

func TestBuildPropertyUnsetEventFallsBackToStruct(t *testing.T) {
	event := BuildPropertyUnsetEvent(PropertyEventInput{})
	if event.ObjectType != "struct" || event.ObjectID != "struct" {
		t.Fatalf("expected fallback object fields, got %+v", event)
	}
}

func TestBuildLayersAppliedEventPrefersOwnerThenSnapshot(t *testing.T) {
	event := BuildLayersAppliedEvent(PropertyEventInput{
		Struct:     "Object",
		SnapshotID: "snapshot-42",
		Layers:     []string{"user", "library"},
	})
	if event.Verb != VerbLayersApplied {
		t.Fatalf("expected verb %s got %s", VerbLayersApplied, event.Verb)
	}
	if event.ObjectID != "snapshot-42" {
		t.Fatalf("expected snapshot fallback, got %q", event.ObjectID)
	}
	layers, ok := event.Metadata["layers"].([]string)
	if !ok || len(layers) != 2 || layers[0] != "user" {
		t.Fatalf("expected layers metadata, got %v", event.Metadata["layers"])
	}
}

func TestBuildPropertyEventsWorkWithHooks(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	event := BuildDriverEvaluatedEvent(PropertyEventInput{Struct: "Object", Owner: "Cube", Path: "location[2]"})
	if err := hooks.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got := capture.Verbs(); len(got) != 1 || got[0] != VerbDriverEvaluated {
		t.Fatalf("expected driver verb captured, got %v", got)
	}
}
