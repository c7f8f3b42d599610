package idprop

import "testing"

func TestMergeLayersPrefersStrongest(t *testing.T) {
	library := NewGroup("props")
	library.Add(NewInt("samples", 16))
	library.Add(NewString("label", "library"))
	libNested := NewGroup("render")
	libNested.Add(NewFloat("gamma", 2.2))
	libNested.Add(NewFloat("exposure", 0))
	library.Add(libNested)

	local := NewGroup("props")
	local.Add(NewInt("samples", 64))
	localNested := NewGroup("render")
	localNested.Add(NewFloat("exposure", 1.5))
	local.Add(localNested)

	merged := MergeLayers(local, library)
	if merged.Get("samples").Int() != 64 {
		t.Fatalf("expected strongest samples, got %d", merged.Get("samples").Int())
	}
	if merged.Get("samples").IsGhost() {
		t.Fatalf("expected explicit entry to stay non-ghost")
	}

	label := merged.Get("label")
	if label == nil || label.Str() != "library" || !label.IsGhost() {
		t.Fatalf("expected ghost label from weaker layer, got %v", label)
	}

	render := merged.Get("render")
	if render.Get("exposure").Float() != 1.5 || render.Get("exposure").IsGhost() {
		t.Fatalf("unexpected exposure %v", render.Get("exposure"))
	}
	if !render.Get("gamma").IsGhost() {
		t.Fatalf("expected gamma from weaker nested group to be ghost")
	}

	library.Get("label").SetStr("mutated")
	if label.Str() != "library" {
		t.Fatalf("merge result shares storage with layer")
	}
}

func TestMergeLayersMiddleLayerIsGhost(t *testing.T) {
	base := NewGroup("props")
	base.Add(NewInt("a", 1))
	middle := NewGroup("props")
	middle.Add(NewInt("b", 2))
	top := NewGroup("props")
	top.Add(NewInt("c", 3))

	merged := MergeLayers(top, middle, base)
	if merged.Get("c").IsGhost() {
		t.Fatalf("expected top entry to be explicit")
	}
	if !merged.Get("b").IsGhost() || !merged.Get("a").IsGhost() {
		t.Fatalf("expected weaker entries to be ghosts")
	}
}

func TestMergeLayersTagConflictKeepsStrong(t *testing.T) {
	weak := NewGroup("props")
	weak.Add(NewString("value", "text"))
	strong := NewGroup("props")
	strong.Add(NewInt("value", 7))

	merged := MergeLayers(strong, nil, weak)
	if merged.Get("value").Type() != Int {
		t.Fatalf("expected strong tag to win")
	}
}

func TestMergeLayersEmpty(t *testing.T) {
	if MergeLayers() != nil {
		t.Fatalf("expected nil for no layers")
	}
	single := NewGroup("props")
	single.Add(NewInt("a", 1))
	if MergeLayers(single).Get("a").IsGhost() {
		t.Fatalf("single layer must not produce ghosts")
	}
}
