package idprop

import (
	"encoding/json"
	"testing"
)

func TestResizePreservesTag(t *testing.T) {
	p := NewFloatArray("color", []float32{1, 0.5, 0.25})
	p.Resize(4)
	if p.Type() != Array || p.Subtype() != Float {
		t.Fatalf("expected float array after resize, got %s/%s", p.Type(), p.Subtype())
	}
	if p.Len() != 4 {
		t.Fatalf("expected length 4, got %d", p.Len())
	}
	if got := p.Floats(); got[0] != 1 || got[3] != 0 {
		t.Fatalf("unexpected values after grow: %v", got)
	}

	p.Resize(2)
	if p.Len() != 2 {
		t.Fatalf("expected length 2 after shrink, got %d", p.Len())
	}
}

func TestGroupKeepsInsertionOrder(t *testing.T) {
	group := NewGroup("root")
	for _, name := range []string{"b", "a", "c"} {
		if !group.Add(NewInt(name, 1)) {
			t.Fatalf("add %q failed", name)
		}
	}
	if group.Add(NewInt("a", 2)) {
		t.Fatalf("expected duplicate add to fail")
	}

	group.Replace(NewString("a", "x"))
	names := []string{}
	for _, child := range group.Properties() {
		names = append(names, child.Name)
	}
	if len(names) != 3 || names[0] != "b" || names[1] != "a" || names[2] != "c" {
		t.Fatalf("unexpected order %v", names)
	}
	if group.Get("a").Type() != String {
		t.Fatalf("expected replaced entry to be a string")
	}

	if !group.Remove("b") || group.Get("b") != nil {
		t.Fatalf("expected b to be removed")
	}
}

func TestGhostTouch(t *testing.T) {
	p := NewInt("samples", 4)
	p.Flag |= FlagGhost
	if !p.IsGhost() {
		t.Fatalf("expected ghost entry")
	}
	p.Touch()
	if p.IsGhost() {
		t.Fatalf("expected touch to clear ghost flag")
	}
}

func TestCopyIsDeep(t *testing.T) {
	root := NewGroup("root")
	root.Add(NewIntArray("values", []int{1, 2, 3}))
	nested := NewGroup("nested")
	nested.Add(NewDouble("weight", 0.5))
	root.Add(nested)

	clone := root.Copy()
	clone.Get("values").Ints()[0] = 99
	clone.Get("nested").Get("weight").SetDouble(2)

	if root.Get("values").Ints()[0] != 1 {
		t.Fatalf("array storage shared with copy")
	}
	if root.Get("nested").Get("weight").Double() != 0.5 {
		t.Fatalf("nested group shared with copy")
	}
}

func TestGroupArrayMove(t *testing.T) {
	arr := NewGroupArray("items")
	for _, name := range []string{"a", "b", "c"} {
		arr.Append().Add(NewString("name", name))
	}
	if !arr.Move(0, 2) {
		t.Fatalf("move failed")
	}
	order := ""
	for _, item := range arr.Items() {
		order += item.Get("name").Str()
	}
	if order != "bca" {
		t.Fatalf("unexpected order %q", order)
	}
	if arr.Move(0, 3) {
		t.Fatalf("expected out of range move to fail")
	}
}

func TestEnsureUIDefaultsByTag(t *testing.T) {
	if ui := NewInt("i", 0).EnsureUI(); ui.Int == nil || ui.Float != nil {
		t.Fatalf("expected int ui data, got %+v", ui)
	}
	if ui := NewDoubleArray("d", nil).EnsureUI(); ui.Float == nil {
		t.Fatalf("expected float ui data for double array")
	}
	if ui := NewString("s", "").EnsureUI(); ui.String == nil {
		t.Fatalf("expected string ui data")
	}
}

func TestJSONPreservesTagsAndFlags(t *testing.T) {
	root := NewGroup("root")
	ghost := NewFloat("intensity", 2.5)
	ghost.Flag = FlagGhost | FlagOverridableLibrary
	root.Add(ghost)
	root.Add(NewIntArray("size", []int{1920, 1080}))
	root.Add(NewIDRef("target", RefName("OBCube")))
	ui := root.Get("size").EnsureUI()
	ui.Int.Default = 64

	raw, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Property
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type() != Group || decoded.Len() != 3 {
		t.Fatalf("unexpected decoded root %s", decoded.String())
	}
	intensity := decoded.Get("intensity")
	if intensity.Type() != Float || intensity.Float() != 2.5 || !intensity.IsGhost() {
		t.Fatalf("unexpected intensity %s flag=%d", intensity, intensity.Flag)
	}
	size := decoded.Get("size")
	if size.Subtype() != Int || size.Ints()[1] != 1080 || size.UI().Int.Default != 64 {
		t.Fatalf("unexpected size %s", size)
	}
	if ref, ok := decoded.Get("target").Ref().(RefName); !ok || ref != "OBCube" {
		t.Fatalf("unexpected target ref %#v", decoded.Get("target").Ref())
	}
}

func TestJSONRejectsUnknownType(t *testing.T) {
	var p Property
	if err := json.Unmarshal([]byte(`{"name":"x","type":"matrix"}`), &p); err == nil {
		t.Fatalf("expected unknown type error")
	}
}
