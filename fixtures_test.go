package rna

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type testLight struct {
	ID
	Energy float32
	Color  [3]float32
	Kind   int
	Spots  []testSpot
}

type testSpot struct {
	Name   string
	Size   float32
	Offset [3]float32
	Hidden bool
	Level  int16
}

type recordedTag struct {
	ID    *ID
	Flags RecalcFlag
}

type recordingDeps struct {
	tags      []recordedTag
	relations int
}

func (d *recordingDeps) TagUpdate(id *ID, flags RecalcFlag) {
	d.tags = append(d.tags, recordedTag{ID: id, Flags: flags})
}

func (d *recordingDeps) TagRelationsUpdate() {
	d.relations++
}

func (d *recordingDeps) flags() []RecalcFlag {
	out := make([]RecalcFlag, len(d.tags))
	for i, tag := range d.tags {
		out[i] = tag.Flags
	}
	return out
}

type recordingNotifier struct {
	notes []Note
}

func (n *recordingNotifier) AddNotifier(note Note, _ *ID) {
	n.notes = append(n.notes, note)
}

type failingBus struct{}

func (failingBus) PublishProperty(context.Context, Ptr, *PropertyDescriptor) error {
	return fmt.Errorf("bus offline")
}

type lightFixture struct {
	reg    *Registry
	light  *StructDescriptor
	spot   *StructDescriptor
	deps   *recordingDeps
	notes  *recordingNotifier
	events []LogEvent
}

func newLightFixture(t *testing.T) *lightFixture {
	t.Helper()
	f := &lightFixture{
		deps:  &recordingDeps{},
		notes: &recordingNotifier{},
	}

	f.spot = &StructDescriptor{
		Identifier:   "LightSpot",
		Name:         "Light Spot",
		NameProperty: "name",
		Path: func(ptr Ptr) string {
			return "spots" + PathQuote(ptr.Data.(*testSpot).Name)
		},
		Properties: []*PropertyDescriptor{
			MustBindField[testSpot]("Name", &PropertyDescriptor{
				Identifier: "name", Flag: PropEditable,
				String: StringSpec{MaxLength: 8},
			}),
			MustBindField[testSpot]("Size", &PropertyDescriptor{
				Identifier: "size", Flag: PropEditable,
				Float: FloatSpec{HardMin: 0, HardMax: 10},
			}),
			MustBindField[testSpot]("Offset", &PropertyDescriptor{
				Identifier: "offset", Subtype: SubtypeTranslation, Flag: PropEditable,
			}),
			MustBindField[testSpot]("Hidden", &PropertyDescriptor{
				Identifier: "hidden", Flag: PropEditable,
			}),
			MustBindField[testSpot]("Level", &PropertyDescriptor{
				Identifier: "level", Flag: PropEditable,
			}),
		},
	}

	f.light = &StructDescriptor{
		Identifier: "Light",
		Name:       "Light",
		Base:       IDStruct,
		Flag:       StructFlagID,
	}
	spots := BindCollection("spots", f.spot, func(ptr Ptr) []testSpot {
		return ptr.Data.(*testLight).Spots
	})
	f.light.Properties = []*PropertyDescriptor{
		{
			Identifier: "samples", Type: TypeInt, Flag: PropEditable,
			Int: IntSpec{Default: 4, HardMin: 1, HardMax: 4096},
		},
		MustBindField[testLight]("Energy", &PropertyDescriptor{
			Identifier: "energy", Flag: PropEditable | PropAnimatable,
			Recalc: RecalcParameters, Note: NoteObject,
			Float: FloatSpec{HardMin: 0, HardMax: 1000},
		}),
		MustBindField[testLight]("Color", &PropertyDescriptor{
			Identifier: "color", Subtype: SubtypeColor, Flag: PropEditable,
			Float: FloatSpec{HardMin: 0, HardMax: 1, DefaultArray: []float32{1, 1, 1}},
		}),
		MustBindField[testLight]("Kind", &PropertyDescriptor{
			Identifier: "kind", Type: TypeEnum, Flag: PropEditable,
			Enum: EnumSpec{Items: testLightKinds},
		}),
		{
			Identifier: "options", Type: TypeEnum, Flag: PropEditable | PropEnumFlag,
			Enum: EnumSpec{Items: testLightOptions, Default: 1},
		},
		{
			Identifier: "label", Type: TypeString, Flag: PropEditable,
			String: StringSpec{MaxLength: 5, Default: "lamp"},
		},
		{
			Identifier: "settings", Type: TypePointer, Flag: PropEditable | PropIDProperty,
			Pointer: PointerSpec{Type: PropertyGroupStruct},
		},
		{
			Identifier: "power", Type: TypeFloat, Flag: PropEditable | PropIDProperty,
			Float: FloatSpec{Default: 1},
		},
		{
			Identifier: "target", Type: TypePointer, Flag: PropEditable,
			Pointer: PointerSpec{Type: f.light},
		},
		spots,
		{
			Identifier: "weights", Type: TypeCollection, Flag: PropEditable | PropIDProperty,
			Override:   OverrideOverridableLibrary | OverrideLibraryInsertion,
			Collection: CollectionSpec{Type: PropertyGroupStruct},
		},
	}

	f.reg = NewRegistry(
		WithDepsGraph(f.deps),
		WithNotifier(f.notes),
		WithLogger(LoggerFunc(func(event LogEvent) {
			f.events = append(f.events, event)
		})),
	)
	require.NoError(t, f.reg.Register(f.spot, f.light))
	f.reg.Init()
	return f
}

func (f *lightFixture) newLight(name string) *testLight {
	light := &testLight{ID: NewID(name, f.light), Energy: 10}
	for i := range 5 {
		n := float32(i)
		light.Spots = append(light.Spots, testSpot{
			Name:   fmt.Sprintf("item_%d", i),
			Size:   n,
			Offset: [3]float32{n, n + 1, n + 2},
			Level:  int16(i),
		})
	}
	return light
}

func (f *lightFixture) ref(name string) PropertyRef {
	prop := f.light.FindProperty(name)
	if prop == nil {
		panic("unknown light property " + name)
	}
	return StaticRef(prop)
}

func (f *lightFixture) spotRef(name string) PropertyRef {
	return StaticRef(f.spot.FindProperty(name))
}

func (f *lightFixture) reset() {
	f.deps.tags = nil
	f.deps.relations = 0
	f.notes.notes = nil
	f.events = nil
}
