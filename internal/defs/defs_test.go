package defs_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rna "github.com/goliatone/go-rna"
	"github.com/goliatone/go-rna/idprop"
	"github.com/goliatone/go-rna/internal/defs"
)

func loadFurniture(t *testing.T) (*rna.Registry, *defs.Set) {
	t.Helper()
	f, err := defs.LoadFile(filepath.Join("..", "..", "testdata", "defs_furniture.yaml"))
	require.NoError(t, err)

	reg := rna.NewRegistry()
	var reports rna.ReportList
	set, err := defs.NewBuilder(reg).Register(f, &reports)
	require.NoError(t, err)
	assert.False(t, reports.HasErrors())
	reg.Init()
	return reg, set
}

func TestParseAppliesDefaults(t *testing.T) {
	f, err := defs.Parse([]byte(`
structs:
  - identifier: Lamp
    properties:
      - identifier: tint
        type: FLOAT
        size: 3
      - identifier: grid
        type: int
        size: [2, 2]
`))
	require.NoError(t, err)

	assert.Equal(t, "1", f.Version)
	require.Len(t, f.Structs, 1)
	lamp := f.Structs[0]
	assert.Equal(t, "ID", lamp.Base)
	assert.Equal(t, "Lamp", lamp.Name)
	assert.Equal(t, "float", lamp.Properties[0].Type)
	assert.Equal(t, "tint", lamp.Properties[0].Name)
	assert.Equal(t, defs.Dims{3}, lamp.Properties[0].Size)
	assert.Equal(t, defs.Dims{2, 2}, lamp.Properties[1].Size)

	out, err := defs.Marshal(f)
	require.NoError(t, err)
	again, err := defs.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, f.Structs, again.Structs)
}

func TestParseRejectsMalformedSize(t *testing.T) {
	_, err := defs.Parse([]byte(`
structs:
  - identifier: Lamp
    properties:
      - identifier: tint
        type: float
        size: {x: 3}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defs: parse")
}

func TestRegisteredStructs(t *testing.T) {
	reg, set := loadFurniture(t)

	assert.Equal(t, []string{"Cushion", "Material", "Chair"}, set.Identifiers())
	chair := reg.Find("Chair")
	require.NotNil(t, chair)
	assert.Same(t, set.Struct("Chair"), chair)
	assert.True(t, chair.IsID())
	assert.True(t, chair.UndoCheck())
	assert.True(t, chair.IsA(rna.IDStruct))
	assert.True(t, reg.Find("Cushion").IsA(rna.PropertyGroupStruct))
	assert.False(t, reg.Find("Cushion").IsID())

	color := chair.FindProperty("color")
	require.NotNil(t, color)
	assert.Equal(t, rna.TypeFloat, color.Type)
	assert.Equal(t, rna.SubtypeColor, color.Subtype)
	assert.Equal(t, []int{3}, color.ArrayLength)
	assert.NotZero(t, color.Flag&rna.PropIDProperty)

	serial := chair.FindProperty("serial")
	require.NotNil(t, serial)
	assert.Zero(t, serial.Flag&rna.PropEditable)
}

func TestDeclaredBlockAccess(t *testing.T) {
	reg, set := loadFurniture(t)
	ctx := context.Background()

	chair, err := set.New("Chair", "Chair.001")
	require.NoError(t, err)
	ptr := rna.PointerFromID(chair)
	require.Same(t, set.Struct("Chair"), ptr.Type)

	legs := reg.FindProperty(ptr, "legs")
	require.True(t, legs.IsValid())
	assert.Equal(t, 4, reg.IntGet(ptr, legs))
	assert.False(t, reg.PropertyIsSet(ptr, legs))

	require.NoError(t, reg.IntSet(ctx, ptr, legs, 12))
	assert.Equal(t, 8, reg.IntGet(ptr, legs))
	assert.True(t, reg.PropertyIsSet(ptr, legs))
	require.NotNil(t, chair.Properties)
	assert.Equal(t, 8, chair.Properties.Get("legs").Int())

	finish, err := reg.Get(ctx, ptr, reg.FindProperty(ptr, "finish"))
	require.NoError(t, err)
	assert.Equal(t, "GLOSS", finish)

	features, err := reg.Get(ctx, ptr, reg.FindProperty(ptr, "features"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ARMS", "SWIVEL"}, features)

	color, err := reg.Get(ctx, ptr, reg.FindProperty(ptr, "color"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, color)

	label := reg.FindProperty(ptr, "label")
	require.NoError(t, reg.StringSet(ctx, ptr, label, "a very long chair label"))
	assert.Equal(t, "a very long chai", reg.StringGet(ptr, label))

	err = reg.StringSet(ctx, ptr, reg.FindProperty(ptr, "serial"), "X1")
	require.ErrorIs(t, err, rna.ErrNotEditable)

	rating := reg.FindProperty(ptr, "rating")
	assert.False(t, rating.IsValid(), "custom entries only exist in defaults")
}

func TestDeclaredPointers(t *testing.T) {
	reg, set := loadFurniture(t)
	ctx := context.Background()

	chair, err := set.New("Chair", "Chair.001")
	require.NoError(t, err)
	oak, err := set.New("Material", "Oak")
	require.NoError(t, err)
	ptr := rna.PointerFromID(chair)

	material := reg.FindProperty(ptr, "material")
	require.NoError(t, reg.PointerSet(ctx, ptr, material, rna.PointerFromID(oak)))
	got := reg.PointerGet(ptr, material)
	assert.Same(t, oak, got.Data)

	other, err := set.New("Chair", "Chair.002")
	require.NoError(t, err)
	err = reg.PointerSet(ctx, ptr, material, rna.PointerFromID(other))
	require.ErrorIs(t, err, rna.ErrTypeMismatch)

	cushion := reg.PointerGet(ptr, reg.FindProperty(ptr, "cushion"))
	require.True(t, cushion.IsValid())
	assert.Same(t, set.Struct("Cushion"), cushion.Type)
	firmness := reg.FindProperty(cushion, "firmness")
	assert.InDelta(t, 0.5, reg.FloatGet(cushion, firmness), 1e-6)

	require.NoError(t, reg.FloatSet(ctx, cushion, firmness, 3))
	assert.InDelta(t, 1, reg.FloatGet(cushion, firmness), 1e-6)
	assert.NotNil(t, chair.Properties.Get("cushion").Get("firmness"))
}

func TestSetDefaults(t *testing.T) {
	_, set := loadFurniture(t)

	group := set.Defaults("Chair")
	require.NotNil(t, group)

	names := []string{}
	for _, entry := range group.Properties() {
		names = append(names, entry.Name)
	}
	assert.Equal(t, []string{"legs", "color", "finish", "features", "label", "stackable", "serial", "rating", "tags"}, names)

	assert.Equal(t, 4, group.Get("legs").Int())
	assert.Equal(t, []float32{1, 1, 1}, group.Get("color").Floats())
	assert.Equal(t, 1, group.Get("finish").Int())
	assert.Equal(t, 5, group.Get("features").Int())
	assert.Equal(t, "chair", group.Get("label").Str())
	assert.Equal(t, 1, group.Get("stackable").Int())
	assert.Equal(t, 3, group.Get("rating").Int())
	assert.Equal(t, idprop.Group, group.Get("tags").Type())
	assert.Equal(t, "kitchen", group.Get("tags").Get("room").Str())

	group.Get("legs").SetInt(1)
	assert.Equal(t, 4, set.Defaults("Chair").Get("legs").Int())
	assert.Nil(t, set.Defaults("Unknown"))
}

func TestNewRejectsUnknownAndNonBlockTypes(t *testing.T) {
	_, set := loadFurniture(t)

	_, err := set.New("Sofa", "Sofa")
	require.ErrorIs(t, err, rna.ErrNotFound)

	_, err = set.New("Cushion", "Cushion")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a data block type")
}

func TestRegisterReportsInvalidDefinitions(t *testing.T) {
	cases := []struct {
		name   string
		yaml   string
		expect string
	}{
		{
			name: "unknown base",
			yaml: `
structs:
  - identifier: Lamp
    base: Light`,
			expect: "Lamp: unknown base 'Light'",
		},
		{
			name: "identifier in use",
			yaml: `
structs:
  - identifier: ID`,
			expect: "Type identifier 'ID' is already in use: 'ID'.",
		},
		{
			name: "declared twice",
			yaml: `
structs:
  - identifier: Lamp
  - identifier: Lamp`,
			expect: "Type identifier 'Lamp' is declared twice.",
		},
		{
			name: "base without dynamic storage",
			yaml: `
structs:
  - identifier: Lamp
    base: Struct`,
			expect: "neither a data block nor a property group",
		},
		{
			name: "unknown type",
			yaml: `
structs:
  - identifier: Lamp
    properties:
      - identifier: power
        type: integer`,
			expect: `Lamp.power: unknown type "integer"`,
		},
		{
			name: "shadowed builtin",
			yaml: `
structs:
  - identifier: Lamp
    properties:
      - identifier: name
        type: string`,
			expect: "Lamp: property 'name' is already defined",
		},
		{
			name: "enum default not an item",
			yaml: `
structs:
  - identifier: Lamp
    properties:
      - identifier: mode
        type: enum
        items: [{identifier: LIT, value: 1}]
        default: DARK`,
			expect: "default 'DARK' is not an item",
		},
		{
			name: "array default length",
			yaml: `
structs:
  - identifier: Lamp
    properties:
      - identifier: tint
        type: float
        size: 3
        default: [1, 0]`,
			expect: "default has 2 elements, expected 3",
		},
		{
			name: "field without bound type",
			yaml: `
structs:
  - identifier: Lamp
    properties:
      - identifier: power
        type: int
        field: Power`,
			expect: "field 'Power' given but no Go type is bound",
		},
		{
			name: "unknown pointer target",
			yaml: `
structs:
  - identifier: Lamp
    properties:
      - identifier: shade
        type: pointer
        struct: Shade`,
			expect: "unknown struct 'Shade'",
		},
		{
			name: "custom shadows declared",
			yaml: `
structs:
  - identifier: Lamp
    properties:
      - identifier: power
        type: int
    custom:
      power: 3`,
			expect: "custom property 'power' shadows a declared property",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := defs.Parse([]byte(tc.yaml + "\n  - identifier: Valid\n"))
			require.NoError(t, err)

			reg := rna.NewRegistry()
			var reports rna.ReportList
			_, err = defs.NewBuilder(reg).Register(f, &reports)
			require.ErrorIs(t, err, defs.ErrInvalid)
			assert.Contains(t, err.Error(), tc.expect)
			assert.True(t, reports.HasErrors())
			assert.Nil(t, reg.Find("Valid"))
		})
	}
}

type lamp struct {
	rna.ID
	Power int
	Tint  [3]float32
}

func TestBindType(t *testing.T) {
	f, err := defs.Parse([]byte(`
structs:
  - identifier: Lamp
    properties:
      - identifier: power
        type: int
        field: Power
        min: 0
        max: 200
      - identifier: tint
        type: float
        subtype: color
        field: Tint
      - identifier: brand
        type: string
        default: acme
`))
	require.NoError(t, err)

	reg := rna.NewRegistry()
	set, err := defs.NewBuilder(reg, defs.BindType[lamp]("Lamp")).Register(f, nil)
	require.NoError(t, err)
	reg.Init()
	ctx := context.Background()

	l := &lamp{ID: rna.NewID("Lamp", set.Struct("Lamp"))}
	ptr := rna.PointerFromID(l)

	power := reg.FindProperty(ptr, "power")
	require.NoError(t, reg.IntSet(ctx, ptr, power, 500))
	assert.Equal(t, 200, l.Power)
	assert.Nil(t, l.Properties, "bound fields do not touch ID properties")

	require.NoError(t, reg.FloatSetArray(ctx, ptr, reg.FindProperty(ptr, "tint"), []float32{0.1, 0.2, 0.3}))
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, l.Tint)

	assert.Equal(t, "acme", reg.StringGet(ptr, reg.FindProperty(ptr, "brand")))

	defaults := set.Defaults("Lamp")
	require.Len(t, defaults.Properties(), 1)
	assert.Equal(t, "brand", defaults.Properties()[0].Name)
}

func TestBindTypeRejectsKindMismatch(t *testing.T) {
	f, err := defs.Parse([]byte(`
structs:
  - identifier: Lamp
    properties:
      - identifier: power
        type: float
        field: Power
`))
	require.NoError(t, err)

	_, err = defs.NewBuilder(rna.NewRegistry(), defs.BindType[lamp]("Lamp")).Register(f, nil)
	require.ErrorIs(t, err, defs.ErrInvalid)
	assert.Contains(t, err.Error(), "field 'Power' holds int, declared float")
}
