package rna

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLightKinds = NewEnumTable(
	EnumItem{Identifier: "POINT", Name: "Point", Value: 0},
	EnumItem{Identifier: "SUN", Name: "Sun", Value: 1},
	EnumItem{Name: "Area Lights"},
	EnumItem{Identifier: "AREA", Name: "Area", Value: 3},
)

var testLightOptions = NewEnumTable(
	EnumItem{Identifier: "SHADOW", Value: 1},
	EnumItem{Identifier: "SPECULAR", Value: 2},
	EnumItem{Identifier: "VOLUME", Value: 4},
)

func TestEnumTableLookups(t *testing.T) {
	id, ok := testLightKinds.Identifier(3)
	require.True(t, ok)
	assert.Equal(t, "AREA", id)

	value, ok := testLightKinds.Value("SUN")
	require.True(t, ok)
	assert.Equal(t, 1, value)

	_, ok = testLightKinds.Value("")
	assert.False(t, ok, "separators must not be found")

	_, ok = testLightKinds.FindValue(2)
	assert.False(t, ok)
	assert.Equal(t, 4, testLightKinds.Len())
}

func TestEnumTableBitflags(t *testing.T) {
	assert.Equal(t, []string{"SHADOW", "VOLUME"}, testLightOptions.BitflagIdentifiers(5))

	mask, ok := testLightOptions.BitflagValue("SHADOW", "SPECULAR")
	require.True(t, ok)
	assert.Equal(t, 3, mask)

	_, ok = testLightOptions.BitflagValue("SHADOW", "MISSING")
	assert.False(t, ok)
}

func TestEnumTableItemsIsCopy(t *testing.T) {
	items := testLightKinds.Items()
	items[0].Identifier = "CHANGED"
	_, ok := testLightKinds.Value("POINT")
	assert.True(t, ok)
}
