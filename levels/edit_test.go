package levels

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndSetTile(t *testing.T) {
	lvl, err := New(3, 2, 16)
	require.NoError(t, err)
	assert.Equal(t, 16.0, lvl.TileSize())
	assert.Equal(t, 6, lvl.BuildMesh().Len())

	require.True(t, lvl.SetTile(CollisionLayer, 1, 0, 1))
	assert.True(t, lvl.Blocked(1, 0))
	assert.Equal(t, 5, lvl.BuildMesh().Len())

	assert.False(t, lvl.SetTile(CollisionLayer, 3, 0, 1))
	assert.False(t, lvl.SetTile("decor", 0, 0, 1))

	_, err = New(0, 2, 16)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestMarshalRoundTrip(t *testing.T) {
	lvl, err := New(4, 3, 32)
	require.NoError(t, err)
	lvl.SetTile(CollisionLayer, 2, 1, 1)
	lvl.Agents = []Spawn{{Name: "a", X: 3, Y: 2}}

	data, err := lvl.Marshal()
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, back.Blocked(2, 1))
	assert.Equal(t, lvl.Agents, back.Agents)
	assert.Equal(t, lvl.BuildMesh().IDs(), back.BuildMesh().IDs())
}

func TestColors(t *testing.T) {
	c, ok := ParseHexColor("#5fbc6d")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0x5f, G: 0xbc, B: 0x6d, A: 0xff}, c)
	for _, bad := range []string{"", "5fbc6d", "#5fbc6", "#zzzzzz"} {
		_, ok := ParseHexColor(bad)
		assert.False(t, ok, bad)
	}

	lvl := &Level{Palette: map[int]string{1: "#000000", 2: "nope"}}
	assert.Len(t, lvl.Colors(), 1)
}

func TestDiskPath(t *testing.T) {
	want := filepath.Join("levels", "glade.json")
	assert.Equal(t, want, DiskPath("glade"))
	assert.Equal(t, want, DiskPath("glade.json"))
	assert.Equal(t, want, DiskPath("levels/glade.json"))
}
