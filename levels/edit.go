package levels

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"
)

// New creates an empty level with ground and collision layers.
func New(width, height int, tileSize float64) (*Level, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	ground := make([]int, width*height)
	for i := range ground {
		ground[i] = 1
	}
	lvl := &Level{
		Columns: width,
		Rows:    height,
		Size:    tileSize,
		Layers: []Layer{
			{Name: GroundLayer, Data: ground},
			{Name: CollisionLayer, Data: make([]int, width*height)},
		},
	}
	if err := lvl.init(); err != nil {
		return nil, err
	}
	return lvl, nil
}

// SetTile writes one tile of a layer. Meshes built earlier are unaffected.
func (l *Level) SetTile(layer string, tx, ty, v int) bool {
	i, ok := l.byName[layer]
	if !ok || !l.InBounds(tx, ty) {
		return false
	}
	l.Layers[i].Data[ty*l.Columns+tx] = v
	return true
}

// Marshal encodes the level as indented JSON.
func (l *Level) Marshal() ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Colors decodes the palette, skipping entries that are not "#rrggbb".
func (l *Level) Colors() map[int]color.RGBA {
	out := make(map[int]color.RGBA, len(l.Palette))
	for v, hex := range l.Palette {
		if c, ok := ParseHexColor(hex); ok {
			out[v] = c
		}
	}
	return out
}

func ParseHexColor(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	n, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, true
}
