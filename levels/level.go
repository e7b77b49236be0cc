package levels

import (
	"fmt"
	"math"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/gladerunner/nav"
)

const (
	DefaultTileSize = 32
	CollisionLayer  = "collision"
	GroundLayer     = "ground"
)

// Level is a tile map stored as JSON. Every layer is a flat row-major array
// of Columns*Rows tile values.
type Level struct {
	Columns int     `json:"width"`
	Rows    int     `json:"height"`
	Size    float64 `json:"tile_size,omitempty"`
	Layers  []Layer `json:"layers"`

	// CollisionTiles lists the collision layer values that block movement.
	// Empty means any non-zero value blocks.
	CollisionTiles []int `json:"collision_tiles,omitempty"`

	// Palette maps ground tile values to "#rrggbb" colors for the viewer.
	Palette map[int]string `json:"palette,omitempty"`

	Player Spawn   `json:"player"`
	Agents []Spawn `json:"agents,omitempty"`

	byName    map[string]int
	collision []int
}

type Layer struct {
	Name string `json:"name"`
	Data []int  `json:"data"`
}

// Spawn places an entity on a tile. Script names the behaviour script an
// agent runs; empty means the navigation config's default.
type Spawn struct {
	Name   string `json:"name,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Script string `json:"script,omitempty"`
}

func (s Spawn) Tile() nav.Tile {
	return nav.Tile{X: s.X, Y: s.Y}
}

func (l *Level) init() error {
	if l.Columns <= 0 || l.Rows <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, l.Columns, l.Rows)
	}
	if l.Size <= 0 {
		l.Size = DefaultTileSize
	}
	l.byName = make(map[string]int, len(l.Layers))
	for i, layer := range l.Layers {
		if len(layer.Data) != l.Columns*l.Rows {
			return fmt.Errorf("%w: layer %q has %d tiles, want %d", ErrLayerSize, layer.Name, len(layer.Data), l.Columns*l.Rows)
		}
		l.byName[layer.Name] = i
	}
	if i, ok := l.byName[CollisionLayer]; ok {
		l.collision = l.Layers[i].Data
	} else {
		return fmt.Errorf("%w: %q", ErrMissingLayer, CollisionLayer)
	}
	if l.Blocked(l.Player.X, l.Player.Y) {
		return fmt.Errorf("%w: player at %d,%d", ErrSpawnBlocked, l.Player.X, l.Player.Y)
	}
	for _, a := range l.Agents {
		if l.Blocked(a.X, a.Y) {
			return fmt.Errorf("%w: agent %q at %d,%d", ErrSpawnBlocked, a.Name, a.X, a.Y)
		}
	}
	return nil
}

func (l *Level) Width() int        { return l.Columns }
func (l *Level) Height() int       { return l.Rows }
func (l *Level) TileSize() float64 { return l.Size }

func (l *Level) InBounds(tx, ty int) bool {
	return tx >= 0 && ty >= 0 && tx < l.Columns && ty < l.Rows
}

// Blocked reports whether the tile cannot be walked. Tiles outside the map
// are blocked.
func (l *Level) Blocked(tx, ty int) bool {
	if !l.InBounds(tx, ty) {
		return true
	}
	v := l.collision[ty*l.Columns+tx]
	if len(l.CollisionTiles) == 0 {
		return v != 0
	}
	return slices.Contains(l.CollisionTiles, v)
}

// TileAt returns the value of a layer at a tile.
func (l *Level) TileAt(layer string, tx, ty int) (int, bool) {
	i, ok := l.byName[layer]
	if !ok || !l.InBounds(tx, ty) {
		return 0, false
	}
	return l.Layers[i].Data[ty*l.Columns+tx], true
}

func (l *Level) WorldToTile(pos cp.Vector) (int, int) {
	return int(math.Floor(pos.X / l.Size)), int(math.Floor(pos.Y / l.Size))
}

func (l *Level) TileCenter(tx, ty int) cp.Vector {
	return cp.Vector{X: float64(tx)*l.Size + l.Size/2, Y: float64(ty)*l.Size + l.Size/2}
}

// Bounds is the level extent in world units.
func (l *Level) Bounds() cp.BB {
	return cp.BB{L: 0, B: 0, R: float64(l.Columns) * l.Size, T: float64(l.Rows) * l.Size}
}

// CanOccupy reports whether a box touches only walkable tiles.
func (l *Level) CanOccupy(bb cp.BB) bool {
	minX, minY := l.WorldToTile(cp.Vector{X: bb.L, Y: bb.B})
	maxX, maxY := l.WorldToTile(cp.Vector{X: math.Nextafter(bb.R, bb.L), Y: math.Nextafter(bb.T, bb.B)})
	for ty := minY; ty <= maxY; ty++ {
		for tx := minX; tx <= maxX; tx++ {
			if l.Blocked(tx, ty) {
				return false
			}
		}
	}
	return true
}

// BuildMesh derives the navigation mesh from the collision layer.
func (l *Level) BuildMesh() *nav.NavMesh {
	return nav.BuildMesh(l)
}
