package main

import (
	"image/color"
	"math"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gladerunner/ecs/component"
	"github.com/milk9111/gladerunner/levels"
	"github.com/milk9111/gladerunner/nav"
	"golang.org/x/image/colornames"
)

var (
	backgroundColor = colornames.Darkslategray
	groundColor     = colornames.Mediumseagreen
	blockedColor    = color.RGBA{R: 0x20, G: 0x20, B: 0x28, A: 0xb0}
	playerColor     = colornames.Gold
	agentColor      = colornames.Crimson
	waypointColor   = color.RGBA{R: 90, G: 209, B: 255, A: 64}
	pathLineColor   = color.RGBA{R: 90, G: 209, B: 255, A: 160}
)

func tileAt(lvl *levels.Level, x, y float64) nav.Tile {
	size := lvl.TileSize()
	return nav.Tile{X: int(math.Floor(x / size)), Y: int(math.Floor(y / size))}
}

func (g *Game) drawTiles(screen *ebiten.Image) {
	lvl := g.scene.Level().Level
	size := float32(lvl.TileSize())
	for ty := 0; ty < lvl.Height(); ty++ {
		for tx := 0; tx < lvl.Width(); tx++ {
			x, y := float32(tx)*size, float32(ty)*size
			var c color.Color = groundColor
			if v, ok := lvl.TileAt(levels.GroundLayer, tx, ty); ok {
				if pc, ok := g.palette[v]; ok {
					c = pc
				}
			}
			vector.FillRect(screen, x, y, size, size, c, false)
			if lvl.Blocked(tx, ty) {
				vector.FillRect(screen, x, y, size, size, blockedColor, false)
			}
		}
	}
}

// drawPaths marks every remaining waypoint with a numbered dot and joins
// them from the agent's position.
func (g *Game) drawPaths(screen *ebiten.Image) {
	positions := g.scene.AgentPositions()
	for i, agent := range g.scene.Agents() {
		entries := agent.Controller.PathNodes()
		if len(entries) == 0 {
			continue
		}
		if i < len(positions) {
			from := positions[i]
			for _, e := range entries[agent.Controller.Cursor():] {
				vector.StrokeLine(screen, float32(from.X), float32(from.Y), float32(e.Node.X), float32(e.Node.Y), 1.5, pathLineColor, true)
				from.X, from.Y = e.Node.X, e.Node.Y
			}
		}
		for n, e := range entries {
			vector.FillCircle(screen, float32(e.Node.X), float32(e.Node.Y), 6, waypointColor, true)
			ebitenutil.DebugPrintAt(screen, strconv.Itoa(n+1), int(e.Node.X)+8, int(e.Node.Y)-12)
		}
	}
}

func (g *Game) drawEntities(screen *ebiten.Image) {
	for _, pos := range g.scene.AgentPositions() {
		drawBox(screen, pos.X, pos.Y, 10, agentColor)
	}
	if pos, ok := g.scene.Position(g.scene.Player); ok {
		drawBox(screen, pos.X, pos.Y, 12, playerColor)
	}
}

func drawBox(screen *ebiten.Image, cx, cy, half float64, c color.Color) {
	box := component.Mover{HalfExtent: half}.Box(cp.Vector{X: cx, Y: cy})
	vector.FillRect(screen, float32(box.L), float32(box.B), float32(box.R-box.L), float32(box.T-box.B), c, false)
	vector.StrokeRect(screen, float32(box.L), float32(box.B), float32(box.R-box.L), float32(box.T-box.B), 1, colornames.Black, false)
}
