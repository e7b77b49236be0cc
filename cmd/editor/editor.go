package main

import (
	"fmt"
	"image/color"
	"log"
	"slices"
	"strconv"

	"github.com/ebitenui/ebitenui"
	ebuiinput "github.com/ebitenui/ebitenui/input"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/gladerunner/levels"
	"github.com/milk9111/gladerunner/nav"
	"golang.org/x/image/colornames"
)

const minCanvasWidth = 560

var (
	groundColor = colornames.Mediumseagreen
	wallColor   = color.RGBA{R: 0x20, G: 0x20, B: 0x28, A: 0xd0}
	gridColor   = color.RGBA{A: 0x30}
	playerColor = colornames.Gold
	agentColor  = colornames.Crimson
	routeColor  = colornames.Deepskyblue
)

// Editor paints the collision layer of a level, places spawns and previews
// paths between two route endpoints on the mesh the level would produce.
type Editor struct {
	level    *levels.Level
	filename string
	palette  map[int]color.RGBA

	ui      *ebitenui.UI
	toolbar *ToolBar
	status  *widget.Label
	tool    Tool

	route     []nav.Tile
	routePath []string
	routeCost float64

	message        string
	dirty          bool
	clipboardReady bool
}

func NewEditor(lvl *levels.Level, filename string) *Editor {
	e := &Editor{
		level:    lvl,
		filename: filename,
		palette:  lvl.Colors(),
		tool:     ToolWall,
	}
	e.ui, e.toolbar, e.status = BuildEditorUI(e.selectTool, e.onSave, e.onCopy, e.tool)
	e.refreshStatus()
	return e
}

func (e *Editor) selectTool(t Tool) {
	e.tool = t
	e.refreshStatus()
}

func (e *Editor) onSave() {
	if err := e.Save(); err != nil {
		e.message = "save failed: " + err.Error()
		log.Printf("Save failed: %v", err)
	} else {
		e.message = "saved " + e.filename
		log.Printf("Saved %s", e.filename)
	}
	e.refreshStatus()
}

func (e *Editor) onCopy() {
	if err := e.CopyJSON(); err != nil {
		e.message = "copy failed: " + err.Error()
		log.Printf("Copy failed: %v", err)
	} else {
		e.message = "level JSON copied"
	}
	e.refreshStatus()
}

func (e *Editor) Update() error {
	e.ui.Update()

	for i, key := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5} {
		if inpututil.IsKeyJustPressed(key) && i < len(allTools) {
			e.toolbar.Select(allTools[i])
			e.selectTool(allTools[i])
		}
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) && inpututil.IsKeyJustPressed(ebiten.KeyS) {
		e.onSave()
	}

	if ebuiinput.UIHovered {
		return nil
	}
	tile, ok := e.cursorTile()
	if !ok {
		return nil
	}
	if e.tool.paints() && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		e.paint(tile)
	} else if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		e.place(tile)
	}
	return nil
}

// cursorTile maps the mouse position onto the canvas below the tool bar.
func (e *Editor) cursorTile() (nav.Tile, bool) {
	mx, my := ebiten.CursorPosition()
	size := e.level.TileSize()
	tx := int(float64(mx) / size)
	ty := int(float64(my-toolbarHeight) / size)
	if my < toolbarHeight || !e.level.InBounds(tx, ty) {
		return nav.Tile{}, false
	}
	return nav.Tile{X: tx, Y: ty}, true
}

func (e *Editor) wallValue() int {
	if len(e.level.CollisionTiles) > 0 {
		return e.level.CollisionTiles[0]
	}
	return 1
}

func (e *Editor) paint(t nav.Tile) {
	v := 0
	if e.tool == ToolWall {
		if e.spawnAt(t) {
			e.message = "tile " + t.String() + " holds a spawn"
			e.refreshStatus()
			return
		}
		v = e.wallValue()
	}
	if cur, _ := e.level.TileAt(levels.CollisionLayer, t.X, t.Y); cur == v {
		return
	}
	e.level.SetTile(levels.CollisionLayer, t.X, t.Y, v)
	e.dirty = true
	e.message = ""
	e.updateRoute()
}

func (e *Editor) place(t nav.Tile) {
	switch e.tool {
	case ToolPlayer:
		if e.level.Blocked(t.X, t.Y) {
			e.message = "player cannot stand on a wall"
			break
		}
		e.level.Player.X, e.level.Player.Y = t.X, t.Y
		e.dirty = true
	case ToolAgent:
		if i := e.agentIndex(t); i >= 0 {
			e.message = "removed " + e.level.Agents[i].Name
			e.level.Agents = slices.Delete(e.level.Agents, i, i+1)
			e.dirty = true
			break
		}
		if e.level.Blocked(t.X, t.Y) {
			e.message = "agents cannot stand on a wall"
			break
		}
		e.level.Agents = append(e.level.Agents, levels.Spawn{
			Name: e.nextAgentName(),
			X:    t.X,
			Y:    t.Y,
		})
		e.dirty = true
	case ToolRoute:
		if len(e.route) == 2 {
			e.route = e.route[:0]
		}
		e.route = append(e.route, t)
		e.updateRoute()
	}
	e.refreshStatus()
}

func (e *Editor) spawnAt(t nav.Tile) bool {
	return e.level.Player.Tile() == t || e.agentIndex(t) >= 0
}

func (e *Editor) agentIndex(t nav.Tile) int {
	return slices.IndexFunc(e.level.Agents, func(s levels.Spawn) bool { return s.Tile() == t })
}

func (e *Editor) nextAgentName() string {
	for n := len(e.level.Agents) + 1; ; n++ {
		name := "agent" + strconv.Itoa(n)
		if !slices.ContainsFunc(e.level.Agents, func(s levels.Spawn) bool { return s.Name == name }) {
			return name
		}
	}
}

// updateRoute searches between the route endpoints on a freshly built mesh.
func (e *Editor) updateRoute() {
	e.routePath, e.routeCost = nil, 0
	if len(e.route) < 2 {
		e.refreshStatus()
		return
	}
	mesh := e.level.BuildMesh()
	e.routePath = nav.Search(mesh, e.route[0].ID(), e.route[1].ID())
	e.routeCost = nav.PathCost(mesh, e.routePath)
	e.refreshStatus()
}

func (e *Editor) refreshStatus() {
	if e.status == nil {
		return
	}
	line := fmt.Sprintf("%s  tool: %s  agents: %d", e.filename, e.tool, len(e.level.Agents))
	if e.dirty {
		line += "  (modified)"
	}
	switch {
	case len(e.route) == 1:
		line += "  route: pick goal"
	case len(e.route) == 2 && e.routePath == nil:
		line += fmt.Sprintf("  route %s -> %s: no path", e.route[0], e.route[1])
	case len(e.route) == 2:
		line += fmt.Sprintf("  route %s -> %s: %d nodes, cost %.0f", e.route[0], e.route[1], len(e.routePath), e.routeCost)
	}
	if e.message != "" {
		line += "  | " + e.message
	}
	e.status.Label = line
}

func (e *Editor) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Darkslategray)
	size := float32(e.level.TileSize())
	oy := float32(toolbarHeight)

	for ty := 0; ty < e.level.Height(); ty++ {
		for tx := 0; tx < e.level.Width(); tx++ {
			x, y := float32(tx)*size, oy+float32(ty)*size
			var c color.Color = groundColor
			if v, ok := e.level.TileAt(levels.GroundLayer, tx, ty); ok {
				if pc, ok := e.palette[v]; ok {
					c = pc
				}
			}
			vector.FillRect(screen, x, y, size, size, c, false)
			if e.level.Blocked(tx, ty) {
				vector.FillRect(screen, x, y, size, size, wallColor, false)
			}
			vector.StrokeRect(screen, x, y, size, size, 1, gridColor, false)
		}
	}

	half := size / 2
	center := func(t nav.Tile) (float32, float32) {
		return float32(t.X)*size + half, oy + float32(t.Y)*size + half
	}

	if len(e.routePath) > 1 {
		for i := 1; i < len(e.routePath); i++ {
			ax, ay, err1 := nav.ParseNodeID(e.routePath[i-1])
			bx, by, err2 := nav.ParseNodeID(e.routePath[i])
			if err1 != nil || err2 != nil {
				continue
			}
			x0, y0 := center(nav.Tile{X: ax, Y: ay})
			x1, y1 := center(nav.Tile{X: bx, Y: by})
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, routeColor, true)
		}
	}
	for _, t := range e.route {
		x, y := center(t)
		vector.StrokeCircle(screen, x, y, half*0.6, 2, routeColor, true)
	}

	px, py := center(e.level.Player.Tile())
	vector.FillCircle(screen, px, py, half*0.6, playerColor, true)
	for _, a := range e.level.Agents {
		x, y := center(a.Tile())
		vector.FillCircle(screen, x, y, half*0.5, agentColor, true)
		ebitenutil.DebugPrintAt(screen, a.Name, int(x+half*0.6), int(y-half))
	}

	e.ui.Draw(screen)
}

func (e *Editor) Layout(outsideWidth, outsideHeight int) (int, int) {
	return e.size()
}

func (e *Editor) size() (int, int) {
	w := int(float64(e.level.Width()) * e.level.TileSize())
	h := int(float64(e.level.Height())*e.level.TileSize()) + toolbarHeight + statusHeight
	return max(w, minCanvasWidth), h
}
