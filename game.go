package main

import (
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/gladerunner/prefabs"
	"github.com/milk9111/gladerunner/scene"
)

type Game struct {
	scene   *scene.Scene
	watcher *prefabs.Watcher
	input   *keyboardInput
	log     *slog.Logger

	debug   bool
	frames  int
	palette map[int]color.RGBA
	closed  bool
}

func NewGame(sc *scene.Scene, watcher *prefabs.Watcher, input *keyboardInput, debug bool, logger *slog.Logger) *Game {
	g := &Game{
		scene:   sc,
		watcher: watcher,
		input:   input,
		log:     logger.With("component", "viewer"),
		debug:   debug,
	}
	g.palette = sc.Level().Level.Colors()
	return g
}

// Size is the level size in pixels.
func (g *Game) Size() (int, int) {
	lvl := g.scene.Level().Level
	return int(float64(lvl.Width()) * lvl.TileSize()), int(float64(lvl.Height()) * lvl.TileSize())
}

func (g *Game) Update() error {
	g.frames++
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.Close()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.sendAgentsToCursor()
	}

	g.scene.Step()
	return nil
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			if err := g.scene.HandleFileChange(change.Path); err != nil {
				g.log.Warn("reload failed", "file", change.Path, "kind", change.Kind.String(), "err", err)
				continue
			}
			g.palette = g.scene.Level().Level.Colors()
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn("watcher", "err", err)
			}
			return
		default:
			return
		}
	}
}

func (g *Game) sendAgentsToCursor() {
	lvl := g.scene.Level().Level
	cx, cy := ebiten.CursorPosition()
	tile := tileAt(lvl, float64(cx), float64(cy))
	if lvl.Blocked(tile.X, tile.Y) {
		return
	}
	if err := g.scene.RequestAll(tile); err != nil {
		g.log.Warn("path request", "tile", tile.ID(), "err", err)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	g.drawTiles(screen)
	if g.debug {
		g.drawPaths(screen)
	}
	g.drawEntities(screen)

	lines := g.scene.HUDLines(g.debug)
	lines = append(lines, "Frames: "+strconv.Itoa(g.frames)+"  TPS: "+strconv.FormatFloat(ebiten.ActualTPS(), 'f', 1, 64))
	ebitenutil.DebugPrint(screen, strings.Join(lines, "\n"))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.Size()
}

// Close releases the scene and the watcher. Safe to call more than once.
func (g *Game) Close() {
	if g.closed {
		return
	}
	g.closed = true
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	g.scene.Dispose()
}
