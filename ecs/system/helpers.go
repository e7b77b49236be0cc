package system

import (
	"github.com/milk9111/gladerunner/ecs"
	"github.com/milk9111/gladerunner/ecs/component"
	"github.com/milk9111/gladerunner/nav"
)

func levelOf(w *ecs.World) (*component.Level, bool) {
	e, ok := ecs.First(w, component.LevelComponent.Kind())
	if !ok {
		return nil, false
	}
	lvl, ok := ecs.Get(w, e, component.LevelComponent.Kind())
	if !ok || lvl.Level == nil {
		return nil, false
	}
	return lvl, true
}

func playerTile(w *ecs.World) (nav.Tile, bool) {
	lvl, ok := levelOf(w)
	if !ok {
		return nav.Tile{}, false
	}
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return nav.Tile{}, false
	}
	tr, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return nav.Tile{}, false
	}
	tx, ty := lvl.Level.WorldToTile(tr.Position)
	return nav.Tile{X: tx, Y: ty}, true
}
