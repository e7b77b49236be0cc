package entity

import (
	"github.com/milk9111/gladerunner/ecs"
	"github.com/milk9111/gladerunner/ecs/component"
	"github.com/milk9111/gladerunner/levels"
	"github.com/milk9111/gladerunner/prefabs"
)

const defaultPlayerSpeed = 160.0

// NewPlayer spawns the player at the level's player spawn. On error no
// entity is left behind.
func NewPlayer(w *ecs.World, lvl *levels.Level, spec prefabs.PlayerSpec) (_ ecs.Entity, err error) {
	if lvl == nil {
		return 0, ErrNoLevel
	}
	speed := spec.Speed
	if speed <= 0 {
		speed = defaultPlayerSpeed
	}

	e := ecs.CreateEntity(w)
	defer func() {
		if err != nil {
			ecs.DestroyEntity(w, e)
		}
	}()
	if err := ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		Position: lvl.TileCenter(lvl.Player.X, lvl.Player.Y),
	}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.VelocityComponent.Kind(), &component.Velocity{}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.MoverComponent.Kind(), &component.Mover{HalfExtent: spec.HalfExtent}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.PlayerInputComponent.Kind(), &component.PlayerInput{Speed: speed}); err != nil {
		return 0, err
	}
	return e, nil
}
