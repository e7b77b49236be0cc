package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gladerunner/ecs"
	"github.com/milk9111/gladerunner/ecs/component"
)

// InputSource reports the direction the player wants to move. The viewer
// reads the keyboard; the headless runner replays a scripted route.
type InputSource interface {
	Direction() cp.Vector
}

// PlayerInputSystem turns the input direction into player velocity capped
// at the configured speed, and tracks whether the player just started
// moving.
type PlayerInputSystem struct {
	source InputSource
}

func NewPlayerInputSystem(source InputSource) *PlayerInputSystem {
	return &PlayerInputSystem{source: source}
}

func (s *PlayerInputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach3(w, component.PlayerTagComponent.Kind(), component.PlayerInputComponent.Kind(), component.VelocityComponent.Kind(), func(_ ecs.Entity, _ *component.PlayerTag, in *component.PlayerInput, vel *component.Velocity) {
		if s.source != nil {
			in.Direction = s.source.Direction()
		}
		dir := in.Direction
		if dir.Length() > 1 {
			dir = dir.Normalize()
		}
		vel.Value = dir.Mult(in.Speed)

		moving := vel.Value.X != 0 || vel.Value.Y != 0
		in.StartedMoving = moving && !in.Moving
		in.Moving = moving
	})
}
