package system

import (
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/gladerunner/ecs"
	"github.com/milk9111/gladerunner/ecs/component"
)

// MovementSystem integrates velocity one axis at a time. An axis whose move
// would put the entity's box on a blocked tile is cancelled and its velocity
// zeroed, so agents slide along walls.
type MovementSystem struct {
	dt float64
}

func NewMovementSystem(step time.Duration) *MovementSystem {
	return &MovementSystem{dt: step.Seconds()}
}

func (s *MovementSystem) Update(w *ecs.World) {
	if w == nil || s.dt <= 0 {
		return
	}
	lvl, hasLevel := levelOf(w)

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.VelocityComponent.Kind(), func(e ecs.Entity, tr *component.Transform, vel *component.Velocity) {
		mover, hasMover := ecs.Get(w, e, component.MoverComponent.Kind())
		if hasMover {
			mover.BlockedX, mover.BlockedY = false, false
		}
		if vel.Value.X == 0 && vel.Value.Y == 0 {
			return
		}

		canOccupy := func(p cp.Vector) bool {
			if !hasLevel {
				return true
			}
			if !hasMover {
				return lvl.Level.CanOccupy(cp.NewBBForExtents(p, 0, 0))
			}
			return lvl.Level.CanOccupy(mover.Box(p))
		}

		next := cp.Vector{X: tr.Position.X + vel.Value.X*s.dt, Y: tr.Position.Y}
		if canOccupy(next) {
			tr.Position = next
		} else {
			vel.Value.X = 0
			if hasMover {
				mover.BlockedX = true
			}
		}

		next = cp.Vector{X: tr.Position.X, Y: tr.Position.Y + vel.Value.Y*s.dt}
		if canOccupy(next) {
			tr.Position = next
		} else {
			vel.Value.Y = 0
			if hasMover {
				mover.BlockedY = true
			}
		}
	})
}
