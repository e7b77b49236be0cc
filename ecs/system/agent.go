package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gladerunner/ecs"
	"github.com/milk9111/gladerunner/ecs/component"
	"github.com/milk9111/gladerunner/nav"
)

var _ nav.Agent = (*EntityAgent)(nil)

// EntityAgent exposes an entity's Transform and Velocity to a
// nav.Controller.
type EntityAgent struct {
	world  *ecs.World
	entity ecs.Entity
}

func NewEntityAgent(w *ecs.World, e ecs.Entity) *EntityAgent {
	return &EntityAgent{world: w, entity: e}
}

func (a *EntityAgent) Position() (cp.Vector, bool) {
	tr, ok := ecs.Get(a.world, a.entity, component.TransformComponent.Kind())
	if !ok {
		return cp.Vector{}, false
	}
	return tr.Position, true
}

func (a *EntityAgent) SetVelocity(v cp.Vector) bool {
	vel, ok := ecs.Get(a.world, a.entity, component.VelocityComponent.Kind())
	if !ok {
		return false
	}
	vel.Value = v
	return true
}
