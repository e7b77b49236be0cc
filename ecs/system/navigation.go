package system

import (
	"github.com/milk9111/gladerunner/ecs"
	"github.com/milk9111/gladerunner/ecs/component"
)

// NavigationSystem ticks every agent's controller, which adopts finished
// path results and writes steering velocity.
type NavigationSystem struct{}

func NewNavigationSystem() *NavigationSystem {
	return &NavigationSystem{}
}

func (s *NavigationSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.NavAgentComponent.Kind(), func(_ ecs.Entity, agent *component.NavAgent) {
		if agent.Controller == nil {
			return
		}
		agent.Controller.Update()
	})
}

// SwapMesh installs a rebuilt level and mesh and points every controller at
// the new mesh and the new level's tile grid. Paths referring to removed nodes are dropped on the next
// Update.
func SwapMesh(w *ecs.World, lvl component.Level) {
	if w == nil {
		return
	}
	if e, ok := ecs.First(w, component.LevelComponent.Kind()); ok {
		current, _ := ecs.Get(w, e, component.LevelComponent.Kind())
		*current = lvl
	} else {
		e := ecs.CreateEntity(w)
		_ = ecs.Add(w, e, component.LevelComponent.Kind(), &lvl)
	}
	ecs.ForEach(w, component.NavAgentComponent.Kind(), func(_ ecs.Entity, agent *component.NavAgent) {
		if agent.Controller == nil {
			return
		}
		agent.Controller.SetMesh(lvl.Mesh)
		if lvl.Level != nil {
			agent.Controller.SetLocator(lvl.Level)
		}
	})
}

// Agents lists every nav agent, for HUD and debug drawing.
func Agents(w *ecs.World) []*component.NavAgent {
	var out []*component.NavAgent
	ecs.ForEach(w, component.NavAgentComponent.Kind(), func(_ ecs.Entity, agent *component.NavAgent) {
		out = append(out, agent)
	})
	return out
}
