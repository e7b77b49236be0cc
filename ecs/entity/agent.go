package entity

import (
	"errors"
	"fmt"

	"github.com/milk9111/gladerunner/ecs"
	"github.com/milk9111/gladerunner/ecs/component"
	"github.com/milk9111/gladerunner/ecs/system"
	"github.com/milk9111/gladerunner/levels"
	"github.com/milk9111/gladerunner/nav"
)

var (
	ErrNoLevel     = errors.New("entity: no level loaded")
	ErrNoRequester = errors.New("entity: nav agent needs a path requester")
)

// AgentOptions configures one navigating NPC.
type AgentOptions struct {
	Requester  nav.PathRequester
	Controller nav.ControllerConfig
	HalfExtent float64
	// Script overrides the spawn's script when the spawn names none.
	Script string
}

// NewNavAgent spawns an NPC at a level spawn point with a controller bound
// to the level's mesh. On error no entity is left behind.
func NewNavAgent(w *ecs.World, loaded component.Level, spawn levels.Spawn, opts AgentOptions) (_ ecs.Entity, err error) {
	lvl := loaded.Level
	if lvl == nil {
		return 0, ErrNoLevel
	}

	e := ecs.CreateEntity(w)
	defer func() {
		if err != nil {
			ecs.DestroyEntity(w, e)
		}
	}()

	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		Position: lvl.TileCenter(spawn.X, spawn.Y),
	}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.VelocityComponent.Kind(), &component.Velocity{}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.MoverComponent.Kind(), &component.Mover{HalfExtent: opts.HalfExtent}); err != nil {
		return 0, err
	}

	if opts.Requester == nil {
		return 0, fmt.Errorf("%w: %q", ErrNoRequester, spawn.Name)
	}
	cfg := opts.Controller
	if cfg.Logger != nil {
		cfg.Logger = cfg.Logger.With("agent", spawn.Name)
	}
	ctrl := nav.NewController(system.NewEntityAgent(w, e), lvl, loaded.Mesh, opts.Requester, cfg)
	if err := ecs.Add(w, e, component.NavAgentComponent.Kind(), &component.NavAgent{
		Name:       spawn.Name,
		Home:       spawn.Tile(),
		Controller: ctrl,
	}); err != nil {
		return 0, err
	}

	script := spawn.Script
	if script == "" {
		script = opts.Script
	}
	if err := ecs.Add(w, e, component.ChaserComponent.Kind(), &component.Chaser{ScriptPath: script}); err != nil {
		return 0, err
	}
	return e, nil
}
