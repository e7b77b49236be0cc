// Package scene assembles the navigation simulation: the ECS world, the
// path worker pool and the systems that tick them.
package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/gladerunner/ecs"
	"github.com/milk9111/gladerunner/ecs/component"
	"github.com/milk9111/gladerunner/ecs/entity"
	"github.com/milk9111/gladerunner/ecs/system"
	"github.com/milk9111/gladerunner/levels"
	"github.com/milk9111/gladerunner/nav"
	"github.com/milk9111/gladerunner/prefabs"
)

type Options struct {
	Spec prefabs.NavigationSpec
	// Level overrides Spec.Level.
	Level  string
	Input  system.InputSource
	Logger *slog.Logger
}

type Scene struct {
	World  *ecs.World
	Player ecs.Entity

	ctx       context.Context
	cancel    context.CancelFunc
	log       *slog.Logger
	pool      *nav.WorkerPool
	scheduler *ecs.Scheduler
	scripts   *system.NavScriptSystem
	level     component.Level
	ticks     uint64

	disposeOnce sync.Once
}

func New(ctx context.Context, opts Options) (*Scene, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := opts.Spec.Validate(); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	name := opts.Level
	if name == "" {
		name = opts.Spec.Level
	}
	lvl, err := levels.Load(name)
	if err != nil {
		return nil, fmt.Errorf("scene: load level %q: %w", name, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Scene{
		World:  ecs.NewWorld(),
		ctx:    ctx,
		cancel: cancel,
		log:    logger.With("component", "scene"),
		pool:   nav.NewWorkerPool(opts.Spec.ToPoolConfig(logger)),
	}

	s.level, err = entity.LoadLevelToWorld(s.World, name, lvl)
	if err != nil {
		s.Dispose()
		return nil, err
	}
	s.Player, err = entity.NewPlayer(s.World, lvl, opts.Spec.Player)
	if err != nil {
		s.Dispose()
		return nil, err
	}
	for _, spawn := range lvl.Agents {
		if _, err := entity.NewNavAgent(s.World, s.level, spawn, entity.AgentOptions{
			Requester:  s.pool,
			Controller: opts.Spec.ToControllerConfig(logger),
			HalfExtent: opts.Spec.Agent.HalfExtent,
			Script:     opts.Spec.Script,
		}); err != nil {
			s.Dispose()
			return nil, fmt.Errorf("scene: spawn %q: %w", spawn.Name, err)
		}
	}

	s.scripts = system.NewNavScriptSystem(ctx, opts.Spec.Script, logger)
	s.scheduler = ecs.NewScheduler(
		system.NewPlayerInputSystem(opts.Input),
		s.scripts,
		system.NewNavigationSystem(),
		system.NewMovementSystem(opts.Spec.TickDuration()),
	)

	s.log.Info("scene ready",
		"level", name,
		"nodes", s.level.Mesh.Len(),
		"agents", len(lvl.Agents),
		"workers", s.pool.Size(),
	)
	return s, nil
}

// Step advances the simulation by one fixed tick.
func (s *Scene) Step() {
	s.ticks++
	s.scheduler.Update(s.World)
}

func (s *Scene) Ticks() uint64 {
	return s.ticks
}

func (s *Scene) Level() component.Level {
	return s.level
}

func (s *Scene) Pool() *nav.WorkerPool {
	return s.pool
}

func (s *Scene) Agents() []*component.NavAgent {
	return system.Agents(s.World)
}

// Position returns an entity's world position.
func (s *Scene) Position(e ecs.Entity) (cp.Vector, bool) {
	tr, ok := ecs.Get(s.World, e, component.TransformComponent.Kind())
	if !ok {
		return cp.Vector{}, false
	}
	return tr.Position, true
}

// AgentPositions lists agent positions in the same order as Agents.
func (s *Scene) AgentPositions() []cp.Vector {
	var out []cp.Vector
	ecs.ForEach2(s.World, component.NavAgentComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, _ *component.NavAgent, tr *component.Transform) {
		out = append(out, tr.Position)
	})
	return out
}

// RequestAll sends every agent toward a tile, as a mouse click in the
// viewer does. Agents with a request in flight ignore it.
func (s *Scene) RequestAll(target nav.Tile) error {
	var errs []error
	for _, agent := range s.Agents() {
		if err := agent.Controller.RequestPathTo(s.ctx, target); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", agent.Name, err))
		}
	}
	return errors.Join(errs...)
}

// ReloadLevel swaps in a new map. Entities keep their positions; paths
// through removed tiles are dropped by the controllers.
func (s *Scene) ReloadLevel(lvl *levels.Level) error {
	loaded, err := entity.LoadLevelToWorld(s.World, s.level.Name, lvl)
	if err != nil {
		return err
	}
	s.level = loaded
	s.log.Info("level reloaded", "level", loaded.Name, "nodes", loaded.Mesh.Len())
	return nil
}

func (s *Scene) ReloadScripts() {
	s.scripts.Reload()
	s.log.Info("scripts reloaded")
}

// HandleFileChange reacts to a watcher event for a level or script file.
func (s *Scene) HandleFileChange(path string) error {
	kind, ok := prefabs.ClassifyFile(path)
	if !ok {
		return nil
	}
	switch kind {
	case prefabs.ChangeLevel:
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if base != strings.TrimSuffix(filepath.Base(s.level.Name), ".json") {
			return nil
		}
		lvl, err := levels.LoadLevel(path)
		if err != nil {
			return err
		}
		return s.ReloadLevel(lvl)
	case prefabs.ChangeScript:
		s.ReloadScripts()
	case prefabs.ChangeSpec:
		s.log.Info("config changed, restart to apply", "file", path)
	}
	return nil
}

// HUDLines is the overlay text for the current tick.
func (s *Scene) HUDLines(debug bool) []string {
	onOff := "OFF"
	if debug {
		onOff = "ON"
	}
	lines := []string{fmt.Sprintf("Debug: %s", onOff)}
	if pos, ok := s.Position(s.Player); ok {
		lines = append(lines, fmt.Sprintf("Player: %.1f, %.1f", pos.X, pos.Y))
	} else {
		lines = append(lines, "Player: --")
	}
	positions := s.AgentPositions()
	for i, agent := range s.Agents() {
		pending := "NO"
		if agent.Controller.PathPending() {
			pending = "YES"
		}
		pos := "--"
		if i < len(positions) {
			pos = fmt.Sprintf("%.1f, %.1f", positions[i].X, positions[i].Y)
		}
		lines = append(lines, fmt.Sprintf("%s: %s  path nodes: %d  pending: %s", agent.Name, pos, agent.Controller.PathLength(), pending))
	}
	lines = append(lines, fmt.Sprintf("Workers: %d busy / %d  backlog: %d", s.pool.Busy(), s.pool.Size(), s.pool.Backlog()))
	return lines
}

// Dispose tears the scene down once: in-flight path requests fail with
// nav.ErrPoolDisposed and the workers exit.
func (s *Scene) Dispose() {
	s.disposeOnce.Do(func() {
		s.pool.Dispose()
		s.cancel()
		s.pool.Wait()
		s.log.Info("scene disposed", "ticks", s.ticks)
	})
}
