package system

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/gladerunner/ecs"
	"github.com/milk9111/gladerunner/ecs/component"
	"github.com/milk9111/gladerunner/nav"
	"github.com/milk9111/gladerunner/prefabs"
)

const navScriptDispatch = `
if __phase == "update" {
	update(__engine, __state)
}
`

type navScriptRuntime struct {
	scriptPath string
	compiled   *tengo.Compiled
	stateData  *tengo.Map
}

// NavScriptSystem runs each chaser's behaviour script once per tick. The
// script's update(engine, state) decides whether to request a path.
type NavScriptSystem struct {
	ctx           context.Context
	log           *slog.Logger
	defaultScript string

	compiled map[string]*tengo.Compiled
	runtimes map[ecs.Entity]*navScriptRuntime
	broken   map[string]error
}

func NewNavScriptSystem(ctx context.Context, defaultScript string, logger *slog.Logger) *NavScriptSystem {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NavScriptSystem{
		ctx:           ctx,
		log:           logger.With("component", "system.nav_script"),
		defaultScript: defaultScript,
		compiled:      map[string]*tengo.Compiled{},
		runtimes:      map[ecs.Entity]*navScriptRuntime{},
		broken:        map[string]error{},
	}
}

// Reload drops compiled scripts and per-agent script state so edited
// scripts are picked up on the next tick.
func (s *NavScriptSystem) Reload() {
	clear(s.compiled)
	clear(s.runtimes)
	clear(s.broken)
}

func (s *NavScriptSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	target, targetOK := playerTile(w)
	var input component.PlayerInput
	if player, ok := ecs.First(w, component.PlayerTagComponent.Kind()); ok {
		if in, ok := ecs.Get(w, player, component.PlayerInputComponent.Kind()); ok {
			input = *in
		}
	}

	ecs.ForEach3(w, component.ChaserComponent.Kind(), component.NavAgentComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, ch *component.Chaser, agent *component.NavAgent, tr *component.Transform) {
		if agent.Controller == nil {
			return
		}
		rt, err := s.runtime(e, ch.ScriptPath)
		if err != nil {
			return
		}

		engine := s.buildEngine(w, agent, tr, target, targetOK, input)
		if err := rt.run("update", engine); err != nil {
			s.log.Warn("script update failed", "entity", e.String(), "script", rt.scriptPath, "err", err)
		}
	})

	for e := range s.runtimes {
		if !ecs.IsAlive(w, e) {
			delete(s.runtimes, e)
		}
	}
}

func (s *NavScriptSystem) runtime(e ecs.Entity, path string) (*navScriptRuntime, error) {
	if strings.TrimSpace(path) == "" {
		path = s.defaultScript
	}
	if rt, ok := s.runtimes[e]; ok && rt.scriptPath == path {
		return rt, nil
	}
	if err, ok := s.broken[path]; ok {
		return nil, err
	}

	base, ok := s.compiled[path]
	if !ok {
		var err error
		base, err = compileNavScript(path)
		if err != nil {
			s.broken[path] = err
			s.log.Error("load nav script", "script", path, "err", err)
			return nil, err
		}
		s.compiled[path] = base
	}

	rt := &navScriptRuntime{
		scriptPath: path,
		compiled:   base.Clone(),
		stateData:  &tengo.Map{Value: map[string]tengo.Object{}},
	}
	s.runtimes[e] = rt
	return rt, nil
}

func compileNavScript(path string) (*tengo.Compiled, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("no script configured")
	}
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + navScriptDispatch))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}
	// Run once with no phase so top-level definitions execute.
	if err := compiled.Run(); err != nil {
		return nil, err
	}
	if !compiled.IsDefined("update") {
		return nil, fmt.Errorf("script %s does not define update", path)
	}
	return compiled, nil
}

func (rt *navScriptRuntime) run(phase string, engine *tengo.ImmutableMap) error {
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func (s *NavScriptSystem) buildEngine(w *ecs.World, agent *component.NavAgent, tr *component.Transform, target nav.Tile, targetOK bool, input component.PlayerInput) *tengo.ImmutableMap {
	ctrl := agent.Controller
	values := map[string]tengo.Object{}

	values["agent_tile"] = &tengo.UserFunction{Name: "agent_tile", Value: func(args ...tengo.Object) (tengo.Object, error) {
		lvl, ok := levelOf(w)
		if !ok {
			return tengo.UndefinedValue, nil
		}
		tx, ty := lvl.Level.WorldToTile(tr.Position)
		return tileArray(nav.Tile{X: tx, Y: ty}), nil
	}}

	values["home_tile"] = &tengo.UserFunction{Name: "home_tile", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return tileArray(agent.Home), nil
	}}

	values["target_tile"] = &tengo.UserFunction{Name: "target_tile", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if !targetOK {
			return tengo.UndefinedValue, nil
		}
		return tileArray(target), nil
	}}

	values["target_moving"] = &tengo.UserFunction{Name: "target_moving", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(input.Moving), nil
	}}

	values["target_started_moving"] = &tengo.UserFunction{Name: "target_started_moving", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(input.StartedMoving), nil
	}}

	values["path_len"] = &tengo.UserFunction{Name: "path_len", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(ctrl.PathLength())}, nil
	}}

	values["pending"] = &tengo.UserFunction{Name: "pending", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(ctrl.PathPending()), nil
	}}

	values["request_path"] = &tengo.UserFunction{Name: "request_path", Value: func(args ...tengo.Object) (tengo.Object, error) {
		tile, ok := tileArgs(args)
		if !ok {
			return tengo.FalseValue, nil
		}
		if err := ctrl.RequestPathTo(s.ctx, tile); err != nil {
			return tengo.FalseValue, nil
		}
		return boolObject(ctrl.PathPending()), nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		s.log.Debug(strings.Join(parts, " "), "agent", agent.Name)
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

// tileArgs accepts request_path(x, y) or request_path([x, y]).
func tileArgs(args []tengo.Object) (nav.Tile, bool) {
	if len(args) == 1 {
		arr, ok := args[0].(*tengo.Array)
		if !ok || len(arr.Value) != 2 {
			return nav.Tile{}, false
		}
		args = arr.Value
	}
	if len(args) != 2 {
		return nav.Tile{}, false
	}
	x, okX := tengo.ToInt(args[0])
	y, okY := tengo.ToInt(args[1])
	if !okX || !okY {
		return nav.Tile{}, false
	}
	return nav.Tile{X: x, Y: y}, true
}

func tileArray(t nav.Tile) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{&tengo.Int{Value: int64(t.X)}, &tengo.Int{Value: int64(t.Y)}}}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
