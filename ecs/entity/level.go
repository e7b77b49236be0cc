package entity

import (
	"fmt"

	"github.com/milk9111/gladerunner/ecs"
	"github.com/milk9111/gladerunner/ecs/component"
	"github.com/milk9111/gladerunner/ecs/system"
	"github.com/milk9111/gladerunner/levels"
)

// LoadLevelToWorld builds the navigation mesh for lvl and installs both in
// the world, replacing any level already loaded.
func LoadLevelToWorld(world *ecs.World, name string, lvl *levels.Level) (component.Level, error) {
	if lvl == nil {
		return component.Level{}, fmt.Errorf("entity: nil level %q", name)
	}
	mesh := lvl.BuildMesh()
	if err := mesh.Validate(); err != nil {
		return component.Level{}, fmt.Errorf("entity: level %q: %w", name, err)
	}
	loaded := component.Level{Name: name, Level: lvl, Mesh: mesh}
	system.SwapMesh(world, loaded)
	return loaded, nil
}
