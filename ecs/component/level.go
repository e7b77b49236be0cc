package component

import (
	"github.com/milk9111/gladerunner/levels"
	"github.com/milk9111/gladerunner/nav"
)

// Level holds the loaded map and the mesh built from it. One entity carries
// it.
type Level struct {
	Name  string
	Level *levels.Level
	Mesh  *nav.NavMesh
}

var LevelComponent = NewComponent[Level]()
