package component

import "github.com/milk9111/gladerunner/nav"

// NavAgent steers an entity along paths from the worker pool.
type NavAgent struct {
	Name       string
	Home       nav.Tile
	Controller *nav.Controller
}

var NavAgentComponent = NewComponent[NavAgent]()
