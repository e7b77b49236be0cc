package component

import "github.com/jakecoffman/cp"

// Velocity in world units per second.
type Velocity struct {
	Value cp.Vector
}

var VelocityComponent = NewComponent[Velocity]()
