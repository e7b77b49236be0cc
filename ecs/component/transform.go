package component

import "github.com/jakecoffman/cp"

// Transform is an entity's world position, at the centre of its box.
type Transform struct {
	Position cp.Vector
}

var TransformComponent = NewComponent[Transform]()
