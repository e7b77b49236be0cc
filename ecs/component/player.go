package component

import "github.com/jakecoffman/cp"

// PlayerInput is the desired direction for this tick, written by the
// viewer's input system or a headless driver.
type PlayerInput struct {
	Direction cp.Vector
	Speed     float64
	// Moving and StartedMoving are derived by PlayerInputSystem.
	Moving        bool
	StartedMoving bool
}

var PlayerInputComponent = NewComponent[PlayerInput]()
