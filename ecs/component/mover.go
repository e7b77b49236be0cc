package component

import "github.com/jakecoffman/cp"

// Mover gives an entity a square collision box against level tiles.
type Mover struct {
	HalfExtent float64
	// BlockedX and BlockedY report a move cut short by a wall this tick.
	BlockedX bool
	BlockedY bool
}

func (m Mover) Box(center cp.Vector) cp.BB {
	return cp.NewBBForExtents(center, m.HalfExtent, m.HalfExtent)
}

var MoverComponent = NewComponent[Mover]()
