package component

// Chaser runs a behaviour script every tick to decide path requests. The
// script's target is the player.
type Chaser struct {
	ScriptPath string
}

var ChaserComponent = NewComponent[Chaser]()
