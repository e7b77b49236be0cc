package main

type Tool int

const (
	ToolWall Tool = iota
	ToolErase
	ToolPlayer
	ToolAgent
	ToolRoute
)

var allTools = []Tool{ToolWall, ToolErase, ToolPlayer, ToolAgent, ToolRoute}

func (t Tool) String() string {
	switch t {
	case ToolWall:
		return "Wall"
	case ToolErase:
		return "Erase"
	case ToolPlayer:
		return "Player"
	case ToolAgent:
		return "Agent"
	case ToolRoute:
		return "Route"
	default:
		return "Unknown"
	}
}

// paints reports whether the tool is applied continuously while dragging.
func (t Tool) paints() bool {
	return t == ToolWall || t == ToolErase
}
