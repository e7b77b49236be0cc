package nav

import (
	"context"
	"log/slog"
	"slices"

	"github.com/jakecoffman/cp"
)

const (
	// DefaultAgentSpeed is three quarters of the player's 160 px/s.
	DefaultAgentSpeed = 120.0
	// DefaultArriveRadius is the distance at which a waypoint counts as reached.
	DefaultArriveRadius = 4.0
)

// Tile is a grid coordinate.
type Tile struct {
	X int
	Y int
}

// ID returns the node id of the tile.
func (t Tile) ID() string {
	return NodeID(t.X, t.Y)
}

func (t Tile) String() string {
	return "(" + t.ID() + ")"
}

// Agent is the entity store's view of one mobile agent.
type Agent interface {
	Position() (cp.Vector, bool)
	SetVelocity(v cp.Vector) bool
}

// TileLocator converts world positions to tile coordinates.
type TileLocator interface {
	WorldToTile(pos cp.Vector) (tx, ty int)
}

// PathRequester is satisfied by *WorkerPool.
type PathRequester interface {
	RequestPath(ctx context.Context, mesh *NavMesh, startID, goalID string) (*Pending, error)
}

// ControllerConfig tunes a Controller. Zero values select defaults.
type ControllerConfig struct {
	Speed        float64
	ArriveRadius float64
	Logger       *slog.Logger
}

// PathEntry pairs a path id with its node, for debug drawing.
type PathEntry struct {
	ID   string
	Node NavNode
}

// Controller steers one agent along paths computed by a PathRequester.
// It is not safe for concurrent use; call it from the simulation tick.
type Controller struct {
	agent     Agent
	locator   TileLocator
	mesh      *NavMesh
	requester PathRequester
	speed     float64
	arrive    float64
	log       *slog.Logger

	path    []string
	cursor  int
	pending *Pending
}

// NewController wires a controller for one agent.
func NewController(agent Agent, locator TileLocator, mesh *NavMesh, requester PathRequester, cfg ControllerConfig) *Controller {
	if cfg.Speed <= 0 {
		cfg.Speed = DefaultAgentSpeed
	}
	if cfg.ArriveRadius <= 0 {
		cfg.ArriveRadius = DefaultArriveRadius
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		agent:     agent,
		locator:   locator,
		mesh:      mesh,
		requester: requester,
		speed:     cfg.Speed,
		arrive:    cfg.ArriveRadius,
		log:       cfg.Logger.With("component", "nav.controller"),
	}
}

// RequestPathTo asks for a path from the agent's tile to target. While a
// request is already in flight the call is dropped and returns nil.
func (c *Controller) RequestPathTo(ctx context.Context, target Tile) error {
	if c.pending != nil {
		return nil
	}
	pos, ok := c.agent.Position()
	if !ok {
		return ErrNoPosition
	}
	tx, ty := c.locator.WorldToTile(pos)
	start, goal := NodeID(tx, ty), target.ID()
	if c.mesh != nil && !c.mesh.Has(start) {
		// standing on a blocked tile, e.g. pushed there by a level reload
		if n, ok := c.mesh.NearestNode(pos.X, pos.Y); ok {
			start = n.ID
		}
	}

	pending, err := c.requester.RequestPath(ctx, c.mesh, start, goal)
	if err != nil {
		c.log.Warn("path request rejected", "start", start, "goal", goal, "err", err)
		return err
	}
	c.pending = pending
	return nil
}

// Update runs once per tick: it adopts a settled result, then steers the
// agent toward the waypoint under the cursor.
func (c *Controller) Update() {
	c.poll()

	if len(c.path) == 0 {
		c.agent.SetVelocity(cp.Vector{})
		return
	}
	pos, ok := c.agent.Position()
	if !ok {
		return
	}

	target := c.mesh.node(c.path[c.cursor])
	if target == nil {
		c.log.Debug("stale waypoint, dropping path", "id", c.path[c.cursor])
		c.Clear()
		return
	}

	delta := cp.Vector{X: target.X, Y: target.Y}.Sub(pos)
	if delta.Length() < c.arrive {
		c.cursor++
		if c.cursor >= len(c.path) {
			c.Clear()
		}
		return
	}
	c.agent.SetVelocity(delta.Normalize().Mult(c.speed))
}

func (c *Controller) poll() {
	if c.pending == nil || !c.pending.Settled() {
		return
	}
	p := c.pending
	c.pending = nil

	path, err := p.Result()
	if err != nil {
		c.log.Warn("path request failed", "request_id", p.ID(), "err", err)
		return
	}
	c.path = path
	c.cursor = 0
}

// SetMesh swaps in a rebuilt mesh. A path that no longer fits is dropped on
// the next Update.
func (c *Controller) SetMesh(mesh *NavMesh) {
	c.mesh = mesh
}

// SetLocator swaps the world-to-tile conversion, for a reloaded level whose
// tile size may differ.
func (c *Controller) SetLocator(locator TileLocator) {
	c.locator = locator
}

// Mesh returns the mesh paths are requested against.
func (c *Controller) Mesh() *NavMesh {
	return c.mesh
}

// Clear drops the current path. An in-flight request is not affected.
func (c *Controller) Clear() {
	c.path = nil
	c.cursor = 0
}

func (c *Controller) PathLength() int {
	return len(c.path)
}

func (c *Controller) PathPending() bool {
	return c.pending != nil
}

func (c *Controller) Cursor() int {
	return c.cursor
}

// Path returns a copy of the current path ids.
func (c *Controller) Path() []string {
	return slices.Clone(c.path)
}

// PathNodes resolves the current path against the mesh, skipping ids the
// mesh no longer has.
func (c *Controller) PathNodes() []PathEntry {
	out := make([]PathEntry, 0, len(c.path))
	for _, id := range c.path {
		if n, ok := c.mesh.Node(id); ok {
			out = append(out, PathEntry{ID: id, Node: n})
		}
	}
	return out
}
