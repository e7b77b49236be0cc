package nav

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	pos    cp.Vector
	vel    cp.Vector
	hasPos bool
}

func (a *fakeAgent) Position() (cp.Vector, bool) { return a.pos, a.hasPos }
func (a *fakeAgent) SetVelocity(v cp.Vector) bool {
	a.vel = v
	return true
}

// step integrates velocity over dt seconds.
func (a *fakeAgent) step(dt float64) {
	a.pos = a.pos.Add(a.vel.Mult(dt))
}

type tileLocator float64

func (l tileLocator) WorldToTile(pos cp.Vector) (int, int) {
	return int(math.Floor(pos.X / float64(l))), int(math.Floor(pos.Y / float64(l)))
}

type fakeRequester struct {
	calls   []Request
	handles []*Pending
	err     error
}

func (r *fakeRequester) RequestPath(_ context.Context, mesh *NavMesh, start, goal string) (*Pending, error) {
	if r.err != nil {
		return nil, r.err
	}
	id := uint64(len(r.calls) + 1)
	r.calls = append(r.calls, Request{ID: id, StartID: start, GoalID: goal, Mesh: mesh})
	p := newPending(id)
	r.handles = append(r.handles, p)
	return p, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func corridorMesh() *NavMesh {
	return BuildMesh(newTestGrid(32, "....."))
}

func newTestController(agent *fakeAgent, req PathRequester, mesh *NavMesh) *Controller {
	return NewController(agent, tileLocator(32), mesh, req, ControllerConfig{Speed: 100, Logger: quietLogger()})
}

func TestControllerRequestPathTo(t *testing.T) {
	agent := &fakeAgent{pos: cp.Vector{X: 16, Y: 16}, hasPos: true}
	req := &fakeRequester{}
	c := newTestController(agent, req, corridorMesh())

	require.NoError(t, c.RequestPathTo(context.Background(), Tile{X: 4, Y: 0}))
	require.Len(t, req.calls, 1)
	assert.Equal(t, "0,0", req.calls[0].StartID)
	assert.Equal(t, "4,0", req.calls[0].GoalID)
	assert.True(t, c.PathPending())

	agent.pos = cp.Vector{X: 80, Y: 16}
	require.NoError(t, c.RequestPathTo(context.Background(), Tile{X: 0, Y: 0}))
	assert.Len(t, req.calls, 1, "second request while pending must be dropped")
	assert.True(t, c.PathPending())
	assert.Equal(t, 0, c.PathLength())
}

func TestControllerStartsFromNearestNode(t *testing.T) {
	agent := &fakeAgent{pos: cp.Vector{X: 72, Y: 16}, hasPos: true}
	req := &fakeRequester{}
	c := newTestController(agent, req, BuildMesh(newTestGrid(32, "..#..")))

	require.NoError(t, c.RequestPathTo(context.Background(), Tile{X: 0, Y: 0}))
	require.Len(t, req.calls, 1)
	assert.Equal(t, "1,0", req.calls[0].StartID)
}

func TestControllerSetLocator(t *testing.T) {
	agent := &fakeAgent{pos: cp.Vector{X: 56, Y: 16}, hasPos: true}
	req := &fakeRequester{}
	c := newTestController(agent, req, BuildMesh(newTestGrid(16, "......")))

	c.SetLocator(tileLocator(16))
	require.NoError(t, c.RequestPathTo(context.Background(), Tile{X: 0, Y: 0}))
	require.Len(t, req.calls, 1)
	assert.Equal(t, "3,0", req.calls[0].StartID)
}

func TestControllerAdoptsResultOnNextUpdate(t *testing.T) {
	agent := &fakeAgent{pos: cp.Vector{X: 16, Y: 16}, hasPos: true}
	req := &fakeRequester{}
	c := newTestController(agent, req, corridorMesh())

	require.NoError(t, c.RequestPathTo(context.Background(), Tile{X: 2, Y: 0}))
	c.Update()
	assert.True(t, c.PathPending(), "unsettled request stays pending")
	assert.Equal(t, cp.Vector{}, agent.vel)

	req.handles[0].settle([]string{"0,0", "1,0", "2,0"}, nil)
	assert.True(t, c.PathPending(), "result becomes visible on the next tick")

	c.Update()
	assert.False(t, c.PathPending())
	assert.Equal(t, 3, c.PathLength())
	assert.Equal(t, []string{"0,0", "1,0", "2,0"}, c.Path())
	// agent stands on the first waypoint, so this tick only advanced the cursor
	assert.Equal(t, 1, c.Cursor())
}

func TestControllerFailureKeepsPath(t *testing.T) {
	agent := &fakeAgent{pos: cp.Vector{X: 16, Y: 16}, hasPos: true}
	req := &fakeRequester{}
	c := newTestController(agent, req, corridorMesh())

	require.NoError(t, c.RequestPathTo(context.Background(), Tile{X: 4, Y: 0}))
	req.handles[0].settle([]string{"0,0", "1,0", "2,0", "3,0", "4,0"}, nil)
	c.Update()
	require.Equal(t, 5, c.PathLength())

	require.NoError(t, c.RequestPathTo(context.Background(), Tile{X: 0, Y: 0}))
	req.handles[1].settle(nil, ErrPoolDisposed)
	c.Update()
	assert.False(t, c.PathPending(), "pending clears on failure too")
	assert.Equal(t, 5, c.PathLength())

	require.NoError(t, c.RequestPathTo(context.Background(), Tile{X: 0, Y: 0}))
	assert.Len(t, req.calls, 3, "controller accepts a new request after a failure")
}

func TestControllerDispatchError(t *testing.T) {
	agent := &fakeAgent{pos: cp.Vector{X: 16, Y: 16}, hasPos: true}
	req := &fakeRequester{err: ErrPoolSaturated}
	c := newTestController(agent, req, corridorMesh())

	err := c.RequestPathTo(context.Background(), Tile{X: 1, Y: 0})
	assert.ErrorIs(t, err, ErrPoolSaturated)
	assert.False(t, c.PathPending())

	agent.hasPos = false
	req.err = nil
	assert.ErrorIs(t, c.RequestPathTo(context.Background(), Tile{X: 1, Y: 0}), ErrNoPosition)
	assert.Empty(t, req.calls)
}

func TestControllerSteering(t *testing.T) {
	agent := &fakeAgent{pos: cp.Vector{X: 16, Y: 16}, vel: cp.Vector{X: 9, Y: 9}, hasPos: true}
	req := &fakeRequester{}
	c := newTestController(agent, req, corridorMesh())

	c.Update()
	assert.Equal(t, cp.Vector{}, agent.vel, "empty path zeroes velocity")

	require.NoError(t, c.RequestPathTo(context.Background(), Tile{X: 1, Y: 0}))
	req.handles[0].settle([]string{"1,0"}, nil)
	c.Update()
	assert.InDelta(t, 100.0, agent.vel.X, 1e-6)
	assert.InDelta(t, 0.0, agent.vel.Y, 1e-6)

	agent.pos = cp.Vector{X: 46, Y: 17}
	c.Update()
	assert.Equal(t, 0, c.PathLength(), "reaching the last waypoint clears the path")

	c.Update()
	assert.Equal(t, cp.Vector{}, agent.vel)
}

func TestControllerStaleWaypoint(t *testing.T) {
	agent := &fakeAgent{pos: cp.Vector{X: 16, Y: 16}, hasPos: true}
	req := &fakeRequester{}
	c := newTestController(agent, req, corridorMesh())

	require.NoError(t, c.RequestPathTo(context.Background(), Tile{X: 4, Y: 0}))
	req.handles[0].settle([]string{"1,0", "2,0", "3,0", "4,0"}, nil)
	c.Update()
	require.Equal(t, 4, c.PathLength())

	rebuilt := BuildMesh(newTestGrid(32, ".#..."))
	c.SetMesh(rebuilt)
	assert.Same(t, rebuilt, c.Mesh())
	assert.Len(t, c.PathNodes(), 3, "missing node is filtered from debug output")

	c.Update()
	assert.Equal(t, 0, c.PathLength())
	assert.False(t, c.PathPending())
}

func TestControllerPathNodes(t *testing.T) {
	agent := &fakeAgent{pos: cp.Vector{X: 16, Y: 16}, hasPos: true}
	req := &fakeRequester{}
	c := newTestController(agent, req, corridorMesh())

	require.NoError(t, c.RequestPathTo(context.Background(), Tile{X: 2, Y: 0}))
	req.handles[0].settle([]string{"1,0", "2,0"}, nil)
	c.Update()

	entries := c.PathNodes()
	require.Len(t, entries, 2)
	assert.Equal(t, "1,0", entries[0].ID)
	assert.Equal(t, 48.0, entries[0].Node.X)
	assert.Equal(t, "2,0", entries[1].ID)
}

func TestControllerWithPool(t *testing.T) {
	mesh := BuildMesh(newTestGrid(32,
		"......",
		".####.",
		"......",
	))
	pool := NewWorkerPool(PoolConfig{Size: 2, Logger: quietLogger()})
	defer pool.Dispose()

	agent := &fakeAgent{pos: cp.Vector{X: 16, Y: 48}, hasPos: true}
	c := NewController(agent, tileLocator(32), mesh, pool, ControllerConfig{Speed: 120, Logger: quietLogger()})
	require.NoError(t, c.RequestPathTo(context.Background(), Tile{X: 5, Y: 1}))

	const dt = 1.0 / 60
	deadline := time.Now().Add(waitLimit)
	arrived := false
	for time.Now().Before(deadline) {
		c.Update()
		agent.step(dt)
		if !c.PathPending() && c.PathLength() == 0 && agent.pos.Distance(cp.Vector{X: 176, Y: 48}) < 2*DefaultArriveRadius {
			arrived = true
			break
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, arrived, "agent ended at %v", agent.pos)
	assert.NoError(t, c.RequestPathTo(context.Background(), Tile{X: 0, Y: 1}))
}
