package nav

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const waitLimit = 2 * time.Second

// gatedSearch holds every search until gate is closed. "boom" panics at
// once, "boom-late" panics after the gate opens.
type gatedSearch struct {
	gate    chan struct{}
	started chan string
}

func newGatedSearch() *gatedSearch {
	return &gatedSearch{gate: make(chan struct{}), started: make(chan string, 64)}
}

func (g *gatedSearch) run(ctx context.Context, mesh *NavMesh, start, goal string) ([]string, error) {
	g.started <- start
	if start == "boom" {
		panic("kaboom")
	}
	select {
	case <-g.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if start == "boom-late" {
		panic(errors.New("late kaboom"))
	}
	return SearchContext(ctx, mesh, start, goal)
}

func (g *gatedSearch) open() { close(g.gate) }

func (g *gatedSearch) awaitStart(t *testing.T) string {
	t.Helper()
	select {
	case s := <-g.started:
		return s
	case <-time.After(waitLimit):
		t.Fatal("search never started")
		return ""
	}
}

type PoolSuite struct {
	suite.Suite
	ctx  context.Context
	mesh *NavMesh
	pool *WorkerPool
}

func TestPoolSuite(t *testing.T) {
	suite.Run(t, new(PoolSuite))
}

func (s *PoolSuite) SetupTest() {
	s.ctx = context.Background()
	s.mesh = chainMesh(s.T())
	s.pool = nil
}

func (s *PoolSuite) TearDownTest() {
	if s.pool != nil {
		s.pool.Dispose()
		s.pool.Wait()
	}
}

func (s *PoolSuite) newPool(cfg PoolConfig) *WorkerPool {
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.pool = NewWorkerPool(cfg)
	return s.pool
}

func (s *PoolSuite) wait(p *Pending) ([]string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, waitLimit)
	defer cancel()
	path, err := p.Wait(ctx)
	s.Require().NotErrorIs(err, context.DeadlineExceeded, "request %d never settled", p.ID())
	return path, err
}

func (s *PoolSuite) TestResolvesPath() {
	pool := s.newPool(PoolConfig{Size: 2})
	s.Equal(2, pool.Size())

	p, err := pool.RequestPath(s.ctx, s.mesh, "A", "C")
	s.Require().NoError(err)
	path, err := s.wait(p)
	s.Require().NoError(err)
	s.Equal([]string{"A", "B", "C"}, path)

	s.Eventually(func() bool { return pool.InFlight() == 0 && pool.Busy() == 0 }, waitLimit, time.Millisecond)
}

func (s *PoolSuite) TestNoPathIsNotAnError() {
	pool := s.newPool(PoolConfig{Size: 1})
	p, err := pool.RequestPath(s.ctx, s.mesh, "A", "nowhere")
	s.Require().NoError(err)
	path, err := s.wait(p)
	s.NoError(err)
	s.Empty(path)
}

func (s *PoolSuite) TestRequestIDsAreMonotonic() {
	pool := s.newPool(PoolConfig{Size: 2, QueueSize: 8})
	var last uint64
	for i := 0; i < 5; i++ {
		p, err := pool.RequestPath(s.ctx, s.mesh, "A", "C")
		s.Require().NoError(err)
		s.Greater(p.ID(), last)
		last = p.ID()
	}
	s.Equal(uint64(5), last)
}

func (s *PoolSuite) TestRejectsBadInput() {
	pool := s.newPool(PoolConfig{Size: 1})

	_, err := pool.RequestPath(s.ctx, nil, "A", "C")
	s.ErrorIs(err, ErrNilMesh)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err = pool.RequestPath(ctx, s.mesh, "A", "C")
	s.ErrorIs(err, context.Canceled)
	s.Equal(0, pool.InFlight())
}

func (s *PoolSuite) TestDisposeFailsPending() {
	gs := newGatedSearch()
	pool := s.newPool(PoolConfig{Size: 1, Search: gs.run})

	first, err := pool.RequestPath(s.ctx, s.mesh, "A", "C")
	s.Require().NoError(err)
	queued, err := pool.RequestPath(s.ctx, s.mesh, "C", "A")
	s.Require().NoError(err)
	gs.awaitStart(s.T())
	s.Equal(2, pool.InFlight())
	s.Equal(1, pool.Backlog())

	pool.Dispose()
	for _, p := range []*Pending{first, queued} {
		_, err := s.wait(p)
		s.ErrorIs(err, ErrPoolDisposed)
	}
	s.Equal(0, pool.InFlight())
	s.Equal(0, pool.Backlog())

	pool.Dispose()
	pool.Wait()
	gs.open()

	_, err = first.Result()
	s.ErrorIs(err, ErrPoolDisposed, "handle must not settle a second time")

	_, err = pool.RequestPath(s.ctx, s.mesh, "A", "C")
	s.ErrorIs(err, ErrPoolDisposed)
}

func (s *PoolSuite) TestFaultIsScopedToOneWorker() {
	gs := newGatedSearch()
	pool := s.newPool(PoolConfig{Size: 2, Search: gs.run})

	healthy, err := pool.RequestPath(s.ctx, s.mesh, "A", "C")
	s.Require().NoError(err)
	gs.awaitStart(s.T())

	faulty, err := pool.RequestPath(s.ctx, s.mesh, "boom", "C")
	s.Require().NoError(err)

	_, err = s.wait(faulty)
	s.Require().ErrorIs(err, ErrWorkerFault)
	var wf *WorkerFaultError
	s.Require().True(errors.As(err, &wf))
	s.Equal(1, wf.Slot)
	s.Equal(faulty.ID(), wf.RequestID)
	s.False(healthy.Settled())

	gs.open()
	path, err := s.wait(healthy)
	s.Require().NoError(err)
	s.Equal([]string{"A", "B", "C"}, path)
}

func (s *PoolSuite) TestQueueBacklogResolvesInOrder() {
	gs := newGatedSearch()
	pool := s.newPool(PoolConfig{Size: 1, QueueSize: 2, Search: gs.run})

	starts := []string{"A", "B", "C"}
	var handles []*Pending
	for _, start := range starts {
		p, err := pool.RequestPath(s.ctx, s.mesh, start, "C")
		s.Require().NoError(err)
		handles = append(handles, p)
	}
	s.Equal("A", gs.awaitStart(s.T()))
	s.Equal(2, pool.Backlog())

	_, err := pool.RequestPath(s.ctx, s.mesh, "A", "C")
	s.ErrorIs(err, ErrPoolSaturated)

	gs.open()
	s.Equal("B", gs.awaitStart(s.T()))
	s.Equal("C", gs.awaitStart(s.T()))
	for i, p := range handles {
		path, err := s.wait(p)
		s.Require().NoError(err)
		s.Equal(starts[i], path[0])
		s.Equal("C", path[len(path)-1])
	}
	s.Equal(0, pool.Backlog())
}

// With SaturationReuseSlot a request made while every worker is busy goes to
// worker 0 and overwrites its tracking. Both requests still resolve.
func (s *PoolSuite) TestReuseSlotStillResolvesOverwritten() {
	gs := newGatedSearch()
	pool := s.newPool(PoolConfig{Size: 1, Saturation: SaturationReuseSlot, Search: gs.run})

	older, err := pool.RequestPath(s.ctx, s.mesh, "A", "C")
	s.Require().NoError(err)
	newer, err := pool.RequestPath(s.ctx, s.mesh, "C", "A")
	s.Require().NoError(err)
	s.Equal(0, pool.Backlog())
	s.Equal(2, pool.InFlight())

	gs.open()
	path, err := s.wait(older)
	s.Require().NoError(err)
	s.Equal([]string{"A", "B", "C"}, path)
	path, err = s.wait(newer)
	s.Require().NoError(err)
	s.Equal([]string{"C", "B", "A"}, path)
}

// A fault on a reused slot fails the request the slot last recorded, not the
// one that crashed. The crashed request stays pending until disposal.
func (s *PoolSuite) TestReuseSlotFaultFailsRecordedRequest() {
	gs := newGatedSearch()
	pool := s.newPool(PoolConfig{Size: 1, Saturation: SaturationReuseSlot, Search: gs.run})

	crashed, err := pool.RequestPath(s.ctx, s.mesh, "boom-late", "C")
	s.Require().NoError(err)
	recorded, err := pool.RequestPath(s.ctx, s.mesh, "A", "C")
	s.Require().NoError(err)

	gs.open()
	_, err = s.wait(recorded)
	var wf *WorkerFaultError
	s.Require().True(errors.As(err, &wf))
	s.Equal(recorded.ID(), wf.RequestID)
	s.ErrorContains(err, "late kaboom")

	// the recorded request's own run happens later and its reply is stale
	s.Equal("boom-late", gs.awaitStart(s.T()))
	s.Equal("A", gs.awaitStart(s.T()))
	s.Eventually(func() bool { return pool.Busy() == 0 }, waitLimit, time.Millisecond)
	s.False(crashed.Settled())
	s.Equal(1, pool.InFlight())

	pool.Dispose()
	_, err = s.wait(crashed)
	s.ErrorIs(err, ErrPoolDisposed)
}

func (s *PoolSuite) TestReuseSlotInboxBound() {
	gs := newGatedSearch()
	pool := s.newPool(PoolConfig{Size: 1, QueueSize: 1, Saturation: SaturationReuseSlot, Search: gs.run})

	_, err := pool.RequestPath(s.ctx, s.mesh, "A", "C")
	s.Require().NoError(err)
	gs.awaitStart(s.T())
	for i := 0; i < 2; i++ {
		_, err = pool.RequestPath(s.ctx, s.mesh, "A", "C")
		s.Require().NoError(err)
	}
	_, err = pool.RequestPath(s.ctx, s.mesh, "A", "C")
	s.ErrorIs(err, ErrPoolSaturated)
}

func (s *PoolSuite) TestRequestTimeout() {
	gs := newGatedSearch()
	pool := s.newPool(PoolConfig{Size: 1, RequestTimeout: 20 * time.Millisecond, Search: gs.run})

	p, err := pool.RequestPath(s.ctx, s.mesh, "A", "C")
	s.Require().NoError(err)
	_, err = s.wait(p)
	s.ErrorIs(err, ErrRequestTimeout)

	s.Eventually(func() bool { return pool.Busy() == 0 }, waitLimit, time.Millisecond,
		"cancelled search must release its worker")
	s.Equal(0, pool.InFlight())
}

func (s *PoolSuite) TestCallerCancellation() {
	gs := newGatedSearch()
	pool := s.newPool(PoolConfig{Size: 1, Search: gs.run})

	running, err := pool.RequestPath(s.ctx, s.mesh, "A", "C")
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	queued, err := pool.RequestPath(ctx, s.mesh, "A", "C")
	s.Require().NoError(err)
	s.Equal(1, pool.Backlog())

	cancel()
	_, err = s.wait(queued)
	s.ErrorIs(err, context.Canceled)
	s.Equal(0, pool.Backlog())

	gs.open()
	_, err = s.wait(running)
	s.NoError(err)
}

func (s *PoolSuite) TestConcurrentCallers() {
	rows := []string{
		"..........",
		".####.###.",
		"..........",
		".###.####.",
		"..........",
	}
	mesh := BuildMesh(newTestGrid(32, rows...))
	pool := s.newPool(PoolConfig{Size: 4, QueueSize: 256})

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start, goal := NodeID(i%10, 0), NodeID(9-i%10, 4)
			p, err := pool.RequestPath(s.ctx, mesh, start, goal)
			if err != nil {
				errs <- err
				return
			}
			ctx, cancel := context.WithTimeout(s.ctx, waitLimit)
			defer cancel()
			path, err := p.Wait(ctx)
			if err != nil {
				errs <- err
				return
			}
			if len(path) == 0 || path[0] != start || path[len(path)-1] != goal {
				errs <- fmt.Errorf("bad path %v for %s->%s", path, start, goal)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}
}

func TestParseSaturationPolicy(t *testing.T) {
	cases := map[string]SaturationPolicy{
		"":           SaturationQueue,
		"queue":      SaturationQueue,
		"Reuse_Slot": SaturationReuseSlot,
		"reuse":      SaturationReuseSlot,
	}
	for in, want := range cases {
		got, err := ParseSaturationPolicy(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseSaturationPolicy("lifo")
	require.Error(t, err)
	require.Equal(t, "reuse_slot", SaturationReuseSlot.String())
}

func TestDefaultPoolSize(t *testing.T) {
	require.GreaterOrEqual(t, DefaultPoolSize(), 1)
}
