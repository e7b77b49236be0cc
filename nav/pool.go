package nav

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// SaturationPolicy decides what RequestPath does when no worker is idle.
type SaturationPolicy int

const (
	// SaturationQueue parks the request in a bounded FIFO backlog until a
	// worker frees up. A full backlog rejects with ErrPoolSaturated.
	SaturationQueue SaturationPolicy = iota
	// SaturationReuseSlot sends the request to worker 0 and overwrites that
	// slot's tracking. The overwritten request still resolves when its reply
	// arrives, but a fault on worker 0 can only fail the newest request.
	SaturationReuseSlot
)

func (p SaturationPolicy) String() string {
	switch p {
	case SaturationQueue:
		return "queue"
	case SaturationReuseSlot:
		return "reuse_slot"
	default:
		return fmt.Sprintf("SaturationPolicy(%d)", int(p))
	}
}

// ParseSaturationPolicy accepts "queue" or "reuse_slot". Empty means queue.
func ParseSaturationPolicy(s string) (SaturationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "queue":
		return SaturationQueue, nil
	case "reuse_slot", "reuse":
		return SaturationReuseSlot, nil
	default:
		return 0, fmt.Errorf("nav: unknown saturation policy %q", s)
	}
}

// PoolConfig configures a WorkerPool. Zero values select defaults.
type PoolConfig struct {
	// Size is the number of workers. Defaults to DefaultPoolSize().
	Size int
	// QueueSize bounds the backlog (queue policy) or worker 0's inbox
	// (reuse policy). Defaults to 4*Size.
	QueueSize int
	Saturation SaturationPolicy
	// RequestTimeout fails requests that take longer. Zero disables it.
	RequestTimeout time.Duration
	Logger         *slog.Logger
	// Search defaults to SearchContext.
	Search SearchFunc
}

// DefaultPoolSize is half the host's CPUs, at least 1.
func DefaultPoolSize() int {
	return max(1, runtime.NumCPU()/2)
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.Size <= 0 {
		c.Size = DefaultPoolSize()
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 4 * c.Size
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Search == nil {
		c.Search = SearchContext
	}
	return c
}

type slot struct {
	busy     bool
	activeID uint64
}

// job is a Request plus everything the pool needs to settle it.
type job struct {
	req     Request
	handle  *Pending
	ctx     context.Context
	cancel  context.CancelFunc
	stopFns []func() bool
}

func (j *job) release() {
	for _, stop := range j.stopFns {
		stop()
	}
	j.cancel()
}

// WorkerPool runs path searches on a fixed set of worker goroutines and
// correlates their replies with the callers' Pending handles. Slots, the
// correlation map and the backlog are owned by the pool and only touched
// under mu.
type WorkerPool struct {
	cfg     PoolConfig
	log     *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	group   errgroup.Group
	workers []*worker

	mu       sync.Mutex
	slots    []slot
	pending  map[uint64]*job
	backlog  []*job
	nextID   uint64
	disposed bool

	disposeOnce sync.Once
}

// NewWorkerPool starts cfg.Size workers.
func NewWorkerPool(cfg PoolConfig) *WorkerPool {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		cfg:     cfg,
		log:     cfg.Logger.With("component", "nav.pool"),
		ctx:     ctx,
		cancel:  cancel,
		slots:   make([]slot, cfg.Size),
		pending: make(map[uint64]*job),
		nextID:  1,
	}

	for i := 0; i < cfg.Size; i++ {
		inbox := 1
		if i == 0 && cfg.Saturation == SaturationReuseSlot {
			inbox = cfg.QueueSize + 1
		}
		w := &worker{slot: i, inbox: make(chan *job, inbox), search: cfg.Search, pool: p}
		p.workers = append(p.workers, w)
		p.group.Go(func() error {
			w.run(ctx)
			return nil
		})
	}

	p.log.Debug("worker pool started", "size", cfg.Size, "saturation", cfg.Saturation.String())
	return p
}

// Size returns the fixed worker count.
func (p *WorkerPool) Size() int {
	return len(p.workers)
}

// InFlight returns the number of unsettled requests, backlog included.
func (p *WorkerPool) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Backlog returns the number of requests waiting for an idle worker.
func (p *WorkerPool) Backlog() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.backlog)
}

// Busy returns how many slots are marked busy.
func (p *WorkerPool) Busy() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.slots {
		if s.busy {
			n++
		}
	}
	return n
}

// RequestPath schedules a search and returns immediately. The handle fails
// with ctx.Err() if ctx ends first and with ErrRequestTimeout if the
// configured timeout elapses.
func (p *WorkerPool) RequestPath(ctx context.Context, mesh *NavMesh, startID, goalID string) (*Pending, error) {
	if mesh == nil {
		return nil, ErrNilMesh
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return nil, ErrPoolDisposed
	}

	idx, idle := p.idleSlot()
	switch {
	case !idle && p.cfg.Saturation == SaturationQueue:
		if len(p.backlog) >= p.cfg.QueueSize {
			return nil, ErrPoolSaturated
		}
	case p.workers[idx].full():
		return nil, ErrPoolSaturated
	}

	id := p.nextID
	p.nextID++

	jctx, cancel := context.WithCancel(p.ctx)
	j := &job{
		req:    Request{ID: id, StartID: startID, GoalID: goalID, Mesh: mesh},
		handle: newPending(id),
		ctx:    jctx,
		cancel: cancel,
	}
	j.stopFns = append(j.stopFns, context.AfterFunc(ctx, func() {
		p.expire(id, ctx.Err())
	}))
	if p.cfg.RequestTimeout > 0 {
		t := time.AfterFunc(p.cfg.RequestTimeout, func() {
			p.expire(id, ErrRequestTimeout)
		})
		j.stopFns = append(j.stopFns, t.Stop)
	}
	p.pending[id] = j

	if !idle && p.cfg.Saturation == SaturationQueue {
		p.backlog = append(p.backlog, j)
		p.log.Debug("path request queued", "request_id", id, "backlog", len(p.backlog))
		return j.handle, nil
	}
	if !idle {
		p.log.Warn("pool saturated, reusing slot", "request_id", id, "slot", idx,
			"overwritten_request_id", p.slots[idx].activeID)
	}
	p.assign(idx, j)
	return j.handle, nil
}

func (p *WorkerPool) idleSlot() (int, bool) {
	for i, s := range p.slots {
		if !s.busy {
			return i, true
		}
	}
	return 0, false
}

// assign marks the slot and posts the job. Caller holds mu and has checked
// inbox capacity.
func (p *WorkerPool) assign(idx int, j *job) {
	p.slots[idx] = slot{busy: true, activeID: j.req.ID}
	p.workers[idx].inbox <- j
	p.log.Debug("path request dispatched", "request_id", j.req.ID, "slot", idx,
		"start", j.req.StartID, "goal", j.req.GoalID)
}

// complete handles a worker reply tagged with id.
func (p *WorkerPool) complete(idx int, id uint64, path []string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return
	}

	if j, ok := p.pending[id]; ok {
		delete(p.pending, id)
		j.release()
		j.handle.settle(path, err)
	} else {
		p.log.Debug("stale path reply dropped", "request_id", id, "slot", idx)
	}
	p.slots[idx] = slot{}
	p.drainBacklog(idx)
}

// fault fails whatever request the slot currently records, not the request
// the worker was actually running.
func (p *WorkerPool) fault(idx int, ranID uint64, cause any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return
	}

	activeID := p.slots[idx].activeID
	p.log.Error("worker fault", "slot", idx, "request_id", activeID, "ran_request_id", ranID, "fault", cause)
	if p.slots[idx].busy {
		if j, ok := p.pending[activeID]; ok {
			delete(p.pending, activeID)
			j.release()
			j.handle.settle(nil, &WorkerFaultError{Slot: idx, RequestID: activeID, Cause: cause})
		}
	}
	p.slots[idx] = slot{}
	p.drainBacklog(idx)
}

// expire fails a request that was cancelled or timed out before its reply.
// The worker keeps its slot until the (now stale) reply arrives.
func (p *WorkerPool) expire(id uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	j, ok := p.pending[id]
	if !ok {
		return
	}
	delete(p.pending, id)
	if i := slices.Index(p.backlog, j); i >= 0 {
		p.backlog = slices.Delete(p.backlog, i, i+1)
	}
	j.release()
	j.handle.settle(nil, err)
	p.log.Debug("path request abandoned", "request_id", id, "err", err)
}

func (p *WorkerPool) drainBacklog(idx int) {
	if p.cfg.Saturation != SaturationQueue || len(p.backlog) == 0 || p.slots[idx].busy {
		return
	}
	next := p.backlog[0]
	p.backlog = slices.Delete(p.backlog, 0, 1)
	p.assign(idx, next)
}

// Dispose stops every worker and fails every unsettled request with
// ErrPoolDisposed. It is safe to call more than once. Replies that race with
// Dispose are dropped. Use Wait to join the worker goroutines.
func (p *WorkerPool) Dispose() {
	p.disposeOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.disposed = true
		p.cancel()

		ids := make([]uint64, 0, len(p.pending))
		for id := range p.pending {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			j := p.pending[id]
			j.release()
			j.handle.settle(nil, ErrPoolDisposed)
		}
		clear(p.pending)
		p.backlog = nil
		clear(p.slots)
		p.log.Debug("worker pool disposed", "failed_requests", len(ids))
	})
}

// Wait blocks until every worker goroutine has exited. Only meaningful after Dispose.
func (p *WorkerPool) Wait() {
	_ = p.group.Wait()
}
