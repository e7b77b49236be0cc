package nav

import (
	"context"
	"slices"
)

// Request is one path computation handed to a worker.
type Request struct {
	ID      uint64
	StartID string
	GoalID  string
	Mesh    *NavMesh
}

// Pending is the caller's handle on an in-flight Request. It settles exactly
// once, with a path or with an error.
type Pending struct {
	id   uint64
	done chan struct{}
	path []string
	err  error
}

func newPending(id uint64) *Pending {
	return &Pending{id: id, done: make(chan struct{})}
}

// ID is the correlation key of the request.
func (p *Pending) ID() uint64 {
	return p.id
}

// Done is closed once the request settles.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether Result is available without blocking.
func (p *Pending) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Result returns the outcome. Before Done is closed it returns (nil, nil).
func (p *Pending) Result() ([]string, error) {
	if !p.Settled() {
		return nil, nil
	}
	return slices.Clone(p.path), p.err
}

// Wait blocks until the request settles or ctx ends. A ctx error does not
// cancel the request itself.
func (p *Pending) Wait(ctx context.Context) ([]string, error) {
	select {
	case <-p.done:
		return slices.Clone(p.path), p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// settle must be called at most once, by the pool after removing the
// correlation entry.
func (p *Pending) settle(path []string, err error) {
	p.path = path
	p.err = err
	close(p.done)
}
