package nav

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolDisposed is returned for every request pending at teardown and for
	// any request made after it.
	ErrPoolDisposed = errors.New("nav: worker pool disposed")
	// ErrPoolSaturated is returned when every worker is busy and the backlog is full.
	ErrPoolSaturated = errors.New("nav: worker pool saturated")
	// ErrRequestTimeout fails a request that outlived PoolConfig.RequestTimeout.
	ErrRequestTimeout = errors.New("nav: path request timed out")
	// ErrWorkerFault is the sentinel wrapped by WorkerFaultError.
	ErrWorkerFault = errors.New("nav: worker fault")
	// ErrNilMesh rejects a request without a mesh snapshot.
	ErrNilMesh = errors.New("nav: nil mesh")
	// ErrNoPosition is returned by RequestPathTo when the agent has no position.
	ErrNoPosition = errors.New("nav: agent has no position")

	// ErrMalformedNodeID rejects an id that is not "x,y" with integer parts.
	ErrMalformedNodeID = errors.New("nav: malformed node id")
	// ErrDuplicateNode rejects a hand-built mesh that repeats an id.
	ErrDuplicateNode = errors.New("nav: duplicate node id")
	// ErrInvalidMesh wraps every adjacency violation found by Validate.
	ErrInvalidMesh = errors.New("nav: invalid mesh")
)

// WorkerFaultError reports a failure inside one worker while it was serving RequestID.
type WorkerFaultError struct {
	Slot      int
	RequestID uint64
	Cause     any
}

func (e *WorkerFaultError) Error() string {
	return fmt.Sprintf("nav: worker %d fault on request %d: %v", e.Slot, e.RequestID, e.Cause)
}

func (e *WorkerFaultError) Unwrap() []error {
	if err, ok := e.Cause.(error); ok {
		return []error{ErrWorkerFault, err}
	}
	return []error{ErrWorkerFault}
}
