package nav

import "context"

// worker is one execution unit. It shares nothing with the pool except the
// immutable mesh carried by each job.
type worker struct {
	slot   int
	inbox  chan *job
	search SearchFunc
	pool   *WorkerPool
}

func (w *worker) full() bool {
	return len(w.inbox) == cap(w.inbox)
}

func (w *worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-w.inbox:
			w.serve(j)
		}
	}
}

func (w *worker) serve(j *job) {
	path, err, fault := w.execute(j)
	if fault != nil {
		w.pool.fault(w.slot, j.req.ID, fault)
		return
	}
	w.pool.complete(w.slot, j.req.ID, path, err)
}

func (w *worker) execute(j *job) (path []string, err error, fault any) {
	defer func() {
		if r := recover(); r != nil {
			fault = r
		}
	}()
	path, err = w.search(j.ctx, j.req.Mesh, j.req.StartID, j.req.GoalID)
	return path, err, nil
}
