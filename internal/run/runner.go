package run

import (
	"context"
	"sync"

	appErr "runoj/pkg/errors"
)

// Runner is a caller-facing handle that owns at most one active run.
// Starting a new run while a previous one it issued is still polling is
// rejected instead of silently orphaning the old run's loop.
type Runner struct {
	coord *Coordinator

	mu     sync.Mutex
	active *Run
}

// NewRunner creates a runner bound to a coordinator.
func NewRunner(coord *Coordinator) *Runner {
	return &Runner{coord: coord}
}

// Start begins a new run if none is active on this handle.
func (r *Runner) Start(ctx context.Context, req Request, sink SnapshotSink) (*Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil && !r.active.Finished() {
		return nil, appErr.New(appErr.RunInProgress).WithDetail("active_run_id", r.active.ID())
	}

	active, err := r.coord.Start(ctx, req, sink)
	if err != nil {
		return nil, err
	}
	r.active = active
	return active, nil
}

// Active returns the run this handle currently owns, finished or not,
// or nil if none was ever started.
func (r *Runner) Active() *Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// CancelActive cancels the active run if there is one. Idempotent.
func (r *Runner) CancelActive() {
	r.mu.Lock()
	active := r.active
	r.mu.Unlock()
	if active != nil {
		active.Cancel()
	}
}
