package run

import (
	"context"
	"sync"
	"time"

	"runoj/internal/run/model"
)

// Run is the owned handle for one in-flight execution. It is created by
// Coordinator.Start and mutated only by the run's own poll goroutine
// (single writer). Cancellation is structured: the handle owns the
// cancel function, there are no ambient timers to clear.
type Run struct {
	id        string
	startedAt time.Time

	cancel     context.CancelFunc
	cancelOnce sync.Once
	done       chan struct{}

	mu     sync.RWMutex
	latest model.Snapshot
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// StartedAt returns the submission time of the run.
func (r *Run) StartedAt() time.Time {
	return r.startedAt
}

// Latest returns the most recently emitted snapshot.
func (r *Run) Latest() model.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Done is closed once the run has emitted its terminal snapshot.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Finished reports whether the run has reached a terminal state.
func (r *Run) Finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Cancel stops the poll loop. Idempotent: cancelling twice, or
// cancelling an already-finished run, is a no-op. It does not attempt
// to stop the judge engine's own execution; the run simply stops
// observing it.
func (r *Run) Cancel() {
	r.cancelOnce.Do(r.cancel)
}

// Wait blocks until the run finishes or ctx is done, returning the
// terminal snapshot in the former case.
func (r *Run) Wait(ctx context.Context) (model.Snapshot, error) {
	select {
	case <-r.done:
		return r.Latest(), nil
	case <-ctx.Done():
		return model.Snapshot{}, ctx.Err()
	}
}

func (r *Run) setLatest(snap model.Snapshot) {
	r.mu.Lock()
	r.latest = snap
	r.mu.Unlock()
}
