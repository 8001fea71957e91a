// Package service exposes run execution as an application service: it
// tracks live runs, fans snapshots out to subscribers, and falls back
// to the snapshot store for runs whose goroutine is already gone.
package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"runoj/internal/run"
	"runoj/internal/run/model"
	"runoj/internal/run/repository"
	appErr "runoj/pkg/errors"
	"runoj/pkg/utils/logger"
)

// DefaultRetention is how long a finished run stays in the live
// registry before lookups shift to the snapshot store.
const DefaultRetention = 2 * time.Minute

type runEntry struct {
	run       *run.Run
	broadcast *broadcaster
	handle    string
}

// RunService coordinates run lifecycles for the HTTP layer.
type RunService struct {
	coord     *run.Coordinator
	snapshots *repository.SnapshotRepository
	baseCtx   context.Context
	retention time.Duration

	mu      sync.Mutex
	runs    map[string]*runEntry
	runners map[string]*run.Runner
}

// NewRunService creates the service. baseCtx bounds the lifetime of all
// background runs; canceling it cancels every run still polling.
// snapshots may be nil, in which case finished runs are only visible
// while retained in memory.
func NewRunService(baseCtx context.Context, coord *run.Coordinator, snapshots *repository.SnapshotRepository) *RunService {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &RunService{
		coord:     coord,
		snapshots: snapshots,
		baseCtx:   baseCtx,
		retention: DefaultRetention,
		runs:      make(map[string]*runEntry),
		runners:   make(map[string]*run.Runner),
	}
}

// StartRun begins a run on behalf of a caller handle. A handle owns at
// most one active run; starting another while the previous one is still
// polling fails with RunInProgress. An empty handle gets no such guard.
func (s *RunService) StartRun(ctx context.Context, handle string, req run.Request) (model.Snapshot, error) {
	broadcast := newBroadcaster()
	sink := s.buildSink(broadcast)

	var (
		active *run.Run
		err    error
	)
	if handle == "" {
		active, err = s.coord.Start(s.baseCtx, req, sink)
	} else {
		active, err = s.runnerFor(handle).Start(s.baseCtx, req, sink)
	}
	if err != nil {
		return model.Snapshot{}, err
	}

	s.mu.Lock()
	s.runs[active.ID()] = &runEntry{run: active, broadcast: broadcast, handle: handle}
	s.mu.Unlock()

	go s.reapWhenDone(active)

	logger.Info(ctx, "run started",
		zap.String("run_id", active.ID()),
		zap.String("handle", handle),
		zap.Int("test_cases", len(req.TestCases)))
	return active.Latest(), nil
}

// GetSnapshot returns the latest snapshot for a run, live or stored.
func (s *RunService) GetSnapshot(ctx context.Context, runID string) (model.Snapshot, error) {
	if runID == "" {
		return model.Snapshot{}, appErr.ValidationError("run_id", "required")
	}

	s.mu.Lock()
	entry, ok := s.runs[runID]
	s.mu.Unlock()
	if ok {
		return entry.run.Latest(), nil
	}

	if s.snapshots == nil {
		return model.Snapshot{}, appErr.New(appErr.RunNotFound)
	}
	return s.snapshots.Get(ctx, runID)
}

// CancelRun cancels a live run. Canceling a run that already finished
// is a no-op; canceling an unknown run fails with RunNotFound.
func (s *RunService) CancelRun(ctx context.Context, runID string) error {
	if runID == "" {
		return appErr.ValidationError("run_id", "required")
	}

	s.mu.Lock()
	entry, ok := s.runs[runID]
	s.mu.Unlock()
	if ok {
		entry.run.Cancel()
		logger.Info(ctx, "run canceled", zap.String("run_id", runID))
		return nil
	}

	if s.snapshots != nil {
		if _, err := s.snapshots.Get(ctx, runID); err == nil {
			return nil
		}
	}
	return appErr.New(appErr.RunNotFound)
}

// Subscribe returns a channel of snapshots for a run plus an
// unsubscribe func. The channel is closed after the terminal snapshot.
// For runs that already left the live registry, a single stored
// snapshot is delivered and the channel closed.
func (s *RunService) Subscribe(ctx context.Context, runID string) (<-chan model.Snapshot, func(), error) {
	if runID == "" {
		return nil, nil, appErr.ValidationError("run_id", "required")
	}

	s.mu.Lock()
	entry, ok := s.runs[runID]
	s.mu.Unlock()
	if ok {
		ch, unsubscribe := entry.broadcast.subscribe()
		return ch, unsubscribe, nil
	}

	if s.snapshots == nil {
		return nil, nil, appErr.New(appErr.RunNotFound)
	}
	snap, err := s.snapshots.Get(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan model.Snapshot, 1)
	ch <- snap
	close(ch)
	return ch, func() {}, nil
}

func (s *RunService) buildSink(broadcast *broadcaster) run.SnapshotSink {
	if s.snapshots == nil {
		return broadcast
	}
	persist := run.SinkFunc(func(snap model.Snapshot) {
		if err := s.snapshots.Save(s.baseCtx, snap); err != nil {
			logger.Warn(s.baseCtx, "persist snapshot failed",
				zap.String("run_id", snap.RunID), zap.Error(err))
		}
	})
	return run.MultiSink(broadcast, persist)
}

func (s *RunService) runnerFor(handle string) *run.Runner {
	s.mu.Lock()
	defer s.mu.Unlock()
	runner, ok := s.runners[handle]
	if !ok {
		runner = run.NewRunner(s.coord)
		s.runners[handle] = runner
	}
	return runner
}

func (s *RunService) reapWhenDone(active *run.Run) {
	<-active.Done()
	time.AfterFunc(s.retention, func() {
		s.mu.Lock()
		delete(s.runs, active.ID())
		s.mu.Unlock()
	})
}
