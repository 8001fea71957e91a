// Package run implements the execution coordinator: it drives the judge
// engine through batch submission and repeated polling, aggregates
// per-test-case verdicts, and emits run snapshots to the caller.
package run

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"runoj/internal/judge0"
	"runoj/internal/run/model"
	appErr "runoj/pkg/errors"
	"runoj/pkg/utils/contextkey"
	"runoj/pkg/utils/logger"
)

const (
	// DefaultPollInterval is the fixed delay between poll ticks.
	DefaultPollInterval = time.Second
	// DefaultTimeout bounds a whole run from submission to completion.
	DefaultTimeout = 30 * time.Second
)

// JudgeClient is the narrow submit/poll contract of the judge engine.
type JudgeClient interface {
	SubmitBatch(ctx context.Context, items []judge0.SubmissionItem) ([]string, error)
	PollBatch(ctx context.Context, tokens []string) ([]judge0.SubmissionResult, error)
}

// Options are the caller-supplied tunables of a run. Zero values fall
// back to the coordinator defaults.
type Options struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

func (o Options) normalized() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Request describes one execution: a source program and the ordered
// test cases to run it against.
type Request struct {
	TestCases  []model.TestCase
	LanguageID int
	SourceCode string
	Options    Options
}

// Coordinator owns the run state machine. It is safe for concurrent
// use; each Start call creates an independent run with its own poll
// goroutine and its own tokens.
type Coordinator struct {
	judge     JudgeClient
	languages *LanguageTable
	defaults  Options
}

// NewCoordinator creates a coordinator. languages may be nil, in which
// case the engine's stock table is used.
func NewCoordinator(judge JudgeClient, languages *LanguageTable, defaults Options) *Coordinator {
	if languages == nil {
		languages = DefaultLanguages()
	}
	return &Coordinator{
		judge:     judge,
		languages: languages,
		defaults:  defaults.normalized(),
	}
}

// Start validates the request, submits the batch, emits the immediate
// all-queued snapshot, and spawns the poll loop. Validation and
// submission failures are returned synchronously with zero snapshots
// emitted: no tokens exist, so there is no partial state to clean up.
// The returned handle owns cancellation; each call creates a new run
// and runs are never restartable.
func (c *Coordinator) Start(ctx context.Context, req Request, sink SnapshotSink) (*Run, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}
	opts := req.Options.normalized()
	if req.Options.PollInterval <= 0 {
		opts.PollInterval = c.defaults.PollInterval
	}
	if req.Options.Timeout <= 0 {
		opts.Timeout = c.defaults.Timeout
	}

	items := make([]judge0.SubmissionItem, len(req.TestCases))
	for i, tc := range req.TestCases {
		items[i] = judge0.SubmissionItem{
			LanguageID:     req.LanguageID,
			SourceCode:     req.SourceCode,
			Stdin:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
		}
	}

	tokens, err := c.judge.SubmitBatch(ctx, items)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	runCtx, cancel := context.WithCancel(ctx)
	runCtx = context.WithValue(runCtx, contextkey.RunID, runID)

	r := &Run{
		id:        runID,
		startedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	results := make([]model.TestCaseResult, len(tokens))
	for i := range results {
		results[i] = model.TestCaseResult{
			Index:    i,
			Status:   model.StatusInQueue,
			StatusID: judge0.StatusIDInQueue,
		}
	}

	// Immediate snapshot so callers can render "queued" before the
	// first poll returns.
	emit(r, sink, c.buildSnapshot(r, req, results, model.StatePolling, ""))

	go c.pollLoop(runCtx, r, req, opts, tokens, results, sink)

	return r, nil
}

func (c *Coordinator) validate(req Request) error {
	if len(req.TestCases) == 0 {
		return appErr.New(appErr.NoTestCases)
	}
	if strings.TrimSpace(req.SourceCode) == "" {
		return appErr.New(appErr.EmptySourceCode)
	}
	if !c.languages.Known(req.LanguageID) {
		return appErr.Newf(appErr.LanguageNotSupported, "unknown language id %d", req.LanguageID)
	}
	return nil
}

// pollLoop is the single writer of the run's results. It keeps exactly
// one poll in flight: the timer is re-armed only after the previous
// poll has returned, so slow networks can never stack concurrent polls
// against the same tokens.
func (c *Coordinator) pollLoop(
	ctx context.Context,
	r *Run,
	req Request,
	opts Options,
	tokens []string,
	results []model.TestCaseResult,
	sink SnapshotSink,
) {
	defer close(r.done)

	deadline := r.startedAt.Add(opts.Timeout)
	polledOK := false

	// First poll fires immediately; the queued snapshot has already
	// been emitted.
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			emit(r, sink, c.buildSnapshot(r, req, results, model.StateCanceled, appErr.RunCanceled.Message()))
			return
		case <-timer.C:
		}

		// Each poll is bounded by the run deadline so a slow or hung
		// request cannot push the TimedOut transition past the
		// configured timeout.
		pollCtx, cancelPoll := context.WithDeadline(ctx, deadline)
		polled, err := c.judge.PollBatch(pollCtx, tokens)
		cancelPoll()
		if err != nil {
			if ctx.Err() != nil {
				emit(r, sink, c.buildSnapshot(r, req, results, model.StateCanceled, appErr.RunCanceled.Message()))
				return
			}
			// A flaky tick must not abort an otherwise-succeeding run:
			// swallow, log, and let the timeout bound the retries.
			logger.Warn(ctx, "poll tick failed", zap.Error(err))
		} else if next, corrErr := correlateByToken(tokens, polled); corrErr != nil {
			logger.Warn(ctx, "poll response correlation failed", zap.Error(corrErr))
		} else {
			polledOK = true
			results = mergeResults(results, next)
			if allTerminal(results) {
				// Terminate the instant completion is detected; waiting
				// for the next tick would delay the single
				// running->finished transition consumers key off.
				emit(r, sink, c.buildSnapshot(r, req, results, model.StateCompleted, ""))
				return
			}
			emit(r, sink, c.buildSnapshot(r, req, results, model.StatePolling, ""))
		}

		if time.Now().After(deadline) {
			// Still-pending results keep their last observed status; a
			// synthesized terminal status would hide "judge never
			// finished" from the caller.
			state := model.StateTimedOut
			errMsg := appErr.RunTimedOut.Message()
			if !polledOK {
				state = model.StateFailed
				errMsg = "judge engine could not be polled before the run timed out"
			}
			emit(r, sink, c.buildSnapshot(r, req, results, state, errMsg))
			return
		}

		timer.Reset(opts.PollInterval)
	}
}

func (c *Coordinator) buildSnapshot(
	r *Run,
	req Request,
	results []model.TestCaseResult,
	state model.RunState,
	errMsg string,
) model.Snapshot {
	passed, finished := tally(results, req.TestCases)
	snap := model.Snapshot{
		RunID:     r.id,
		State:     state,
		Results:   results,
		Passed:    passed,
		Finished:  finished,
		Total:     len(results),
		ElapsedMs: time.Since(r.startedAt).Milliseconds(),
		Error:     errMsg,
	}
	return snap.Clone()
}

func emit(r *Run, sink SnapshotSink, snap model.Snapshot) {
	r.setLatest(snap)
	if sink != nil {
		sink.OnSnapshot(snap)
	}
}

// correlateByToken re-orders a poll response into test-case order. The
// engine happens to preserve order today, but the contract is the
// token, not the position.
func correlateByToken(tokens []string, items []judge0.SubmissionResult) ([]model.TestCaseResult, error) {
	byToken := make(map[string]judge0.SubmissionResult, len(items))
	for _, item := range items {
		byToken[item.Token] = item
	}

	out := make([]model.TestCaseResult, len(tokens))
	for i, token := range tokens {
		item, ok := byToken[token]
		if !ok {
			return nil, appErr.Newf(appErr.JudgeBadResponse, "poll response is missing token %q", token)
		}
		out[i] = resultFromEngine(i, item)
	}
	return out, nil
}

func resultFromEngine(index int, item judge0.SubmissionResult) model.TestCaseResult {
	res := model.TestCaseResult{
		Index:         index,
		Status:        judge0.MapStatus(item.Status),
		StatusID:      item.Status.ID,
		Stdout:        item.Stdout,
		Stderr:        item.Stderr,
		CompileOutput: item.CompileOutput,
		Message:       item.Message,
		MemoryKB:      item.Memory,
	}
	if item.Time != nil {
		if seconds, err := strconv.ParseFloat(*item.Time, 64); err == nil {
			ms := seconds * 1000
			res.TimeMs = &ms
		}
	}
	return res
}

// mergeResults replaces results wholesale but never lets a terminal
// result regress: once observed terminal, that observation wins over
// any later disagreement from the engine.
func mergeResults(prev, next []model.TestCaseResult) []model.TestCaseResult {
	out := make([]model.TestCaseResult, len(next))
	copy(out, next)
	for i := range out {
		if i < len(prev) && prev[i].Status.Terminal() {
			out[i] = prev[i]
		}
	}
	return out
}

func allTerminal(results []model.TestCaseResult) bool {
	for _, res := range results {
		if !res.Status.Terminal() {
			return false
		}
	}
	return true
}
