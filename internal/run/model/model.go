// Package model defines the run orchestration data model: test cases,
// per-test-case judge results, and run snapshots.
package model

// TestCase is one input/expected-output pair. Ordering is significant:
// the slice index is the stable identity used to correlate judge tokens
// back to test cases.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// JudgeStatus represents the judge engine state of a single test case.
type JudgeStatus string

const (
	StatusInQueue           JudgeStatus = "IN_QUEUE"
	StatusProcessing        JudgeStatus = "PROCESSING"
	StatusAccepted          JudgeStatus = "ACCEPTED"
	StatusWrongAnswer       JudgeStatus = "WRONG_ANSWER"
	StatusCompileError      JudgeStatus = "COMPILE_ERROR"
	StatusRuntimeError      JudgeStatus = "RUNTIME_ERROR"
	StatusTimeLimitExceeded JudgeStatus = "TIME_LIMIT_EXCEEDED"
	StatusOtherError        JudgeStatus = "OTHER_ERROR"
)

// Terminal reports whether the status is final for its test case.
// InQueue and Processing are the only non-terminal statuses; an empty
// status (never observed) is treated as non-terminal too.
func (s JudgeStatus) Terminal() bool {
	switch s {
	case "", StatusInQueue, StatusProcessing:
		return false
	}
	return true
}

// TestCaseResult is the judged outcome of one test case. It is replaced
// wholesale on every poll cycle until its status is terminal.
type TestCaseResult struct {
	Index         int         `json:"index"`
	Status        JudgeStatus `json:"status"`
	StatusID      int         `json:"status_id"` // raw judge engine status id
	Stdout        *string     `json:"stdout"`
	Stderr        *string     `json:"stderr"`
	CompileOutput *string     `json:"compile_output"`
	Message       *string     `json:"message"`
	TimeMs        *float64    `json:"time_ms"`
	MemoryKB      *int        `json:"memory_kb"`
}

// RunState is the lifecycle state of an execution run. Submission is
// synchronous inside Start, so the first observable state is already
// Polling.
type RunState string

const (
	StatePolling   RunState = "POLLING"
	StateCompleted RunState = "COMPLETED"
	StateTimedOut  RunState = "TIMED_OUT"
	StateFailed    RunState = "FAILED"
	StateCanceled  RunState = "CANCELED"
)

// Terminal reports whether the run state is final.
func (s RunState) Terminal() bool {
	switch s {
	case StateCompleted, StateTimedOut, StateFailed, StateCanceled:
		return true
	}
	return false
}

// Snapshot is an immutable point-in-time view of a run. Passed counts
// terminal results whose verdict is Passed; Finished counts terminal
// results; Total always counts every submitted test case, including
// ones still pending at timeout.
type Snapshot struct {
	RunID     string           `json:"run_id"`
	State     RunState         `json:"state"`
	Results   []TestCaseResult `json:"results"`
	Passed    int              `json:"passed"`
	Finished  int              `json:"finished"`
	Total     int              `json:"total"`
	ElapsedMs int64            `json:"elapsed_ms"`
	Error     string           `json:"error,omitempty"`
}

// Terminal reports whether this is the final snapshot of its run.
func (s Snapshot) Terminal() bool {
	return s.State.Terminal()
}

// Clone returns a copy whose results slice is independent of the
// original. Pointer fields are shared; they are never mutated after a
// result is built.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Results = make([]TestCaseResult, len(s.Results))
	copy(out.Results, s.Results)
	return out
}
