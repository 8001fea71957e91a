// Package judge0 is the transport client for the remote judge engine's
// batch submit and batch poll endpoints. Pure I/O; no orchestration.
package judge0

import (
	"strings"

	"runoj/internal/run/model"
)

// Status id values of the remote engine. 1 and 2 are non-terminal; the
// contract is numeric and must be preserved bit-exact.
const (
	StatusIDInQueue           = 1
	StatusIDProcessing        = 2
	StatusIDAccepted          = 3
	StatusIDWrongAnswer       = 4
	StatusIDTimeLimitExceeded = 5
	StatusIDCompileError      = 6
)

// SubmissionItem is one test-case submission in a batch.
type SubmissionItem struct {
	LanguageID     int    `json:"language_id"`
	SourceCode     string `json:"source_code"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

// Status is the engine's status envelope for one submission.
type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// SubmissionResult is the engine's poll response for one token.
// Time is reported by the engine as a decimal string of seconds.
type SubmissionResult struct {
	Token         string  `json:"token"`
	Status        Status  `json:"status"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Message       *string `json:"message"`
	Time          *string `json:"time"`
	Memory        *int    `json:"memory"`
}

type batchSubmitRequest struct {
	Submissions []SubmissionItem `json:"submissions"`
}

type tokenEnvelope struct {
	Token string `json:"token"`
}

type batchPollResponse struct {
	Submissions []SubmissionResult `json:"submissions"`
}

// MapStatus classifies an engine status into the domain JudgeStatus.
// Ids 1-6 map directly; everything else is keyed off the description,
// defaulting to OtherError.
func MapStatus(s Status) model.JudgeStatus {
	switch s.ID {
	case StatusIDInQueue:
		return model.StatusInQueue
	case StatusIDProcessing:
		return model.StatusProcessing
	case StatusIDAccepted:
		return model.StatusAccepted
	case StatusIDWrongAnswer:
		return model.StatusWrongAnswer
	case StatusIDTimeLimitExceeded:
		return model.StatusTimeLimitExceeded
	case StatusIDCompileError:
		return model.StatusCompileError
	}

	desc := strings.ToLower(s.Description)
	switch {
	case strings.Contains(desc, "runtime error"):
		return model.StatusRuntimeError
	case strings.Contains(desc, "time limit"):
		return model.StatusTimeLimitExceeded
	case strings.Contains(desc, "compilation"):
		return model.StatusCompileError
	case strings.Contains(desc, "queue"):
		return model.StatusInQueue
	case strings.Contains(desc, "processing"):
		return model.StatusProcessing
	}
	return model.StatusOtherError
}
