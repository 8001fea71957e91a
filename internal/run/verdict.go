package run

import (
	"strings"

	"runoj/internal/run/model"
)

// Verdict is the binary pass/fail classification of one judged test
// case. It is a pure projection recomputed on demand, never stored on
// the run itself.
type Verdict string

const (
	VerdictPassed Verdict = "PASSED"
	VerdictFailed Verdict = "FAILED"
)

// Classify compares one judge result against the expected output.
// Passed requires an Accepted status, an empty stderr, and trimmed
// stdout equal to trimmed expected output. Internal whitespace is
// significant; only leading/trailing whitespace is ignored. A nil
// stdout only matches an expected value that trims to empty.
func Classify(result model.TestCaseResult, expected string) Verdict {
	if result.Status != model.StatusAccepted {
		return VerdictFailed
	}
	if result.Stderr != nil && *result.Stderr != "" {
		return VerdictFailed
	}

	stdout := ""
	if result.Stdout != nil {
		stdout = *result.Stdout
	}
	if strings.TrimSpace(stdout) != strings.TrimSpace(expected) {
		return VerdictFailed
	}
	return VerdictPassed
}

// tally counts terminal results and passed verdicts across all test
// cases. Pending results stay in the total but never in either count.
func tally(results []model.TestCaseResult, testCases []model.TestCase) (passed, finished int) {
	for i, res := range results {
		if !res.Status.Terminal() {
			continue
		}
		finished++
		if i < len(testCases) && Classify(res, testCases[i].ExpectedOutput) == VerdictPassed {
			passed++
		}
	}
	return passed, finished
}
