package run

import (
	"testing"

	"runoj/internal/run/model"
)

func strPtr(s string) *string { return &s }

func acceptedResult(stdout string) model.TestCaseResult {
	return model.TestCaseResult{Status: model.StatusAccepted, Stdout: strPtr(stdout)}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   model.TestCaseResult
		expected string
		want     Verdict
	}{
		{
			name:     "exact match passes",
			result:   acceptedResult("42\n"),
			expected: "42",
			want:     VerdictPassed,
		},
		{
			name:     "trailing newline on expected ignored",
			result:   acceptedResult("hello world"),
			expected: "hello world\n",
			want:     VerdictPassed,
		},
		{
			name:     "leading whitespace ignored on both sides",
			result:   acceptedResult("  7\n"),
			expected: "\t7",
			want:     VerdictPassed,
		},
		{
			name:     "internal whitespace is significant",
			result:   acceptedResult("1  2"),
			expected: "1 2",
			want:     VerdictFailed,
		},
		{
			name:     "wrong answer status fails regardless of stdout",
			result:   model.TestCaseResult{Status: model.StatusWrongAnswer, Stdout: strPtr("42")},
			expected: "42",
			want:     VerdictFailed,
		},
		{
			name:     "non-empty stderr fails an accepted result",
			result:   model.TestCaseResult{Status: model.StatusAccepted, Stdout: strPtr("42"), Stderr: strPtr("warning: overflow")},
			expected: "42",
			want:     VerdictFailed,
		},
		{
			name:     "empty stderr pointer does not fail",
			result:   model.TestCaseResult{Status: model.StatusAccepted, Stdout: strPtr("42"), Stderr: strPtr("")},
			expected: "42",
			want:     VerdictPassed,
		},
		{
			name:     "nil stdout matches whitespace-only expected",
			result:   model.TestCaseResult{Status: model.StatusAccepted},
			expected: "  \n",
			want:     VerdictPassed,
		},
		{
			name:     "nil stdout fails non-empty expected",
			result:   model.TestCaseResult{Status: model.StatusAccepted},
			expected: "42",
			want:     VerdictFailed,
		},
		{
			name:     "compile error fails",
			result:   model.TestCaseResult{Status: model.StatusCompileError, CompileOutput: strPtr("main.c:1: error")},
			expected: "",
			want:     VerdictFailed,
		},
		{
			name:     "pending result fails",
			result:   model.TestCaseResult{Status: model.StatusProcessing},
			expected: "",
			want:     VerdictFailed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.result, tt.expected); got != tt.want {
				t.Fatalf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTallyCountsPendingInTotalOnly(t *testing.T) {
	t.Parallel()

	testCases := []model.TestCase{
		{Input: "1", ExpectedOutput: "1"},
		{Input: "2", ExpectedOutput: "2"},
		{Input: "3", ExpectedOutput: "3"},
	}
	results := []model.TestCaseResult{
		acceptedResult("1"),
		{Index: 1, Status: model.StatusWrongAnswer, Stdout: strPtr("0")},
		{Index: 2, Status: model.StatusProcessing},
	}

	passed, finished := tally(results, testCases)
	if passed != 1 {
		t.Errorf("passed = %d, want 1", passed)
	}
	if finished != 2 {
		t.Errorf("finished = %d, want 2", finished)
	}
}

func TestTallyMixedOutcomes(t *testing.T) {
	t.Parallel()

	testCases := []model.TestCase{
		{ExpectedOutput: "a"},
		{ExpectedOutput: "b"},
		{ExpectedOutput: "c"},
		{ExpectedOutput: "d"},
		{ExpectedOutput: "e"},
	}
	results := []model.TestCaseResult{
		acceptedResult("a\n"),
		acceptedResult("b"),
		acceptedResult("wrong"),
		{Index: 3, Status: model.StatusTimeLimitExceeded},
		acceptedResult("e"),
	}

	passed, finished := tally(results, testCases)
	if passed != 3 {
		t.Errorf("passed = %d, want 3", passed)
	}
	if finished != 5 {
		t.Errorf("finished = %d, want 5", finished)
	}
}
