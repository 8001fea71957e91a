package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Run orchestration errors
// 12000-12999: Judge engine transport errors
// 13000-13999: Grading backend errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	Timeout             ErrorCode = 10004
	ServiceUnavailable  ErrorCode = 10005

	// Cache errors (10100-10199)
	CacheError ErrorCode = 10100

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	RequiredFieldEmpty ErrorCode = 10301

	// ========== Run Orchestration Errors (11000-11999) ==========

	RunNotFound          ErrorCode = 11000
	RunInProgress        ErrorCode = 11001
	RunCanceled          ErrorCode = 11002
	RunTimedOut          ErrorCode = 11003
	LanguageNotSupported ErrorCode = 11004
	NoTestCases          ErrorCode = 11005
	EmptySourceCode      ErrorCode = 11006

	// ========== Judge Engine Transport Errors (12000-12999) ==========

	JudgeUnavailable ErrorCode = 12000
	JudgeBadResponse ErrorCode = 12001

	// ========== Grading Backend Errors (13000-13999) ==========

	GradingUnavailable    ErrorCode = 13000
	GradingRejected       ErrorCode = 13001
	SubmissionNotFound    ErrorCode = 13002
	MissingSubjectContext ErrorCode = 13003
)

// errorMessages maps error codes to their default messages
var errorMessages = map[ErrorCode]string{
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	Timeout:             "Operation timed out",
	ServiceUnavailable:  "Service unavailable",

	CacheError: "Cache operation failed",

	ValidationFailed:   "Validation failed",
	RequiredFieldEmpty: "Required field is empty",

	RunNotFound:          "Run not found",
	RunInProgress:        "A run is already in progress for this handle",
	RunCanceled:          "Run was canceled",
	RunTimedOut:          "Run timed out before all test cases finished",
	LanguageNotSupported: "Language is not supported",
	NoTestCases:          "At least one test case is required",
	EmptySourceCode:      "Source code must not be blank",

	JudgeUnavailable: "Judge engine is unreachable",
	JudgeBadResponse: "Judge engine returned an unexpected response",

	GradingUnavailable:    "Grading backend is unreachable",
	GradingRejected:       "Grading backend rejected the submission",
	SubmissionNotFound:    "Submission not found",
	MissingSubjectContext: "Student or contest context is required",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound, c == RunNotFound, c == SubmissionNotFound:
		return 404
	case c == RunInProgress:
		return 409
	case c == Timeout, c == RunTimedOut:
		return 504
	case c == ServiceUnavailable, c == JudgeUnavailable, c == GradingUnavailable:
		return 503
	case c == GradingRejected:
		return 422
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams, c == LanguageNotSupported, c == NoTestCases,
		c == EmptySourceCode, c == MissingSubjectContext:
		return 400
	default:
		return 500
	}
}
