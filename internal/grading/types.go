// Package grading is the client for the authoritative grading backend.
// Unlike the interactive judge engine used for "Run", submissions here
// are scored server-side and produce a durable record.
package grading

// Scene selects the submission resource: practice mode submits on
// behalf of a student, contest mode on behalf of a contest entry.
type Scene string

const (
	ScenePractice Scene = "practice"
	SceneContest  Scene = "contest"
)

// SubmitInput carries one submission. SubjectID is the student id in
// practice mode and the contest id in contest mode.
type SubmitInput struct {
	Scene      Scene
	SubjectID  string
	ProblemID  string
	LanguageID int
	Code       string
}

// SubmissionRecord is the backend's durable view of a submission. The
// backend is authoritative for status, score, and pass counts.
type SubmissionRecord struct {
	ID          string  `json:"_id"`
	Status      string  `json:"status"`
	Score       float64 `json:"score"`
	TimeMs      float64 `json:"time_ms"`
	MemoryKB    int     `json:"memory_kb"`
	PassedTests int     `json:"passed_tests"`
	TotalTests  int     `json:"total_tests"`
	CreatedAt   string  `json:"created_at"`
}

type submitRequest struct {
	SubjectID  string `json:"subject_id"`
	ProblemID  string `json:"problem_id"`
	LanguageID int    `json:"language_id"`
	Code       string `json:"code"`
}

type errorEnvelope struct {
	Message string `json:"message"`
}
