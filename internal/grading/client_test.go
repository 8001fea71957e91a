package grading

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appErr "runoj/pkg/errors"
)

func validInput() SubmitInput {
	return SubmitInput{
		Scene:      ScenePractice,
		SubjectID:  "student-7",
		ProblemID:  "two-sum",
		LanguageID: 71,
		Code:       "print(1)",
	}
}

func TestSubmitPractice(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/practice/submissions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["subject_id"] != "student-7" {
			t.Errorf("subject_id = %v, want student-7", req["subject_id"])
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"_id": "sub-123", "status": "pending", "total_tests": 10,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	record, err := client.Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if record.ID != "sub-123" {
		t.Errorf("record id = %q, want sub-123", record.ID)
	}
	if record.TotalTests != 10 {
		t.Errorf("total tests = %d, want 10", record.TotalTests)
	}
}

func TestSubmitContestRoute(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contest/submissions" {
			t.Errorf("path = %s, want /contest/submissions", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"_id": "sub-456"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	in := validInput()
	in.Scene = SceneContest
	in.SubjectID = "contest-42"
	if _, err := client.Submit(context.Background(), in); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*SubmitInput)
		wantCode appErr.ErrorCode
	}{
		{"bad scene", func(in *SubmitInput) { in.Scene = "playground" }, appErr.ValidationFailed},
		{"missing subject", func(in *SubmitInput) { in.SubjectID = " " }, appErr.MissingSubjectContext},
		{"missing problem", func(in *SubmitInput) { in.ProblemID = "" }, appErr.ValidationFailed},
		{"empty code", func(in *SubmitInput) { in.Code = "\n" }, appErr.EmptySourceCode},
	}
	client := NewClient("http://unused", 0)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := validInput()
			tt.mutate(&in)
			_, err := client.Submit(context.Background(), in)
			if appErr.GetCode(err) != tt.wantCode {
				t.Fatalf("error code = %d, want %d", appErr.GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestSubmitRejectionKeepsBackendMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "contest has ended"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	_, err := client.Submit(context.Background(), validInput())
	if appErr.GetCode(err) != appErr.GradingRejected {
		t.Fatalf("error code = %d, want %d", appErr.GetCode(err), appErr.GradingRejected)
	}
	if err.Error() != "contest has ended" {
		t.Errorf("error message = %q, want backend message verbatim", err.Error())
	}
}

func TestSubmitBackendDown(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	_, err := client.Submit(context.Background(), validInput())
	if appErr.GetCode(err) != appErr.GradingUnavailable {
		t.Fatalf("error code = %d, want %d", appErr.GetCode(err), appErr.GradingUnavailable)
	}
}

func TestGetSubmission(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/submissions/sub-123" {
			t.Errorf("path = %s, want /submissions/sub-123", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"_id": "sub-123", "status": "accepted", "score": 100.0,
			"passed_tests": 10, "total_tests": 10,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	record, err := client.GetSubmission(context.Background(), "sub-123")
	if err != nil {
		t.Fatalf("GetSubmission() error = %v", err)
	}
	if record.Status != "accepted" || record.Score != 100 {
		t.Errorf("record = %+v, want accepted with score 100", record)
	}
}

func TestGetSubmissionNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	_, err := client.GetSubmission(context.Background(), "missing")
	if appErr.GetCode(err) != appErr.SubmissionNotFound {
		t.Fatalf("error code = %d, want %d", appErr.GetCode(err), appErr.SubmissionNotFound)
	}
}
