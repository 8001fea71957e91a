package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appErr "runoj/pkg/errors"
)

const defaultTimeout = 15 * time.Second

// Client talks to the grading backend's submission resources.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a grading backend client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Submit persists one submission and returns the durable record. There
// are no retries: submission is exactly-once from the caller's
// perspective, so the caller must not re-submit while one is pending.
func (c *Client) Submit(ctx context.Context, in SubmitInput) (SubmissionRecord, error) {
	if err := validateInput(in); err != nil {
		return SubmissionRecord{}, err
	}

	payload, err := json.Marshal(submitRequest{
		SubjectID:  in.SubjectID,
		ProblemID:  in.ProblemID,
		LanguageID: in.LanguageID,
		Code:       in.Code,
	})
	if err != nil {
		return SubmissionRecord{}, appErr.Wrapf(err, appErr.InternalServerError, "encode submission failed")
	}

	endpoint := c.baseURL + "/" + string(in.Scene) + "/submissions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return SubmissionRecord{}, appErr.Wrapf(err, appErr.InternalServerError, "build request failed")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SubmissionRecord{}, appErr.TransportError(err, appErr.GradingUnavailable, endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return SubmissionRecord{}, appErr.TransportError(err, appErr.GradingUnavailable, endpoint)
	}

	if resp.StatusCode >= 500 {
		return SubmissionRecord{}, appErr.TransportError(
			fmt.Errorf("grading backend returned %d", resp.StatusCode),
			appErr.GradingUnavailable, endpoint)
	}
	if resp.StatusCode >= 300 {
		// The backend rejected the submission (e.g. contest ended);
		// its message is surfaced verbatim.
		return SubmissionRecord{}, appErr.New(appErr.GradingRejected).
			WithMessage(rejectionMessage(body, resp.StatusCode))
	}

	var record SubmissionRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return SubmissionRecord{}, appErr.Wrapf(err, appErr.GradingUnavailable, "decode submission record failed")
	}
	if record.ID == "" {
		return SubmissionRecord{}, appErr.New(appErr.GradingUnavailable).
			WithMessage("grading backend returned a record without an id")
	}
	return record, nil
}

// GetSubmission fetches a previously persisted record by its durable id.
func (c *Client) GetSubmission(ctx context.Context, id string) (SubmissionRecord, error) {
	if strings.TrimSpace(id) == "" {
		return SubmissionRecord{}, appErr.ValidationError("submission_id", "required")
	}

	endpoint := c.baseURL + "/submissions/" + id
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return SubmissionRecord{}, appErr.Wrapf(err, appErr.InternalServerError, "build request failed")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SubmissionRecord{}, appErr.TransportError(err, appErr.GradingUnavailable, endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return SubmissionRecord{}, appErr.TransportError(err, appErr.GradingUnavailable, endpoint)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return SubmissionRecord{}, appErr.New(appErr.SubmissionNotFound)
	case resp.StatusCode >= 500:
		return SubmissionRecord{}, appErr.TransportError(
			fmt.Errorf("grading backend returned %d", resp.StatusCode),
			appErr.GradingUnavailable, endpoint)
	case resp.StatusCode >= 300:
		return SubmissionRecord{}, appErr.New(appErr.GradingRejected).
			WithMessage(rejectionMessage(body, resp.StatusCode))
	}

	var record SubmissionRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return SubmissionRecord{}, appErr.Wrapf(err, appErr.GradingUnavailable, "decode submission record failed")
	}
	return record, nil
}

func validateInput(in SubmitInput) error {
	if in.Scene != ScenePractice && in.Scene != SceneContest {
		return appErr.ValidationError("scene", "must be practice or contest")
	}
	if strings.TrimSpace(in.SubjectID) == "" {
		return appErr.New(appErr.MissingSubjectContext)
	}
	if strings.TrimSpace(in.ProblemID) == "" {
		return appErr.ValidationError("problem_id", "required")
	}
	if strings.TrimSpace(in.Code) == "" {
		return appErr.New(appErr.EmptySourceCode)
	}
	return nil
}

func rejectionMessage(body []byte, statusCode int) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return fmt.Sprintf("grading backend rejected the submission with status %d", statusCode)
}
