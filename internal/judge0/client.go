package judge0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	appErr "runoj/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// Client wraps the judge engine HTTP API. Stateless between calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a judge engine client. baseURL must not have a
// trailing slash.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SubmitBatch submits one item per test case and returns one opaque
// token per item, same order. Network or 5xx failures surface as
// JudgeUnavailable and leave no state behind: no tokens were issued.
func (c *Client) SubmitBatch(ctx context.Context, items []SubmissionItem) ([]string, error) {
	if len(items) == 0 {
		return nil, appErr.ValidationError("submissions", "required")
	}

	payload, err := json.Marshal(batchSubmitRequest{Submissions: items})
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.InternalServerError, "encode batch submit failed")
	}

	endpoint := c.baseURL + "/submissions/batch"
	body, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var envelopes []tokenEnvelope
	if err := json.Unmarshal(body, &envelopes); err != nil {
		return nil, appErr.Wrapf(err, appErr.JudgeBadResponse, "decode batch submit response failed")
	}
	if len(envelopes) != len(items) {
		return nil, appErr.Newf(appErr.JudgeBadResponse,
			"submitted %d items but received %d tokens", len(items), len(envelopes))
	}

	tokens := make([]string, len(envelopes))
	for i, env := range envelopes {
		if env.Token == "" {
			return nil, appErr.Newf(appErr.JudgeBadResponse, "empty token at position %d", i)
		}
		tokens[i] = env.Token
	}
	return tokens, nil
}

// PollBatch fetches current results for the given tokens. The response
// is validated to contain exactly one result per requested token; the
// caller re-correlates by token, so response order does not matter.
func (c *Client) PollBatch(ctx context.Context, tokens []string) ([]SubmissionResult, error) {
	if len(tokens) == 0 {
		return nil, appErr.ValidationError("tokens", "required")
	}

	endpoint := c.baseURL + "/submissions/batch?tokens=" + url.QueryEscape(strings.Join(tokens, ","))
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp batchPollResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, appErr.Wrapf(err, appErr.JudgeBadResponse, "decode batch poll response failed")
	}
	if len(resp.Submissions) != len(tokens) {
		return nil, appErr.Newf(appErr.JudgeBadResponse,
			"polled %d tokens but received %d results", len(tokens), len(resp.Submissions))
	}
	return resp.Submissions, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if len(payload) > 0 {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.InternalServerError, "build request failed")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, appErr.TransportError(err, appErr.JudgeUnavailable, endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErr.TransportError(err, appErr.JudgeUnavailable, endpoint)
	}

	if resp.StatusCode >= 500 {
		return nil, appErr.TransportError(
			fmt.Errorf("judge engine returned %d", resp.StatusCode),
			appErr.JudgeUnavailable, endpoint)
	}
	if resp.StatusCode >= 300 {
		return nil, appErr.Newf(appErr.JudgeBadResponse,
			"judge engine returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
