package controller

import (
	"strings"

	"github.com/gin-gonic/gin"

	"runoj/internal/run"
	"runoj/internal/run/model"
	"runoj/internal/run/service"
	"runoj/pkg/utils/response"
)

// RunController handles run HTTP endpoints.
type RunController struct {
	runService *service.RunService
}

// NewRunController creates a new RunController.
func NewRunController(runService *service.RunService) *RunController {
	return &RunController{runService: runService}
}

// Create starts a run against the judge engine.
func (h *RunController) Create(c *gin.Context) {
	var req CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	handle := strings.TrimSpace(c.GetHeader("X-Run-Handle"))
	if handle == "" {
		handle = c.ClientIP()
	}

	testCases := make([]model.TestCase, len(req.TestCases))
	for i, tc := range req.TestCases {
		testCases[i] = model.TestCase{Input: tc.Input, ExpectedOutput: tc.ExpectedOutput}
	}

	snap, err := h.runService.StartRun(c.Request.Context(), handle, run.Request{
		TestCases:  testCases,
		LanguageID: req.LanguageID,
		SourceCode: req.SourceCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, snapshotResponse(snap))
}

// Get returns the latest snapshot for one run.
func (h *RunController) Get(c *gin.Context) {
	runID := c.Param("id")
	if runID == "" {
		response.BadRequest(c, "Invalid run id")
		return
	}
	snap, err := h.runService.GetSnapshot(c.Request.Context(), runID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snapshotResponse(snap))
}

// Cancel cancels a live run.
func (h *RunController) Cancel(c *gin.Context) {
	runID := c.Param("id")
	if runID == "" {
		response.BadRequest(c, "Invalid run id")
		return
	}
	if err := h.runService.CancelRun(c.Request.Context(), runID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, CancelRunResponse{RunID: runID, Canceled: true})
}

// CreateRunRequest defines the run payload.
type CreateRunRequest struct {
	TestCases  []TestCasePayload `json:"test_cases" binding:"required"`
	LanguageID int               `json:"language_id" binding:"required"`
	SourceCode string            `json:"source_code" binding:"required"`
}

// TestCasePayload is one input/expected-output pair.
type TestCasePayload struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// RunSnapshotResponse defines the snapshot payload returned by every
// run endpoint and by the stream.
type RunSnapshotResponse struct {
	RunID     string                 `json:"run_id"`
	State     string                 `json:"state"`
	Results   []model.TestCaseResult `json:"results"`
	Passed    int                    `json:"passed"`
	Finished  int                    `json:"finished"`
	Total     int                    `json:"total"`
	ElapsedMs int64                  `json:"elapsed_ms"`
	Error     string                 `json:"error,omitempty"`
}

// CancelRunResponse defines the cancel response payload.
type CancelRunResponse struct {
	RunID    string `json:"run_id"`
	Canceled bool   `json:"canceled"`
}

func snapshotResponse(snap model.Snapshot) RunSnapshotResponse {
	return RunSnapshotResponse{
		RunID:     snap.RunID,
		State:     string(snap.State),
		Results:   snap.Results,
		Passed:    snap.Passed,
		Finished:  snap.Finished,
		Total:     snap.Total,
		ElapsedMs: snap.ElapsedMs,
		Error:     snap.Error,
	}
}
