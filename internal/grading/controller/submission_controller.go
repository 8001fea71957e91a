package controller

import (
	"context"

	"github.com/gin-gonic/gin"

	"runoj/internal/grading"
	"runoj/pkg/utils/response"
)

// SubmissionGateway is the grading backend surface the controller needs.
type SubmissionGateway interface {
	Submit(ctx context.Context, in grading.SubmitInput) (grading.SubmissionRecord, error)
	GetSubmission(ctx context.Context, id string) (grading.SubmissionRecord, error)
}

// SubmissionController forwards submissions to the grading backend.
type SubmissionController struct {
	gateway SubmissionGateway
}

// NewSubmissionController creates a new SubmissionController.
func NewSubmissionController(gateway SubmissionGateway) *SubmissionController {
	return &SubmissionController{gateway: gateway}
}

// Create submits code for authoritative grading.
func (h *SubmissionController) Create(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	record, err := h.gateway.Submit(c.Request.Context(), grading.SubmitInput{
		Scene:      grading.Scene(req.Scene),
		SubjectID:  req.SubjectID,
		ProblemID:  req.ProblemID,
		LanguageID: req.LanguageID,
		Code:       req.Code,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, record)
}

// Get returns one persisted submission record.
func (h *SubmissionController) Get(c *gin.Context) {
	submissionID := c.Param("id")
	if submissionID == "" {
		response.BadRequest(c, "Invalid submission id")
		return
	}
	record, err := h.gateway.GetSubmission(c.Request.Context(), submissionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, record)
}

// SubmitRequest defines the submission payload. SubjectID is the
// student id in practice mode and the contest id in contest mode.
type SubmitRequest struct {
	Scene      string `json:"scene" binding:"required"`
	SubjectID  string `json:"subject_id" binding:"required"`
	ProblemID  string `json:"problem_id" binding:"required"`
	LanguageID int    `json:"language_id" binding:"required"`
	Code       string `json:"code" binding:"required"`
}
