package handler

import (
	"net/http"

	"github.com/derslik/derslik-backend/internal/middleware"
	"github.com/derslik/derslik-backend/internal/model"
	"github.com/derslik/derslik-backend/internal/response"
	"github.com/derslik/derslik-backend/internal/service"
	"github.com/derslik/derslik-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// headerSEBConfigKeyHash is the config-key hash header the Safe Exam Browser
// attaches to every request.
const headerSEBConfigKeyHash = "X-SafeExamBrowser-ConfigKeyHash"

// SubmissionHandler handles exam submission endpoints.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// sebEvidence extracts the integrity signals from the request.
func sebEvidence(c *gin.Context) service.SEBEvidence {
	return service.SEBEvidence{
		ClientID:      c.GetHeader("User-Agent"),
		ConfigKeyHash: c.GetHeader(headerSEBConfigKeyHash),
	}
}

// SubmitExam godoc
// POST /api/v1/exams/:examId/submissions
// Grades and stores one attempt for the authenticated student. Student
// requests must originate from the Safe Exam Browser.
func (h *SubmissionHandler) SubmitExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := examID(c)
	if !ok {
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.submissionService.Submit(
		c.Request.Context(), id, claims.UserID, claims.Role, sebEvidence(c), req.Answers)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"result": result})
}

// ImportOMR godoc
// POST /api/v1/exams/:examId/omr
// Imports a scanned answer sheet on a student's behalf. Teacher/admin only;
// the integrity gate does not apply to privileged actors.
func (h *SubmissionHandler) ImportOMR(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := examID(c)
	if !ok {
		return
	}

	var req model.OMRImportRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.submissionService.Submit(
		c.Request.Context(), id, req.StudentID, claims.Role, service.SEBEvidence{}, req.Answers)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"result": result})
}

// GetSubmission godoc
// GET /api/v1/submissions/:submissionId
// Students may only read their own submissions.
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("submissionId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	sub, err := h.submissionService.GetSubmission(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}

	if !claims.Role.Privileged() && sub.UserID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// ListMySubmissions godoc
// GET /api/v1/submissions
// Lists the authenticated user's own submissions, newest first.
func (h *SubmissionHandler) ListMySubmissions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	subs, err := h.submissionService.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submissions": subs})
}

// ListSubmissions godoc
// GET /api/v1/exams/:examId/submissions
// Teacher/admin only. Ordered oldest first.
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}

	subs, err := h.submissionService.ListByExam(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submissions": subs})
}
