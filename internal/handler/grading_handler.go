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

// GradingHandler handles manual grading endpoints.
type GradingHandler struct {
	manualGradeService *service.ManualGradeService
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(manualGradeService *service.ManualGradeService) *GradingHandler {
	return &GradingHandler{manualGradeService: manualGradeService}
}

// GradeQuestion godoc
// PUT /api/v1/submissions/:submissionId/questions/:questionId/grade
// Records a manual grade and recomputes the submission score. Idempotent:
// re-applying the same grade leaves the score unchanged.
func (h *GradingHandler) GradeQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	submissionID, err := uuid.Parse(c.Param("submissionId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	questionID, err := uuid.Parse(c.Param("questionId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.GradeQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.manualGradeService.GradeQuestion(
		c.Request.Context(), submissionID, questionID, claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"grade": result})
}

// ListGrades godoc
// GET /api/v1/submissions/:submissionId/grades
func (h *GradingHandler) ListGrades(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("submissionId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	grades, err := h.manualGradeService.ListBySubmission(c.Request.Context(), submissionID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"grades": grades})
}
