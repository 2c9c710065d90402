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

// ExamHandler handles exam and question management endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// examID parses the :examId path param.
func examID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("examId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// CreateExam godoc
// POST /api/v1/courses/:courseId/exams
func (h *ExamHandler) CreateExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	cid, ok := courseID(c)
	if !ok {
		return
	}

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), cid, claims.UserID, claims.Role, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// GetExam godoc
// GET /api/v1/exams/:examId
func (h *ExamHandler) GetExam(c *gin.Context) {
	id, ok := examID(c)
	if !ok {
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// ListExams godoc
// GET /api/v1/courses/:courseId/exams
func (h *ExamHandler) ListExams(c *gin.Context) {
	cid, ok := courseID(c)
	if !ok {
		return
	}

	exams, err := h.examService.ListByCourse(c.Request.Context(), cid)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// UpdateExam godoc
// PATCH /api/v1/exams/:examId
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := examID(c)
	if !ok {
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), id, claims.UserID, claims.Role, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// DeleteExam godoc
// DELETE /api/v1/exams/:examId
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := examID(c)
	if !ok {
		return
	}

	if err := h.examService.Delete(c.Request.Context(), id, claims.UserID, claims.Role); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// AddQuestion godoc
// POST /api/v1/exams/:examId/questions
func (h *ExamHandler) AddQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := examID(c)
	if !ok {
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.examService.AddQuestion(c.Request.Context(), id, claims.UserID, claims.Role, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// ListQuestions godoc
// GET /api/v1/exams/:examId/questions
// Students receive questions without answer keys; teachers the full rows.
func (h *ExamHandler) ListQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := examID(c)
	if !ok {
		return
	}

	questions, err := h.examService.ListQuestions(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}

	if !claims.Role.Privileged() {
		safe := make([]model.QuestionForStudent, 0, len(questions))
		for i := range questions {
			safe = append(safe, questions[i].ForStudent())
		}
		response.Success(c, http.StatusOK, gin.H{"questions": safe})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// DeleteQuestion godoc
// DELETE /api/v1/exams/:examId/questions/:questionId
func (h *ExamHandler) DeleteQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := examID(c)
	if !ok {
		return
	}

	qid, err := uuid.Parse(c.Param("questionId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.DeleteQuestion(c.Request.Context(), id, qid, claims.UserID, claims.Role); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
