package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/derslik/derslik-backend/internal/middleware"
	"github.com/derslik/derslik-backend/internal/model"
	"github.com/derslik/derslik-backend/internal/response"
	"github.com/derslik/derslik-backend/internal/service"
	"github.com/derslik/derslik-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// defaultLeaderboardLimit caps the leaderboard when no limit is given.
const defaultLeaderboardLimit = 10

// GradebookHandler handles gradebook endpoints: categories, items, grades
// and the aggregation views.
type GradebookHandler struct {
	gradebookService *service.GradebookService
}

// NewGradebookHandler creates a new GradebookHandler.
func NewGradebookHandler(gradebookService *service.GradebookService) *GradebookHandler {
	return &GradebookHandler{gradebookService: gradebookService}
}

// ─────────────────────────────────────────────
// Categories and items
// ─────────────────────────────────────────────

// CreateCategory godoc
// POST /api/v1/courses/:courseId/gradebook/categories
func (h *GradebookHandler) CreateCategory(c *gin.Context) {
	cid, ok := courseID(c)
	if !ok {
		return
	}

	var req model.CreateCategoryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cat, err := h.gradebookService.CreateCategory(c.Request.Context(), cid, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"category": cat})
}

// UpdateCategory godoc
// PATCH /api/v1/gradebook/categories/:categoryId
func (h *GradebookHandler) UpdateCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("categoryId"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateCategoryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cat, err := h.gradebookService.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"category": cat})
}

// DeleteCategory godoc
// DELETE /api/v1/gradebook/categories/:categoryId
func (h *GradebookHandler) DeleteCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("categoryId"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.gradebookService.DeleteCategory(c.Request.Context(), id); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ListCategories godoc
// GET /api/v1/courses/:courseId/gradebook/categories
func (h *GradebookHandler) ListCategories(c *gin.Context) {
	cid, ok := courseID(c)
	if !ok {
		return
	}

	categories, err := h.gradebookService.ListCategories(c.Request.Context(), cid)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"categories": categories})
}

// CreateItem godoc
// POST /api/v1/courses/:courseId/gradebook/items
func (h *GradebookHandler) CreateItem(c *gin.Context) {
	cid, ok := courseID(c)
	if !ok {
		return
	}

	var req model.CreateItemRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	item, err := h.gradebookService.CreateItem(c.Request.Context(), cid, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"item": item})
}

// DeleteItem godoc
// DELETE /api/v1/gradebook/items/:itemId
func (h *GradebookHandler) DeleteItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	if err := h.gradebookService.DeleteItem(c.Request.Context(), id); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ListItems godoc
// GET /api/v1/courses/:courseId/gradebook/items
func (h *GradebookHandler) ListItems(c *gin.Context) {
	cid, ok := courseID(c)
	if !ok {
		return
	}

	items, err := h.gradebookService.ListItems(c.Request.Context(), cid)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// ─────────────────────────────────────────────
// Grading
// ─────────────────────────────────────────────

// itemID parses the :itemId path param.
func itemID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("itemId"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// UpsertGrade godoc
// PUT /api/v1/gradebook/items/:itemId/grades
func (h *GradebookHandler) UpsertGrade(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := itemID(c)
	if !ok {
		return
	}

	var req model.UpsertGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grade, err := h.gradebookService.UpsertGrade(c.Request.Context(), id, claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"grade": grade})
}

// BulkGrade godoc
// POST /api/v1/gradebook/items/:itemId/grades/bulk
// Best-effort: failed rows are skipped and reported in the counts.
func (h *GradebookHandler) BulkGrade(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := itemID(c)
	if !ok {
		return
	}

	var req model.BulkGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.gradebookService.BulkGrade(c.Request.Context(), id, claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ─────────────────────────────────────────────
// Aggregation views
// ─────────────────────────────────────────────

// MyGrades godoc
// GET /api/v1/courses/:courseId/gradebook/my-grades
// The authenticated student's own grades and computed standing.
func (h *GradebookHandler) MyGrades(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	cid, ok := courseID(c)
	if !ok {
		return
	}

	view, err := h.gradebookService.MyGrades(c.Request.Context(), cid, claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"gradebook": view})
}

// StudentFinalGrade godoc
// GET /api/v1/courses/:courseId/gradebook/students/:studentId/final
// Teacher/admin view of one student's weighted total.
func (h *GradebookHandler) StudentFinalGrade(c *gin.Context) {
	cid, ok := courseID(c)
	if !ok {
		return
	}

	studentID, err := strconv.Atoi(c.Param("studentId"))
	if err != nil || studentID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	final, err := h.gradebookService.FinalGrade(c.Request.Context(), cid, studentID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"final": final})
}

// ItemStatistics godoc
// GET /api/v1/gradebook/items/:itemId/statistics
func (h *GradebookHandler) ItemStatistics(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	stats, err := h.gradebookService.ItemStatistics(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"statistics": stats})
}

// Leaderboard godoc
// GET /api/v1/courses/:courseId/gradebook/leaderboard?limit=N
func (h *GradebookHandler) Leaderboard(c *gin.Context) {
	cid, ok := courseID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLeaderboardLimit)))
	if err != nil || limit < 1 {
		limit = defaultLeaderboardLimit
	}

	entries, err := h.gradebookService.Leaderboard(c.Request.Context(), cid, limit)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"leaderboard": entries})
}

// ExportCSV godoc
// GET /api/v1/courses/:courseId/gradebook/export
// Streams the full gradebook as a CSV attachment.
func (h *GradebookHandler) ExportCSV(c *gin.Context) {
	cid, ok := courseID(c)
	if !ok {
		return
	}

	data, filename, err := h.gradebookService.ExportCSV(c.Request.Context(), cid)
	if err != nil {
		failFromService(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// SyncExam godoc
// POST /api/v1/gradebook/sync-exam/:examId
// Copies exam scores into the gradebook. Idempotent; re-running refreshes.
func (h *GradebookHandler) SyncExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := examID(c)
	if !ok {
		return
	}

	result, err := h.gradebookService.SyncExamToGradebook(c.Request.Context(), id, claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}
