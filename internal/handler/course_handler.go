package handler

import (
	"net/http"
	"strconv"

	"github.com/derslik/derslik-backend/internal/middleware"
	"github.com/derslik/derslik-backend/internal/model"
	"github.com/derslik/derslik-backend/internal/response"
	"github.com/derslik/derslik-backend/internal/service"
	"github.com/derslik/derslik-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// CourseHandler handles course and enrollment endpoints.
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// courseID parses the :courseId path param.
func courseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("courseId"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// CreateCourse godoc
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// GetCourse godoc
// GET /api/v1/courses/:courseId
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		return
	}

	course, err := h.courseService.Get(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// ListCourses godoc
// GET /api/v1/courses
// Teachers see their own courses; admins see all.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	courses, err := h.courseService.List(c.Request.Context(), claims.UserID, claims.Role)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// UpdateCourse godoc
// PATCH /api/v1/courses/:courseId
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := courseID(c)
	if !ok {
		return
	}

	var req model.UpdateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, claims.UserID, claims.Role, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// DeleteCourse godoc
// DELETE /api/v1/courses/:courseId
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := courseID(c)
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id, claims.UserID, claims.Role); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// EnrollStudent godoc
// POST /api/v1/courses/:courseId/enrollments
func (h *CourseHandler) EnrollStudent(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := courseID(c)
	if !ok {
		return
	}

	var req model.EnrollRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.courseService.Enroll(c.Request.Context(), id, claims.UserID, claims.Role, &req); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{})
}

// ListStudents godoc
// GET /api/v1/courses/:courseId/students
func (h *CourseHandler) ListStudents(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		return
	}

	students, err := h.courseService.ListStudents(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}
