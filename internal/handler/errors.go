package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/derslik/derslik-backend/internal/response"
	"github.com/derslik/derslik-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// failFromService maps a service error onto the API error envelope. Unknown
// errors collapse to 500 INTERNAL_ERROR; the cause stays in the server log.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrNotEnrolled):
		response.Fail(c, http.StatusForbidden, response.ErrNotEnrolled)
	case errors.Is(err, service.ErrSEBRequired):
		response.Fail(c, http.StatusForbidden, response.ErrSEBRequired)
	case errors.Is(err, service.ErrMaxAttemptsReached):
		response.Fail(c, http.StatusConflict, response.ErrMaxAttemptsReached)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
	case errors.Is(err, service.ErrQuestionAutoGraded):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidPayload)
	default:
		var ipe *service.InvalidPointsError
		if errors.As(err, &ipe) {
			// The caller needs the offered and maximum values to remediate.
			response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrInvalidPoints, map[string]string{
				"points":     strconv.FormatFloat(ipe.Points, 'f', -1, 64),
				"max_points": strconv.FormatFloat(ipe.MaxPoints, 'f', -1, 64),
			})
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
