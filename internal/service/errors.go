package service

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the grading services. Handlers map these onto
// API error codes with errors.Is / errors.As.
var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrCategoryNotFound   = errors.New("grade category not found")
	ErrItemNotFound       = errors.New("grade item not found")
	ErrForbidden          = errors.New("actor does not own this resource")
	ErrNotEnrolled        = errors.New("student is not enrolled in this course")
	ErrSEBRequired        = errors.New("submission requires the safe exam browser")
	ErrMaxAttemptsReached = errors.New("maximum attempts reached for this exam")
	ErrNoQuestions        = errors.New("exam has no questions")
	ErrQuestionAutoGraded = errors.New("question is auto-gradable and cannot be graded manually")
)

// InvalidPointsError reports a manual grade outside [0, maxPoints]. It
// carries the offered and maximum values so callers can remediate.
type InvalidPointsError struct {
	Points    float64
	MaxPoints float64
}

func (e *InvalidPointsError) Error() string {
	return fmt.Sprintf("invalid points %.2f: must be between 0 and %.2f", e.Points, e.MaxPoints)
}
