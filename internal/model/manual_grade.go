package model

import (
	"time"

	"github.com/google/uuid"
)

// ManualGrade is a human-entered grade for one non-auto-gradable question of
// a submission. Unique per (submission, question); upserted, never duplicated.
type ManualGrade struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	QuestionID   uuid.UUID `json:"question_id"`
	Points       float64   `json:"points"`
	Feedback     *string   `json:"feedback,omitempty"`
	GradedBy     int       `json:"graded_by"`
	GradedAt     time.Time `json:"graded_at"`
}

// GradeQuestionRequest is the payload for manually grading one question.
type GradeQuestionRequest struct {
	Points   *float64 `json:"points" binding:"required,min=0"`
	Feedback *string  `json:"feedback" binding:"omitempty,max=2000"`
}

// GradeQuestionResult is the outcome of a manual grading action.
type GradeQuestionResult struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	QuestionID   uuid.UUID `json:"question_id"`
	Points       float64   `json:"points"`
	MaxPoints    float64   `json:"max_points"`
	Feedback     *string   `json:"feedback,omitempty"`
	NewScore     float64   `json:"new_score"`
}
