package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam represents an exam entity. Per-question points are never stored:
// every question is worth 100/questionCount at grading time.
type Exam struct {
	ID            uuid.UUID  `json:"id"`
	CourseID      int        `json:"course_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	MaxAttempts   *int       `json:"max_attempts,omitempty"`   // nil → single attempt
	PassThreshold *float64   `json:"pass_threshold,omitempty"` // percentage; nil → always passes
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	CreatedBy     int        `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AttemptCap returns the effective attempt limit for the exam.
func (e *Exam) AttemptCap() int {
	if e.MaxAttempts == nil || *e.MaxAttempts < 1 {
		return 1
	}
	return *e.MaxAttempts
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title         string     `json:"title" binding:"required,min=3,max=255"`
	Description   string     `json:"description" binding:"omitempty,max=2000"`
	MaxAttempts   *int       `json:"max_attempts" binding:"omitempty,min=1,max=20"`
	PassThreshold *float64   `json:"pass_threshold" binding:"omitempty,min=0,max=100"`
	ScheduledAt   *time.Time `json:"scheduled_at" binding:"omitempty"`
}

// UpdateExamRequest is the payload for updating an existing exam.
type UpdateExamRequest struct {
	Title         string     `json:"title" binding:"omitempty,min=3,max=255"`
	Description   *string    `json:"description" binding:"omitempty,max=2000"`
	MaxAttempts   *int       `json:"max_attempts" binding:"omitempty,min=1,max=20"`
	PassThreshold *float64   `json:"pass_threshold" binding:"omitempty,min=0,max=100"`
	ScheduledAt   *time.Time `json:"scheduled_at" binding:"omitempty"`
}
