package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExamSubmission is one graded attempt of a student on an exam. The row is
// append-only except for Score, which manual grading re-derives.
type ExamSubmission struct {
	ID            uuid.UUID                  `json:"id"`
	ExamID        uuid.UUID                  `json:"exam_id"`
	UserID        int                        `json:"user_id"`
	Score         float64                    `json:"score"`
	Answers       map[string]json.RawMessage `json:"answers"`
	AttemptNumber int                        `json:"attempt_number"`
	SubmittedAt   time.Time                  `json:"submitted_at"`
}

// SubmitExamRequest is the payload for submitting exam answers, keyed by
// question ID.
type SubmitExamRequest struct {
	Answers map[string]json.RawMessage `json:"answers" binding:"required"`
}

// OMRImportRequest is the payload for importing a scanned answer sheet on a
// student's behalf. Produced by the optical mark recognition pipeline.
type OMRImportRequest struct {
	StudentID int                        `json:"student_id" binding:"required,min=1"`
	Answers   map[string]json.RawMessage `json:"answers" binding:"required"`
}

// QuestionVerdict reports the grading outcome for a single question within
// a submission. Correct is nil for questions awaiting manual grading.
type QuestionVerdict struct {
	QuestionID uuid.UUID `json:"question_id"`
	Correct    *bool     `json:"correct,omitempty"`
	Points     float64   `json:"points"`
	MaxPoints  float64   `json:"max_points"`
	Manual     bool      `json:"manual"`
}

// SubmitResult is the outcome of submitting an exam.
type SubmitResult struct {
	SubmissionID        uuid.UUID         `json:"submission_id"`
	Passed              bool              `json:"passed"`
	Score               float64           `json:"score"`
	Total               float64           `json:"total"`
	AutoGradedScore     float64           `json:"auto_graded_score"`
	AutoGradedTotal     float64           `json:"auto_graded_total"`
	NeedsManualGrading  bool              `json:"needs_manual_grading"`
	ManualGradingPoints float64           `json:"manual_grading_points"`
	AttemptNumber       int               `json:"attempt_number"`
	Details             []QuestionVerdict `json:"details"`
}
