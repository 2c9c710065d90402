package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeMultipleSelect QuestionType = "multiple_select"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeMatching       QuestionType = "matching"
	QuestionTypeOrdering       QuestionType = "ordering"
	QuestionTypeFillBlank      QuestionType = "fill_blank"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
	QuestionTypeLongAnswer     QuestionType = "long_answer"
	QuestionTypeFileUpload     QuestionType = "file_upload"
	QuestionTypeCalculation    QuestionType = "calculation"
	QuestionTypeHotspot        QuestionType = "hotspot"
	QuestionTypeCode           QuestionType = "code"
)

// Question represents a single exam question. Answer holds the canonical
// correct answer in a type-dependent JSON form; it is never sent to students.
type Question struct {
	ID        uuid.UUID       `json:"id"`
	ExamID    uuid.UUID       `json:"exam_id"`
	Prompt    string          `json:"prompt"`
	Type      QuestionType    `json:"type"`
	Options   json.RawMessage `json:"options,omitempty"`
	Answer    json.RawMessage `json:"-"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// QuestionForStudent is a question stripped of its answer key.
type QuestionForStudent struct {
	ID      uuid.UUID       `json:"id"`
	Prompt  string          `json:"prompt"`
	Type    QuestionType    `json:"type"`
	Options json.RawMessage `json:"options,omitempty"`
}

// ForStudent returns the student-safe view of the question.
func (q *Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:      q.ID,
		Prompt:  q.Prompt,
		Type:    q.Type,
		Options: q.Options,
	}
}

// AddQuestionRequest is the payload for adding a question to an exam.
type AddQuestionRequest struct {
	Prompt  string          `json:"prompt" binding:"required,min=1,max=4000"`
	Type    string          `json:"type" binding:"required,oneof=multiple_choice multiple_select true_false matching ordering fill_blank short_answer long_answer file_upload calculation hotspot code"`
	Options json.RawMessage `json:"options" binding:"omitempty"`
	Answer  json.RawMessage `json:"answer" binding:"required"`
	Meta    json.RawMessage `json:"meta" binding:"omitempty"`
}
