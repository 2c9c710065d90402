package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/derslik/derslik-backend/internal/grading"
	"github.com/derslik/derslik-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ManualGradeService scores open-ended answers and keeps the submission's
// stored score consistent with the full recompute rule: auto points are
// re-derived from the stored answers, manual points come from the grade
// records, nothing is incrementally patched.
type ManualGradeService struct {
	exams       examStore
	questions   questionStore
	submissions submissionStore
	grades      manualGradeStore
	audit       Auditor
	log         zerolog.Logger
}

func NewManualGradeService(
	exams examStore,
	questions questionStore,
	submissions submissionStore,
	grades manualGradeStore,
	audit Auditor,
	log zerolog.Logger,
) *ManualGradeService {
	return &ManualGradeService{
		exams:       exams,
		questions:   questions,
		submissions: submissions,
		grades:      grades,
		audit:       audit,
		log:         log.With().Str("component", "manual_grade_service").Logger(),
	}
}

// GradeQuestion records a manual grade for one answer of a submission and
// recomputes the submission score from scratch inside a single transaction.
// Re-grading the same question overwrites the previous grade; applying the
// same grade twice leaves the score unchanged.
func (s *ManualGradeService) GradeQuestion(
	ctx context.Context,
	submissionID uuid.UUID,
	questionID uuid.UUID,
	graderID int,
	req *model.GradeQuestionRequest,
) (*model.GradeQuestionResult, error) {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}

	questions, err := s.questions.ListByExam(ctx, sub.ExamID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	var target *model.Question
	for i := range questions {
		if questions[i].ID == questionID {
			target = &questions[i]
			break
		}
	}
	if target == nil {
		return nil, ErrQuestionNotFound
	}
	if grading.AutoGradable(target.Type) {
		return nil, ErrQuestionAutoGraded
	}

	perQuestion := grading.PointsPerQuestion(len(questions))
	if req.Points == nil || *req.Points < 0 || *req.Points > perQuestion {
		points := 0.0
		if req.Points != nil {
			points = *req.Points
		}
		return nil, &InvalidPointsError{Points: points, MaxPoints: perQuestion}
	}

	grade := &model.ManualGrade{
		SubmissionID: submissionID,
		QuestionID:   questionID,
		GradedBy:     graderID,
		Points:       *req.Points,
		Feedback:     req.Feedback,
	}

	newScore, err := s.grades.GradeAndRecompute(ctx, grade, func(answers map[string]json.RawMessage, manual []model.ManualGrade) float64 {
		return recomputeScore(questions, answers, manual)
	})
	if err != nil {
		return nil, fmt.Errorf("grade and recompute: %w", err)
	}

	if s.audit != nil {
		detail, _ := json.Marshal(map[string]any{
			"question_id": questionID.String(),
			"points":      *req.Points,
			"new_score":   newScore,
		})
		s.audit.Record(ctx, AuditEvent{
			ActorID:  graderID,
			Action:   "submission.grade",
			Entity:   "submission",
			EntityID: submissionID.String(),
			Detail:   detail,
		})
	}

	return &model.GradeQuestionResult{
		SubmissionID: submissionID,
		QuestionID:   questionID,
		Points:       *req.Points,
		MaxPoints:    perQuestion,
		Feedback:     req.Feedback,
		NewScore:     newScore,
	}, nil
}

// ListBySubmission returns the manual grades recorded for a submission.
func (s *ManualGradeService) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]model.ManualGrade, error) {
	return s.grades.ListBySubmission(ctx, submissionID)
}

// recomputeScore derives a submission score from first principles: every
// auto-gradable question is re-graded against the stored answers, every
// manually graded question contributes its recorded points. Orphan grade
// rows (question deleted since grading) are ignored.
func recomputeScore(questions []model.Question, answers map[string]json.RawMessage, manual []model.ManualGrade) float64 {
	perQuestion := grading.PointsPerQuestion(len(questions))

	manualByQuestion := make(map[uuid.UUID]model.ManualGrade, len(manual))
	for _, g := range manual {
		manualByQuestion[g.QuestionID] = g
	}

	var score float64
	for _, q := range questions {
		if grading.AutoGradable(q.Type) {
			if grading.Grade(q.Type, q.Answer, answers[q.ID.String()]).Correct {
				score += perQuestion
			}
			continue
		}
		if g, ok := manualByQuestion[q.ID]; ok {
			score += g.Points
		}
	}
	return score
}
