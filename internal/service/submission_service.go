package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/derslik/derslik-backend/internal/grading"
	"github.com/derslik/derslik-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// sebClientPatterns are the client identity markers accepted as Safe Exam
// Browser evidence. The declared identity string must contain one of them.
var sebClientPatterns = []string{
	"SEB/",
	"SafeExamBrowser",
	"SEB_Win",
	"SEB_OSX",
	"SEB_iOS",
}

// SEBEvidence carries the request-level integrity signals the exam gate
// inspects: the declared client identity string and the SEB config-key hash
// header. The hash is checked for presence only, not validated
// cryptographically; the gate keeps clients honest, it is not an
// authentication boundary.
type SEBEvidence struct {
	ClientID      string
	ConfigKeyHash string
}

// satisfiesGate reports whether the evidence passes the integrity gate.
func (e SEBEvidence) satisfiesGate() bool {
	if e.ConfigKeyHash == "" {
		return false
	}
	for _, p := range sebClientPatterns {
		if strings.Contains(e.ClientID, p) {
			return true
		}
	}
	return false
}

// SubmissionService orchestrates exam submission: integrity preconditions,
// grading every question through the answer grader, and persisting the
// attempt.
type SubmissionService struct {
	exams       examStore
	questions   questionStore
	submissions submissionStore
	audit       Auditor
	monitor     ResultsPublisher
	log         zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService. audit and monitor
// may be nil; both are best-effort side channels.
func NewSubmissionService(
	exams examStore,
	questions questionStore,
	submissions submissionStore,
	audit Auditor,
	monitor ResultsPublisher,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		exams:       exams,
		questions:   questions,
		submissions: submissions,
		audit:       audit,
		monitor:     monitor,
		log:         log.With().Str("component", "submission_service").Logger(),
	}
}

// Submit grades one exam attempt for studentID. Preconditions are checked
// in order and each is a hard fail with no partial side effects: the exam
// must exist; a student actor must pass the SEB integrity gate; the attempt
// cap must not be exhausted. role is the ACTOR's role: a privileged actor
// submitting on a student's behalf (paper answer sheets) bypasses the gate.
// Every question is worth 100/questionCount points; types the grader cannot
// score are reported as pending manual points, not as an earned score.
func (s *SubmissionService) Submit(
	ctx context.Context,
	examID uuid.UUID,
	studentID int,
	role model.Role,
	evidence SEBEvidence,
	answers map[string]json.RawMessage,
) (*model.SubmitResult, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	// The integrity gate composes with authorization, it never replaces
	// it: privileged roles (teacher grading on paper, the OMR pipeline)
	// bypass the gate, students never do.
	if !role.Privileged() && !evidence.satisfiesGate() {
		return nil, ErrSEBRequired
	}

	prior, err := s.submissions.CountByExamAndUser(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	if prior >= exam.AttemptCap() {
		return nil, ErrMaxAttemptsReached
	}

	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	perQuestion := grading.PointsPerQuestion(len(questions))

	var (
		autoScore    float64
		autoTotal    float64
		manualPoints float64
		details      = make([]model.QuestionVerdict, 0, len(questions))
	)

	for _, q := range questions {
		verdict := grading.Grade(q.Type, q.Answer, answers[q.ID.String()])
		detail := model.QuestionVerdict{
			QuestionID: q.ID,
			MaxPoints:  perQuestion,
			Manual:     verdict.Manual,
		}

		if verdict.Manual {
			// Maximum pending points, not an earned score.
			manualPoints += perQuestion
		} else {
			autoTotal += perQuestion
			correct := verdict.Correct
			detail.Correct = &correct
			if correct {
				autoScore += perQuestion
				detail.Points = perQuestion
			}
		}
		details = append(details, detail)
	}

	sub := &model.ExamSubmission{
		ExamID:        examID,
		UserID:        studentID,
		Score:         autoScore,
		Answers:       answers,
		AttemptNumber: prior + 1,
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	passed := exam.PassThreshold == nil || autoScore >= *exam.PassThreshold

	result := &model.SubmitResult{
		SubmissionID:        sub.ID,
		Passed:              passed,
		Score:               autoScore,
		Total:               100,
		AutoGradedScore:     autoScore,
		AutoGradedTotal:     autoTotal,
		NeedsManualGrading:  manualPoints > 0,
		ManualGradingPoints: manualPoints,
		AttemptNumber:       sub.AttemptNumber,
		Details:             details,
	}

	if s.audit != nil {
		detail, _ := json.Marshal(map[string]any{
			"score":   autoScore,
			"attempt": sub.AttemptNumber,
		})
		s.audit.Record(ctx, AuditEvent{
			ActorID:  studentID,
			Action:   "exam.submit",
			Entity:   "submission",
			EntityID: sub.ID.String(),
			Detail:   detail,
		})
	}
	if s.monitor != nil {
		s.monitor.PublishResult(ctx, examID.String(), map[string]any{
			"type":         "submission",
			"exam_id":      examID.String(),
			"user_id":      studentID,
			"score":        autoScore,
			"attempt":      sub.AttemptNumber,
			"needs_manual": manualPoints > 0,
			"submitted_at": sub.SubmittedAt,
		})
	}

	return result, nil
}

// GetSubmission retrieves a single submission.
func (s *SubmissionService) GetSubmission(ctx context.Context, id uuid.UUID) (*model.ExamSubmission, error) {
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// ListByExam retrieves all submissions of an exam, oldest first.
func (s *SubmissionService) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamSubmission, error) {
	return s.submissions.ListByExam(ctx, examID)
}

// ListByUser retrieves one user's submissions across all exams, newest first.
func (s *SubmissionService) ListByUser(ctx context.Context, userID int) ([]model.ExamSubmission, error) {
	return s.submissions.ListByUser(ctx, userID)
}
