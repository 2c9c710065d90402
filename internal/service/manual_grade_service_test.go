package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/derslik/derslik-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type manualGradeFixture struct {
	svc     *ManualGradeService
	exam    *model.Exam
	mc      model.Question
	essay   model.Question
	sub     *model.ExamSubmission
	grades  *fakeManualGradeStore
	audit   *fakeAuditor
	graderN int
}

// newManualGradeFixture builds a two-question exam (one multiple choice, one
// long answer) with one submission that answered the choice correctly. Each
// question is worth 50.
func newManualGradeFixture(t *testing.T) *manualGradeFixture {
	t.Helper()
	exam := &model.Exam{ID: uuid.New(), CourseID: 1, Title: "Final"}
	mc := mcQuestion(exam.ID, "a")
	essay := essayQuestion(exam.ID)

	subs := &fakeSubmissionStore{}
	sub := &model.ExamSubmission{
		ExamID: exam.ID,
		UserID: 7,
		Score:  50,
		Answers: map[string]json.RawMessage{
			mc.ID.String():    json.RawMessage(`"a"`),
			essay.ID.String(): json.RawMessage(`"serbest metin"`),
		},
		AttemptNumber: 1,
	}
	if err := subs.Create(context.Background(), sub); err != nil {
		t.Fatalf("seed submission: %v", err)
	}

	grades := newFakeManualGradeStore(subs)
	audit := &fakeAuditor{}
	svc := NewManualGradeService(
		newFakeExamStore(exam),
		&fakeQuestionStore{questions: map[uuid.UUID][]model.Question{exam.ID: {mc, essay}}},
		subs,
		grades,
		audit,
		zerolog.Nop(),
	)
	return &manualGradeFixture{svc: svc, exam: exam, mc: mc, essay: essay, sub: sub, grades: grades, audit: audit, graderN: 3}
}

func points(v float64) *float64 { return &v }

func TestGradeQuestionRecomputesScore(t *testing.T) {
	fx := newManualGradeFixture(t)

	res, err := fx.svc.GradeQuestion(context.Background(), fx.sub.ID, fx.essay.ID, fx.graderN, &model.GradeQuestionRequest{Points: points(30)})
	if err != nil {
		t.Fatalf("GradeQuestion: %v", err)
	}
	if math.Abs(res.NewScore-80) > 1e-9 {
		t.Errorf("new score=%v, want 80", res.NewScore)
	}
	if res.MaxPoints != 50 {
		t.Errorf("max points=%v, want 50", res.MaxPoints)
	}
	if math.Abs(fx.sub.Score-80) > 1e-9 {
		t.Errorf("stored score=%v, want 80", fx.sub.Score)
	}
	if got := fx.audit.actions(); len(got) != 1 || got[0] != "submission.grade" {
		t.Errorf("audit actions=%v, want [submission.grade]", got)
	}
}

func TestGradeQuestionIsIdempotent(t *testing.T) {
	fx := newManualGradeFixture(t)
	req := &model.GradeQuestionRequest{Points: points(30)}

	first, err := fx.svc.GradeQuestion(context.Background(), fx.sub.ID, fx.essay.ID, fx.graderN, req)
	if err != nil {
		t.Fatalf("first grade: %v", err)
	}
	second, err := fx.svc.GradeQuestion(context.Background(), fx.sub.ID, fx.essay.ID, fx.graderN, req)
	if err != nil {
		t.Fatalf("second grade: %v", err)
	}
	if first.NewScore != second.NewScore {
		t.Fatalf("score drifted on regrade: %v then %v", first.NewScore, second.NewScore)
	}
	if grades, _ := fx.grades.ListBySubmission(context.Background(), fx.sub.ID); len(grades) != 1 {
		t.Fatalf("grade rows=%d, want 1 (overwrite, not duplicate)", len(grades))
	}
}

func TestGradeQuestionOverwritesPreviousGrade(t *testing.T) {
	fx := newManualGradeFixture(t)

	if _, err := fx.svc.GradeQuestion(context.Background(), fx.sub.ID, fx.essay.ID, fx.graderN, &model.GradeQuestionRequest{Points: points(10)}); err != nil {
		t.Fatalf("first grade: %v", err)
	}
	res, err := fx.svc.GradeQuestion(context.Background(), fx.sub.ID, fx.essay.ID, fx.graderN, &model.GradeQuestionRequest{Points: points(50)})
	if err != nil {
		t.Fatalf("regrade: %v", err)
	}
	if math.Abs(res.NewScore-100) > 1e-9 {
		t.Fatalf("new score=%v, want 100", res.NewScore)
	}
}

func TestGradeQuestionPointsBounds(t *testing.T) {
	fx := newManualGradeFixture(t)

	tests := []struct {
		name   string
		points *float64
	}{
		{"nil points", nil},
		{"negative", points(-1)},
		{"above question worth", points(50.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.GradeQuestion(context.Background(), fx.sub.ID, fx.essay.ID, fx.graderN, &model.GradeQuestionRequest{Points: tt.points})
			var invalid *InvalidPointsError
			if !errors.As(err, &invalid) {
				t.Fatalf("err=%v, want InvalidPointsError", err)
			}
			if invalid.MaxPoints != 50 {
				t.Fatalf("max in error=%v, want 50", invalid.MaxPoints)
			}
		})
	}
}

func TestGradeQuestionRejectsAutoGradable(t *testing.T) {
	fx := newManualGradeFixture(t)
	_, err := fx.svc.GradeQuestion(context.Background(), fx.sub.ID, fx.mc.ID, fx.graderN, &model.GradeQuestionRequest{Points: points(10)})
	if !errors.Is(err, ErrQuestionAutoGraded) {
		t.Fatalf("err=%v, want ErrQuestionAutoGraded", err)
	}
}

func TestGradeQuestionUnknownTargets(t *testing.T) {
	fx := newManualGradeFixture(t)

	if _, err := fx.svc.GradeQuestion(context.Background(), fx.sub.ID, uuid.New(), fx.graderN, &model.GradeQuestionRequest{Points: points(10)}); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err=%v, want ErrQuestionNotFound", err)
	}
	if _, err := fx.svc.GradeQuestion(context.Background(), uuid.New(), fx.essay.ID, fx.graderN, &model.GradeQuestionRequest{Points: points(10)}); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("err=%v, want ErrSubmissionNotFound", err)
	}
}

func TestRecomputeScoreIgnoresOrphanGrades(t *testing.T) {
	fx := newManualGradeFixture(t)
	questions := []model.Question{fx.mc, fx.essay}

	manual := []model.ManualGrade{
		{SubmissionID: fx.sub.ID, QuestionID: fx.essay.ID, Points: 40},
		{SubmissionID: fx.sub.ID, QuestionID: uuid.New(), Points: 99}, // question since deleted
	}
	score := recomputeScore(questions, fx.sub.Answers, manual)
	if math.Abs(score-90) > 1e-9 {
		t.Fatalf("score=%v, want 90 (50 auto + 40 manual, orphan ignored)", score)
	}
}
