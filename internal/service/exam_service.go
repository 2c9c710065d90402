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

// ExamService manages exams and their question banks. Mutations require
// ownership of the parent course; admins own everything.
type ExamService struct {
	exams     examAdminStore
	questions questionAdminStore
	courses   courseStore
	log       zerolog.Logger
}

func NewExamService(exams examAdminStore, questions questionAdminStore, courses courseStore, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams:     exams,
		questions: questions,
		courses:   courses,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// requireCourseOwner verifies the actor may manage the course's exams.
func (s *ExamService) requireCourseOwner(ctx context.Context, courseID, actorID int, role model.Role) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	if role != model.RoleAdmin && course.OwnerID != actorID {
		return nil, ErrForbidden
	}
	return course, nil
}

func (s *ExamService) Create(ctx context.Context, courseID, actorID int, role model.Role, req *model.CreateExamRequest) (*model.Exam, error) {
	if _, err := s.requireCourseOwner(ctx, courseID, actorID, role); err != nil {
		return nil, err
	}

	exam := &model.Exam{
		CourseID:      courseID,
		Title:         req.Title,
		Description:   req.Description,
		MaxAttempts:   req.MaxAttempts,
		PassThreshold: req.PassThreshold,
		ScheduledAt:   req.ScheduledAt,
		CreatedBy:     actorID,
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	return exam, nil
}

func (s *ExamService) Get(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

func (s *ExamService) Update(ctx context.Context, id uuid.UUID, actorID int, role model.Role, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireCourseOwner(ctx, exam.CourseID, actorID, role); err != nil {
		return nil, err
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.MaxAttempts != nil {
		exam.MaxAttempts = req.MaxAttempts
	}
	if req.PassThreshold != nil {
		exam.PassThreshold = req.PassThreshold
	}
	if req.ScheduledAt != nil {
		exam.ScheduledAt = req.ScheduledAt
	}
	if err := s.exams.Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}
	return exam, nil
}

func (s *ExamService) Delete(ctx context.Context, id uuid.UUID, actorID int, role model.Role) error {
	exam, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.requireCourseOwner(ctx, exam.CourseID, actorID, role); err != nil {
		return err
	}
	return s.exams.Delete(ctx, id)
}

func (s *ExamService) ListByCourse(ctx context.Context, courseID int) ([]model.Exam, error) {
	return s.exams.ListByCourse(ctx, courseID)
}

// AddQuestion appends a question to an exam. True/false answer keys are
// normalized onto the canonical token pair before storage so grading never
// has to care about spelling.
func (s *ExamService) AddQuestion(ctx context.Context, examID uuid.UUID, actorID int, role model.Role, req *model.AddQuestionRequest) (*model.Question, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireCourseOwner(ctx, exam.CourseID, actorID, role); err != nil {
		return nil, err
	}

	qType := model.QuestionType(req.Type)
	answer := req.Answer
	if qType == model.QuestionTypeTrueFalse {
		var raw string
		if err := json.Unmarshal(req.Answer, &raw); err != nil {
			return nil, fmt.Errorf("decode true/false answer: %w", err)
		}
		normalized, err := json.Marshal(grading.NormalizeTrueFalse(raw))
		if err != nil {
			return nil, fmt.Errorf("encode true/false answer: %w", err)
		}
		answer = normalized
	}

	q := &model.Question{
		ExamID:  examID,
		Prompt:  req.Prompt,
		Type:    qType,
		Options: req.Options,
		Answer:  answer,
		Meta:    req.Meta,
	}
	if err := s.questions.Add(ctx, q); err != nil {
		return nil, fmt.Errorf("add question: %w", err)
	}
	return q, nil
}

// ListQuestions returns an exam's questions with answer keys. Handlers strip
// the keys with Question.ForStudent before serving students.
func (s *ExamService) ListQuestions(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	if _, err := s.Get(ctx, examID); err != nil {
		return nil, err
	}
	return s.questions.ListByExam(ctx, examID)
}

func (s *ExamService) DeleteQuestion(ctx context.Context, examID, questionID uuid.UUID, actorID int, role model.Role) error {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return err
	}
	if _, err := s.requireCourseOwner(ctx, exam.CourseID, actorID, role); err != nil {
		return err
	}

	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	for i := range questions {
		if questions[i].ID == questionID {
			return s.questions.Delete(ctx, questionID)
		}
	}
	return ErrQuestionNotFound
}
