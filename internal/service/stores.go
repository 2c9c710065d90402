package service

import (
	"context"
	"encoding/json"

	"github.com/derslik/derslik-backend/internal/model"
	"github.com/derslik/derslik-backend/internal/repository"
	"github.com/google/uuid"
)

// The services depend on narrow store interfaces rather than the concrete
// repositories so grading semantics can be tested against in-memory fakes.
// The repository types satisfy these.

type examStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
}

// examAdminStore extends examStore with the mutations the exam CRUD needs.
type examAdminStore interface {
	examStore
	Create(ctx context.Context, e *model.Exam) error
	Update(ctx context.Context, e *model.Exam) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCourse(ctx context.Context, courseID int) ([]model.Exam, error)
}

type questionStore interface {
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
}

type questionAdminStore interface {
	questionStore
	Add(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type submissionStore interface {
	Create(ctx context.Context, s *model.ExamSubmission) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSubmission, error)
	CountByExamAndUser(ctx context.Context, examID uuid.UUID, userID int) (int, error)
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamSubmission, error)
	ListByUser(ctx context.Context, userID int) ([]model.ExamSubmission, error)
}

type manualGradeStore interface {
	GradeAndRecompute(ctx context.Context, g *model.ManualGrade, recompute repository.RecomputeFunc) (float64, error)
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]model.ManualGrade, error)
}

type courseStore interface {
	GetByID(ctx context.Context, id int) (*model.Course, error)
	IsEnrolled(ctx context.Context, courseID, studentID int) (bool, error)
	ListEnrolledStudents(ctx context.Context, courseID int) ([]model.User, error)
}

// courseAdminStore extends courseStore with the mutations the course CRUD
// and enrollment need.
type courseAdminStore interface {
	courseStore
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
	Delete(ctx context.Context, id int) error
	ListByOwner(ctx context.Context, ownerID int) ([]model.Course, error)
	Enroll(ctx context.Context, courseID, studentID int) error
}

type userStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
}

type gradebookStore interface {
	CreateCategory(ctx context.Context, c *model.GradeCategory) error
	GetCategory(ctx context.Context, id int) (*model.GradeCategory, error)
	GetCategoryByName(ctx context.Context, courseID int, name string) (*model.GradeCategory, error)
	UpdateCategory(ctx context.Context, c *model.GradeCategory) error
	DeleteCategory(ctx context.Context, id int) error
	ListCategories(ctx context.Context, courseID int) ([]model.GradeCategory, error)

	CreateItem(ctx context.Context, it *model.GradeItem) error
	GetItem(ctx context.Context, id int) (*model.GradeItem, error)
	GetItemByName(ctx context.Context, courseID int, name string) (*model.GradeItem, error)
	DeleteItem(ctx context.Context, id int) error
	ListItems(ctx context.Context, courseID int) ([]model.GradeItem, error)

	UpsertGrade(ctx context.Context, g *model.StudentGrade) error
	ListGradesByItem(ctx context.Context, itemID int) ([]model.StudentGrade, error)
	ListGradesForStudent(ctx context.Context, courseID, studentID int) ([]model.StudentGrade, error)
	ListGradesByCourse(ctx context.Context, courseID int) ([]model.StudentGrade, error)
}

// Auditor records grading actions as a best-effort side effect. Recording
// must never fail the grading operation itself.
type Auditor interface {
	Record(ctx context.Context, ev AuditEvent)
}

// ResultsPublisher pushes live submission results to whoever is watching.
// Publishing is best-effort.
type ResultsPublisher interface {
	PublishResult(ctx context.Context, examID string, payload any)
}

// AuditEvent is one grading action for the audit trail.
type AuditEvent struct {
	ActorID  int             `json:"actor_id"`
	Action   string          `json:"action"`
	Entity   string          `json:"entity"`
	EntityID string          `json:"entity_id"`
	Detail   json.RawMessage `json:"detail,omitempty"`
}
