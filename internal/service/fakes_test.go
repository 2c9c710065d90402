package service

import (
	"context"
	"sort"

	"github.com/derslik/derslik-backend/internal/model"
	"github.com/derslik/derslik-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// In-memory stand-ins for the store interfaces. Missing rows surface as
// pgx.ErrNoRows, mirroring the repositories.

type fakeExamStore struct {
	exams map[uuid.UUID]*model.Exam
}

func newFakeExamStore(exams ...*model.Exam) *fakeExamStore {
	s := &fakeExamStore{exams: make(map[uuid.UUID]*model.Exam)}
	for _, e := range exams {
		s.exams[e.ID] = e
	}
	return s
}

func (s *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := s.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return e, nil
}

type fakeQuestionStore struct {
	questions map[uuid.UUID][]model.Question
}

func (s *fakeQuestionStore) ListByExam(_ context.Context, examID uuid.UUID) ([]model.Question, error) {
	return s.questions[examID], nil
}

type fakeSubmissionStore struct {
	subs []*model.ExamSubmission
}

func (s *fakeSubmissionStore) Create(_ context.Context, sub *model.ExamSubmission) error {
	sub.ID = uuid.New()
	s.subs = append(s.subs, sub)
	return nil
}

func (s *fakeSubmissionStore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamSubmission, error) {
	for _, sub := range s.subs {
		if sub.ID == id {
			return sub, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeSubmissionStore) CountByExamAndUser(_ context.Context, examID uuid.UUID, userID int) (int, error) {
	n := 0
	for _, sub := range s.subs {
		if sub.ExamID == examID && sub.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *fakeSubmissionStore) ListByUser(_ context.Context, userID int) ([]model.ExamSubmission, error) {
	var out []model.ExamSubmission
	for _, sub := range s.subs {
		if sub.UserID == userID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (s *fakeSubmissionStore) ListByExam(_ context.Context, examID uuid.UUID) ([]model.ExamSubmission, error) {
	var out []model.ExamSubmission
	for _, sub := range s.subs {
		if sub.ExamID == examID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

type gradeKey struct {
	submission uuid.UUID
	question   uuid.UUID
}

// fakeManualGradeStore mimics the transactional upsert-then-recompute of the
// real repository against the fake submission store.
type fakeManualGradeStore struct {
	subs   *fakeSubmissionStore
	grades map[gradeKey]model.ManualGrade
}

func newFakeManualGradeStore(subs *fakeSubmissionStore) *fakeManualGradeStore {
	return &fakeManualGradeStore{subs: subs, grades: make(map[gradeKey]model.ManualGrade)}
}

func (s *fakeManualGradeStore) GradeAndRecompute(ctx context.Context, g *model.ManualGrade, recompute repository.RecomputeFunc) (float64, error) {
	sub, err := s.subs.GetByID(ctx, g.SubmissionID)
	if err != nil {
		return 0, err
	}
	s.grades[gradeKey{g.SubmissionID, g.QuestionID}] = *g

	manual, _ := s.ListBySubmission(ctx, g.SubmissionID)
	score := recompute(sub.Answers, manual)
	sub.Score = score
	return score, nil
}

func (s *fakeManualGradeStore) ListBySubmission(_ context.Context, submissionID uuid.UUID) ([]model.ManualGrade, error) {
	var out []model.ManualGrade
	for k, g := range s.grades {
		if k.submission == submissionID {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeCourseStore struct {
	courses  map[int]*model.Course
	enrolled map[int]map[int]bool
	students map[int][]model.User
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{
		courses:  make(map[int]*model.Course),
		enrolled: make(map[int]map[int]bool),
		students: make(map[int][]model.User),
	}
}

func (s *fakeCourseStore) addCourse(c *model.Course) { s.courses[c.ID] = c }

func (s *fakeCourseStore) enroll(courseID int, u model.User) {
	if s.enrolled[courseID] == nil {
		s.enrolled[courseID] = make(map[int]bool)
	}
	s.enrolled[courseID][u.ID] = true
	s.students[courseID] = append(s.students[courseID], u)
}

func (s *fakeCourseStore) GetByID(_ context.Context, id int) (*model.Course, error) {
	c, ok := s.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

func (s *fakeCourseStore) IsEnrolled(_ context.Context, courseID, studentID int) (bool, error) {
	return s.enrolled[courseID][studentID], nil
}

func (s *fakeCourseStore) ListEnrolledStudents(_ context.Context, courseID int) ([]model.User, error) {
	return s.students[courseID], nil
}

type fakeGradebookStore struct {
	nextID     int
	categories map[int]*model.GradeCategory
	items      map[int]*model.GradeItem
	grades     map[int]map[int]*model.StudentGrade // item ID → student ID → grade
}

func newFakeGradebookStore() *fakeGradebookStore {
	return &fakeGradebookStore{
		nextID:     1,
		categories: make(map[int]*model.GradeCategory),
		items:      make(map[int]*model.GradeItem),
		grades:     make(map[int]map[int]*model.StudentGrade),
	}
}

func (s *fakeGradebookStore) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeGradebookStore) CreateCategory(_ context.Context, c *model.GradeCategory) error {
	c.ID = s.id()
	s.categories[c.ID] = c
	return nil
}

func (s *fakeGradebookStore) GetCategory(_ context.Context, id int) (*model.GradeCategory, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

func (s *fakeGradebookStore) GetCategoryByName(_ context.Context, courseID int, name string) (*model.GradeCategory, error) {
	for _, c := range s.categories {
		if c.CourseID == courseID && c.Name == name {
			return c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeGradebookStore) UpdateCategory(_ context.Context, c *model.GradeCategory) error {
	if _, ok := s.categories[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.categories[c.ID] = c
	return nil
}

func (s *fakeGradebookStore) DeleteCategory(_ context.Context, id int) error {
	delete(s.categories, id)
	return nil
}

func (s *fakeGradebookStore) ListCategories(_ context.Context, courseID int) ([]model.GradeCategory, error) {
	var out []model.GradeCategory
	for _, c := range s.categories {
		if c.CourseID == courseID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeGradebookStore) CreateItem(_ context.Context, it *model.GradeItem) error {
	it.ID = s.id()
	s.items[it.ID] = it
	return nil
}

func (s *fakeGradebookStore) GetItem(_ context.Context, id int) (*model.GradeItem, error) {
	it, ok := s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return it, nil
}

func (s *fakeGradebookStore) GetItemByName(_ context.Context, courseID int, name string) (*model.GradeItem, error) {
	for _, it := range s.items {
		if it.CourseID == courseID && it.Name == name {
			return it, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeGradebookStore) DeleteItem(_ context.Context, id int) error {
	delete(s.items, id)
	return nil
}

func (s *fakeGradebookStore) ListItems(_ context.Context, courseID int) ([]model.GradeItem, error) {
	var out []model.GradeItem
	for _, it := range s.items {
		if it.CourseID == courseID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeGradebookStore) UpsertGrade(_ context.Context, g *model.StudentGrade) error {
	if s.grades[g.GradeItemID] == nil {
		s.grades[g.GradeItemID] = make(map[int]*model.StudentGrade)
	}
	if prev, ok := s.grades[g.GradeItemID][g.StudentID]; ok {
		g.ID = prev.ID
	} else {
		g.ID = s.id()
	}
	s.grades[g.GradeItemID][g.StudentID] = g
	return nil
}

func (s *fakeGradebookStore) ListGradesByItem(_ context.Context, itemID int) ([]model.StudentGrade, error) {
	var out []model.StudentGrade
	for _, g := range s.grades[itemID] {
		out = append(out, *g)
	}
	return out, nil
}

func (s *fakeGradebookStore) ListGradesForStudent(_ context.Context, courseID, studentID int) ([]model.StudentGrade, error) {
	var out []model.StudentGrade
	for itemID, byStudent := range s.grades {
		it, ok := s.items[itemID]
		if !ok || it.CourseID != courseID {
			continue
		}
		if g, ok := byStudent[studentID]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (s *fakeGradebookStore) ListGradesByCourse(_ context.Context, courseID int) ([]model.StudentGrade, error) {
	var out []model.StudentGrade
	for itemID, byStudent := range s.grades {
		it, ok := s.items[itemID]
		if !ok || it.CourseID != courseID {
			continue
		}
		for _, g := range byStudent {
			out = append(out, *g)
		}
	}
	return out, nil
}

type fakeAuditor struct {
	events []AuditEvent
}

func (a *fakeAuditor) Record(_ context.Context, ev AuditEvent) {
	a.events = append(a.events, ev)
}

func (a *fakeAuditor) actions() []string {
	out := make([]string, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Action)
	}
	return out
}

type fakePublisher struct {
	published []string
}

func (p *fakePublisher) PublishResult(_ context.Context, examID string, _ any) {
	p.published = append(p.published, examID)
}

// interface conformance
var (
	_ examStore        = (*fakeExamStore)(nil)
	_ questionStore    = (*fakeQuestionStore)(nil)
	_ submissionStore  = (*fakeSubmissionStore)(nil)
	_ manualGradeStore = (*fakeManualGradeStore)(nil)
	_ courseStore      = (*fakeCourseStore)(nil)
	_ gradebookStore   = (*fakeGradebookStore)(nil)
	_ Auditor          = (*fakeAuditor)(nil)
	_ ResultsPublisher = (*fakePublisher)(nil)
)
