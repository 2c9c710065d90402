package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/derslik/derslik-backend/internal/gradebook"
	"github.com/derslik/derslik-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// examCategoryName is the gradebook category exam results are synchronized
// into. Created on first sync with full weight and no dropped items.
const examCategoryName = "Sınavlar"

// LeaderboardEntry is one row of the course leaderboard.
type LeaderboardEntry struct {
	StudentID int     `json:"student_id"`
	Name      string  `json:"name"`
	Percent   float64 `json:"percent"`
	Letter    string  `json:"letter"`
}

// StudentGradebook is a student's view of their own standing in a course.
type StudentGradebook struct {
	Grades []model.StudentGrade `json:"grades"`
	Final  gradebook.FinalGrade `json:"final"`
}

// GradebookService owns the gradebook: categories, items, grade rows, the
// weighted aggregation views and exam synchronization. The aggregation math
// itself lives in the gradebook package; this service feeds it.
type GradebookService struct {
	courses     courseStore
	exams       examStore
	submissions submissionStore
	store       gradebookStore
	audit       Auditor
	log         zerolog.Logger
}

func NewGradebookService(
	courses courseStore,
	exams examStore,
	submissions submissionStore,
	store gradebookStore,
	audit Auditor,
	log zerolog.Logger,
) *GradebookService {
	return &GradebookService{
		courses:     courses,
		exams:       exams,
		submissions: submissions,
		store:       store,
		audit:       audit,
		log:         log.With().Str("component", "gradebook_service").Logger(),
	}
}

// ─────────────────────────────────────────────
// Categories and items
// ─────────────────────────────────────────────

func (s *GradebookService) CreateCategory(ctx context.Context, courseID int, req *model.CreateCategoryRequest) (*model.GradeCategory, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}

	cat := &model.GradeCategory{
		CourseID:   courseID,
		Name:       req.Name,
		Weight:     *req.Weight,
		DropLowest: req.DropLowest,
	}
	if err := s.store.CreateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

func (s *GradebookService) UpdateCategory(ctx context.Context, id int, req *model.UpdateCategoryRequest) (*model.GradeCategory, error) {
	cat, err := s.store.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	if req.Name != "" {
		cat.Name = req.Name
	}
	if req.Weight != nil {
		cat.Weight = *req.Weight
	}
	if req.DropLowest != nil {
		cat.DropLowest = *req.DropLowest
	}
	if err := s.store.UpdateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return cat, nil
}

func (s *GradebookService) DeleteCategory(ctx context.Context, id int) error {
	if _, err := s.store.GetCategory(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("get category: %w", err)
	}
	return s.store.DeleteCategory(ctx, id)
}

func (s *GradebookService) ListCategories(ctx context.Context, courseID int) ([]model.GradeCategory, error) {
	return s.store.ListCategories(ctx, courseID)
}

func (s *GradebookService) CreateItem(ctx context.Context, courseID int, req *model.CreateItemRequest) (*model.GradeItem, error) {
	cat, err := s.store.GetCategory(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	if cat.CourseID != courseID {
		return nil, ErrCategoryNotFound
	}

	item := &model.GradeItem{
		CategoryID: req.CategoryID,
		CourseID:   courseID,
		Name:       req.Name,
		MaxPoints:  *req.MaxPoints,
		DueDate:    req.DueDate,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

func (s *GradebookService) DeleteItem(ctx context.Context, id int) error {
	if _, err := s.store.GetItem(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return fmt.Errorf("get item: %w", err)
	}
	return s.store.DeleteItem(ctx, id)
}

func (s *GradebookService) ListItems(ctx context.Context, courseID int) ([]model.GradeItem, error) {
	return s.store.ListItems(ctx, courseID)
}

// ─────────────────────────────────────────────
// Grading
// ─────────────────────────────────────────────

// UpsertGrade records or overwrites one student's grade on an item. Points
// must be within [0, item.MaxPoints].
func (s *GradebookService) UpsertGrade(ctx context.Context, itemID, graderID int, req *model.UpsertGradeRequest) (*model.StudentGrade, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	if req.Points == nil || *req.Points < 0 || *req.Points > item.MaxPoints {
		points := 0.0
		if req.Points != nil {
			points = *req.Points
		}
		return nil, &InvalidPointsError{Points: points, MaxPoints: item.MaxPoints}
	}

	enrolled, err := s.courses.IsEnrolled(ctx, item.CourseID, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	grade := &model.StudentGrade{
		GradeItemID: itemID,
		StudentID:   req.StudentID,
		Points:      *req.Points,
		Feedback:    req.Feedback,
		GradedBy:    &graderID,
	}
	if err := s.store.UpsertGrade(ctx, grade); err != nil {
		return nil, fmt.Errorf("upsert grade: %w", err)
	}

	if s.audit != nil {
		detail, _ := json.Marshal(map[string]any{
			"student_id": req.StudentID,
			"points":     *req.Points,
		})
		s.audit.Record(ctx, AuditEvent{
			ActorID:  graderID,
			Action:   "gradebook.grade",
			Entity:   "grade_item",
			EntityID: fmt.Sprintf("%d", itemID),
			Detail:   detail,
		})
	}
	return grade, nil
}

// BulkGrade grades many students on one item. Best-effort: each row is its
// own upsert, a failure is logged and counted but does not stop the batch.
func (s *GradebookService) BulkGrade(ctx context.Context, itemID, graderID int, req *model.BulkGradeRequest) (*model.BulkGradeResult, error) {
	result := &model.BulkGradeResult{Attempted: len(req.Grades)}
	for i := range req.Grades {
		if _, err := s.UpsertGrade(ctx, itemID, graderID, &req.Grades[i]); err != nil {
			s.log.Warn().Err(err).
				Int("item_id", itemID).
				Int("student_id", req.Grades[i].StudentID).
				Msg("bulk grade row failed")
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// ─────────────────────────────────────────────
// Aggregation views
// ─────────────────────────────────────────────

// FinalGrade computes the weighted course total for one student.
func (s *GradebookService) FinalGrade(ctx context.Context, courseID, studentID int) (*gradebook.FinalGrade, error) {
	categories, items, err := s.courseStructure(ctx, courseID)
	if err != nil {
		return nil, err
	}
	grades, err := s.store.ListGradesForStudent(ctx, courseID, studentID)
	if err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	final := gradebook.ComputeFinal(categories, items, grades)
	return &final, nil
}

// MyGrades returns a student's own grade rows and their computed standing.
// Only enrolled students have a gradebook view.
func (s *GradebookService) MyGrades(ctx context.Context, courseID, studentID int) (*StudentGradebook, error) {
	enrolled, err := s.courses.IsEnrolled(ctx, courseID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	grades, err := s.store.ListGradesForStudent(ctx, courseID, studentID)
	if err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	final, err := s.FinalGrade(ctx, courseID, studentID)
	if err != nil {
		return nil, err
	}
	return &StudentGradebook{Grades: grades, Final: *final}, nil
}

// ItemStatistics computes descriptive statistics over every recorded grade
// of one item.
func (s *GradebookService) ItemStatistics(ctx context.Context, itemID int) (*gradebook.Stats, error) {
	if _, err := s.store.GetItem(ctx, itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	grades, err := s.store.ListGradesByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	points := make([]float64, 0, len(grades))
	for _, g := range grades {
		points = append(points, g.Points)
	}
	stats := gradebook.Describe(points)
	return &stats, nil
}

// Leaderboard ranks enrolled students by final percent, highest first.
// All grade rows of the course are fetched once and partitioned per student
// rather than queried per student.
func (s *GradebookService) Leaderboard(ctx context.Context, courseID, limit int) ([]LeaderboardEntry, error) {
	categories, items, err := s.courseStructure(ctx, courseID)
	if err != nil {
		return nil, err
	}
	students, err := s.courses.ListEnrolledStudents(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	grades, err := s.store.ListGradesByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}

	byStudent := make(map[int][]model.StudentGrade)
	for _, g := range grades {
		byStudent[g.StudentID] = append(byStudent[g.StudentID], g)
	}

	entries := make([]LeaderboardEntry, 0, len(students))
	for _, st := range students {
		final := gradebook.ComputeFinal(categories, items, byStudent[st.ID])
		entries = append(entries, LeaderboardEntry{
			StudentID: st.ID,
			Name:      st.Name,
			Percent:   final.Percent,
			Letter:    final.Letter,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Percent > entries[j].Percent })

	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// ExportCSV renders the whole course gradebook as a CSV download.
func (s *GradebookService) ExportCSV(ctx context.Context, courseID int) ([]byte, string, error) {
	categories, items, err := s.courseStructure(ctx, courseID)
	if err != nil {
		return nil, "", err
	}
	students, err := s.courses.ListEnrolledStudents(ctx, courseID)
	if err != nil {
		return nil, "", fmt.Errorf("list students: %w", err)
	}
	grades, err := s.store.ListGradesByCourse(ctx, courseID)
	if err != nil {
		return nil, "", fmt.Errorf("list grades: %w", err)
	}

	byStudent := make(map[int][]model.StudentGrade)
	for _, g := range grades {
		byStudent[g.StudentID] = append(byStudent[g.StudentID], g)
	}

	rows := make([]gradebook.StudentRow, 0, len(students))
	for _, st := range students {
		studentGrades := byStudent[st.ID]
		pointsByItem := make(map[int]float64, len(studentGrades))
		for _, g := range studentGrades {
			pointsByItem[g.GradeItemID] = g.Points
		}
		rows = append(rows, gradebook.StudentRow{
			Name:   st.Name,
			Email:  st.Email,
			Grades: pointsByItem,
			Final:  gradebook.ComputeFinal(categories, items, studentGrades),
		})
	}

	data, err := gradebook.RenderCSV(items, rows)
	if err != nil {
		return nil, "", fmt.Errorf("render csv: %w", err)
	}
	filename := fmt.Sprintf("gradebook_course_%d.csv", courseID)
	return data, filename, nil
}

// ─────────────────────────────────────────────
// Exam synchronization
// ─────────────────────────────────────────────

// SyncExamToGradebook copies exam submission scores into the gradebook.
// The exam category and a per-exam item are created on first sync; the sync
// is idempotent and re-running it refreshes the grades. Submissions are
// walked oldest first so a student's latest attempt wins.
func (s *GradebookService) SyncExamToGradebook(ctx context.Context, examID uuid.UUID, actorID int) (*model.SyncExamResult, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	cat, err := s.store.GetCategoryByName(ctx, exam.CourseID, examCategoryName)
	if errors.Is(err, pgx.ErrNoRows) {
		cat = &model.GradeCategory{
			CourseID: exam.CourseID,
			Name:     examCategoryName,
			Weight:   100,
		}
		if err := s.store.CreateCategory(ctx, cat); err != nil {
			return nil, fmt.Errorf("create exam category: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("get exam category: %w", err)
	}

	result := &model.SyncExamResult{}

	item, err := s.store.GetItemByName(ctx, exam.CourseID, exam.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		item = &model.GradeItem{
			CategoryID: cat.ID,
			CourseID:   exam.CourseID,
			Name:       exam.Title,
			MaxPoints:  100,
		}
		if err := s.store.CreateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("create exam item: %w", err)
		}
		result.Created = true
	} else if err != nil {
		return nil, fmt.Errorf("get exam item: %w", err)
	}

	submissions, err := s.submissions.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	feedback := fmt.Sprintf("Sınavdan otomatik aktarıldı: %s", exam.Title)
	synced := make(map[int]struct{})
	for i := range submissions {
		sub := &submissions[i]
		grade := &model.StudentGrade{
			GradeItemID: item.ID,
			StudentID:   sub.UserID,
			Points:      sub.Score,
			Feedback:    &feedback,
			GradedBy:    &actorID,
		}
		if err := s.store.UpsertGrade(ctx, grade); err != nil {
			return nil, fmt.Errorf("sync grade for student %d: %w", sub.UserID, err)
		}
		synced[sub.UserID] = struct{}{}
	}
	result.Synced = len(synced)

	if s.audit != nil {
		detail, _ := json.Marshal(result)
		s.audit.Record(ctx, AuditEvent{
			ActorID:  actorID,
			Action:   "gradebook.sync_exam",
			Entity:   "exam",
			EntityID: examID.String(),
			Detail:   detail,
		})
	}
	return result, nil
}

// courseStructure loads a course's categories and items, verifying the
// course exists.
func (s *GradebookService) courseStructure(ctx context.Context, courseID int) ([]model.GradeCategory, []model.GradeItem, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrCourseNotFound
		}
		return nil, nil, fmt.Errorf("get course: %w", err)
	}
	categories, err := s.store.ListCategories(ctx, courseID)
	if err != nil {
		return nil, nil, fmt.Errorf("list categories: %w", err)
	}
	items, err := s.store.ListItems(ctx, courseID)
	if err != nil {
		return nil, nil, fmt.Errorf("list items: %w", err)
	}
	return categories, items, nil
}
