package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/derslik/derslik-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type gradebookFixture struct {
	svc     *GradebookService
	course  *model.Course
	exam    *model.Exam
	courses *fakeCourseStore
	subs    *fakeSubmissionStore
	store   *fakeGradebookStore
	audit   *fakeAuditor
}

func newGradebookFixture(t *testing.T) *gradebookFixture {
	t.Helper()
	course := &model.Course{ID: 1, Title: "Matematik 101", Code: "MAT101", OwnerID: 2}
	exam := &model.Exam{ID: uuid.New(), CourseID: course.ID, Title: "Vize Sınavı"}

	courses := newFakeCourseStore()
	courses.addCourse(course)
	courses.enroll(course.ID, model.User{ID: 7, Name: "Ayşe Yıldız", Email: "ayse@example.com", Role: model.RoleStudent})
	courses.enroll(course.ID, model.User{ID: 8, Name: "Mehmet Can", Email: "mehmet@example.com", Role: model.RoleStudent})

	subs := &fakeSubmissionStore{}
	store := newFakeGradebookStore()
	audit := &fakeAuditor{}
	svc := NewGradebookService(courses, newFakeExamStore(exam), subs, store, audit, zerolog.Nop())
	return &gradebookFixture{svc: svc, course: course, exam: exam, courses: courses, subs: subs, store: store, audit: audit}
}

func (fx *gradebookFixture) mustCreateItem(t *testing.T, name string, maxPoints float64) *model.GradeItem {
	t.Helper()
	weight := 100.0
	cat, err := fx.svc.CreateCategory(context.Background(), fx.course.ID, &model.CreateCategoryRequest{Name: "Ödevler", Weight: &weight})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	item, err := fx.svc.CreateItem(context.Background(), fx.course.ID, &model.CreateItemRequest{
		CategoryID: cat.ID,
		Name:       name,
		MaxPoints:  &maxPoints,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}

func TestUpsertGrade(t *testing.T) {
	fx := newGradebookFixture(t)
	item := fx.mustCreateItem(t, "Ödev 1", 20)

	grade, err := fx.svc.UpsertGrade(context.Background(), item.ID, 2, &model.UpsertGradeRequest{StudentID: 7, Points: points(15)})
	if err != nil {
		t.Fatalf("UpsertGrade: %v", err)
	}
	if grade.Points != 15 || grade.StudentID != 7 {
		t.Errorf("grade=%+v, want 15 points for student 7", grade)
	}
	if got := fx.audit.actions(); len(got) != 1 || got[0] != "gradebook.grade" {
		t.Errorf("audit actions=%v, want [gradebook.grade]", got)
	}

	// Overwrite, not append.
	if _, err := fx.svc.UpsertGrade(context.Background(), item.ID, 2, &model.UpsertGradeRequest{StudentID: 7, Points: points(18)}); err != nil {
		t.Fatalf("regrade: %v", err)
	}
	rows, _ := fx.store.ListGradesByItem(context.Background(), item.ID)
	if len(rows) != 1 || rows[0].Points != 18 {
		t.Fatalf("rows=%+v, want single row with 18 points", rows)
	}
}

func TestUpsertGradeValidation(t *testing.T) {
	fx := newGradebookFixture(t)
	item := fx.mustCreateItem(t, "Ödev 1", 20)

	_, err := fx.svc.UpsertGrade(context.Background(), item.ID, 2, &model.UpsertGradeRequest{StudentID: 7, Points: points(25)})
	var invalid *InvalidPointsError
	if !errors.As(err, &invalid) || invalid.MaxPoints != 20 {
		t.Fatalf("err=%v, want InvalidPointsError with max 20", err)
	}

	if _, err := fx.svc.UpsertGrade(context.Background(), item.ID, 2, &model.UpsertGradeRequest{StudentID: 99, Points: points(10)}); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("err=%v, want ErrNotEnrolled", err)
	}
	if _, err := fx.svc.UpsertGrade(context.Background(), 999, 2, &model.UpsertGradeRequest{StudentID: 7, Points: points(10)}); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("err=%v, want ErrItemNotFound", err)
	}
}

func TestBulkGradeIsBestEffort(t *testing.T) {
	fx := newGradebookFixture(t)
	item := fx.mustCreateItem(t, "Ödev 1", 20)

	result, err := fx.svc.BulkGrade(context.Background(), item.ID, 2, &model.BulkGradeRequest{Grades: []model.UpsertGradeRequest{
		{StudentID: 7, Points: points(12)},
		{StudentID: 99, Points: points(14)}, // not enrolled
		{StudentID: 8, Points: points(16)},
	}})
	if err != nil {
		t.Fatalf("BulkGrade: %v", err)
	}
	if result.Attempted != 3 || result.Succeeded != 2 {
		t.Fatalf("result=%+v, want attempted 3, succeeded 2", result)
	}
	rows, _ := fx.store.ListGradesByItem(context.Background(), item.ID)
	if len(rows) != 2 {
		t.Fatalf("rows=%d, want 2 committed despite the failed row", len(rows))
	}
}

func TestMyGradesRequiresEnrollment(t *testing.T) {
	fx := newGradebookFixture(t)
	if _, err := fx.svc.MyGrades(context.Background(), fx.course.ID, 99); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("err=%v, want ErrNotEnrolled", err)
	}
}

func TestSyncExamToGradebook(t *testing.T) {
	fx := newGradebookFixture(t)

	seed := func(userID, attempt int, score float64) {
		sub := &model.ExamSubmission{ExamID: fx.exam.ID, UserID: userID, Score: score, AttemptNumber: attempt}
		if err := fx.subs.Create(context.Background(), sub); err != nil {
			t.Fatalf("seed submission: %v", err)
		}
	}
	// Student 7 retook the exam; the later attempt must win.
	seed(7, 1, 40)
	seed(7, 2, 75)
	seed(8, 1, 90)

	result, err := fx.svc.SyncExamToGradebook(context.Background(), fx.exam.ID, 2)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !result.Created || result.Synced != 2 {
		t.Fatalf("result=%+v, want created=true synced=2", result)
	}

	cat, err := fx.store.GetCategoryByName(context.Background(), fx.course.ID, "Sınavlar")
	if err != nil {
		t.Fatalf("exam category missing: %v", err)
	}
	if cat.Weight != 100 {
		t.Errorf("category weight=%v, want 100", cat.Weight)
	}
	item, err := fx.store.GetItemByName(context.Background(), fx.course.ID, fx.exam.Title)
	if err != nil {
		t.Fatalf("exam item missing: %v", err)
	}
	if item.MaxPoints != 100 || item.CategoryID != cat.ID {
		t.Errorf("item=%+v, want max 100 in exam category", item)
	}

	rows, _ := fx.store.ListGradesByItem(context.Background(), item.ID)
	byStudent := make(map[int]float64, len(rows))
	for _, g := range rows {
		byStudent[g.StudentID] = g.Points
	}
	if byStudent[7] != 75 || byStudent[8] != 90 {
		t.Fatalf("synced grades=%v, want student 7→75 (latest attempt) and 8→90", byStudent)
	}

	// Re-running refreshes in place instead of duplicating.
	again, err := fx.svc.SyncExamToGradebook(context.Background(), fx.exam.ID, 2)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if again.Created || again.Synced != 2 {
		t.Fatalf("resync result=%+v, want created=false synced=2", again)
	}
	if rows, _ := fx.store.ListGradesByItem(context.Background(), item.ID); len(rows) != 2 {
		t.Fatalf("rows after resync=%d, want 2", len(rows))
	}
}

func TestSyncExamUnknownExam(t *testing.T) {
	fx := newGradebookFixture(t)
	if _, err := fx.svc.SyncExamToGradebook(context.Background(), uuid.New(), 2); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("err=%v, want ErrExamNotFound", err)
	}
}

func TestLeaderboard(t *testing.T) {
	fx := newGradebookFixture(t)
	item := fx.mustCreateItem(t, "Ödev 1", 100)

	for studentID, score := range map[int]float64{7: 60, 8: 95} {
		if _, err := fx.svc.UpsertGrade(context.Background(), item.ID, 2, &model.UpsertGradeRequest{StudentID: studentID, Points: points(score)}); err != nil {
			t.Fatalf("grade student %d: %v", studentID, err)
		}
	}

	entries, err := fx.svc.Leaderboard(context.Background(), fx.course.ID, 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries=%d, want 2", len(entries))
	}
	if entries[0].StudentID != 8 || entries[1].StudentID != 7 {
		t.Fatalf("order=%v, want highest percent first", entries)
	}
	if math.Abs(entries[0].Percent-95) > 1e-9 || entries[0].Letter != "AA" {
		t.Errorf("top entry=%+v, want 95 percent AA", entries[0])
	}

	limited, err := fx.svc.Leaderboard(context.Background(), fx.course.ID, 1)
	if err != nil {
		t.Fatalf("limited leaderboard: %v", err)
	}
	if len(limited) != 1 || limited[0].StudentID != 8 {
		t.Fatalf("limited=%v, want only the top student", limited)
	}
}

func TestItemStatistics(t *testing.T) {
	fx := newGradebookFixture(t)
	item := fx.mustCreateItem(t, "Ödev 1", 100)

	for studentID, score := range map[int]float64{7: 40, 8: 80} {
		if _, err := fx.svc.UpsertGrade(context.Background(), item.ID, 2, &model.UpsertGradeRequest{StudentID: studentID, Points: points(score)}); err != nil {
			t.Fatalf("grade student %d: %v", studentID, err)
		}
	}

	stats, err := fx.svc.ItemStatistics(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("ItemStatistics: %v", err)
	}
	if stats.Count != 2 || stats.Mean != 60 || stats.Min != 40 || stats.Max != 80 {
		t.Fatalf("stats=%+v, want count 2 mean 60 min 40 max 80", stats)
	}

	if _, err := fx.svc.ItemStatistics(context.Background(), 999); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("err=%v, want ErrItemNotFound", err)
	}
}

func TestExportCSVIncludesEveryStudent(t *testing.T) {
	fx := newGradebookFixture(t)
	item := fx.mustCreateItem(t, "Ödev 1", 100)

	if _, err := fx.svc.UpsertGrade(context.Background(), item.ID, 2, &model.UpsertGradeRequest{StudentID: 7, Points: points(70)}); err != nil {
		t.Fatalf("grade: %v", err)
	}

	data, filename, err := fx.svc.ExportCSV(context.Background(), fx.course.ID)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if filename != "gradebook_course_1.csv" {
		t.Errorf("filename=%q, want gradebook_course_1.csv", filename)
	}
	// Header plus one row per enrolled student, graded or not.
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 3 {
		t.Fatalf("csv lines=%d, want 3", lines)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	fx := newGradebookFixture(t)
	weight := 40.0

	cat, err := fx.svc.CreateCategory(context.Background(), fx.course.ID, &model.CreateCategoryRequest{Name: "Quizler", Weight: &weight, DropLowest: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newWeight := 60.0
	updated, err := fx.svc.UpdateCategory(context.Background(), cat.ID, &model.UpdateCategoryRequest{Weight: &newWeight})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Weight != 60 || updated.Name != "Quizler" || updated.DropLowest != 1 {
		t.Fatalf("updated=%+v, want weight changed and the rest kept", updated)
	}

	if err := fx.svc.DeleteCategory(context.Background(), cat.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := fx.svc.DeleteCategory(context.Background(), cat.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("err=%v, want ErrCategoryNotFound", err)
	}
}

func TestCreateItemRejectsForeignCategory(t *testing.T) {
	fx := newGradebookFixture(t)
	other := &model.Course{ID: 2, Title: "Fizik 101", Code: "FIZ101", OwnerID: 2}
	fx.courses.addCourse(other)

	weight := 100.0
	cat, err := fx.svc.CreateCategory(context.Background(), other.ID, &model.CreateCategoryRequest{Name: "Ödevler", Weight: &weight})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	max := 10.0
	_, err = fx.svc.CreateItem(context.Background(), fx.course.ID, &model.CreateItemRequest{CategoryID: cat.ID, Name: "Ödev 1", MaxPoints: &max})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("err=%v, want ErrCategoryNotFound for cross-course category", err)
	}
}
