package gradebook

import (
	"math"
	"testing"

	"github.com/derslik/derslik-backend/internal/model"
)

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestComputeFinalSingleCategory(t *testing.T) {
	categories := []model.GradeCategory{{ID: 1, Name: "Ödevler", Weight: 100}}
	items := []model.GradeItem{
		{ID: 10, CategoryID: 1, MaxPoints: 50},
		{ID: 11, CategoryID: 1, MaxPoints: 50},
	}
	grades := []model.StudentGrade{
		{GradeItemID: 10, Points: 40},
		{GradeItemID: 11, Points: 45},
	}

	final := ComputeFinal(categories, items, grades)
	if !approx(final.Percent, 85) {
		t.Fatalf("percent=%v, want 85", final.Percent)
	}
	if final.Letter != "BA" || final.GPA != 3.5 {
		t.Fatalf("letter=%s gpa=%v, want BA 3.5", final.Letter, final.GPA)
	}
}

func TestComputeFinalDropLowest(t *testing.T) {
	categories := []model.GradeCategory{{ID: 1, Name: "Quizler", Weight: 100, DropLowest: 1}}
	items := []model.GradeItem{
		{ID: 10, CategoryID: 1, MaxPoints: 100},
		{ID: 11, CategoryID: 1, MaxPoints: 100},
		{ID: 12, CategoryID: 1, MaxPoints: 100},
	}
	grades := []model.StudentGrade{
		{GradeItemID: 10, Points: 60}, // dropped
		{GradeItemID: 11, Points: 90},
		{GradeItemID: 12, Points: 90},
	}

	final := ComputeFinal(categories, items, grades)
	if !approx(final.Percent, 90) {
		t.Fatalf("percent=%v, want 90 after dropping the worst quiz", final.Percent)
	}
	if final.Categories[0].DroppedCount != 1 {
		t.Fatalf("dropped=%d, want 1", final.Categories[0].DroppedCount)
	}
}

// The drop ratio is points/maxPoints, not absolute points: 30/40 beats 50/100.
func TestComputeFinalDropLowestByRatio(t *testing.T) {
	categories := []model.GradeCategory{{ID: 1, Weight: 100, DropLowest: 1}}
	items := []model.GradeItem{
		{ID: 10, CategoryID: 1, MaxPoints: 40},
		{ID: 11, CategoryID: 1, MaxPoints: 100},
	}
	grades := []model.StudentGrade{
		{GradeItemID: 10, Points: 30}, // 75%
		{GradeItemID: 11, Points: 50}, // 50%, dropped
	}

	final := ComputeFinal(categories, items, grades)
	if !approx(final.Percent, 75) {
		t.Fatalf("percent=%v, want 75", final.Percent)
	}
}

func TestComputeFinalFewerItemsThanDropLowest(t *testing.T) {
	categories := []model.GradeCategory{{ID: 1, Weight: 100, DropLowest: 2}}
	items := []model.GradeItem{{ID: 10, CategoryID: 1, MaxPoints: 100}}
	grades := []model.StudentGrade{{GradeItemID: 10, Points: 80}}

	// Only one graded item: nothing is dropped.
	final := ComputeFinal(categories, items, grades)
	if !approx(final.Percent, 80) {
		t.Fatalf("percent=%v, want 80", final.Percent)
	}
	if final.Categories[0].DroppedCount != 0 {
		t.Fatalf("dropped=%d, want 0", final.Categories[0].DroppedCount)
	}
}

func TestComputeFinalEmptyCategoryExcluded(t *testing.T) {
	categories := []model.GradeCategory{
		{ID: 1, Name: "Sınavlar", Weight: 70},
		{ID: 2, Name: "Ödevler", Weight: 30}, // no graded items
	}
	items := []model.GradeItem{
		{ID: 10, CategoryID: 1, MaxPoints: 100},
		{ID: 20, CategoryID: 2, MaxPoints: 100},
	}
	grades := []model.StudentGrade{{GradeItemID: 10, Points: 80}}

	// The empty category must not drag the total down: the result is the
	// exam percent alone, normalized over the present weight.
	final := ComputeFinal(categories, items, grades)
	if !approx(final.Percent, 80) {
		t.Fatalf("percent=%v, want 80", final.Percent)
	}
	if len(final.Categories) != 2 {
		t.Fatalf("categories=%d, want both reported", len(final.Categories))
	}
	if final.Categories[1].GradedCount != 0 || final.Categories[1].Percent != 0 {
		t.Fatalf("empty category should report zero: %+v", final.Categories[1])
	}
}

func TestComputeFinalWeightNormalization(t *testing.T) {
	categories := []model.GradeCategory{
		{ID: 1, Weight: 30},
		{ID: 2, Weight: 70},
	}
	items := []model.GradeItem{
		{ID: 10, CategoryID: 1, MaxPoints: 100},
		{ID: 20, CategoryID: 2, MaxPoints: 100},
	}
	grades := []model.StudentGrade{
		{GradeItemID: 10, Points: 100},
		{GradeItemID: 20, Points: 50},
	}

	// (100*30 + 50*70) / (30+70) = 65
	final := ComputeFinal(categories, items, grades)
	if !approx(final.Percent, 65) {
		t.Fatalf("percent=%v, want 65", final.Percent)
	}
}

func TestComputeFinalNoGradesAtAll(t *testing.T) {
	categories := []model.GradeCategory{{ID: 1, Weight: 100}}
	final := ComputeFinal(categories, nil, nil)
	if final.Percent != 0 || final.Letter != "FF" {
		t.Fatalf("empty gradebook: got %v %s, want 0 FF", final.Percent, final.Letter)
	}
}

func TestComputeFinalIgnoresOrphanGrades(t *testing.T) {
	categories := []model.GradeCategory{{ID: 1, Weight: 100}}
	items := []model.GradeItem{{ID: 10, CategoryID: 1, MaxPoints: 100}}
	grades := []model.StudentGrade{
		{GradeItemID: 10, Points: 90},
		{GradeItemID: 999, Points: 10}, // item deleted since grading
	}

	final := ComputeFinal(categories, items, grades)
	if !approx(final.Percent, 90) {
		t.Fatalf("percent=%v, want 90", final.Percent)
	}
}
