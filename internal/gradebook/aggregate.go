// Package gradebook implements the pure aggregation rules of the course
// gradebook: weighted category totals with drop-lowest, descriptive item
// statistics and CSV rendering. Every function is a pure computation over
// its inputs; callers own all storage access.
package gradebook

import (
	"sort"

	"github.com/derslik/derslik-backend/internal/grading"
	"github.com/derslik/derslik-backend/internal/model"
)

// CategoryResult is the aggregated outcome of one category for one student.
type CategoryResult struct {
	CategoryID     int     `json:"category_id"`
	Name           string  `json:"name"`
	Weight         float64 `json:"weight"`
	Percent        float64 `json:"percent"`
	EarnedPoints   float64 `json:"earned_points"`
	PossiblePoints float64 `json:"possible_points"`
	GradedCount    int     `json:"graded_count"`
	DroppedCount   int     `json:"dropped_count"`
}

// FinalGrade is the weighted course total for one student.
type FinalGrade struct {
	Percent    float64          `json:"percent"`
	Letter     string           `json:"letter"`
	GPA        float64          `json:"gpa"`
	Categories []CategoryResult `json:"categories"`
}

// scoredItem pairs one graded item's earned points with its maximum.
type scoredItem struct {
	points    float64
	maxPoints float64
}

func (s scoredItem) ratio() float64 {
	if s.maxPoints <= 0 {
		return 0
	}
	return s.points / s.maxPoints
}

// ComputeFinal rolls a student's grade rows up into weighted category totals
// and a final letter grade.
//
// Per category: when dropLowest > 0 and at least that many items are graded,
// the dropLowest worst items by points/maxPoints ratio are excluded before
// summing. Categories with no graded items are excluded entirely from the
// weighted total rather than counted as zero, and the total is normalized
// against only the weights actually present: a course missing one
// category's grades does not silently depress the result.
func ComputeFinal(categories []model.GradeCategory, items []model.GradeItem, grades []model.StudentGrade) FinalGrade {
	itemByID := make(map[int]model.GradeItem, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
	}

	byCategory := make(map[int][]scoredItem)
	for _, g := range grades {
		it, ok := itemByID[g.GradeItemID]
		if !ok {
			continue
		}
		byCategory[it.CategoryID] = append(byCategory[it.CategoryID], scoredItem{
			points:    g.Points,
			maxPoints: it.MaxPoints,
		})
	}

	var (
		results     []CategoryResult
		weightedSum float64
		weightTotal float64
	)

	for _, cat := range categories {
		scored := byCategory[cat.ID]
		res := CategoryResult{
			CategoryID:  cat.ID,
			Name:        cat.Name,
			Weight:      cat.Weight,
			GradedCount: len(scored),
		}

		if len(scored) == 0 {
			// Empty category: reported with zero percent but excluded
			// from the weighted total.
			results = append(results, res)
			continue
		}

		kept := scored
		if cat.DropLowest > 0 && len(scored) >= cat.DropLowest {
			sort.SliceStable(scored, func(i, j int) bool {
				return scored[i].ratio() < scored[j].ratio()
			})
			kept = scored[cat.DropLowest:]
			res.DroppedCount = cat.DropLowest
		}

		for _, s := range kept {
			res.EarnedPoints += s.points
			res.PossiblePoints += s.maxPoints
		}
		if res.PossiblePoints > 0 {
			res.Percent = res.EarnedPoints / res.PossiblePoints * 100
		}

		weightedSum += res.Percent * cat.Weight
		weightTotal += cat.Weight
		results = append(results, res)
	}

	final := FinalGrade{Categories: results}
	if weightTotal > 0 {
		final.Percent = weightedSum / weightTotal
	}
	final.Letter, final.GPA = grading.Letter(final.Percent)
	return final
}
