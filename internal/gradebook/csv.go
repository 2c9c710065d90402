package gradebook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/derslik/derslik-backend/internal/model"
)

// missingGradePlaceholder renders an item the student has not been graded on.
// A dash, not zero or blank, so readers can tell "ungraded" from "scored 0".
const missingGradePlaceholder = "-"

// StudentRow is one student's export line: their grades keyed by item ID and
// their precomputed final grade.
type StudentRow struct {
	Name   string
	Email  string
	Grades map[int]float64
	Final  FinalGrade
}

// RenderCSV renders the course gradebook as CSV. The header row is
// [student, email, ...itemNames, totalPercent, letter]; data rows are
// ordered by student name.
func RenderCSV(items []model.GradeItem, rows []StudentRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, 0, len(items)+4)
	header = append(header, "student", "email")
	for _, it := range items {
		header = append(header, it.Name)
	}
	header = append(header, "totalPercent", "letter")
	if err := w.Write(header); err != nil {
		return nil, err
	}

	sorted := make([]StudentRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, row := range sorted {
		record := make([]string, 0, len(header))
		record = append(record, row.Name, row.Email)
		for _, it := range items {
			if points, ok := row.Grades[it.ID]; ok {
				record = append(record, fmt.Sprintf("%.2f", points))
			} else {
				record = append(record, missingGradePlaceholder)
			}
		}
		record = append(record,
			fmt.Sprintf("%.2f", row.Final.Percent),
			row.Final.Letter,
		)
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
