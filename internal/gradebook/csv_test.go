package gradebook

import (
	"encoding/csv"
	"reflect"
	"strings"
	"testing"

	"github.com/derslik/derslik-backend/internal/model"
)

func TestRenderCSV(t *testing.T) {
	items := []model.GradeItem{
		{ID: 1, Name: "Vize"},
		{ID: 2, Name: "Final"},
	}
	rows := []StudentRow{
		{
			Name:   "Zeynep Kaya",
			Email:  "zeynep@example.com",
			Grades: map[int]float64{1: 80, 2: 90.5},
			Final:  FinalGrade{Percent: 86.3, Letter: "BA"},
		},
		{
			Name:   "Ali Demir",
			Email:  "ali@example.com",
			Grades: map[int]float64{1: 55},
			Final:  FinalGrade{Percent: 55, Letter: "FD"},
		},
	}

	out, err := RenderCSV(items, rows)
	if err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	want := [][]string{
		{"student", "email", "Vize", "Final", "totalPercent", "letter"},
		{"Ali Demir", "ali@example.com", "55.00", "-", "55.00", "FD"},
		{"Zeynep Kaya", "zeynep@example.com", "80.00", "90.50", "86.30", "BA"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records=%v, want %v", records, want)
	}
}

func TestRenderCSVNoStudents(t *testing.T) {
	out, err := RenderCSV([]model.GradeItem{{ID: 1, Name: "Quiz"}}, nil)
	if err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "student,email,Quiz,totalPercent,letter" {
		t.Fatalf("header only expected, got %q", got)
	}
}
