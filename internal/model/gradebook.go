package model

import "time"

// GradeCategory groups gradebook items within a course. Weight is an
// arbitrary positive number; weights need not sum to 100 across a course.
// DropLowest excludes that many worst-scoring items from aggregation.
type GradeCategory struct {
	ID         int     `json:"id"`
	CourseID   int     `json:"course_id"`
	Name       string  `json:"name"`
	Weight     float64 `json:"weight"`
	DropLowest int     `json:"drop_lowest"`
}

// GradeItem is a gradable unit within a category. Items are either created
// by hand or generated when an exam is synchronized into the gradebook.
type GradeItem struct {
	ID         int        `json:"id"`
	CategoryID int        `json:"category_id"`
	CourseID   int        `json:"course_id"`
	Name       string     `json:"name"`
	MaxPoints  float64    `json:"max_points"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

// StudentGrade is the single grade row for a (item, student) pair. Created
// lazily on the first grading event and overwritten thereafter; there is no
// grade history.
type StudentGrade struct {
	ID          int        `json:"id"`
	GradeItemID int        `json:"grade_item_id"`
	StudentID   int        `json:"student_id"`
	Points      float64    `json:"points"`
	Feedback    *string    `json:"feedback,omitempty"`
	GradedBy    *int       `json:"graded_by,omitempty"`
	GradedAt    *time.Time `json:"graded_at,omitempty"`
}

// CreateCategoryRequest is the payload for creating a grade category.
type CreateCategoryRequest struct {
	Name       string   `json:"name" binding:"required,min=1,max=255"`
	Weight     *float64 `json:"weight" binding:"required,gt=0"`
	DropLowest int      `json:"drop_lowest" binding:"min=0"`
}

// UpdateCategoryRequest is the payload for updating a grade category.
type UpdateCategoryRequest struct {
	Name       string   `json:"name" binding:"omitempty,min=1,max=255"`
	Weight     *float64 `json:"weight" binding:"omitempty,gt=0"`
	DropLowest *int     `json:"drop_lowest" binding:"omitempty,min=0"`
}

// CreateItemRequest is the payload for creating a grade item.
type CreateItemRequest struct {
	CategoryID int        `json:"category_id" binding:"required,min=1"`
	Name       string     `json:"name" binding:"required,min=1,max=255"`
	MaxPoints  *float64   `json:"max_points" binding:"required,gt=0"`
	DueDate    *time.Time `json:"due_date" binding:"omitempty"`
}

// UpsertGradeRequest is the payload for grading one student on an item.
type UpsertGradeRequest struct {
	StudentID int      `json:"student_id" binding:"required,min=1"`
	Points    *float64 `json:"points" binding:"required,min=0"`
	Feedback  *string  `json:"feedback" binding:"omitempty,max=2000"`
}

// BulkGradeRequest grades many students on one item in a single request.
// Execution is best-effort: a failure partway leaves earlier grades committed.
type BulkGradeRequest struct {
	Grades []UpsertGradeRequest `json:"grades" binding:"required,min=1,dive"`
}

// BulkGradeResult reports how much of a bulk grading batch succeeded.
type BulkGradeResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
}

// SyncExamResult is the outcome of synchronizing an exam into the gradebook.
type SyncExamResult struct {
	Synced  int  `json:"synced"`
	Created bool `json:"created"`
}
