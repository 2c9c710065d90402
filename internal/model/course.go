package model

import "time"

// Course represents a course entity. CRUD around it is deliberately thin;
// the course is mainly the aggregation scope for the gradebook.
type Course struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Code      string    `json:"code"`
	OwnerID   int       `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Enrollment links a student to a course.
type Enrollment struct {
	CourseID   int       `json:"course_id"`
	StudentID  int       `json:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	Title string `json:"title" binding:"required,min=3,max=255"`
	Code  string `json:"code" binding:"required,min=2,max=32"`
}

// UpdateCourseRequest is the payload for updating a course.
type UpdateCourseRequest struct {
	Title string `json:"title" binding:"omitempty,min=3,max=255"`
	Code  string `json:"code" binding:"omitempty,min=2,max=32"`
}

// EnrollRequest is the payload for enrolling a student into a course.
type EnrollRequest struct {
	StudentID int `json:"student_id" binding:"required,min=1"`
}
