package repository

import (
	"context"

	"github.com/derslik/derslik-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRepository handles course and enrollment data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, code, owner_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		c.Title, c.Code, c.OwnerID,
	).Scan(&c.ID, &c.CreatedAt)
}

// GetByID retrieves a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c := &model.Course{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, code, owner_id, created_at
		 FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Code, &c.OwnerID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update persists title/code changes.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE courses SET title = $1, code = $2 WHERE id = $3`,
		c.Title, c.Code, c.ID)
	return err
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return err
}

// ListByOwner retrieves courses owned by a teacher. ownerID 0 lists all.
func (r *CourseRepository) ListByOwner(ctx context.Context, ownerID int) ([]model.Course, error) {
	query := `SELECT id, title, code, owner_id, created_at FROM courses ORDER BY title ASC`
	args := []any{}
	if ownerID != 0 {
		query = `SELECT id, title, code, owner_id, created_at FROM courses WHERE owner_id = $1 ORDER BY title ASC`
		args = append(args, ownerID)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Code, &c.OwnerID, &c.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Enroll adds a student to a course. Re-enrolling is a no-op.
func (r *CourseRepository) Enroll(ctx context.Context, courseID, studentID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO enrollments (course_id, student_id)
		 VALUES ($1, $2)
		 ON CONFLICT (course_id, student_id) DO NOTHING`,
		courseID, studentID)
	return err
}

// IsEnrolled reports whether the student is enrolled in the course.
func (r *CourseRepository) IsEnrolled(ctx context.Context, courseID, studentID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM enrollments WHERE course_id = $1 AND student_id = $2
		 )`, courseID, studentID,
	).Scan(&exists)
	return exists, err
}

// ListEnrolledStudents retrieves the enrolled students of a course ordered
// by name.
func (r *CourseRepository) ListEnrolledStudents(ctx context.Context, courseID int) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, u.role, u.created_at
		 FROM enrollments e
		 JOIN users u ON u.id = e.student_id
		 WHERE e.course_id = $1
		 ORDER BY u.name ASC`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, u)
	}
	return students, rows.Err()
}
