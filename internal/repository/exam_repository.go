package repository

import (
	"context"

	"github.com/derslik/derslik-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (course_id, title, description, max_attempts, pass_threshold, scheduled_at, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		e.CourseID, e.Title, e.Description, e.MaxAttempts, e.PassThreshold, e.ScheduledAt, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID retrieves an exam by ID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, title, description, max_attempts, pass_threshold, scheduled_at, created_by, created_at, updated_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.CourseID, &e.Title, &e.Description, &e.MaxAttempts, &e.PassThreshold,
		&e.ScheduledAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Update persists exam changes.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET title = $1, description = $2, max_attempts = $3, pass_threshold = $4,
		     scheduled_at = $5, updated_at = NOW()
		 WHERE id = $6`,
		e.Title, e.Description, e.MaxAttempts, e.PassThreshold, e.ScheduledAt, e.ID)
	return err
}

// Delete removes an exam and its questions (cascade).
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	return err
}

// ListByCourse retrieves all exams of a course.
func (r *ExamRepository) ListByCourse(ctx context.Context, courseID int) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, title, description, max_attempts, pass_threshold, scheduled_at, created_by, created_at, updated_at
		 FROM exams WHERE course_id = $1
		 ORDER BY created_at DESC`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.CourseID, &e.Title, &e.Description, &e.MaxAttempts,
			&e.PassThreshold, &e.ScheduledAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}
