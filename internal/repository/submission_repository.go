package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/derslik/derslik-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubmissionRepository handles exam submission data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Create inserts a new submission row for one graded attempt.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.ExamSubmission) error {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_submissions (exam_id, user_id, score, answers, attempt_number)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, submitted_at`,
		s.ExamID, s.UserID, s.Score, answers, s.AttemptNumber,
	).Scan(&s.ID, &s.SubmittedAt)
}

// GetByID retrieves a submission by ID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSubmission, error) {
	s := &model.ExamSubmission{}
	var answers []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, user_id, score, answers, attempt_number, submitted_at
		 FROM exam_submissions WHERE id = $1`, id,
	).Scan(&s.ID, &s.ExamID, &s.UserID, &s.Score, &answers, &s.AttemptNumber, &s.SubmittedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &s.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return s, nil
}

// CountByExamAndUser returns how many attempts the user has already
// submitted for the exam. Attempts are counted, never reused.
func (r *SubmissionRepository) CountByExamAndUser(ctx context.Context, examID uuid.UUID, userID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_submissions WHERE exam_id = $1 AND user_id = $2`,
		examID, userID,
	).Scan(&count)
	return count, err
}

// ListByExam retrieves all submissions of an exam ordered by submission
// time, oldest first. With multiple attempts per student the caller sees the
// latest attempt last.
func (r *SubmissionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamSubmission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, user_id, score, answers, attempt_number, submitted_at
		 FROM exam_submissions WHERE exam_id = $1
		 ORDER BY submitted_at ASC`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

// ListByUser retrieves all submissions of one user, newest first.
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID int) ([]model.ExamSubmission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, user_id, score, answers, attempt_number, submitted_at
		 FROM exam_submissions WHERE user_id = $1
		 ORDER BY submitted_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func scanSubmissions(rows pgx.Rows) ([]model.ExamSubmission, error) {
	var subs []model.ExamSubmission
	for rows.Next() {
		var s model.ExamSubmission
		var answers []byte
		if err := rows.Scan(&s.ID, &s.ExamID, &s.UserID, &s.Score, &answers, &s.AttemptNumber, &s.SubmittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answers, &s.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
