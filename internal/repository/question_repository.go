package repository

import (
	"context"

	"github.com/derslik/derslik-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Add inserts a new question.
func (r *QuestionRepository) Add(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (exam_id, prompt, type, options, answer, meta)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		q.ExamID, q.Prompt, q.Type, q.Options, q.Answer, q.Meta,
	).Scan(&q.ID, &q.CreatedAt)
}

// ListByExam retrieves all questions of an exam in creation order.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, prompt, type, options, answer, meta, created_at
		 FROM questions WHERE exam_id = $1
		 ORDER BY created_at ASC, id ASC`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ExamID, &q.Prompt, &q.Type, &q.Options, &q.Answer, &q.Meta, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}
