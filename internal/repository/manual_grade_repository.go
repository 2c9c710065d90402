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

// RecomputeFunc re-derives a submission's total score from its stored
// answers and the full set of manual grades. It must be a pure function;
// the repository calls it while holding the submission row lock.
type RecomputeFunc func(answers map[string]json.RawMessage, manual []model.ManualGrade) float64

// ManualGradeRepository handles manual grade data access.
type ManualGradeRepository struct {
	pool *pgxpool.Pool
}

// NewManualGradeRepository creates a new ManualGradeRepository.
func NewManualGradeRepository(pool *pgxpool.Pool) *ManualGradeRepository {
	return &ManualGradeRepository{pool: pool}
}

// GradeAndRecompute upserts one manual grade and rewrites the submission's
// total score in a single transaction. The submission row is locked with
// SELECT ... FOR UPDATE for the duration, serializing concurrent manual
// grades on the same submission: without the lock two graders could each
// read a stale grade set and overwrite each other's recomputed total.
// Returns the new total score.
func (r *ManualGradeRepository) GradeAndRecompute(ctx context.Context, g *model.ManualGrade, recompute RecomputeFunc) (float64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var answersRaw []byte
	if err := tx.QueryRow(ctx,
		`SELECT answers FROM exam_submissions WHERE id = $1 FOR UPDATE`,
		g.SubmissionID,
	).Scan(&answersRaw); err != nil {
		return 0, fmt.Errorf("lock submission: %w", err)
	}

	var answers map[string]json.RawMessage
	if err := json.Unmarshal(answersRaw, &answers); err != nil {
		return 0, fmt.Errorf("unmarshal answers: %w", err)
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO manual_grades (submission_id, question_id, points, feedback, graded_by)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (submission_id, question_id)
		 DO UPDATE SET points = EXCLUDED.points,
		               feedback = EXCLUDED.feedback,
		               graded_by = EXCLUDED.graded_by,
		               graded_at = NOW()
		 RETURNING graded_at`,
		g.SubmissionID, g.QuestionID, g.Points, g.Feedback, g.GradedBy,
	).Scan(&g.GradedAt); err != nil {
		return 0, fmt.Errorf("upsert manual grade: %w", err)
	}

	manual, err := listBySubmissionTx(ctx, tx, g.SubmissionID)
	if err != nil {
		return 0, err
	}

	newScore := recompute(answers, manual)

	if _, err := tx.Exec(ctx,
		`UPDATE exam_submissions SET score = $1 WHERE id = $2`,
		newScore, g.SubmissionID,
	); err != nil {
		return 0, fmt.Errorf("update score: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return newScore, nil
}

// ListBySubmission retrieves all manual grades of a submission.
func (r *ManualGradeRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]model.ManualGrade, error) {
	return listBySubmissionTx(ctx, r.pool, submissionID)
}

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listBySubmissionTx(ctx context.Context, q queryer, submissionID uuid.UUID) ([]model.ManualGrade, error) {
	rows, err := q.Query(ctx,
		`SELECT submission_id, question_id, points, feedback, graded_by, graded_at
		 FROM manual_grades WHERE submission_id = $1`, submissionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grades []model.ManualGrade
	for rows.Next() {
		var g model.ManualGrade
		if err := rows.Scan(&g.SubmissionID, &g.QuestionID, &g.Points, &g.Feedback, &g.GradedBy, &g.GradedAt); err != nil {
			return nil, err
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}
