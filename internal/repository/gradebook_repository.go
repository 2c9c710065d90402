package repository

import (
	"context"

	"github.com/derslik/derslik-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GradebookRepository handles category, item and student grade data access.
// All grade writes are single upserts relying on unique constraints.
type GradebookRepository struct {
	pool *pgxpool.Pool
}

// NewGradebookRepository creates a new GradebookRepository.
func NewGradebookRepository(pool *pgxpool.Pool) *GradebookRepository {
	return &GradebookRepository{pool: pool}
}

// ─── Categories ─────────────────────────────────────────────────────

// CreateCategory inserts a new grade category.
func (r *GradebookRepository) CreateCategory(ctx context.Context, c *model.GradeCategory) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO grade_categories (course_id, name, weight, drop_lowest)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		c.CourseID, c.Name, c.Weight, c.DropLowest,
	).Scan(&c.ID)
}

// GetCategory retrieves a category by ID.
func (r *GradebookRepository) GetCategory(ctx context.Context, id int) (*model.GradeCategory, error) {
	c := &model.GradeCategory{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, name, weight, drop_lowest
		 FROM grade_categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.CourseID, &c.Name, &c.Weight, &c.DropLowest)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetCategoryByName retrieves a category by (course, name), or pgx.ErrNoRows.
func (r *GradebookRepository) GetCategoryByName(ctx context.Context, courseID int, name string) (*model.GradeCategory, error) {
	c := &model.GradeCategory{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, name, weight, drop_lowest
		 FROM grade_categories WHERE course_id = $1 AND name = $2`, courseID, name,
	).Scan(&c.ID, &c.CourseID, &c.Name, &c.Weight, &c.DropLowest)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCategory persists category changes.
func (r *GradebookRepository) UpdateCategory(ctx context.Context, c *model.GradeCategory) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE grade_categories SET name = $1, weight = $2, drop_lowest = $3 WHERE id = $4`,
		c.Name, c.Weight, c.DropLowest, c.ID)
	return err
}

// DeleteCategory removes a category and its items (cascade).
func (r *GradebookRepository) DeleteCategory(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM grade_categories WHERE id = $1`, id)
	return err
}

// ListCategories retrieves all categories of a course.
func (r *GradebookRepository) ListCategories(ctx context.Context, courseID int) ([]model.GradeCategory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, name, weight, drop_lowest
		 FROM grade_categories WHERE course_id = $1
		 ORDER BY id ASC`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []model.GradeCategory
	for rows.Next() {
		var c model.GradeCategory
		if err := rows.Scan(&c.ID, &c.CourseID, &c.Name, &c.Weight, &c.DropLowest); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// ─── Items ──────────────────────────────────────────────────────────

// CreateItem inserts a new grade item.
func (r *GradebookRepository) CreateItem(ctx context.Context, it *model.GradeItem) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO grade_items (category_id, course_id, name, max_points, due_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		it.CategoryID, it.CourseID, it.Name, it.MaxPoints, it.DueDate,
	).Scan(&it.ID)
}

// GetItem retrieves an item by ID.
func (r *GradebookRepository) GetItem(ctx context.Context, id int) (*model.GradeItem, error) {
	it := &model.GradeItem{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, category_id, course_id, name, max_points, due_date
		 FROM grade_items WHERE id = $1`, id,
	).Scan(&it.ID, &it.CategoryID, &it.CourseID, &it.Name, &it.MaxPoints, &it.DueDate)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// GetItemByName retrieves an item by (course, name), or pgx.ErrNoRows.
// Exam sync uses this to create the generated item at most once per title.
func (r *GradebookRepository) GetItemByName(ctx context.Context, courseID int, name string) (*model.GradeItem, error) {
	it := &model.GradeItem{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, category_id, course_id, name, max_points, due_date
		 FROM grade_items WHERE course_id = $1 AND name = $2`, courseID, name,
	).Scan(&it.ID, &it.CategoryID, &it.CourseID, &it.Name, &it.MaxPoints, &it.DueDate)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// DeleteItem removes an item and its grades (cascade).
func (r *GradebookRepository) DeleteItem(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM grade_items WHERE id = $1`, id)
	return err
}

// ListItems retrieves all items of a course in creation order.
func (r *GradebookRepository) ListItems(ctx context.Context, courseID int) ([]model.GradeItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category_id, course_id, name, max_points, due_date
		 FROM grade_items WHERE course_id = $1
		 ORDER BY id ASC`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.GradeItem
	for rows.Next() {
		var it model.GradeItem
		if err := rows.Scan(&it.ID, &it.CategoryID, &it.CourseID, &it.Name, &it.MaxPoints, &it.DueDate); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ─── Student grades ─────────────────────────────────────────────────

// UpsertGrade writes the single grade row for (item, student). The row is
// created lazily on the first grading event and overwritten thereafter;
// there is no grade history.
func (r *GradebookRepository) UpsertGrade(ctx context.Context, g *model.StudentGrade) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO student_grades (grade_item_id, student_id, points, feedback, graded_by, graded_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (grade_item_id, student_id)
		 DO UPDATE SET points = EXCLUDED.points,
		               feedback = EXCLUDED.feedback,
		               graded_by = EXCLUDED.graded_by,
		               graded_at = NOW()
		 RETURNING id, graded_at`,
		g.GradeItemID, g.StudentID, g.Points, g.Feedback, g.GradedBy,
	).Scan(&g.ID, &g.GradedAt)
}

// ListGradesByItem retrieves all grade rows of one item.
func (r *GradebookRepository) ListGradesByItem(ctx context.Context, itemID int) ([]model.StudentGrade, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, grade_item_id, student_id, points, feedback, graded_by, graded_at
		 FROM student_grades WHERE grade_item_id = $1`, itemID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStudentGrades(rows)
}

// ListGradesForStudent retrieves one student's grade rows across a course.
func (r *GradebookRepository) ListGradesForStudent(ctx context.Context, courseID, studentID int) ([]model.StudentGrade, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT g.id, g.grade_item_id, g.student_id, g.points, g.feedback, g.graded_by, g.graded_at
		 FROM student_grades g
		 JOIN grade_items i ON i.id = g.grade_item_id
		 WHERE i.course_id = $1 AND g.student_id = $2`, courseID, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStudentGrades(rows)
}

// ListGradesByCourse retrieves every grade row of a course. Leaderboard and
// export fan per-student aggregations out from this single read.
func (r *GradebookRepository) ListGradesByCourse(ctx context.Context, courseID int) ([]model.StudentGrade, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT g.id, g.grade_item_id, g.student_id, g.points, g.feedback, g.graded_by, g.graded_at
		 FROM student_grades g
		 JOIN grade_items i ON i.id = g.grade_item_id
		 WHERE i.course_id = $1`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStudentGrades(rows)
}

func scanStudentGrades(rows pgx.Rows) ([]model.StudentGrade, error) {
	var grades []model.StudentGrade
	for rows.Next() {
		var g model.StudentGrade
		if err := rows.Scan(&g.ID, &g.GradeItemID, &g.StudentID, &g.Points, &g.Feedback, &g.GradedBy, &g.GradedAt); err != nil {
			return nil, err
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}
