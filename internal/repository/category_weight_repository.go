package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradeview-api/internal/models"
)

// CategoryWeightRepository manages per-course category weights.
type CategoryWeightRepository struct {
	db *sqlx.DB
}

// NewCategoryWeightRepository creates a new repository instance.
func NewCategoryWeightRepository(db *sqlx.DB) *CategoryWeightRepository {
	return &CategoryWeightRepository{db: db}
}

// List returns the weight rows of one of a student's courses ordered by category.
func (r *CategoryWeightRepository) List(ctx context.Context, studentID, courseID string) ([]models.CategoryWeight, error) {
	const query = `SELECT id, student_id, course_id, category, weight, created_at FROM category_weights
        WHERE student_id = $1 AND course_id = $2 ORDER BY category`
	var rows []models.CategoryWeight
	if err := r.db.SelectContext(ctx, &rows, query, studentID, courseID); err != nil {
		return nil, fmt.Errorf("list category weights: %w", err)
	}
	return rows, nil
}

// Load returns the weight map of a course. A course without weights yields
// an empty map.
func (r *CategoryWeightRepository) Load(ctx context.Context, studentID, courseID string) (models.CategoryWeights, error) {
	rows, err := r.List(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	weights := make(models.CategoryWeights, len(rows))
	for _, row := range rows {
		weights[row.Category] = row.Weight
	}
	return weights, nil
}

// Replace rewrites all weights of a course in a transaction.
func (r *CategoryWeightRepository) Replace(ctx context.Context, studentID, courseID string, weights models.CategoryWeights) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM category_weights WHERE student_id = $1 AND course_id = $2", studentID, courseID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear category weights: %w", err)
	}

	categories := make([]string, 0, len(weights))
	for category := range weights {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	const insert = `INSERT INTO category_weights (id, student_id, course_id, category, weight, created_at)
        VALUES (:id, :student_id, :course_id, :category, :weight, :created_at)`
	now := time.Now().UTC()
	for _, category := range categories {
		row := models.CategoryWeight{ID: uuid.NewString(), StudentID: studentID, CourseID: courseID, Category: category, Weight: weights[category], CreatedAt: now}
		if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert category weight: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit category weights: %w", err)
	}
	return nil
}
