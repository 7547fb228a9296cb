package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradeview-api/internal/models"
)

// AssignmentRepository handles assignment persistence.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByCourse returns the assignments of one of a student's courses,
// oldest due date first.
func (r *AssignmentRepository) ListByCourse(ctx context.Context, studentID, courseID string) ([]models.Assignment, error) {
	const query = `SELECT id, student_id, course_id, name, description, category, due_date, earned_points, possible_points, created_at, updated_at
        FROM assignments WHERE student_id = $1 AND course_id = $2 ORDER BY due_date NULLS LAST, name`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, studentID, courseID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// ReplaceForCourse swaps the stored assignments of a course for a fresh set
// in one transaction. The caller's slice is left untouched; the stored rows
// are returned.
func (r *AssignmentRepository) ReplaceForCourse(ctx context.Context, studentID, courseID string, assignments []models.Assignment) ([]models.Assignment, error) {
	now := time.Now().UTC()
	rows := make([]models.Assignment, len(assignments))
	for i, assignment := range assignments {
		if assignment.ID == "" {
			assignment.ID = uuid.NewString()
		}
		assignment.StudentID = studentID
		assignment.CourseID = courseID
		assignment.CreatedAt = now
		assignment.UpdatedAt = now
		rows[i] = assignment
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM assignments WHERE student_id = $1 AND course_id = $2", studentID, courseID); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("clear assignments: %w", err)
	}
	const insert = `INSERT INTO assignments (id, student_id, course_id, name, description, category, due_date, earned_points, possible_points, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :name, :description, :category, :due_date, :earned_points, :possible_points, :created_at, :updated_at)`
	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
			tx.Rollback() //nolint:errcheck
			return nil, fmt.Errorf("insert assignment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit assignments: %w", err)
	}
	return rows, nil
}
