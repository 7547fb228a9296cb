package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradeview-api/internal/models"
)

const courseColumns = `id, student_id, name, teacher, period, room, rc1, rc2, rc3, rc4, sm1, sm2, created_at, updated_at`

// CourseRepository persists course records and their report-card marks.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListByStudent returns a student's courses ordered by period then name.
func (r *CourseRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE student_id = $1 ORDER BY period, name`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, studentID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns one of a student's courses. sql.ErrNoRows is returned
// unwrapped.
func (r *CourseRepository) FindByID(ctx context.Context, studentID, id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE student_id = $1 AND id = $2`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, studentID, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Upsert inserts a course or refreshes its descriptive fields and marks.
func (r *CourseRepository) Upsert(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO courses (` + courseColumns + `)
        VALUES (:id, :student_id, :name, :teacher, :period, :room, :rc1, :rc2, :rc3, :rc4, :sm1, :sm2, :created_at, :updated_at)
        ON CONFLICT (student_id, id) DO UPDATE SET name = EXCLUDED.name, teacher = EXCLUDED.teacher, period = EXCLUDED.period,
        room = EXCLUDED.room, rc1 = EXCLUDED.rc1, rc2 = EXCLUDED.rc2, rc3 = EXCLUDED.rc3, rc4 = EXCLUDED.rc4,
        sm1 = EXCLUDED.sm1, sm2 = EXCLUDED.sm2, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}
	return nil
}

// UpdateReportCard stores the marks and semester averages of one course.
func (r *CourseRepository) UpdateReportCard(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET rc1 = :rc1, rc2 = :rc2, rc3 = :rc3, rc4 = :rc4, sm1 = :sm1, sm2 = :sm2, updated_at = :updated_at WHERE student_id = :student_id AND id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update report card: %w", err)
	}
	return nil
}

// UpdateSemesterAverages writes recomputed averages for many courses atomically.
func (r *CourseRepository) UpdateSemesterAverages(ctx context.Context, courses []models.Course) error {
	if len(courses) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	const query = `UPDATE courses SET sm1 = $3, sm2 = $4, updated_at = $5 WHERE student_id = $1 AND id = $2`
	for _, course := range courses {
		if _, err := tx.ExecContext(ctx, query, course.StudentID, course.ID, course.SM1, course.SM2, now); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("update semester averages: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit semester averages: %w", err)
	}
	return nil
}
