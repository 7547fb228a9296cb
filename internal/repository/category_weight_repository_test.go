package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradeview-api/internal/models"
)

func TestCategoryWeightRepositoryLoad(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "category", "weight", "created_at"}).
		AddRow("w1", "stu-1", "c1", "HW", 0.4, time.Now()).
		AddRow("w2", "stu-1", "c1", "Test", 0.6, time.Now())
	mock.ExpectQuery("SELECT id, student_id, course_id, category, weight").WithArgs("stu-1", "c1").WillReturnRows(rows)

	weights, err := NewCategoryWeightRepository(db).Load(context.Background(), "stu-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryWeights{"HW": 0.4, "Test": 0.6}, weights)
}

func TestCategoryWeightRepositoryLoadEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, student_id, course_id, category, weight").WithArgs("stu-1", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "course_id", "category", "weight", "created_at"}))

	weights, err := NewCategoryWeightRepository(db).Load(context.Background(), "stu-1", "c1")
	require.NoError(t, err)
	assert.NotNil(t, weights)
	assert.Empty(t, weights)
}

func TestCategoryWeightRepositoryReplaceInsertsSorted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM category_weights").WithArgs("stu-1", "c1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO category_weights").WithArgs(sqlmock.AnyArg(), "stu-1", "c1", "HW", 0.4, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO category_weights").WithArgs(sqlmock.AnyArg(), "stu-1", "c1", "Test", 0.6, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := NewCategoryWeightRepository(db).Replace(context.Background(), "stu-1", "c1", models.CategoryWeights{"Test": 0.6, "HW": 0.4})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
