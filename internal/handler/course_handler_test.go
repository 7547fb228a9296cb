package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradeview-api/internal/dto"
	"github.com/noah-isme/gradeview-api/internal/middleware"
	"github.com/noah-isme/gradeview-api/internal/models"
	"github.com/noah-isme/gradeview-api/internal/service"
	appErrors "github.com/noah-isme/gradeview-api/pkg/errors"
)

type fakeCourseGrades struct {
	student  string
	courseID string
	weights  dto.WeightsRequest
	assigns  dto.SyncAssignmentsRequest
	marks    dto.ReportCardRequest
	err      error
}

func (f *fakeCourseGrades) ListCourses(_ context.Context, studentID string) ([]models.Course, error) {
	f.student = studentID
	return []models.Course{{ID: "c1", StudentID: studentID, Name: "Algebra"}}, f.err
}

func (f *fakeCourseGrades) summary(studentID, courseID string) (*dto.GradeSummaryResponse, error) {
	f.student, f.courseID = studentID, courseID
	if f.err != nil {
		return nil, f.err
	}
	return &dto.GradeSummaryResponse{CourseID: courseID, Available: true}, nil
}

func (f *fakeCourseGrades) CourseSummary(_ context.Context, studentID, courseID string) (*dto.GradeSummaryResponse, error) {
	return f.summary(studentID, courseID)
}

func (f *fakeCourseGrades) ReplaceWeights(_ context.Context, studentID, courseID string, req dto.WeightsRequest) (*dto.GradeSummaryResponse, error) {
	f.weights = req
	return f.summary(studentID, courseID)
}

func (f *fakeCourseGrades) SyncAssignments(_ context.Context, studentID, courseID string, req dto.SyncAssignmentsRequest) (*dto.GradeSummaryResponse, error) {
	f.assigns = req
	return f.summary(studentID, courseID)
}

func (f *fakeCourseGrades) SaveCourse(_ context.Context, studentID, courseID string, req dto.CourseRequest) (*models.Course, error) {
	f.student, f.courseID = studentID, courseID
	return &models.Course{ID: courseID, StudentID: studentID, Name: req.Name}, f.err
}

func (f *fakeCourseGrades) UpdateReportCard(_ context.Context, studentID, courseID string, req dto.ReportCardRequest) (*models.Course, error) {
	f.student, f.courseID, f.marks = studentID, courseID, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Course{ID: courseID, RC1: req.RC1}, nil
}

func (f *fakeCourseGrades) RecalculateSemesters(_ context.Context, studentID string) ([]models.Course, error) {
	f.student = studentID
	return []models.Course{}, f.err
}

func (f *fakeCourseGrades) GPA(_ context.Context, studentID string) (*models.GPAResult, error) {
	return nil, appErrors.Clone(appErrors.ErrNotImplemented, "gpa conversion is not available")
}

type fakeRecalcQueue struct{ student string }

func (f *fakeRecalcQueue) Enqueue(_ context.Context, studentID string) (*dto.RecalculationJobResponse, error) {
	f.student = studentID
	return &dto.RecalculationJobResponse{JobID: "job-1", StudentID: studentID, Status: "queued"}, nil
}

type fakeExporter struct{ format string }

func (f *fakeExporter) Export(_ context.Context, studentID, format string) (*service.ExportResult, error) {
	f.format = format
	if format == "xlsx" {
		return nil, appErrors.ErrUnsupportedFormat
	}
	return &service.ExportResult{Filename: "grades.csv", ContentType: "text/csv", Body: []byte("Course\n")}, nil
}

func authenticated(c *gin.Context, studentID string) {
	c.Set(middleware.ContextClaimsKey, &models.StudentClaims{StudentID: studentID})
}

func newCourseHandler() (*CourseHandler, *fakeCourseGrades, *fakeRecalcQueue, *fakeExporter) {
	grades := &fakeCourseGrades{}
	queue := &fakeRecalcQueue{}
	exporter := &fakeExporter{}
	return NewCourseHandler(grades, queue, exporter), grades, queue, exporter
}

func TestCourseHandlerRequiresStudent(t *testing.T) {
	handler, _, _, _ := newCourseHandler()
	c, rec := newJSONContext(http.MethodGet, "/courses", "")
	handler.List(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCourseHandlerList(t *testing.T) {
	handler, grades, _, _ := newCourseHandler()
	c, rec := newJSONContext(http.MethodGet, "/courses", "")
	authenticated(c, "s1")

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", grades.student)
	assert.Contains(t, rec.Body.String(), `"meta":{"total":1}`)
}

func TestCourseHandlerSummary(t *testing.T) {
	handler, grades, _, _ := newCourseHandler()
	c, rec := newJSONContext(http.MethodGet, "/courses/c1/summary", "")
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	authenticated(c, "s1")

	handler.Summary(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c1", grades.courseID)
}

func TestCourseHandlerSummaryNotFound(t *testing.T) {
	handler, grades, _, _ := newCourseHandler()
	grades.err = appErrors.Clone(appErrors.ErrNotFound, "course not found")
	c, rec := newJSONContext(http.MethodGet, "/courses/x/summary", "")
	c.Params = gin.Params{{Key: "id", Value: "x"}}
	authenticated(c, "s1")

	handler.Summary(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourseHandlerReplaceWeights(t *testing.T) {
	handler, grades, _, _ := newCourseHandler()
	c, rec := newJSONContext(http.MethodPut, "/courses/c1/weights", `{"weights":{"Test":0.6,"HW":0.4}}`)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	authenticated(c, "s1")

	handler.ReplaceWeights(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CategoryWeights{"Test": 0.6, "HW": 0.4}, grades.weights.Weights)
}

func TestCourseHandlerSyncAssignments(t *testing.T) {
	handler, grades, _, _ := newCourseHandler()
	c, rec := newJSONContext(http.MethodPut, "/courses/c1/assignments", `{"assignments":[{"name":"Quiz 1","category":"Test","earned_points":"9","possible_points":10}]}`)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	authenticated(c, "s1")

	handler.SyncAssignments(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, grades.assigns.Assignments, 1)
	assert.Equal(t, "Quiz 1", grades.assigns.Assignments[0].Name)
}

func TestCourseHandlerUpdateReportCard(t *testing.T) {
	handler, grades, _, _ := newCourseHandler()
	c, rec := newJSONContext(http.MethodPut, "/courses/c1/report-card", `{"rc1":"A"}`)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	authenticated(c, "s1")

	handler.UpdateReportCard(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Mark("A"), grades.marks.RC1)

	c, rec = newJSONContext(http.MethodPut, "/courses/c1/report-card", `not json`)
	authenticated(c, "s1")
	handler.UpdateReportCard(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseHandlerRecalculate(t *testing.T) {
	handler, grades, queue, _ := newCourseHandler()

	c, rec := newJSONContext(http.MethodPost, "/courses/recalculate", "")
	authenticated(c, "s1")
	handler.Recalculate(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", grades.student)

	c, rec = newJSONContext(http.MethodPost, "/courses/recalculate/async", "")
	authenticated(c, "s2")
	handler.RecalculateAsync(c)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "s2", queue.student)
	assert.Contains(t, rec.Body.String(), `"job_id":"job-1"`)
}

func TestCourseHandlerExport(t *testing.T) {
	handler, _, _, exporter := newCourseHandler()

	c, rec := newJSONContext(http.MethodGet, "/courses/export", "")
	authenticated(c, "s1")
	handler.Export(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "grades.csv")
	assert.Equal(t, "Course\n", rec.Body.String())

	c, rec = newJSONContext(http.MethodGet, "/courses/export?format=xlsx", "")
	authenticated(c, "s1")
	handler.Export(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseHandlerGPANotImplemented(t *testing.T) {
	handler, _, _, _ := newCourseHandler()
	c, rec := newJSONContext(http.MethodGet, "/gpa", "")
	authenticated(c, "s1")
	handler.GPA(c)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestCourseHandlerSave(t *testing.T) {
	handler, grades, _, _ := newCourseHandler()
	c, rec := newJSONContext(http.MethodPut, "/courses/c7", `{"name":"Physics","rc1":91}`)
	c.Params = gin.Params{{Key: "id", Value: "c7"}}
	authenticated(c, "s1")

	handler.Save(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c7", grades.courseID)
	assert.Contains(t, rec.Body.String(), `"name":"Physics"`)
}
