package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradeview-api/internal/dto"
	"github.com/noah-isme/gradeview-api/internal/models"
	"github.com/noah-isme/gradeview-api/internal/service"
	appErrors "github.com/noah-isme/gradeview-api/pkg/errors"
	"github.com/noah-isme/gradeview-api/pkg/response"
)

type courseGradeService interface {
	ListCourses(ctx context.Context, studentID string) ([]models.Course, error)
	CourseSummary(ctx context.Context, studentID, courseID string) (*dto.GradeSummaryResponse, error)
	ReplaceWeights(ctx context.Context, studentID, courseID string, req dto.WeightsRequest) (*dto.GradeSummaryResponse, error)
	SyncAssignments(ctx context.Context, studentID, courseID string, req dto.SyncAssignmentsRequest) (*dto.GradeSummaryResponse, error)
	SaveCourse(ctx context.Context, studentID, courseID string, req dto.CourseRequest) (*models.Course, error)
	UpdateReportCard(ctx context.Context, studentID, courseID string, req dto.ReportCardRequest) (*models.Course, error)
	RecalculateSemesters(ctx context.Context, studentID string) ([]models.Course, error)
	GPA(ctx context.Context, studentID string) (*models.GPAResult, error)
}

type recalculationQueue interface {
	Enqueue(ctx context.Context, studentID string) (*dto.RecalculationJobResponse, error)
}

type gradeSheetExporter interface {
	Export(ctx context.Context, studentID, format string) (*service.ExportResult, error)
}

// CourseHandler exposes the authenticated student's stored courses.
type CourseHandler struct {
	grades  courseGradeService
	recalc  recalculationQueue
	exports gradeSheetExporter
}

// NewCourseHandler constructs handler.
func NewCourseHandler(grades courseGradeService, recalc recalculationQueue, exports gradeSheetExporter) *CourseHandler {
	return &CourseHandler{grades: grades, recalc: recalc, exports: exports}
}

// List godoc
// @Summary List the student's courses
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	courses, err := h.grades.ListCourses(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, map[string]interface{}{"total": len(courses)})
}

// Summary godoc
// @Summary Category breakdown and course total of one course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/summary [get]
func (h *CourseHandler) Summary(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	summary, err := h.grades.CourseSummary(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Save godoc
// @Summary Create or refresh a course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body dto.CourseRequest true "Course"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Save(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.grades.SaveCourse(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// ReplaceWeights godoc
// @Summary Replace the category weights of a course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body dto.WeightsRequest true "Category weights"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/weights [put]
func (h *CourseHandler) ReplaceWeights(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	var req dto.WeightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	summary, err := h.grades.ReplaceWeights(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// SyncAssignments godoc
// @Summary Replace the stored assignments of a course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body dto.SyncAssignmentsRequest true "Assignments"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/assignments [put]
func (h *CourseHandler) SyncAssignments(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	var req dto.SyncAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	summary, err := h.grades.SyncAssignments(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// UpdateReportCard godoc
// @Summary Store report-card marks and derive semester averages
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body dto.ReportCardRequest true "Report-card marks"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/report-card [put]
func (h *CourseHandler) UpdateReportCard(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	var req dto.ReportCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.grades.UpdateReportCard(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Recalculate godoc
// @Summary Recalculate semester averages of every course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /courses/recalculate [post]
func (h *CourseHandler) Recalculate(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	courses, err := h.grades.RecalculateSemesters(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, map[string]interface{}{"total": len(courses)})
}

// RecalculateAsync godoc
// @Summary Queue a background semester recalculation
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 202 {object} response.Envelope
// @Router /courses/recalculate/async [post]
func (h *CourseHandler) RecalculateAsync(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	job, err := h.recalc.Enqueue(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Export godoc
// @Summary Download the grade sheet
// @Tags Courses
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /courses/export [get]
func (h *CourseHandler) Export(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	result, err := h.exports.Export(c.Request.Context(), studentID, c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

// GPA godoc
// @Summary Convert course marks to a GPA
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 501 {object} response.Envelope
// @Router /gpa [get]
func (h *CourseHandler) GPA(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	result, err := h.grades.GPA(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
