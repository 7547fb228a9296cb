package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gradeview-api/internal/dto"
	"github.com/noah-isme/gradeview-api/internal/grading"
	"github.com/noah-isme/gradeview-api/internal/models"
	appErrors "github.com/noah-isme/gradeview-api/pkg/errors"
)

type courseStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Course, error)
	FindByID(ctx context.Context, studentID, id string) (*models.Course, error)
	UpdateReportCard(ctx context.Context, course *models.Course) error
	UpdateSemesterAverages(ctx context.Context, courses []models.Course) error
	Upsert(ctx context.Context, course *models.Course) error
}

type assignmentStore interface {
	ListByCourse(ctx context.Context, studentID, courseID string) ([]models.Assignment, error)
	ReplaceForCourse(ctx context.Context, studentID, courseID string, assignments []models.Assignment) ([]models.Assignment, error)
}

type weightStore interface {
	Load(ctx context.Context, studentID, courseID string) (models.CategoryWeights, error)
	Replace(ctx context.Context, studentID, courseID string, weights models.CategoryWeights) error
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// GradeServiceConfig tunes how the grade engine is invoked.
type GradeServiceConfig struct {
	MalformedPolicy grading.MalformedPolicy
	SummaryTTL      time.Duration
	GPA             grading.GPAConverter
}

// GradeService runs the grade engine over request payloads and stored courses.
type GradeService struct {
	courses     courseStore
	assignments assignmentStore
	weights     weightStore
	cache       summaryCache
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         GradeServiceConfig
}

// NewGradeService constructs a GradeService.
func NewGradeService(courses courseStore, assignments assignmentStore, weights weightStore, cache summaryCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg GradeServiceConfig) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GPA == nil {
		cfg.GPA = grading.UnimplementedGPAConverter{}
	}
	return &GradeService{
		courses:     courses,
		assignments: assignments,
		weights:     weights,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

// Compute runs the category-weighted course total over a caller supplied payload.
func (s *GradeService) Compute(ctx context.Context, req dto.ComputeSummaryRequest) (*dto.GradeSummaryResponse, error) {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	policy := s.cfg.MalformedPolicy
	if req.MalformedPolicy != "" {
		parsed, err := grading.ParseMalformedPolicy(req.MalformedPolicy)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		policy = parsed
	}
	resp := s.summarize("", req.Assignments, req.Weights, policy)
	return &resp, nil
}

// Semester derives both semester averages from four report-card marks.
func (s *GradeService) Semester(ctx context.Context, req dto.SemesterRequest) models.SemesterAverages {
	start := time.Now()
	result := grading.ComputeSemesterAverages(req.RC1, req.RC2, req.RC3, req.RC4)
	s.metrics.ObserveComputation(ComputationSemester, time.Since(start), false)
	return result
}

// ListCourses returns every stored course of a student.
func (s *GradeService) ListCourses(ctx context.Context, studentID string) ([]models.Course, error) {
	courses, err := s.courses.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// CourseSummary computes, or serves from cache, the grade summary of one stored course.
func (s *GradeService) CourseSummary(ctx context.Context, studentID, courseID string) (*dto.GradeSummaryResponse, error) {
	if _, err := s.ownedCourse(ctx, studentID, courseID); err != nil {
		return nil, err
	}

	key := SummaryKey(studentID, courseID)
	if s.cache != nil {
		var cached dto.GradeSummaryResponse
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	assignments, err := s.assignments.ListByCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	weights, err := s.weights.Load(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category weights")
	}

	resp := s.summarize(courseID, assignments, weights, s.cfg.MalformedPolicy)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, resp, s.cfg.SummaryTTL)
	}
	return &resp, nil
}

// ReplaceWeights stores a new category weight map for a course.
func (s *GradeService) ReplaceWeights(ctx context.Context, studentID, courseID string, req dto.WeightsRequest) (*dto.GradeSummaryResponse, error) {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, "category weights must be non-negative")
	}
	if _, err := s.ownedCourse(ctx, studentID, courseID); err != nil {
		return nil, err
	}
	if err := s.weights.Replace(ctx, studentID, courseID, req.Weights); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store category weights")
	}
	s.invalidate(ctx, studentID, courseID)
	return s.CourseSummary(ctx, studentID, courseID)
}

// SyncAssignments replaces the stored assignments of a course.
func (s *GradeService) SyncAssignments(ctx context.Context, studentID, courseID string, req dto.SyncAssignmentsRequest) (*dto.GradeSummaryResponse, error) {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignments payload")
	}
	if id, ok := duplicateAssignmentID(req.Assignments); ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate assignment id %q", id))
	}
	if _, err := s.ownedCourse(ctx, studentID, courseID); err != nil {
		return nil, err
	}
	if _, err := s.assignments.ReplaceForCourse(ctx, studentID, courseID, req.Assignments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store assignments")
	}
	s.invalidate(ctx, studentID, courseID)
	return s.CourseSummary(ctx, studentID, courseID)
}

// SaveCourse creates or refreshes a course owned by the student. Course ids
// are scoped to the student, so two students may mirror the same portal id.
// Semester averages are always derived from the submitted marks.
func (s *GradeService) SaveCourse(ctx context.Context, studentID, courseID string, req dto.CourseRequest) (*models.Course, error) {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := models.Course{ID: courseID, StudentID: studentID}
	existing, err := s.courses.FindByID(ctx, studentID, courseID)
	switch {
	case err == nil:
		course = *existing
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	course.Name, course.Teacher, course.Period, course.Room = req.Name, req.Teacher, req.Period, req.Room
	course.RC1, course.RC2, course.RC3, course.RC4 = req.RC1, req.RC2, req.RC3, req.RC4

	start := time.Now()
	updated := grading.UpdateCourse(course)
	s.metrics.ObserveComputation(ComputationSemester, time.Since(start), false)

	if err := s.courses.Upsert(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store course")
	}
	return &updated, nil
}

// UpdateReportCard stores new report-card marks and the semester averages derived from them.
func (s *GradeService) UpdateReportCard(ctx context.Context, studentID, courseID string, req dto.ReportCardRequest) (*models.Course, error) {
	course, err := s.ownedCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	course.RC1, course.RC2, course.RC3, course.RC4 = req.RC1, req.RC2, req.RC3, req.RC4

	start := time.Now()
	updated := grading.UpdateCourse(*course)
	s.metrics.ObserveComputation(ComputationSemester, time.Since(start), false)

	updated.UpdatedAt = time.Now().UTC()
	if err := s.courses.UpdateReportCard(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report card")
	}
	return &updated, nil
}

// RecalculateSemesters refreshes the semester averages of every course of a student.
func (s *GradeService) RecalculateSemesters(ctx context.Context, studentID string) ([]models.Course, error) {
	courses, err := s.courses.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	start := time.Now()
	updated := grading.UpdateCourses(courses)
	s.metrics.ObserveComputation(ComputationBatch, time.Since(start), false)

	if len(updated) == 0 {
		return updated, nil
	}
	if err := s.courses.UpdateSemesterAverages(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store semester averages")
	}
	s.logger.Info("semester averages recalculated", zap.String("student_id", studentID), zap.Int("courses", len(updated)))
	return updated, nil
}

// GPA converts the student's courses using the configured converter.
func (s *GradeService) GPA(ctx context.Context, studentID string) (*models.GPAResult, error) {
	courses, err := s.courses.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	result, err := s.cfg.GPA.Convert(courses)
	if err != nil {
		if errors.Is(err, grading.ErrGPAConversionUnavailable) {
			return nil, appErrors.Wrap(err, appErrors.ErrNotImplemented.Code, appErrors.ErrNotImplemented.Status, "gpa conversion is not available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to convert gpa")
	}
	return &result, nil
}

// Summaries computes the summary of every course of a student, keyed by course id.
func (s *GradeService) Summaries(ctx context.Context, studentID string, courses []models.Course) (map[string]dto.GradeSummaryResponse, error) {
	out := make(map[string]dto.GradeSummaryResponse, len(courses))
	for _, course := range courses {
		summary, err := s.CourseSummary(ctx, studentID, course.ID)
		if err != nil {
			return nil, err
		}
		out[course.ID] = *summary
	}
	return out, nil
}

func (s *GradeService) summarize(courseID string, assignments []models.Assignment, weights models.CategoryWeights, policy grading.MalformedPolicy) dto.GradeSummaryResponse {
	start := time.Now()
	summary := grading.ComputeCourseTotalWithPolicy(assignments, weights, policy)
	unavailable := grading.Unavailable(summary)
	s.metrics.ObserveComputation(ComputationCourseTotal, time.Since(start), unavailable)
	if unavailable {
		s.logger.Debug("course total unavailable", zap.String("course_id", courseID), zap.Stringer("policy", policy))
	}
	return dto.NewGradeSummaryResponse(courseID, summary, policy.String())
}

func (s *GradeService) ownedCourse(ctx context.Context, studentID, courseID string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// duplicateAssignmentID reports the first client supplied id that appears
// twice. Empty ids are assigned on insert and never clash.
func duplicateAssignmentID(assignments []models.Assignment) (string, bool) {
	seen := make(map[string]struct{}, len(assignments))
	for _, assignment := range assignments {
		if assignment.ID == "" {
			continue
		}
		if _, ok := seen[assignment.ID]; ok {
			return assignment.ID, true
		}
		seen[assignment.ID] = struct{}{}
	}
	return "", false
}

func (s *GradeService) invalidate(ctx context.Context, studentID, courseID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, SummaryKey(studentID, courseID)); err != nil {
		s.logger.Warn("summary cache invalidation failed", zap.String("course_id", courseID), zap.Error(err))
	}
}
