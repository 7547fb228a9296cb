package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/gradeview-api/internal/dto"
	"github.com/noah-isme/gradeview-api/internal/models"
	appErrors "github.com/noah-isme/gradeview-api/pkg/errors"
	"github.com/noah-isme/gradeview-api/pkg/jobs"
)

const recalcJobKind = "semester_recalculation"

type semesterRecalculator interface {
	RecalculateSemesters(ctx context.Context, studentID string) ([]models.Course, error)
}

type summaryInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// RecalculationService refreshes semester averages in the background.
type RecalculationService struct {
	grades semesterRecalculator
	cache  summaryInvalidator
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewRecalculationService wires a job queue whose workers recalculate one student per job.
func NewRecalculationService(grades semesterRecalculator, cache summaryInvalidator, metrics *MetricsService, cfg jobs.QueueConfig, logger *zap.Logger) *RecalculationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &RecalculationService{grades: grades, cache: cache, logger: logger}
	cfg.Logger = logger
	cfg.Observer = func(job jobs.Job, status string, err error) {
		metrics.RecordRecalcJob(status)
	}
	svc.queue = jobs.NewQueue("semester-recalc", svc.process, cfg)
	return svc
}

// Start launches the workers.
func (s *RecalculationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *RecalculationService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules a recalculation for a student and returns the job handle.
func (s *RecalculationService) Enqueue(ctx context.Context, studentID string) (*dto.RecalculationJobResponse, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id required")
	}
	job, err := s.queue.Enqueue(ctx, jobs.Job{Kind: recalcJobKind, Subject: studentID})
	if err != nil {
		if errors.Is(err, jobs.ErrQueueClosed) {
			return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "recalculation queue is not running")
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "recalculation queue is full")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue recalculation")
	}
	s.logger.Info("semester recalculation queued", zap.String("job_id", job.ID), zap.String("student_id", studentID))
	return &dto.RecalculationJobResponse{JobID: job.ID, StudentID: studentID, Status: "queued"}, nil
}

// Stats exposes the queue counters.
func (s *RecalculationService) Stats() jobs.Stats {
	return s.queue.Stats()
}

func (s *RecalculationService) process(ctx context.Context, job jobs.Job) error {
	courses, err := s.grades.RecalculateSemesters(ctx, job.Subject)
	if err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, StudentSummaryPattern(job.Subject)); err != nil {
			s.logger.Warn("summary cache invalidation failed", zap.String("student_id", job.Subject), zap.Error(err))
		}
	}
	s.logger.Debug("semester recalculation finished", zap.String("job_id", job.ID), zap.Int("courses", len(courses)))
	return nil
}
