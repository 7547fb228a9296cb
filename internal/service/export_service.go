package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gradeview-api/internal/dto"
	"github.com/noah-isme/gradeview-api/internal/models"
	appErrors "github.com/noah-isme/gradeview-api/pkg/errors"
	"github.com/noah-isme/gradeview-api/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var gradeSheetColumns = []string{"Course", "Teacher", "RC1", "RC2", "SM1", "RC3", "RC4", "SM2", "Course Total"}

type gradeSheetSource interface {
	ListCourses(ctx context.Context, studentID string) ([]models.Course, error)
	Summaries(ctx context.Context, studentID string, courses []models.Course) (map[string]dto.GradeSummaryResponse, error)
}

type sheetRenderer interface {
	Render(sheet export.Sheet) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Enabled bool
	Title   string
}

// ExportResult is a rendered grade sheet ready to be sent as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders a student's grade sheet.
type ExportService struct {
	source gradeSheetSource
	csv    sheetRenderer
	pdf    sheetRenderer
	cfg    ExportConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the pkg/export defaults.
func NewExportService(source gradeSheetSource, cfg ExportConfig, logger *zap.Logger, csv, pdf sheetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Title == "" {
		cfg.Title = "Grade Sheet"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{source: source, csv: csv, pdf: pdf, cfg: cfg, logger: logger, now: time.Now}
}

// Export renders every course of the student in the requested format.
func (s *ExportService) Export(ctx context.Context, studentID, format string) (*ExportResult, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "exports are disabled")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	var (
		renderer    sheetRenderer
		contentType string
	)
	switch format {
	case FormatCSV:
		renderer, contentType = s.csv, "text/csv"
	case FormatPDF:
		renderer, contentType = s.pdf, "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}

	courses, err := s.source.ListCourses(ctx, studentID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.source.Summaries(ctx, studentID, courses)
	if err != nil {
		return nil, err
	}

	sheet := buildGradeSheet(s.cfg.Title, courses, summaries)
	body, err := renderer.Render(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render grade sheet")
	}
	s.logger.Info("grade sheet exported", zap.String("student_id", studentID), zap.String("format", format), zap.Int("courses", len(courses)))

	return &ExportResult{
		Filename:    fmt.Sprintf("grades-%s.%s", s.now().UTC().Format("20060102"), format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func buildGradeSheet(title string, courses []models.Course, summaries map[string]dto.GradeSummaryResponse) export.Sheet {
	rows := make([][]string, 0, len(courses))
	for _, course := range courses {
		total := ""
		if summary, ok := summaries[course.ID]; ok {
			total = formatOptional(summary.CourseTotal)
		}
		rows = append(rows, []string{
			course.Name,
			course.Teacher,
			string(course.RC1),
			string(course.RC2),
			formatOptional(course.SM1),
			string(course.RC3),
			string(course.RC4),
			formatOptional(course.SM2),
			total,
		})
	}
	return export.Sheet{Title: title, Columns: gradeSheetColumns, Rows: rows}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
