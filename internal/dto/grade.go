package dto

import (
	"math"
	"sort"

	"github.com/noah-isme/gradeview-api/internal/models"
)

// ComputeSummaryRequest is the payload of POST /grades/compute.
type ComputeSummaryRequest struct {
	Assignments     []models.Assignment    `json:"assignments" validate:"omitempty,dive"`
	Weights         models.CategoryWeights `json:"weights" validate:"omitempty,dive,gte=0"`
	MalformedPolicy string                 `json:"malformed_policy" validate:"omitempty,oneof=propagate exclude"`
}

// SemesterRequest is the payload of POST /grades/semester.
type SemesterRequest struct {
	RC1 models.Mark `json:"rc1"`
	RC2 models.Mark `json:"rc2"`
	RC3 models.Mark `json:"rc3"`
	RC4 models.Mark `json:"rc4"`
}

// ReportCardRequest replaces the report-card marks of a stored course.
type ReportCardRequest struct {
	RC1 models.Mark `json:"rc1"`
	RC2 models.Mark `json:"rc2"`
	RC3 models.Mark `json:"rc3"`
	RC4 models.Mark `json:"rc4"`
}

// CourseRequest creates or refreshes a course mirrored from the grade portal.
type CourseRequest struct {
	Name    string      `json:"name" validate:"required"`
	Teacher string      `json:"teacher"`
	Period  string      `json:"period"`
	Room    string      `json:"room"`
	RC1     models.Mark `json:"rc1"`
	RC2     models.Mark `json:"rc2"`
	RC3     models.Mark `json:"rc3"`
	RC4     models.Mark `json:"rc4"`
}

// WeightsRequest replaces the category weights of a stored course.
type WeightsRequest struct {
	Weights models.CategoryWeights `json:"weights" validate:"required,dive,keys,required,endkeys,gte=0"`
}

// SyncAssignmentsRequest replaces the stored assignments of a course with the
// set most recently retrieved from the grade portal.
type SyncAssignmentsRequest struct {
	Assignments []models.Assignment `json:"assignments" validate:"omitempty,dive"`
}

// CategorySummaryResponse is one category row of a course summary. Values
// contaminated by malformed points are rendered as null.
type CategorySummaryResponse struct {
	Category       string   `json:"category"`
	Average        *float64 `json:"average"`
	Weight         float64  `json:"weight"`
	RawPointsSum   *float64 `json:"raw_points_sum"`
	RawPossibleSum *float64 `json:"raw_possible_sum"`
}

// GradeSummaryResponse is the wire form of models.GradeSummary.
type GradeSummaryResponse struct {
	CourseID        string                    `json:"course_id,omitempty"`
	CourseTotal     *float64                  `json:"course_total"`
	Available       bool                      `json:"available"`
	MalformedPolicy string                    `json:"malformed_policy"`
	Categories      []CategorySummaryResponse `json:"categories"`
}

// NewGradeSummaryResponse converts an engine summary for JSON output. JSON
// has no NaN, so unavailable values become null and Available turns false.
func NewGradeSummaryResponse(courseID string, summary models.GradeSummary, policy string) GradeSummaryResponse {
	resp := GradeSummaryResponse{
		CourseID:        courseID,
		CourseTotal:     finite(summary.CourseTotal),
		Available:       true,
		MalformedPolicy: policy,
		Categories:      make([]CategorySummaryResponse, 0, len(summary.Categories)),
	}
	names := make([]string, 0, len(summary.Categories))
	for name := range summary.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		category := summary.Categories[name]
		row := CategorySummaryResponse{
			Category:       name,
			Average:        finite(category.Average),
			Weight:         category.Weight,
			RawPointsSum:   finite(category.RawPointsSum),
			RawPossibleSum: finite(category.RawPossibleSum),
		}
		if row.Average == nil || row.RawPointsSum == nil || row.RawPossibleSum == nil {
			resp.Available = false
		}
		resp.Categories = append(resp.Categories, row)
	}
	if resp.CourseTotal == nil {
		resp.Available = false
	}
	return resp
}

// CourseResponse is a course together with its optional computed summary.
type CourseResponse struct {
	models.Course
	Summary *GradeSummaryResponse `json:"summary,omitempty"`
}

// RecalculationJobResponse is returned when a background recalculation is queued.
type RecalculationJobResponse struct {
	JobID     string `json:"job_id"`
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
