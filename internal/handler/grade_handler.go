package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradeview-api/internal/dto"
	"github.com/noah-isme/gradeview-api/internal/models"
	appErrors "github.com/noah-isme/gradeview-api/pkg/errors"
	"github.com/noah-isme/gradeview-api/pkg/response"
)

type gradeCalculator interface {
	Compute(ctx context.Context, req dto.ComputeSummaryRequest) (*dto.GradeSummaryResponse, error)
	Semester(ctx context.Context, req dto.SemesterRequest) models.SemesterAverages
}

// GradeHandler exposes the stateless grade computations.
type GradeHandler struct {
	grades gradeCalculator
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades gradeCalculator) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Compute godoc
// @Summary Compute a category-weighted course total
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.ComputeSummaryRequest true "Assignments and category weights"
// @Success 200 {object} response.Envelope
// @Router /grades/compute [post]
func (h *GradeHandler) Compute(c *gin.Context) {
	var req dto.ComputeSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	summary, err := h.grades.Compute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Semester godoc
// @Summary Compute semester averages from report-card marks
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.SemesterRequest true "Report-card marks"
// @Success 200 {object} response.Envelope
// @Router /grades/semester [post]
func (h *GradeHandler) Semester(c *gin.Context) {
	var req dto.SemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	response.JSON(c, http.StatusOK, h.grades.Semester(c.Request.Context(), req))
}
