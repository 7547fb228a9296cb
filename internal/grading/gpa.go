package grading

import (
	"errors"

	"github.com/noah-isme/gradeview-api/internal/models"
)

// ErrGPAConversionUnavailable is returned when no GPA scale has been plugged in.
var ErrGPAConversionUnavailable = errors.New("gpa conversion not implemented")

// GPAConverter converts course grades to a 4.0-style scale.
type GPAConverter interface {
	Convert(courses []models.Course) (models.GPAResult, error)
}

// UnimplementedGPAConverter is the default converter. It performs no
// conversion.
type UnimplementedGPAConverter struct{}

// Convert always fails with ErrGPAConversionUnavailable.
func (UnimplementedGPAConverter) Convert([]models.Course) (models.GPAResult, error) {
	return models.GPAResult{}, ErrGPAConversionUnavailable
}
