package grading

import (
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/gradeview-api/internal/models"
)

// ParseNumber coerces text to a finite float64. Surrounding whitespace is
// ignored; empty, non-numeric and non-finite input reports false.
func ParseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// RoundTo rounds v to the given number of decimal places, half away from zero.
// NaN is returned unchanged.
func RoundTo(v float64, places int) float64 {
	if places <= 0 {
		return math.Round(v)
	}
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}

// parsePoints yields NaN for a score that does not parse.
func parsePoints(s models.Score) float64 {
	v, ok := ParseNumber(string(s))
	if !ok {
		return math.NaN()
	}
	return v
}
