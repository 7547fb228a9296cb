package grading

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/noah-isme/gradeview-api/internal/models"
)

// MalformedPolicy selects how assignments with unparseable points are treated.
type MalformedPolicy int

const (
	// MalformedPropagate lets NaN flow into the category sums, the category
	// average and, through its weight, the course total.
	MalformedPropagate MalformedPolicy = iota
	// MalformedExclude skips assignments whose earned or possible points do
	// not parse, as if they had never been delivered.
	MalformedExclude
)

// String implements fmt.Stringer.
func (p MalformedPolicy) String() string {
	switch p {
	case MalformedExclude:
		return "exclude"
	default:
		return "propagate"
	}
}

// ParseMalformedPolicy maps a configuration value onto a policy.
func ParseMalformedPolicy(raw string) (MalformedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "propagate":
		return MalformedPropagate, nil
	case "exclude":
		return MalformedExclude, nil
	default:
		return MalformedPropagate, fmt.Errorf("unknown malformed policy %q", raw)
	}
}

type tally struct {
	earned   float64
	possible float64
}

// ComputeCourseTotal groups assignments by category and combines the
// category averages into a weighted course total. Malformed points propagate
// as NaN.
func ComputeCourseTotal(assignments []models.Assignment, weights models.CategoryWeights) models.GradeSummary {
	return ComputeCourseTotalWithPolicy(assignments, weights, MalformedPropagate)
}

// ComputeCourseTotalWithPolicy is ComputeCourseTotal with an explicit policy
// for assignments whose points do not parse.
func ComputeCourseTotalWithPolicy(assignments []models.Assignment, weights models.CategoryWeights, policy MalformedPolicy) models.GradeSummary {
	tallies := make(map[string]*tally)
	for _, assignment := range assignments {
		earned := parsePoints(assignment.EarnedPoints)
		possible := parsePoints(assignment.PossiblePoints)
		if policy == MalformedExclude && (math.IsNaN(earned) || math.IsNaN(possible)) {
			continue
		}
		t, ok := tallies[assignment.Category]
		if !ok {
			t = &tally{}
			tallies[assignment.Category] = t
		}
		t.earned += earned
		t.possible += possible
	}

	// Sorted so the floating point sums do not depend on map iteration order.
	names := make([]string, 0, len(tallies))
	for name := range tallies {
		names = append(names, name)
	}
	sort.Strings(names)

	summary := models.GradeSummary{Categories: make(map[string]models.CategorySummary, len(names))}
	var weightedSum, weightSum float64
	for _, name := range names {
		t := tallies[name]
		average := 0.0
		if t.possible > 0 {
			average = RoundTo(t.earned/t.possible*100, 2)
		}
		weight := weights[name]
		summary.Categories[name] = models.CategorySummary{
			Average:        average,
			Weight:         weight,
			RawPointsSum:   t.earned,
			RawPossibleSum: t.possible,
		}
		weightedSum += average * weight
		weightSum += weight
	}

	if weightSum != 0 {
		summary.CourseTotal = RoundTo(weightedSum/weightSum, 2)
	}
	return summary
}

// Unavailable reports whether the summary was contaminated by malformed input
// and should be shown as unavailable rather than as a number.
func Unavailable(summary models.GradeSummary) bool {
	if math.IsNaN(summary.CourseTotal) {
		return true
	}
	for _, category := range summary.Categories {
		if math.IsNaN(category.Average) || math.IsNaN(category.RawPointsSum) || math.IsNaN(category.RawPossibleSum) {
			return true
		}
	}
	return false
}
