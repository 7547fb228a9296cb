package grading

import (
	"strings"

	"github.com/noah-isme/gradeview-api/internal/models"
)

// sentinelMarks are non-numeric report-card marks such as pass or exempt.
var sentinelMarks = map[string]struct{}{
	"P":      {},
	"PASS":   {},
	"EX":     {},
	"EXEMPT": {},
	"E":      {},
	"I":      {},
	"INC":    {},
	"NG":     {},
	"NM":     {},
	"W":      {},
	"--":     {},
	"*":      {},
}

// IsSentinel reports whether m is a recognised non-numeric mark.
func IsSentinel(m models.Mark) bool {
	_, ok := sentinelMarks[strings.ToUpper(strings.TrimSpace(string(m)))]
	return ok
}

// ParseAndRound normalises a report-card mark to a whole number. It reports
// false when the mark is absent, a sentinel or not numeric.
func ParseAndRound(m models.Mark) (float64, bool) {
	if strings.TrimSpace(string(m)) == "" || IsSentinel(m) {
		return 0, false
	}
	v, ok := ParseNumber(string(m))
	if !ok {
		return 0, false
	}
	return RoundTo(v, 0), true
}

// ComputeSemesterAverages combines rc1/rc2 into the first semester average
// and rc3/rc4 into the second. Each pair is handled independently.
func ComputeSemesterAverages(rc1, rc2, rc3, rc4 models.Mark) models.SemesterAverages {
	return models.SemesterAverages{
		SM1: combinePair(rc1, rc2),
		SM2: combinePair(rc3, rc4),
	}
}

// combinePair averages two marks without rounding the mean again. A single
// mark is used as is; no marks yields nil, which is distinct from zero.
func combinePair(a, b models.Mark) *float64 {
	first, hasFirst := ParseAndRound(a)
	second, hasSecond := ParseAndRound(b)
	var result float64
	switch {
	case hasFirst && hasSecond:
		result = (first + second) / 2
	case hasFirst:
		result = first
	case hasSecond:
		result = second
	default:
		return nil
	}
	return &result
}
