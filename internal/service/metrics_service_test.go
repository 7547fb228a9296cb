package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *MetricsService) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMetricsServiceCountsComputations(t *testing.T) {
	m := NewMetricsService()
	m.ObserveComputation(ComputationCourseTotal, time.Microsecond, false)
	m.ObserveComputation(ComputationCourseTotal, time.Microsecond, true)
	m.ObserveComputation(ComputationSemester, time.Microsecond, false)

	body := scrape(t, m)
	assert.Contains(t, body, `grade_computations_total{kind="course_total"} 2`)
	assert.Contains(t, body, `grade_computations_total{kind="semester"} 1`)
	assert.Contains(t, body, "grade_unavailable_total 1")
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/courses", http.StatusOK, 10*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordRecalcJob("succeeded")

	body := scrape(t, m)
	assert.True(t, strings.Contains(body, "http_requests_total"))
	assert.True(t, strings.Contains(body, "cache_hits_total 1"))
	assert.True(t, strings.Contains(body, `semester_recalculation_jobs_total{status="succeeded"} 1`))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveComputation(ComputationBatch, time.Millisecond, true)
	m.RecordCacheOperation(false, time.Millisecond)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
