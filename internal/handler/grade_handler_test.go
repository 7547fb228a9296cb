package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradeview-api/internal/dto"
	"github.com/noah-isme/gradeview-api/internal/models"
	appErrors "github.com/noah-isme/gradeview-api/pkg/errors"
)

type fakeGradeCalculator struct {
	lastCompute  dto.ComputeSummaryRequest
	lastSemester dto.SemesterRequest
	computeErr   error
}

func (f *fakeGradeCalculator) Compute(_ context.Context, req dto.ComputeSummaryRequest) (*dto.GradeSummaryResponse, error) {
	f.lastCompute = req
	if f.computeErr != nil {
		return nil, f.computeErr
	}
	total := 91.0
	return &dto.GradeSummaryResponse{CourseTotal: &total, Available: true, MalformedPolicy: "propagate", Categories: []dto.CategorySummaryResponse{}}, nil
}

func (f *fakeGradeCalculator) Semester(_ context.Context, req dto.SemesterRequest) models.SemesterAverages {
	f.lastSemester = req
	sm1 := 92.5
	return models.SemesterAverages{SM1: &sm1}
}

func newJSONContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestGradeHandlerCompute(t *testing.T) {
	fake := &fakeGradeCalculator{}
	handler := NewGradeHandler(fake)
	c, rec := newJSONContext(http.MethodPost, "/grades/compute",
		`{"assignments":[{"category":"Test","earned_points":90,"possible_points":"100"}],"weights":{"Test":1}}`)

	handler.Compute(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data dto.GradeSummaryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data.CourseTotal)
	assert.Equal(t, 91.0, *body.Data.CourseTotal)
	require.Len(t, fake.lastCompute.Assignments, 1)
	assert.Equal(t, models.Score("90"), fake.lastCompute.Assignments[0].EarnedPoints)
}

func TestGradeHandlerComputeBadJSON(t *testing.T) {
	handler := NewGradeHandler(&fakeGradeCalculator{})
	c, rec := newJSONContext(http.MethodPost, "/grades/compute", `{"assignments":`)
	handler.Compute(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGradeHandlerComputeServiceError(t *testing.T) {
	handler := NewGradeHandler(&fakeGradeCalculator{computeErr: appErrors.Clone(appErrors.ErrValidation, "bad policy")})
	c, rec := newJSONContext(http.MethodPost, "/grades/compute", `{}`)
	handler.Compute(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad policy")
}

func TestGradeHandlerSemester(t *testing.T) {
	fake := &fakeGradeCalculator{}
	handler := NewGradeHandler(fake)
	c, rec := newJSONContext(http.MethodPost, "/grades/semester", `{"rc1":"90","rc2":95,"rc3":"P","rc4":null}`)

	handler.Semester(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"sm1":92.5,"sm2":null}}`, rec.Body.String())
	assert.Equal(t, models.Mark("95"), fake.lastSemester.RC2)
	assert.Equal(t, models.Mark("P"), fake.lastSemester.RC3)
}
