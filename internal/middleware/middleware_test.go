package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradeview-api/internal/models"
	appErrors "github.com/noah-isme/gradeview-api/pkg/errors"
	"github.com/noah-isme/gradeview-api/pkg/logger"
)

type stubValidator struct {
	claims *models.StudentClaims
	err    error
	token  string
}

func (s *stubValidator) ValidateToken(token string) (*models.StudentClaims, error) {
	s.token = token
	return s.claims, s.err
}

func newJWTRouter(v TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", JWT(v), func(c *gin.Context) {
		claims := Claims(c)
		c.JSON(http.StatusOK, gin.H{"student": claims.StudentID, "logged": c.GetString(logger.StudentKey)})
	})
	return router
}

func TestJWTAcceptsBearerToken(t *testing.T) {
	v := &stubValidator{claims: &models.StudentClaims{StudentID: "s1"}}
	router := newJWTRouter(v)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer  abc ")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"student":"s1","logged":"s1"}`, w.Body.String())
	assert.Equal(t, "abc", v.token)
}

func TestJWTRejects(t *testing.T) {
	cases := map[string]struct {
		header string
		err    error
	}{
		"missing":       {header: ""},
		"wrong scheme":  {header: "Basic abc"},
		"empty token":   {header: "Bearer "},
		"invalid token": {header: "Bearer abc", err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			router := newJWTRouter(&stubValidator{err: tc.err})
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestClaimsWithoutJWT(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, Claims(c))
}

type observation struct {
	method, path string
	status       int
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{method, path, status})
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &recordingObserver{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/courses/:id/summary", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/courses/a/summary", "/courses/b/summary", "/nope"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []observation{
		{http.MethodGet, "/courses/:id/summary", http.StatusNoContent},
		{http.MethodGet, "/courses/:id/summary", http.StatusNoContent},
		{http.MethodGet, "unmatched", http.StatusNotFound},
	}, observer.seen)
}

func TestMetricsNilObserver(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Metrics(nil))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
