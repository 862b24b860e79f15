package api

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/ecogo-motion/internal/config"
	"github.com/jengzang/ecogo-motion/internal/middleware"
	"github.com/jengzang/ecogo-motion/internal/service"
)

func newRouter(t *testing.T, mutate func(*config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load()
	require.NoError(t, err)
	if mutate != nil {
		mutate(cfg)
	}

	detections := service.NewDetectionService(cfg.DetectionSettings(), cfg.RoadMatchSettings(), nil, nil, nil)
	t.Cleanup(detections.Shutdown)
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	t.Cleanup(limiter.Stop)

	return SetupRouter(cfg, Services{
		Detection:  detections,
		Navigation: service.NewNavigationService(cfg.NavigationSettings(), nil),
		Routes:     service.NewRouteService(),
		Limiter:    limiter,
	})
}

func TestHealth(t *testing.T) {
	r := newRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/navigations", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGzipResponses(t *testing.T) {
	r := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/navigations", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"state":"idle"`)
}

func TestAuthRequired(t *testing.T) {
	r := newRouter(t, func(cfg *config.Config) {
		cfg.Server.AuthRequired = true
		cfg.Server.JWTSecret = "router-secret"
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/navigations", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := middleware.NewAuthenticator("router-secret", "ecogo-motion").IssueToken("device-9", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/navigations", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code, "health stays public")
}

func TestRateLimited(t *testing.T) {
	r := newRouter(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = 2
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/routes/stats", strings.NewReader(`{"points":[]}`)))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
