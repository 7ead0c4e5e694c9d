package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoattend/internal/platform/config"
	"geoattend/internal/platform/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func testConfig() config.Config {
	return config.Config{MaxBodyBytes: 1 << 20, MetricsEnabled: true, RateLimitPerMin: 0}
}

func TestHealthAndReadiness(t *testing.T) {
	router := NewRouter(RouterDeps{Config: testConfig(), DB: stubPinger{}, Metrics: metrics.New()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewRouter(RouterDeps{Config: testConfig(), DB: stubPinger{err: errors.New("down")}})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	collector := metrics.New()
	router := NewRouter(RouterDeps{Config: testConfig(), DB: stubPinger{}, Metrics: collector})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, float64(1), env.Data["requestsTotal"])

	cfg := testConfig()
	cfg.MetricsEnabled = false
	disabled := NewRouter(RouterDeps{Config: cfg, DB: stubPinger{}})
	rec = httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(context.Background(), config.Config{})
	require.Error(t, err)
}
