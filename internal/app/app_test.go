package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"NetIntelAPI/internal/config"
	"NetIntelAPI/internal/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(redisAddr string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ShutdownTimeout: time.Second,
		},
		Redis:     config.RedisConfig{URL: "redis://" + redisAddr},
		Embedding: config.EmbeddingConfig{Model: "embed-english-v3.0", Dimensions: 1024, MinSimilarity: 0.7},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: []string{"*"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		},
		Monitor: config.MonitorConfig{BackgroundInterval: time.Hour, AlertStaleAfter: 24 * time.Hour},
	}
}

func TestNewWithoutOptionalDependencies(t *testing.T) {
	mr := miniredis.RunT(t)
	a, err := New(context.Background(), testConfig(mr.Addr()), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Nil(t, a.db)
	assert.Nil(t, a.broker)

	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/network/analyze", strings.NewReader(`{"failed_auth_attempts":25,"unusual_ports":[31337]}`))
	a.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"risk_score":70`)

	rec = httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/alerts?status=active", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestWrongMethodOnKnownRoute(t *testing.T) {
	mr := miniredis.RunT(t)
	a, err := New(context.Background(), testConfig(mr.Addr()), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	for _, tc := range []struct{ method, path string }{
		{http.MethodDelete, "/api/alerts"},
		{http.MethodDelete, "/api/health"},
		{http.MethodPatch, "/api/events"},
		{http.MethodGet, "/api/network/analyze"},
	} {
		rec := httptest.NewRecorder()
		a.server.Handler().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, tc.method+" "+tc.path)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String(), tc.method+" "+tc.path)
	}

	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Endpoint not found"}`, rec.Body.String())
}

func TestRejectsBadRedisURL(t *testing.T) {
	cfg := testConfig("")
	cfg.Redis.URL = "not a url"

	_, err := New(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	mr := miniredis.RunT(t)
	a, err := New(context.Background(), testConfig(mr.Addr()), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
