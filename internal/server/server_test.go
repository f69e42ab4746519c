package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pricewatch/internal/config"
	"pricewatch/internal/pkg/clock"
	"pricewatch/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Env: "development"},
		Store:     config.StoreConfig{Driver: config.StoreDriverMemory},
		RateLimit: config.RateLimitConfig{Requests: 2, WindowSeconds: 60},
	}
}

func serve(srv *Server, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	return w
}

func TestServer_RoutesAndHealth(t *testing.T) {
	srv := NewServer(testConfig(), zap.NewNop(), repository.NewMemoryStores(), nil, clock.NewMockClock(time.Now()))

	w := serve(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(srv, http.MethodPost, "/api/price-entries",
		`{"productId":"P1","productCategory":"Dairy","brand":"Acme","storeName":"Central","price":2.5,"date":"2024-06-10"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/api/price-entries/"))

	w = serve(srv, http.MethodGet, location, "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/api/discount-entries", "").Code)
	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/api/processed-files", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(srv, http.MethodGet, "/api/unknown", "").Code)
}

func TestServer_HealthReportsStoreFailure(t *testing.T) {
	stores := repository.NewMemoryStores()
	stores.Ping = func(context.Context) error { return errors.New("dial tcp 10.0.0.7:27017: connection refused") }
	core, logs := observer.New(zap.ErrorLevel)
	srv := NewServer(testConfig(), zap.New(core), stores, nil, clock.NewRealClock())

	w := serve(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"down"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "10.0.0.7")

	entries := logs.FilterMessage("Store health check failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "connection refused")
}

func TestServer_RateLimitEnabled(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	srv := NewServer(cfg, zap.NewNop(), repository.NewMemoryStores(), redisClient, clock.NewRealClock())
	t.Cleanup(func() { _ = srv.Close() })

	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/api/price-entries", "").Code)
	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/api/price-entries", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(srv, http.MethodGet, "/api/price-entries", "").Code)
}

func TestServer_CloseReleasesStores(t *testing.T) {
	closed := false
	stores := repository.NewMemoryStores()
	stores.Close = func(context.Context) error {
		closed = true
		return nil
	}

	srv := NewServer(testConfig(), zap.NewNop(), stores, nil, clock.NewRealClock())
	require.NoError(t, srv.Close())
	assert.True(t, closed)
	assert.NotNil(t, srv.Importer())
}
