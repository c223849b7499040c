package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-activation/config"
	"patient-activation/storage"
)

func TestRouter_CORS(t *testing.T) {
	h := NewRouter(config.ServerConfig{}, storage.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/objectives", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSRestrictedOrigins(t *testing.T) {
	cfg := config.ServerConfig{CORSAllowedOrigins: []string{"https://care.example.org"}}
	h := NewRouter(cfg, storage.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/objectives", nil)
	req.Header.Set("Origin", "https://care.example.org")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://care.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/objectives", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_ProbesAndMetrics(t *testing.T) {
	h := NewRouter(config.ServerConfig{}, storage.Instrument(storage.NewMemoryStore()))

	for _, path := range []string{"/healthz", "/readyz", "/api/objectives"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "objective_store_operation_duration_seconds"))
	assert.True(t, strings.Contains(body, `path="/api/objectives"`))
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Backend: config.BackendMemory, Table: storage.TableName}}
		store, closeStore, err := openStore(ctx, cfg)
		require.NoError(t, err)
		defer closeStore()

		_, err = store.List(ctx)
		assert.NoError(t, err)
	})

	t.Run("SQLite", func(t *testing.T) {
		cfg := &config.Config{
			Storage: config.StorageConfig{Backend: config.BackendSQLite, Table: storage.TableName},
			SQLite:  config.SQLiteConfig{Path: ":memory:"},
		}
		store, closeStore, err := openStore(ctx, cfg)
		require.NoError(t, err)
		defer closeStore()

		require.NoError(t, ensureSchema(ctx, store))
		list, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Unknown", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Backend: "cassandra"}}
		_, _, err := openStore(ctx, cfg)
		assert.Error(t, err)
	})
}
