package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-studio/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Environment:   "test",
		StorageDriver: config.StorageMemory,
		CacheDriver:   config.CacheMemory,
		SessionTTL:    time.Hour,
		Events:        config.EventConfig{Enabled: true, Publisher: config.PublisherGoChannel, Topic: "test"},
	}
}

func TestNewWithMemoryBackends(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := New(context.Background(), memoryConfig(), logger)
	require.NoError(t, err)
	defer a.Close()

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/banks", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestNewRejectsUnknownDrivers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := memoryConfig()
	cfg.StorageDriver = "sqlite"
	_, err := New(context.Background(), cfg, logger)
	assert.ErrorContains(t, err, "unknown storage driver")

	cfg = memoryConfig()
	cfg.CacheDriver = "memcached"
	_, err = New(context.Background(), cfg, logger)
	assert.ErrorContains(t, err, "unknown cache driver")
}
