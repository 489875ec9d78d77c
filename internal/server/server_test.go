package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/idlegarden/internal/database/memory"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/garden"
	"github.com/osse101/idlegarden/internal/logger"
	"github.com/osse101/idlegarden/internal/sse"
)

const testAPIKey = "test-key"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := garden.NewService(memory.NewStore(memory.DefaultCatalog()), nil, garden.Config{})
	hub := sse.NewHub()
	hub.Start()
	t.Cleanup(func() {
		hub.Stop()
		_ = svc.Shutdown(context.Background())
	})
	return NewRouter(Config{APIKey: testAPIKey}, nil, svc, hub)
}

func TestRouter_GardenRoutes(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/garden/state?user_id=u1", nil)
	req.Header.Set(HeaderAPIKey, testAPIKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snap domain.GardenSnapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Equal(t, "u1", snap.Economy.UserID)

	body := `{"user_id":"u1","plot_id":1,"plant_type_id":"carrot","expected_cost":100,"base_growth_seconds":30}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/garden/plant", strings.NewReader(body))
	req.Header.Set(HeaderAPIKey, testAPIKey)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_PublicAndProtected(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		key    string
		want   int
	}{
		{"healthz", http.MethodGet, "/healthz", "", http.StatusOK},
		{"readyz on memory store", http.MethodGet, "/readyz", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"state needs key", http.MethodGet, "/api/v1/garden/state?user_id=u1", "", http.StatusUnauthorized},
		{"admin needs key", http.MethodPost, "/api/v1/admin/garden/purge", "", http.StatusUnauthorized},
		{"admin purge", http.MethodPost, "/api/v1/admin/garden/purge", testAPIKey, http.StatusOK},
		{"unknown route", http.MethodGet, "/api/v1/nope", testAPIKey, http.StatusNotFound},
		{"wrong method", http.MethodGet, "/api/v1/garden/harvest", testAPIKey, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.key != "" {
				req.Header.Set(HeaderAPIKey, tt.key)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLoggingMiddleware_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderAPIKey, "secret-key-123")
	req.Header.Set(HeaderAuthorization, "Bearer mytoken")
	req.Header.Set("User-Agent", "TestAgent")

	loggingMiddleware(okHandler).ServeHTTP(httptest.NewRecorder(), req)

	logOutput := buf.String()
	require.Contains(t, logOutput, LogMsgRequestHeaders)
	assert.NotContains(t, logOutput, "secret-key-123")
	assert.NotContains(t, logOutput, "Bearer mytoken")
	assert.Contains(t, logOutput, "TestAgent")
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{"caller id is reused", "req-from-client", true},
		{"missing id is generated", "", false},
		{"oversized id is replaced", strings.Repeat("x", MaxRequestIDLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = logger.GetRequestID(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/garden/state", nil)
			if tt.incoming != "" {
				req.Header.Set(HeaderRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			loggingMiddleware(next).ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))
			if tt.reused {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
			}
		})
	}
}

func TestLoggingMiddleware_PreservesFlusher(t *testing.T) {
	var flushed bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		require.True(t, ok)
		f.Flush()
		flushed = true
	})

	rec := httptest.NewRecorder()
	loggingMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/garden/events", nil))

	assert.True(t, flushed)
	assert.True(t, rec.Flushed)
}
