package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	errors "github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/scratchpad-mcp/library/log"
)

var ginModeOnce sync.Once

func setupGinTestMode() {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})
}

func newTestEngine(t *testing.T, health HealthFunc) *gin.Engine {
	t.Helper()
	setupGinTestMode()

	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test-Path", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	})
	engine, err := NewEngine(Options{
		MCPHandler: mcpHandler,
		Health:     health,
		Debug:      true,
		Logger:     log.Logger.Named("web_test"),
	})
	require.NoError(t, err)
	return engine
}

func TestNewEngineRequiresHandler(t *testing.T) {
	_, err := NewEngine(Options{Logger: log.Logger})
	require.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	engine := newTestEngine(t, func(context.Context) (map[string]any, error) {
		return map[string]any{"index_available": true}, nil
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, true, body["index_available"])
}

func TestHealthEndpointReportsFailure(t *testing.T) {
	engine := newTestEngine(t, func(context.Context) (map[string]any, error) {
		return nil, errors.New("database closed")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "database closed")
}

func TestMCPRouteForwardsToHandler(t *testing.T) {
	engine := newTestEngine(t, nil)

	for _, path := range []string{"/mcp", "/mcp/"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		require.Equal(t, http.StatusAccepted, w.Code, path)
		require.Equal(t, path, w.Header().Get("X-Test-Path"))
	}
}

func TestCORSMiddleware(t *testing.T) {
	setupGinTestMode()

	tests := []struct {
		name           string
		method         string
		origin         string
		expectedStatus int
		expectedCORS   bool
	}{
		{name: "no origin", method: http.MethodGet, expectedStatus: http.StatusOK},
		{name: "localhost", method: http.MethodPost, origin: "http://localhost:6274", expectedStatus: http.StatusOK, expectedCORS: true},
		{name: "ipv6 loopback preflight", method: http.MethodOptions, origin: "http://[::1]:6274", expectedStatus: http.StatusNoContent, expectedCORS: true},
		{name: "listed subdomain", method: http.MethodGet, origin: "https://notes.example.com", expectedStatus: http.StatusOK, expectedCORS: true},
		{name: "bare listed domain", method: http.MethodGet, origin: "https://example.com", expectedStatus: http.StatusOK, expectedCORS: true},
		{name: "lookalike domain", method: http.MethodGet, origin: "https://example.com.evil.com", expectedStatus: http.StatusOK},
		{name: "foreign preflight", method: http.MethodOptions, origin: "https://evil.com", expectedStatus: http.StatusForbidden},
		{name: "malformed origin", method: http.MethodGet, origin: "not-a-valid-url", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(newCORSMiddleware([]string{"localhost", "::1", ".example.com"}))
			router.Any("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCORS {
				require.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
				require.Equal(t, "Mcp-Session-Id", w.Header().Get("Access-Control-Expose-Headers"))
			} else {
				require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
