package app

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/prep-library-bot/internal/ctxutil"
	"github.com/garyellow/prep-library-bot/internal/logger"
)

func metricsRouter(enabled bool) *gin.Engine {
	router := gin.New()
	router.GET("/metrics", metricsAuthMiddleware(enabled, "prometheus", "secret123"), func(c *gin.Context) {
		c.String(http.StatusOK, "metrics")
	})
	return router
}

func TestMetricsAuthMiddleware_Disabled(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	metricsRouter(false).ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "metrics" {
		t.Errorf("got %d %q, want 200 %q", w.Code, w.Body.String(), "metrics")
	}
}

func TestMetricsAuthMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid credentials", "Basic " + base64.StdEncoding.EncodeToString([]byte("prometheus:secret123")), http.StatusOK},
		{"wrong username", "Basic " + base64.StdEncoding.EncodeToString([]byte("wronguser:secret123")), http.StatusUnauthorized},
		{"wrong password", "Basic " + base64.StdEncoding.EncodeToString([]byte("prometheus:wrong")), http.StatusUnauthorized},
		{"no auth header", "", http.StatusUnauthorized},
		{"malformed header", "Basic not-base64!!", http.StatusUnauthorized},
		{"bearer scheme", "Bearer token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			metricsRouter(true).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if got := w.Header().Get("WWW-Authenticate"); got != metricsRealm {
					t.Errorf("WWW-Authenticate = %q, want %q", got, metricsRealm)
				}
			}
		})
	}
}

func TestLoggingMiddleware_PropagatesRequestID(t *testing.T) {
	t.Parallel()

	var got string
	router := gin.New()
	router.Use(loggingMiddleware(logger.NewWithWriter("error", io.Discard)))
	router.GET("/", func(c *gin.Context) {
		got, _ = ctxutil.GetRequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-Id", "corr-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got != "corr-1" {
		t.Errorf("request ID = %q, want %q", got, "corr-1")
	}
}
