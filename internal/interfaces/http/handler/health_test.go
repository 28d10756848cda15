package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func healthRouter(h *HealthHandler) *gin.Engine {
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/system/info", h.SystemInfo)
	return router
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler("sale-ledger", "1.0.0", map[string]Pinger{
			"database": PingerFunc(func(context.Context) error { return nil }),
		})
		w := httptest.NewRecorder()
		healthRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		decode(t, w, &resp)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "ok", resp.Checks["database"])
	})

	t.Run("failing dependency", func(t *testing.T) {
		h := NewHealthHandler("sale-ledger", "1.0.0", map[string]Pinger{
			"database": PingerFunc(func(context.Context) error { return nil }),
			"redis":    PingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") }),
		})
		w := httptest.NewRecorder()
		healthRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp HealthResponse
		decode(t, w, &resp)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Contains(t, resp.Checks["redis"], "refused")
	})

	t.Run("system info", func(t *testing.T) {
		h := NewHealthHandler("sale-ledger", "1.2.3", nil)
		w := httptest.NewRecorder()
		healthRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system/info", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var info SystemInfoResponse
		decode(t, w, &info)
		assert.Equal(t, "sale-ledger", info.Name)
		assert.Equal(t, "1.2.3", info.Version)
		assert.NotEmpty(t, info.GoVersion)
	})
}
