package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/auth"
	"github.com/saleledger/backend/internal/infrastructure/config"
	"github.com/saleledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: expiration,
		Issuer:                "test-ledger",
	})
}

type failingBlacklist struct{}

func (failingBlacklist) AddToBlacklist(context.Context, string, time.Duration) error {
	return errors.New("redis down")
}

func (failingBlacklist) IsBlacklisted(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func sessionRouter(cfg JWTMiddlewareConfig, seen *shared.Session) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	handler := func(c *gin.Context) {
		if s, ok := shared.SessionFromContext(c.Request.Context()); ok && seen != nil {
			*seen = s
		}
		c.Status(http.StatusOK)
	}
	router.GET("/api/v1/sales", handler)
	router.POST("/api/v1/auth/login", handler)
	return router
}

func authorizedGet(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	if header != "" {
		req.Header.Set(AuthHeaderKey, header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTAuthMiddleware_PutsSessionOnContext(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	userID := uuid.New()
	token, err := svc.GenerateToken(userID, "caixa1")
	require.NoError(t, err)

	var seen shared.Session
	router := sessionRouter(DefaultJWTConfig(svc), &seen)
	w := authorizedGet(router, "Bearer "+token.AccessToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, seen.UserID)
	assert.Equal(t, "caixa1", seen.Username)
	assert.Equal(t, token.Claims.ID, seen.TokenID)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	expired, err := newTestJWTService(-time.Minute).GenerateToken(uuid.New(), "caixa1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeTokenInvalid},
		{"not bearer", "Basic dXNlcjpwYXNz", dto.ErrCodeTokenInvalid},
		{"empty token", "Bearer ", dto.ErrCodeTokenInvalid},
		{"garbage", "Bearer not.a.jwt", dto.ErrCodeTokenInvalid},
		{"expired", "Bearer " + expired.AccessToken, dto.ErrCodeTokenExpired},
	}
	router := sessionRouter(DefaultJWTConfig(svc), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := authorizedGet(router, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := sessionRouter(DefaultJWTConfig(newTestJWTService(time.Hour)), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	cfg := DefaultJWTConfig(newTestJWTService(time.Hour))
	cfg.SkipPathPrefixes = []string{"/api/v1/sa"}
	assert.Equal(t, http.StatusOK, authorizedGet(sessionRouter(cfg, nil), "").Code)
}

func TestJWTAuthMiddleware_Blacklist(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	token, err := svc.GenerateToken(uuid.New(), "caixa1")
	require.NoError(t, err)

	t.Run("revoked token is rejected", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.AddToBlacklist(context.Background(), token.Claims.ID, time.Hour))
		cfg := DefaultJWTConfig(svc)
		cfg.TokenBlacklist = blacklist

		w := authorizedGet(sessionRouter(cfg, nil), "Bearer "+token.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, w))
	})

	t.Run("blacklist failure fails open", func(t *testing.T) {
		cfg := DefaultJWTConfig(svc)
		cfg.TokenBlacklist = failingBlacklist{}

		w := authorizedGet(sessionRouter(cfg, nil), "Bearer "+token.AccessToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestJWTAuthMiddleware_CustomOnError(t *testing.T) {
	var got error
	cfg := DefaultJWTConfig(newTestJWTService(time.Hour))
	cfg.OnError = func(c *gin.Context, err error) {
		got = err
		c.JSON(http.StatusTeapot, gin.H{"custom": true})
	}

	w := authorizedGet(sessionRouter(cfg, nil), "Bearer nope")
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.ErrorIs(t, got, auth.ErrInvalidToken)
}

func TestJWTContextGetters(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTUserID(c))
	assert.Empty(t, GetJWTUsername(c))

	c.Set(JWTUserIDKey, "u-1")
	c.Set(JWTUsernameKey, "caixa1")
	assert.Equal(t, "u-1", GetJWTUserID(c))
	assert.Equal(t, "caixa1", GetJWTUsername(c))
}
