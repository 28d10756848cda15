package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/auth"
	"github.com/saleledger/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// gin context keys and header names used by the bearer auth middleware
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig configures bearer authentication. Only JWTService is
// required. OnError replaces the default 401 body.
type JWTMiddlewareConfig struct {
	JWTService       *auth.JWTService
	TokenBlacklist   auth.TokenBlacklist
	SkipPaths        []string
	SkipPathPrefixes []string
	OnError          func(c *gin.Context, err error)
	Logger           *zap.Logger
}

// DefaultJWTConfig leaves login and the health endpoints public.
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/health", "/api/v1/health", "/api/v1/auth/login"},
		Logger:     zap.NewNop(),
	}
}

// JWTAuthMiddlewareWithConfig authenticates the operator and puts the
// session on the request context for shared.RequireSession.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if slices.Contains(cfg.SkipPaths, path) || hasAnyPrefix(path, cfg.SkipPathPrefixes) {
			c.Next()
			return
		}

		token, err := bearerToken(c.GetHeader(AuthHeaderKey))
		if err != nil {
			rejectAuth(c, cfg, log, err)
			return
		}
		claims, err := cfg.JWTService.ValidateToken(token)
		if err != nil {
			rejectAuth(c, cfg, log, err)
			return
		}

		if cfg.TokenBlacklist != nil && claims.ID != "" {
			revoked, err := cfg.TokenBlacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			switch {
			case err != nil:
				// fail open: signature and expiry already passed
				log.Error("Token revocation check failed", zap.String("jti", claims.ID), zap.Error(err))
			case revoked:
				rejectAuth(c, cfg, log, auth.ErrTokenBlacklisted)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)
		c.Request = c.Request.WithContext(shared.WithSession(c.Request.Context(), claims.Session()))
		c.Next()
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	return slices.ContainsFunc(prefixes, func(p string) bool { return strings.HasPrefix(path, p) })
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("%w: missing authorization header", auth.ErrInvalidToken)
	}
	token, ok := strings.CutPrefix(header, BearerPrefix)
	if !ok {
		return "", fmt.Errorf("%w: authorization is not a bearer token", auth.ErrInvalidToken)
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", fmt.Errorf("%w: empty bearer token", auth.ErrInvalidToken)
	}
	return token, nil
}

// authRejections maps token failures to the error code and message sent to
// the client. Anything unlisted is a generic ERR_UNAUTHORIZED.
var authRejections = []struct {
	err     error
	code    string
	message string
}{
	{auth.ErrExpiredToken, dto.ErrCodeTokenExpired, "Token has expired"},
	{auth.ErrTokenBlacklisted, dto.ErrCodeTokenInvalid, "Token has been revoked"},
	{auth.ErrTokenNotYetValid, dto.ErrCodeTokenInvalid, "Token is not yet valid"},
	{auth.ErrInvalidToken, dto.ErrCodeTokenInvalid, "Invalid token"},
	{auth.ErrInvalidClaims, dto.ErrCodeTokenInvalid, "Invalid token"},
	{auth.ErrMissingUserID, dto.ErrCodeTokenInvalid, "Invalid token"},
}

func rejectAuth(c *gin.Context, cfg JWTMiddlewareConfig, log *zap.Logger, err error) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		c.Abort()
		return
	}
	log.Warn("Authentication rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))

	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	for _, r := range authRejections {
		if errors.Is(err, r.err) {
			code, message = r.code, r.message
			break
		}
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// GetJWTClaims returns the validated claims, or nil on public routes.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		claims, _ := v.(*auth.Claims)
		return claims
	}
	return nil
}

func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

func GetJWTUsername(c *gin.Context) string {
	return c.GetString(JWTUsernameKey)
}
