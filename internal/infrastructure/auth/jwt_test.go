package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func TestNewJWTService(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:                "test-secret",
		AccessTokenExpiration: time.Hour,
		Issuer:                "test-issuer",
	}

	svc := NewJWTService(cfg)

	assert.Equal(t, []byte(cfg.Secret), svc.secret)
	assert.Equal(t, time.Hour, svc.Expiration())
	assert.Equal(t, cfg.Issuer, svc.issuer)
}

func TestJWTService_GenerateToken(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	before := time.Now()
	issued, err := svc.GenerateToken(userID, "caixa")
	require.NoError(t, err)

	assert.NotEmpty(t, issued.AccessToken)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.WithinDuration(t, before.Add(15*time.Minute), issued.ExpiresAt, 2*time.Second)
	require.NotNil(t, issued.Claims)
	assert.NotEmpty(t, issued.Claims.ID)
	assert.Equal(t, userID.String(), issued.Claims.Subject)

	second, err := svc.GenerateToken(userID, "caixa")
	require.NoError(t, err)
	assert.NotEqual(t, issued.Claims.ID, second.Claims.ID, "every token gets its own jti")
}

func TestJWTService_ValidateToken(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	t.Run("valid token round trip", func(t *testing.T) {
		issued, err := svc.GenerateToken(userID, "caixa")
		require.NoError(t, err)

		claims, err := svc.ValidateToken(issued.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, "caixa", claims.Username)
		assert.Equal(t, issued.Claims.ID, claims.ID)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-key-of-32-chars!!",
			AccessTokenExpiration: time.Minute,
			Issuer:                "test-issuer",
		})
		issued, err := other.GenerateToken(userID, "caixa")
		require.NoError(t, err)

		_, err = svc.ValidateToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			AccessTokenExpiration: time.Minute,
			Issuer:                "someone-else",
		})
		issued, err := other.GenerateToken(userID, "caixa")
		require.NoError(t, err)

		_, err = svc.ValidateToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			AccessTokenExpiration: -time.Minute,
			Issuer:                "test-issuer",
		})
		issued, err := expired.GenerateToken(userID, "caixa")
		require.NoError(t, err)

		_, err = svc.ValidateToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("missing user id", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Audience:  jwt.ClaimStrings{"test-issuer"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("rejects none algorithm", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				Audience:  jwt.ClaimStrings{"test-issuer"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
			UserID: userID.String(),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_Session(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()
	issued, err := svc.GenerateToken(userID, "caixa")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(issued.AccessToken)
	require.NoError(t, err)

	session := claims.Session()
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, "caixa", session.Username)
	assert.Equal(t, claims.ID, session.TokenID)
	assert.False(t, session.IssuedAt.IsZero())
	assert.WithinDuration(t, issued.ExpiresAt, session.ExpiresAt, time.Second)
}

func TestClaims_GetRemainingTTL(t *testing.T) {
	claims := &Claims{}
	assert.Zero(t, claims.GetRemainingTTL())

	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Zero(t, claims.GetRemainingTTL())

	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(10 * time.Minute))
	ttl := claims.GetRemainingTTL()
	assert.Greater(t, ttl, 9*time.Minute)
	assert.LessOrEqual(t, ttl, 10*time.Minute)
}
