package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client-chosen key of a retryable mutation
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the header value
const MaxIdempotencyKeyLength = 255

// IdempotencyConfig configures the Idempotency middleware
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency makes a mutating route safe to retry. The first request with a
// given Idempotency-Key runs; a replay within the TTL answers 409
// ERR_DUPLICATE_REQUEST. The key is released again when the first request
// fails so the client can retry it. Requests without the header pass through.
//
// Keys are scoped by operator and route, so two operators cannot collide.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultIdempotencyConfig().TTL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeIdempotencyKeyInvalid,
				"Idempotency-Key must be at most 255 characters",
				getRequestID(c),
			))
			return
		}

		scoped := "http:" + GetJWTUserID(c) + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key
		ctx := c.Request.Context()

		fresh, err := cfg.Store.MarkProcessed(ctx, scoped, cfg.TTL)
		if err != nil {
			// fail open: the ledger itself stays consistent, only replay protection is lost
			log.Error("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			log.Info("Duplicate request rejected",
				zap.String("idempotency_key", key),
				zap.String("path", c.FullPath()),
			)
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already processed",
				getRequestID(c),
			))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := cfg.Store.Release(ctx, scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
