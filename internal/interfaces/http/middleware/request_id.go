package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader     = "X-Request-ID"
	RequestIDContextKey = "request_id"

	// MaxRequestIDLength bounds caller supplied ids.
	MaxRequestIDLength = 128
)

// RequestID tags every request with an id, reusing the caller's
// X-Request-ID when it is present and short enough. The id is echoed in
// the response and stored in the gin context for the access log.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > MaxRequestIDLength {
			id = generateRequestID()
		}
		c.Set(RequestIDContextKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// 32 hex characters
func generateRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// getRequestID reads the id set by RequestID, falling back to a truncated
// header when that middleware did not run.
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDContextKey); id != "" {
		return id
	}
	id := c.GetHeader(RequestIDHeader)
	if len(id) > MaxRequestIDLength {
		id = id[:MaxRequestIDLength]
	}
	return id
}
