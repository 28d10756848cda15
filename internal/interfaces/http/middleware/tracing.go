// Package middleware holds the gin middleware of the sale ledger API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing opens a server span per request under the "sale-ledger" service.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(TracingConfig{ServiceName: "sale-ledger", Enabled: true})
}

// TracingWithConfig wraps otelgin. otelgin ends the span when it returns,
// so attributes known only later in the chain are added by
// TracingAttributeInjector.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// spanErrorDescriptions names the failure recorded on a span by status.
// Other 4xx codes are "Client Error" and every 5xx is "Internal Server Error".
var spanErrorDescriptions = map[int]string{
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusNotFound:            "Not Found",
	http.StatusUnprocessableEntity: "Rejected",
}

func spanErrorDescription(status int) string {
	if status >= http.StatusInternalServerError {
		return "Internal Server Error"
	}
	if d, ok := spanErrorDescriptions[status]; ok {
		return d
	}
	return "Client Error"
}

// SpanErrorMarker flags the request span as failed on 4xx and 5xx
// responses. It must run inside Tracing.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		span := trace.SpanFromContext(c.Request.Context())
		if status < http.StatusBadRequest || !span.IsRecording() {
			return
		}
		span.SetStatus(codes.Error, spanErrorDescription(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}

// TracingAttributeInjector tags the span with the request id and the
// operator. It belongs after the JWT middleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			if id := getRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if userID := GetJWTUserID(c); userID != "" {
				span.SetAttributes(attribute.String("user_id", userID))
			}
		}
		c.Next()
	}
}
