// Package telemetry exports the ledger's traces, metrics and logs over OTLP
// and records ledger-specific instruments.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const shutdownTimeout = 10 * time.Second

// Collector is the OTLP gRPC endpoint the signal pipelines export to, and
// the service identity stamped on everything they send.
type Collector struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
	Version     string
}

func (c Collector) resource() (*resource.Resource, error) {
	version := c.Version
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(c.ServiceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}
	return res, nil
}

// shutdownWithin gives a provider a bounded window to flush.
func shutdownWithin(ctx context.Context, signal string, shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown %s provider: %w", signal, err)
	}
	return nil
}
