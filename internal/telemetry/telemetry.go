// Package telemetry sets up OpenTelemetry metrics for toolgate.
// Metrics are exported in Prometheus format and served on the /metrics endpoint.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Config holds the telemetry settings.
type Config struct {
	ServiceName string
	Enabled     bool
}

// Providers holds the initialized OpenTelemetry providers.
// When telemetry is disabled, Meter is a no-op meter and Shutdown does nothing.
type Providers struct {
	Meter metric.Meter

	config        *Config
	meterProvider *sdkmetric.MeterProvider
}

// Init initializes the OpenTelemetry providers according to the config.
func Init(ctx context.Context, c *Config) (*Providers, error) {
	p := &Providers{config: c}

	if !c.Enabled {
		p.Meter = noop.NewMeterProvider().Meter(c.ServiceName)
		return p, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", c.ServiceName))

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(p.meterProvider)

	p.Meter = p.meterProvider.Meter(c.ServiceName)
	return p, nil
}

// IsEnabled returns true if telemetry is enabled.
func (p *Providers) IsEnabled() bool {
	return p.config.Enabled
}

// ServiceName returns the service name reported in telemetry.
func (p *Providers) ServiceName() string {
	return p.config.ServiceName
}

// Shutdown flushes and stops the providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
