package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider    *metric.MeterProvider
	meter            otelmetric.Meter
	estimateCounter  otelmetric.Int64Counter
	estimateDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	estimateCounter, _ := meter.Int64Counter(
		"estimates.processed",
		otelmetric.WithDescription("Number of estimation calls processed"),
	)

	estimateDuration, _ := meter.Float64Histogram(
		"estimates.duration",
		otelmetric.WithDescription("Estimation call duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:    provider,
		meter:            meter,
		estimateCounter:  estimateCounter,
		estimateDuration: estimateDuration,
	}
}

func (o *Observability) RecordEstimate(ctx context.Context, method string) {
	if o.estimateCounter != nil {
		o.estimateCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("method", method),
		))
	}
}

func (o *Observability) RecordEstimateDuration(ctx context.Context, duration time.Duration, method string) {
	if o.estimateDuration != nil {
		o.estimateDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("method", method),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
