package otel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

const (
	serviceName    = "factoryvision"
	serviceVersion = "1.0.0"
)

// Exporter exports refresh metrics to an OTEL Collector.
type Exporter struct {
	provider     *sdkmetric.MeterProvider
	registration metric.Registration

	refreshTotal metric.Int64Counter
	fetchLatency metric.Float64Histogram

	mu     sync.RWMutex
	latest *domain.Snapshot
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Active() {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := newResource(ctx)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	e, err := newExporter(provider)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	return e, nil
}

func newResource(ctx context.Context) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}
	return res, nil
}

// newExporter registers all instruments on the provider's meter.
func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)
	e := &Exporter{provider: provider}

	var err error
	e.refreshTotal, err = meter.Int64Counter(
		"factoryvision_refresh_total",
		metric.WithDescription("Metrics fetches by outcome"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating refresh counter: %w", err)
	}

	e.fetchLatency, err = meter.Float64Histogram(
		"factoryvision_fetch_duration_seconds",
		metric.WithDescription("Latency of metrics fetches"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fetch histogram: %w", err)
	}

	production, err := meter.Int64ObservableGauge(
		"factoryvision_total_production",
		metric.WithDescription("Total units produced in the current shift"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating production gauge: %w", err)
	}

	utilization, err := meter.Float64ObservableGauge(
		"factoryvision_avg_utilization_percent",
		metric.WithDescription("Average worker utilization"),
		metric.WithUnit("%"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating utilization gauge: %w", err)
	}

	activeWorkers, err := meter.Int64ObservableGauge(
		"factoryvision_active_workers",
		metric.WithDescription("Workers currently active"),
		metric.WithUnit("{worker}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active workers gauge: %w", err)
	}

	workingStations, err := meter.Int64ObservableGauge(
		"factoryvision_working_stations",
		metric.WithDescription("Workstations reporting the working status"),
		metric.WithUnit("{station}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stations gauge: %w", err)
	}

	e.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		e.mu.RLock()
		s := e.latest
		e.mu.RUnlock()
		if s == nil {
			return nil
		}
		o.ObserveInt64(production, s.Factory.TotalProduction)
		o.ObserveFloat64(utilization, s.Factory.AvgUtilization)
		o.ObserveInt64(activeWorkers, s.Factory.ActiveWorkers)
		o.ObserveInt64(workingStations, int64(s.WorkingStations()))
		return nil
	}, production, utilization, activeWorkers, workingStations)
	if err != nil {
		return nil, fmt.Errorf("registering gauge callback: %w", err)
	}

	return e, nil
}

// RecordRefresh records the outcome and latency of one fetch.
func (e *Exporter) RecordRefresh(ctx context.Context, outcome string, elapsed time.Duration) {
	opt := metric.WithAttributes(attribute.String("outcome", outcome))
	e.refreshTotal.Add(ctx, 1, opt)
	e.fetchLatency.Record(ctx, elapsed.Seconds(), opt)
}

// ObserveSnapshot makes s the source of the factory gauges.
func (e *Exporter) ObserveSnapshot(s *domain.Snapshot) {
	e.mu.Lock()
	e.latest = s
	e.mu.Unlock()
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	if e.registration != nil {
		_ = e.registration.Unregister()
	}
	return e.provider.Shutdown(ctx)
}
