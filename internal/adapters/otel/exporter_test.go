package otel

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

func testExporter(t *testing.T) (*Exporter, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	e, err := newExporter(provider)
	if err != nil {
		t.Fatalf("newExporter: %v", err)
	}
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewExporter_Disabled(t *testing.T) {
	if _, err := NewExporter(context.Background(), Config{Enabled: false, Endpoint: "localhost:4317"}); err == nil {
		t.Error("expected error when disabled")
	}
	if _, err := NewExporter(context.Background(), Config{Enabled: true}); err == nil {
		t.Error("expected error without endpoint")
	}
}

func TestExporter_RecordRefresh(t *testing.T) {
	e, reader := testExporter(t)
	ctx := context.Background()

	e.RecordRefresh(ctx, "success", 120*time.Millisecond)
	e.RecordRefresh(ctx, "success", 80*time.Millisecond)
	e.RecordRefresh(ctx, "status_error", 10*time.Millisecond)

	metrics := collect(t, reader)
	m, ok := metrics["factoryvision_refresh_total"]
	if !ok {
		t.Fatal("expected factoryvision_refresh_total to be exported")
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", m.Data)
	}

	byOutcome := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value("outcome")
		byOutcome[v.AsString()] = dp.Value
	}
	if byOutcome["success"] != 2 {
		t.Errorf("expected 2 successes, got %d", byOutcome["success"])
	}
	if byOutcome["status_error"] != 1 {
		t.Errorf("expected 1 status error, got %d", byOutcome["status_error"])
	}

	if _, ok := metrics["factoryvision_fetch_duration_seconds"]; !ok {
		t.Error("expected fetch duration histogram to be exported")
	}
}

func TestExporter_ObserveSnapshot(t *testing.T) {
	e, reader := testExporter(t)

	if m, ok := collect(t, reader)["factoryvision_total_production"]; ok {
		if g, isGauge := m.Data.(metricdata.Gauge[int64]); isGauge && len(g.DataPoints) > 0 {
			t.Error("expected no gauge values before a snapshot is observed")
		}
	}

	e.ObserveSnapshot(&domain.Snapshot{
		Factory: domain.FactoryStats{TotalProduction: 160, AvgUtilization: 72, ActiveWorkers: 18},
		Stations: []domain.Station{
			{StationID: "s1", Status: "working"},
			{StationID: "s2", Status: "idle"},
		},
	})

	metrics := collect(t, reader)
	gauge, ok := metrics["factoryvision_total_production"].Data.(metricdata.Gauge[int64])
	if !ok || len(gauge.DataPoints) != 1 {
		t.Fatalf("expected one production data point, got %+v", metrics["factoryvision_total_production"])
	}
	if gauge.DataPoints[0].Value != 160 {
		t.Errorf("expected 160, got %d", gauge.DataPoints[0].Value)
	}

	stations, ok := metrics["factoryvision_working_stations"].Data.(metricdata.Gauge[int64])
	if !ok || len(stations.DataPoints) != 1 || stations.DataPoints[0].Value != 1 {
		t.Errorf("expected 1 working station, got %+v", metrics["factoryvision_working_stations"])
	}
}

func TestInitTracing_DisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("expected no-op shutdown, got %v", err)
	}
}
