package ports_test

import (
	"testing"

	"github.com/emiliopalmerini/factoryvision/internal/adapters/metricsapi"
	"github.com/emiliopalmerini/factoryvision/internal/adapters/otel"
	"github.com/emiliopalmerini/factoryvision/internal/adapters/turso"
	"github.com/emiliopalmerini/factoryvision/internal/ports"
)

// Compile-time interface conformance checks.
// These verify that concrete adapters properly implement their port interfaces.

func TestMetricsSourceConformance(t *testing.T) {
	var _ ports.MetricsSource = (*metricsapi.Client)(nil)
}

func TestSnapshotStoreConformance(t *testing.T) {
	var _ ports.SnapshotStore = (*turso.SnapshotRepository)(nil)
	var _ ports.SnapshotStore = (*turso.NoOpSnapshotStore)(nil)
}

func TestMetricsExporterConformance(t *testing.T) {
	var _ ports.MetricsExporter = (*otel.Exporter)(nil)
	var _ ports.MetricsExporter = (*otel.NoOpExporter)(nil)
}
