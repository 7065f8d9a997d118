package ports

import (
	"context"
	"time"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

// MetricsExporter exports refresh metrics to an external observability system.
type MetricsExporter interface {
	// RecordRefresh records the outcome and latency of one fetch.
	RecordRefresh(ctx context.Context, outcome string, elapsed time.Duration)
	// ObserveSnapshot publishes the latest factory figures as gauges.
	ObserveSnapshot(s *domain.Snapshot)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
