package otel

import (
	"context"
	"time"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordRefresh(ctx context.Context, outcome string, elapsed time.Duration) {}

func (e *NoOpExporter) ObserveSnapshot(s *domain.Snapshot) {}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
