package ports

import (
	"context"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

// MetricsSource fetches the current factory metrics.
type MetricsSource interface {
	// Fetch returns a validated snapshot, or an error classified by domain.Outcome.
	Fetch(ctx context.Context) (*domain.Snapshot, error)
}
