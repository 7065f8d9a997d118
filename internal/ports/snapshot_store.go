package ports

import (
	"context"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

// SnapshotStore persists successfully fetched snapshots.
type SnapshotStore interface {
	Record(ctx context.Context, rec domain.SnapshotRecord) error
	// Latest returns nil, nil when nothing has been recorded yet.
	Latest(ctx context.Context) (*domain.SnapshotRecord, error)
	ListRecent(ctx context.Context, limit int) ([]domain.SnapshotRecord, error)
}
