package turso

import (
	"context"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

// NoOpSnapshotStore is used when no history database is configured.
type NoOpSnapshotStore struct{}

func NewNoOpSnapshotStore() *NoOpSnapshotStore {
	return &NoOpSnapshotStore{}
}

func (s *NoOpSnapshotStore) Record(ctx context.Context, rec domain.SnapshotRecord) error {
	return nil
}

func (s *NoOpSnapshotStore) Latest(ctx context.Context) (*domain.SnapshotRecord, error) {
	return nil, nil
}

func (s *NoOpSnapshotStore) ListRecent(ctx context.Context, limit int) ([]domain.SnapshotRecord, error) {
	return nil, nil
}
