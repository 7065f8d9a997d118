package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// fetchedAtLayout keeps nine fractional digits so fetched_at sorts
// chronologically as text.
const fetchedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Record(ctx context.Context, rec domain.SnapshotRecord) error {
	payload, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshots (
			id, fetched_at, fingerprint, total_production, avg_utilization,
			active_workers, worker_count, station_count, working_stations, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.FetchedAt.UTC().Format(fetchedAtLayout),
		strconv.FormatUint(rec.Fingerprint, 16),
		rec.TotalProduction,
		rec.AvgUtilization,
		rec.ActiveWorkers,
		rec.WorkerCount,
		rec.StationCount,
		rec.WorkingStations,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) Latest(ctx context.Context) (*domain.SnapshotRecord, error) {
	recs, err := r.ListRecent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

func (r *SnapshotRepository) ListRecent(ctx context.Context, limit int) ([]domain.SnapshotRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, fetched_at, fingerprint, total_production, avg_utilization,
			active_workers, worker_count, station_count, working_stations, payload
		FROM snapshots
		ORDER BY fetched_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var recs []domain.SnapshotRecord
	for rows.Next() {
		rec, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return recs, nil
}

func scanSnapshot(rows *sql.Rows) (domain.SnapshotRecord, error) {
	var (
		rec         domain.SnapshotRecord
		fetchedAt   string
		fingerprint string
		payload     string
	)
	if err := rows.Scan(
		&rec.ID, &fetchedAt, &fingerprint, &rec.TotalProduction, &rec.AvgUtilization,
		&rec.ActiveWorkers, &rec.WorkerCount, &rec.StationCount, &rec.WorkingStations, &payload,
	); err != nil {
		return rec, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	var err error
	if rec.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt); err != nil {
		return rec, fmt.Errorf("failed to parse fetched_at %q: %w", fetchedAt, err)
	}
	if rec.Fingerprint, err = strconv.ParseUint(fingerprint, 16, 64); err != nil {
		return rec, fmt.Errorf("failed to parse fingerprint %q: %w", fingerprint, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return rec, errors.Join(fmt.Errorf("failed to decode snapshot %s", rec.ID), err)
	}
	rec.Snapshot = &snap
	return rec, nil
}
