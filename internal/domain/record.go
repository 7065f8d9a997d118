package domain

import "time"

// SnapshotRecord is a snapshot persisted in the history store.
type SnapshotRecord struct {
	ID              string
	FetchedAt       time.Time
	Fingerprint     uint64
	TotalProduction int64
	AvgUtilization  float64
	ActiveWorkers   int64
	WorkerCount     int
	StationCount    int
	WorkingStations int
	Snapshot        *Snapshot
}

// NewSnapshotRecord derives the summary columns from a snapshot.
func NewSnapshotRecord(id string, fetchedAt time.Time, s *Snapshot) SnapshotRecord {
	return SnapshotRecord{
		ID:              id,
		FetchedAt:       fetchedAt,
		Fingerprint:     s.Fingerprint(),
		TotalProduction: s.Factory.TotalProduction,
		AvgUtilization:  s.Factory.AvgUtilization,
		ActiveWorkers:   s.Factory.ActiveWorkers,
		WorkerCount:     len(s.Workers),
		StationCount:    len(s.Stations),
		WorkingStations: s.WorkingStations(),
		Snapshot:        s,
	}
}
