package domain

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/zeebo/xxh3"
)

// Snapshot is the full metrics payload from one successful fetch.
// A new snapshot always replaces the previous one as a whole.
type Snapshot struct {
	Factory  FactoryStats `json:"factory"`
	Workers  []Worker     `json:"workers"`
	Stations []Station    `json:"stations"`
}

// FactoryStats holds the factory-wide production figures.
type FactoryStats struct {
	TotalProduction int64   `json:"totalProduction"`
	AvgUtilization  float64 `json:"avgUtilization"`
	ActiveWorkers   int64   `json:"activeWorkers"`
}

// Worker is one row of the worker performance table.
type Worker struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Utilization float64 `json:"utilization"`
	Units       int64   `json:"units"`
	UPH         float64 `json:"uph"`
}

// Initial returns the first letter of the worker name, used as avatar.
func (w Worker) Initial() string {
	for _, r := range w.Name {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// StationStatus is the reported state of a workstation.
type StationStatus string

// StatusWorking is the only status rendered as active; anything else is idle.
const StatusWorking StationStatus = "working"

func (s StationStatus) IsWorking() bool {
	return s == StatusWorking
}

// Label is the upper-cased status shown on station badges.
func (s StationStatus) Label() string {
	return strings.ToUpper(string(s))
}

// Station is one card of the workstation grid.
type Station struct {
	StationID string        `json:"station_id"`
	Name      string        `json:"name"`
	Status    StationStatus `json:"status"`
	Units     int64         `json:"units"`
}

// WorkingStations counts stations reporting StatusWorking.
func (s *Snapshot) WorkingStations() int {
	n := 0
	for _, st := range s.Stations {
		if st.Status.IsWorking() {
			n++
		}
	}
	return n
}

// Fingerprint hashes the canonical JSON encoding of the snapshot.
// Two snapshots with equal content have equal fingerprints.
func (s *Snapshot) Fingerprint() uint64 {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(s)
	if err != nil {
		return 0
	}
	return xxh3.Hash(b)
}
