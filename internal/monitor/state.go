package monitor

import (
	"time"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

// Phase is the mutually exclusive top-level view to render.
type Phase int

const (
	// PhaseLoading: no snapshot and no error yet.
	PhaseLoading Phase = iota
	// PhaseOffline: an error occurred before any snapshot was loaded.
	PhaseOffline
	// PhaseLive: a snapshot is available, possibly stale.
	PhaseLive
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseOffline:
		return "offline"
	case PhaseLive:
		return "live"
	default:
		return "unknown"
	}
}

// State is a copy of the monitor's status at one point in time.
type State struct {
	Snapshot   *domain.Snapshot
	Loading    bool
	Refreshing bool
	// Err is the user-facing message of the last failed fetch, empty after a success.
	Err string
	// LastError is the detailed cause of the last failed fetch.
	LastError string
	UpdatedAt time.Time
	// StaleSince is the first failure after the last success; zero when fresh.
	StaleSince time.Time
	Attempts   int
	Failures   int
}

// Phase picks the view: offline only when nothing has ever loaded.
func (s State) Phase() Phase {
	switch {
	case s.Snapshot != nil:
		return PhaseLive
	case s.Err != "":
		return PhaseOffline
	default:
		return PhaseLoading
	}
}

// Stale reports whether the displayed snapshot is older than the last attempt.
func (s State) Stale() bool {
	return s.Snapshot != nil && !s.StaleSince.IsZero()
}
