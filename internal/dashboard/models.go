// Package dashboard turns monitor state and a selection into the view model
// shared by the web and terminal surfaces.
package dashboard

import "github.com/emiliopalmerini/factoryvision/internal/domain"

const (
	LoadingText  = "Initializing Factory AI Analytics..."
	RetryLabel   = "RETRY SYNC"
	ResetLabel   = "RESET VIEW"
	ReleaseText  = "RELEASE FILTER"
	RefreshLabel = "REFRESH"

	StatusSyncing = "SYNCING DATA..."
	StatusLive    = "SYSTEM LIVE"
)

// Accent is the color family of a KPI card or badge.
type Accent string

const (
	AccentBlue   Accent = "blue"
	AccentGreen  Accent = "green"
	AccentPurple Accent = "purple"
	AccentOrange Accent = "orange"
	AccentRed    Accent = "red"
	AccentGray   Accent = "gray"
)

type Card struct {
	Title    string
	Value    string
	Subtitle string
	Accent   Accent
}

type WorkerRow struct {
	ID       string
	Initial  string
	Name     string
	Label    string
	BarWidth float64
	Band     domain.Band
	Accent   Accent
	Units    string
	UPH      string
	Selected bool
}

type StationCard struct {
	ID         string
	Name       string
	Status     string
	Working    bool
	Accent     Accent
	Throughput string
	Selected   bool
}

// Banner is shown while an entity is focused.
type Banner struct {
	Text   string
	Action string
}

// Page is everything a surface needs to render one frame.
type Page struct {
	Phase     string
	Status    string
	Syncing   bool
	Stale     bool
	Error     string
	Cards     []Card
	Workers   []WorkerRow
	Stations  []StationCard
	Banner    *Banner
	Selection domain.Selection
	// Fingerprint of the rendered snapshot, zero when none is loaded.
	Fingerprint uint64
}
