package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
	"github.com/emiliopalmerini/factoryvision/internal/monitor"
)

// Build derives the page for state and sel. now is only used to humanize
// the stale timestamp.
func Build(state monitor.State, sel domain.Selection, now time.Time) Page {
	page := Page{
		Phase:     state.Phase().String(),
		Syncing:   state.Refreshing,
		Stale:     state.Stale(),
		Error:     state.Err,
		Selection: sel,
		Status:    statusText(state, now),
	}

	if sel.Active() {
		page.Banner = &Banner{
			Text:   "Investigating Entity: " + sel.ID,
			Action: ReleaseText,
		}
	}

	snap := state.Snapshot
	if snap == nil {
		return page
	}

	page.Fingerprint = snap.Fingerprint()
	page.Cards = Cards(snap.Factory)
	page.Workers = make([]WorkerRow, 0, len(snap.Workers))
	for _, w := range snap.Workers {
		page.Workers = append(page.Workers, workerRow(w, sel))
	}
	page.Stations = make([]StationCard, 0, len(snap.Stations))
	for _, st := range snap.Stations {
		page.Stations = append(page.Stations, stationCard(st, sel))
	}
	return page
}

func statusText(state monitor.State, now time.Time) string {
	switch {
	case state.Refreshing:
		return StatusSyncing
	case state.Stale():
		return "STALE · last update " + humanize.RelTime(state.UpdatedAt, now, "ago", "from now")
	default:
		return StatusLive
	}
}

// Cards returns the four KPI cards in display order.
func Cards(f domain.FactoryStats) []Card {
	return []Card{
		{
			Title:    "Total Units",
			Value:    humanize.Comma(f.TotalProduction),
			Subtitle: "+12% from last hour",
			Accent:   AccentBlue,
		},
		{
			Title:    "Avg Utilization",
			Value:    domain.FormatPercent(f.AvgUtilization),
			Subtitle: "Optimized Efficiency",
			Accent:   AccentGreen,
		},
		{
			Title:    "Active Crew",
			Value:    humanize.Comma(f.ActiveWorkers),
			Subtitle: "Full Shift Deployment",
			Accent:   AccentPurple,
		},
		{
			Title:    "Prod. Rate",
			Value:    domain.FormatRate(f.ProductionRate()),
			Subtitle: "Standard Velocity",
			Accent:   AccentOrange,
		},
	}
}

// BandAccent maps a utilization band to its bar color.
func BandAccent(b domain.Band) Accent {
	switch b {
	case domain.BandHigh:
		return AccentBlue
	case domain.BandMedium:
		return AccentOrange
	default:
		return AccentRed
	}
}

// BarWidth clamps a utilization value to a 0-100 bar width.
func BarWidth(u float64) float64 {
	if math.IsNaN(u) {
		return 0
	}
	return math.Max(0, math.Min(100, u))
}

func workerRow(w domain.Worker, sel domain.Selection) WorkerRow {
	band := domain.UtilizationBand(w.Utilization)
	return WorkerRow{
		ID:       w.ID,
		Initial:  w.Initial(),
		Name:     w.Name,
		Label:    domain.FormatPercent(w.Utilization),
		BarWidth: BarWidth(w.Utilization),
		Band:     band,
		Accent:   BandAccent(band),
		Units:    humanize.Comma(w.Units),
		UPH:      strconv.FormatFloat(w.UPH, 'f', -1, 64),
		Selected: sel.Matches(domain.SelectWorker, w.ID),
	}
}

func stationCard(st domain.Station, sel domain.Selection) StationCard {
	c := StationCard{
		ID:         st.StationID,
		Name:       st.Name,
		Status:     st.Status.Label(),
		Working:    st.Status.IsWorking(),
		Accent:     AccentGray,
		Throughput: fmt.Sprintf("THROUGHPUT %s UNITS", humanize.Comma(st.Units)),
		Selected:   sel.Matches(domain.SelectStation, st.StationID),
	}
	if c.Working {
		c.Accent = AccentGreen
	}
	return c
}
