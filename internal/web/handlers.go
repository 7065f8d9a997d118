package web

import (
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/emiliopalmerini/factoryvision/internal/dashboard"
	"github.com/emiliopalmerini/factoryvision/internal/domain"
	sharedmw "github.com/emiliopalmerini/factoryvision/internal/shared/middleware"
	"github.com/emiliopalmerini/factoryvision/internal/util"
	"github.com/emiliopalmerini/factoryvision/internal/web/templates"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (s *Server) page(r *http.Request) dashboard.Page {
	sel := domain.ParseSelection(r.FormValue("focus"))
	return dashboard.Build(s.monitor.State(), sel, s.now())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = templates.Dashboard(s.page(r), s.monitor.Interval()).Render(r.Context(), w)
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = templates.Fragment(s.page(r), s.monitor.Interval()).Render(r.Context(), w)
}

// handleAPIRefresh triggers a refresh. htmx callers get the updated
// fragment; JSON callers get the outcome.
func (s *Server) handleAPIRefresh(w http.ResponseWriter, r *http.Request) {
	err := s.monitor.Refresh(r.Context())

	if sharedmw.IsHTMX(r) {
		s.handleFragment(w, r)
		return
	}

	resp := map[string]any{"outcome": domain.Outcome(err)}
	status := http.StatusOK
	if err != nil {
		resp["error"] = domain.OfflineMessage
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

type snapshotResponse struct {
	Snapshot   *domain.Snapshot `json:"snapshot"`
	UpdatedAt  string           `json:"updatedAt"`
	Stale      bool             `json:"stale"`
	Refreshing bool             `json:"refreshing"`
	Error      string           `json:"error,omitempty"`
}

func (s *Server) handleAPISnapshot(w http.ResponseWriter, r *http.Request) {
	state := s.monitor.State()
	if state.Snapshot == nil {
		resp := map[string]any{"phase": state.Phase().String()}
		if state.Err != "" {
			resp["error"] = state.Err
		}
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		Snapshot:   state.Snapshot,
		UpdatedAt:  state.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Stale:      state.Stale(),
		Refreshing: state.Refreshing,
		Error:      state.Err,
	})
}

type historyEntry struct {
	ID              string  `json:"id"`
	FetchedAt       string  `json:"fetchedAt"`
	Fingerprint     string  `json:"fingerprint"`
	TotalProduction int64   `json:"totalProduction"`
	AvgUtilization  float64 `json:"avgUtilization"`
	ActiveWorkers   int64   `json:"activeWorkers"`
	Workers         int     `json:"workers"`
	Stations        int     `json:"stations"`
	WorkingStations int     `json:"workingStations"`
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := s.history.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list snapshot history")
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	entries := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, historyEntry{
			ID:              rec.ID,
			FetchedAt:       rec.FetchedAt.UTC().Format(time.RFC3339Nano),
			Fingerprint:     util.FormatFingerprint(rec.Fingerprint),
			TotalProduction: rec.TotalProduction,
			AvgUtilization:  rec.AvgUtilization,
			ActiveWorkers:   rec.ActiveWorkers,
			Workers:         rec.WorkerCount,
			Stations:        rec.StationCount,
			WorkingStations: rec.WorkingStations,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
