package metricsapi

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

// payload mirrors the wire format. Pointer fields let toDomain tell a
// missing field apart from a zero value.
type payload struct {
	Factory  *factoryPayload  `json:"factory"`
	Workers  []workerPayload  `json:"workers"`
	Stations []stationPayload `json:"stations"`
}

type factoryPayload struct {
	TotalProduction *float64 `json:"totalProduction"`
	AvgUtilization  *float64 `json:"avgUtilization"`
	ActiveWorkers   *float64 `json:"activeWorkers"`
}

type workerPayload struct {
	ID          *flexID  `json:"id"`
	Name        *string  `json:"name"`
	Utilization *float64 `json:"utilization"`
	Units       *float64 `json:"units"`
	UPH         *float64 `json:"uph"`
}

type stationPayload struct {
	StationID *flexID  `json:"station_id"`
	Name      *string  `json:"name"`
	Status    *string  `json:"status"`
	Units     *float64 `json:"units"`
}

// flexID accepts both JSON strings and numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("id must be a string or a number, got %s", b)
	}
	*f = flexID(b)
	return nil
}

func (p payload) toDomain() (*domain.Snapshot, []string) {
	var issues []string
	report := func(issue string) {
		issues = append(issues, issue)
	}

	snap := &domain.Snapshot{}
	if p.Factory == nil {
		report("factory is missing")
	} else {
		snap.Factory.TotalProduction = intField(p.Factory.TotalProduction, "factory.totalProduction", report)
		snap.Factory.AvgUtilization = floatField(p.Factory.AvgUtilization, "factory.avgUtilization", report)
		snap.Factory.ActiveWorkers = intField(p.Factory.ActiveWorkers, "factory.activeWorkers", report)
	}
	if p.Workers == nil {
		report("workers is missing")
	}
	if p.Stations == nil {
		report("stations is missing")
	}

	snap.Workers = make([]domain.Worker, 0, len(p.Workers))
	for i, w := range p.Workers {
		prefix := fmt.Sprintf("workers[%d]", i)
		snap.Workers = append(snap.Workers, domain.Worker{
			ID:          idField(w.ID, prefix+".id", report),
			Name:        stringField(w.Name, prefix+".name", report),
			Utilization: floatField(w.Utilization, prefix+".utilization", report),
			Units:       intField(w.Units, prefix+".units", report),
			UPH:         floatField(w.UPH, prefix+".uph", report),
		})
	}

	snap.Stations = make([]domain.Station, 0, len(p.Stations))
	for i, s := range p.Stations {
		prefix := fmt.Sprintf("stations[%d]", i)
		snap.Stations = append(snap.Stations, domain.Station{
			StationID: idField(s.StationID, prefix+".station_id", report),
			Name:      stringField(s.Name, prefix+".name", report),
			Status:    domain.StationStatus(stringField(s.Status, prefix+".status", report)),
			Units:     intField(s.Units, prefix+".units", report),
		})
	}

	return snap, issues
}

func floatField(v *float64, name string, report func(string)) float64 {
	if v == nil {
		report(name + " is missing")
		return 0
	}
	return *v
}

// intField rejects fractional values and values outside int64 instead of
// truncating them.
func intField(v *float64, name string, report func(string)) int64 {
	if v == nil {
		report(name + " is missing")
		return 0
	}
	f := *v
	if f != math.Trunc(f) {
		report(fmt.Sprintf("%s is not an integer (%v)", name, f))
		return 0
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		report(fmt.Sprintf("%s exceeds the integer range (%v)", name, f))
		return 0
	}
	return int64(f)
}

func stringField(v *string, name string, report func(string)) string {
	if v == nil {
		report(name + " is missing")
		return ""
	}
	return *v
}

func idField(v *flexID, name string, report func(string)) string {
	if v == nil {
		report(name + " is missing")
		return ""
	}
	return string(*v)
}
