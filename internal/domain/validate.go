package domain

import "fmt"

// Validate checks the invariants the dashboard relies on. It returns a
// *SchemaError listing every problem found, or nil.
func (s *Snapshot) Validate() error {
	var issues []string
	add := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	f := s.Factory
	if f.TotalProduction < 0 {
		add("factory.totalProduction is negative (%d)", f.TotalProduction)
	}
	if !isPercent(f.AvgUtilization) {
		add("factory.avgUtilization out of range (%v)", f.AvgUtilization)
	}
	if f.ActiveWorkers < 0 {
		add("factory.activeWorkers is negative (%d)", f.ActiveWorkers)
	}

	seenWorkers := make(map[string]bool, len(s.Workers))
	for i, w := range s.Workers {
		if w.ID == "" {
			add("workers[%d].id is empty", i)
		} else if seenWorkers[w.ID] {
			add("workers[%d].id %q is duplicated", i, w.ID)
		}
		seenWorkers[w.ID] = true
		if !isPercent(w.Utilization) {
			add("workers[%d].utilization out of range (%v)", i, w.Utilization)
		}
		if w.Units < 0 {
			add("workers[%d].units is negative (%d)", i, w.Units)
		}
		if w.UPH < 0 {
			add("workers[%d].uph is negative (%v)", i, w.UPH)
		}
	}

	seenStations := make(map[string]bool, len(s.Stations))
	for i, st := range s.Stations {
		if st.StationID == "" {
			add("stations[%d].station_id is empty", i)
		} else if seenStations[st.StationID] {
			add("stations[%d].station_id %q is duplicated", i, st.StationID)
		}
		seenStations[st.StationID] = true
		if st.Status == "" {
			add("stations[%d].status is empty", i)
		}
		if st.Units < 0 {
			add("stations[%d].units is negative (%d)", i, st.Units)
		}
	}

	if len(issues) > 0 {
		return &SchemaError{Issues: issues}
	}
	return nil
}

func isPercent(v float64) bool {
	return v >= 0 && v <= 100
}
