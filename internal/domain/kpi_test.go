package domain

import "testing"

func TestFactoryStats_ProductionRate(t *testing.T) {
	f := FactoryStats{TotalProduction: 160}
	if got := FormatRate(f.ProductionRate()); got != "20.0 u/hr" {
		t.Errorf("expected 20.0 u/hr, got %s", got)
	}

	f = FactoryStats{TotalProduction: 157}
	if got := FormatRate(f.ProductionRate()); got != "19.6 u/hr" {
		t.Errorf("expected 19.6 u/hr, got %s", got)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := map[float64]string{
		72:   "72%",
		72.5: "72.5%",
		0:    "0%",
	}
	for in, want := range tests {
		if got := FormatPercent(in); got != want {
			t.Errorf("FormatPercent(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestUtilizationBand(t *testing.T) {
	tests := []struct {
		in   float64
		want Band
	}{
		{85, BandHigh},
		{70, BandMedium},
		{41, BandMedium},
		{40, BandLow},
		{0, BandLow},
	}
	for _, tt := range tests {
		if got := UtilizationBand(tt.in); got != tt.want {
			t.Errorf("UtilizationBand(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
