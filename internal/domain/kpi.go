package domain

import (
	"fmt"
	"strconv"
)

// ShiftHours is the shift length used to derive the production rate.
const ShiftHours = 8

// ProductionRate returns units per hour over one shift.
func (f FactoryStats) ProductionRate() float64 {
	return float64(f.TotalProduction) / ShiftHours
}

// FormatRate renders a production rate with one decimal place.
// Example: 20 -> "20.0 u/hr"
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.1f u/hr", rate)
}

// FormatPercent renders a 0-100 value without trailing zeros.
// Examples: 72 -> "72%", 72.5 -> "72.5%"
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}

// Band groups a utilization value for color coding.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// UtilizationBand returns BandHigh above 70, BandMedium above 40, BandLow otherwise.
func UtilizationBand(u float64) Band {
	switch {
	case u > 70:
		return BandHigh
	case u > 40:
		return BandMedium
	default:
		return BandLow
	}
}
