package engine

import "github.com/forwardfin/sweep/shared"

// DeviationZones represents the statistical reversal zones projected beyond a
// closed session range.
type DeviationZones struct {
	LowerZone float64
	UpperZone float64
}

// ProjectZones projects deviation extensions beyond the provided session
// range. Returns nil if the window is nil or has not closed yet, since an
// open range has no stable size to project from.
func ProjectZones(window *shared.SessionWindow, multiplier float64) *DeviationZones {
	if window == nil || !window.Closed || !window.Tracked {
		return nil
	}

	sessionRange := window.Range()
	zones := &DeviationZones{
		LowerZone: window.Low - sessionRange*multiplier,
		UpperZone: window.High + sessionRange*multiplier,
	}

	return zones
}

// ZoneReached checks whether the provided price has reached the projected
// reversal zone for the provided sweep direction. The tolerance widens the
// boundary by a near-equal factor (eg. 1.001) so a wick stopping just shy of
// the zone still qualifies; a tolerance of 1.0 keeps the comparison strict.
func ZoneReached(price float64, zones *DeviationZones, direction shared.SweepDirection, tolerance float64) bool {
	if zones == nil {
		return false
	}
	if tolerance < 1 {
		tolerance = 1
	}

	switch direction {
	case shared.LowSwept:
		return price <= zones.LowerZone*tolerance
	case shared.HighSwept:
		return price >= zones.UpperZone/tolerance
	default:
		return false
	}
}
