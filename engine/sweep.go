package engine

import (
	"time"

	"github.com/forwardfin/sweep/shared"
)

// DetectSweep classifies whether the provided price has swept beyond the
// session range. Returns nil while price remains inside the range or while
// the window is still open, since a sweep is only meaningful against a
// frozen reference.
func DetectSweep(price float64, window *shared.SessionWindow, now time.Time) *shared.SweepEvent {
	if window == nil || !window.Closed || !window.Tracked {
		return nil
	}

	switch {
	case price < window.Low:
		return &shared.SweepEvent{
			Direction:      shared.LowSwept,
			ReferenceLevel: window.Low,
			ObservedPrice:  price,
			Date:           now,
		}
	case price > window.High:
		return &shared.SweepEvent{
			Direction:      shared.HighSwept,
			ReferenceLevel: window.High,
			ObservedPrice:  price,
			Date:           now,
		}
	default:
		return nil
	}
}
