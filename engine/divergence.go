package engine

import "github.com/forwardfin/sweep/shared"

// ConfirmsDivergence checks whether the auxiliary market diverged from the
// primary market's sweep. A low sweep on the primary is confirmed when the
// auxiliary held above its own session low (it refused to make the matching
// new low), and symmetrically for a high sweep. Divergence cannot be asserted
// without a closed auxiliary reference range, so an open or untracked
// auxiliary window refutes rather than errors.
func ConfirmsDivergence(primarySweep shared.SweepDirection, auxWindow *shared.SessionWindow, auxPrice float64) bool {
	if auxWindow == nil || !auxWindow.Closed || !auxWindow.Tracked {
		return false
	}

	switch primarySweep {
	case shared.LowSwept:
		return auxPrice > auxWindow.Low
	case shared.HighSwept:
		return auxPrice < auxWindow.High
	default:
		return false
	}
}
