package engine

import "github.com/forwardfin/sweep/shared"

const (
	// DefaultOversold is the default lower bound of the momentum oscillator
	// below which a decline is considered still accelerating.
	DefaultOversold = float64(30)
	// DefaultOverbought is the default upper bound of the momentum oscillator
	// above which an advance is considered still accelerating.
	DefaultOverbought = float64(70)
)

// MomentumThresholds bound the oscillator readings that suppress an entry.
type MomentumThresholds struct {
	Oversold   float64
	Overbought float64
}

// DefaultMomentumThresholds returns the default momentum thresholds.
func DefaultMomentumThresholds() MomentumThresholds {
	return MomentumThresholds{
		Oversold:   DefaultOversold,
		Overbought: DefaultOverbought,
	}
}

// AllowsEntry filters entries where momentum indicates the move is still
// accelerating. A long is suppressed while the oscillator sits below the
// oversold bound (buying into a free-fall) and a short while it sits above
// the overbought bound (selling into a blow-off). The sweep analysis itself
// is untouched, only emission is suppressed.
func AllowsEntry(direction shared.Direction, momentum float64, thresholds MomentumThresholds) bool {
	switch direction {
	case shared.Long:
		return momentum >= thresholds.Oversold
	case shared.Short:
		return momentum <= thresholds.Overbought
	default:
		return false
	}
}
