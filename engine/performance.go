package engine

import (
	"math"
	"sync"

	"github.com/forwardfin/sweep/shared"
)

// PerformanceTracker grades emitted signals against later price action and
// maintains rolling win/loss counters per market.
type PerformanceTracker struct {
	// noiseThresholdPercent is the minimum price movement, as a percentage of
	// the entry price, required before a signal is graded. Tiny wiggles are
	// not graded.
	noiseThresholdPercent float64
	stats                 map[string]*shared.PerformanceStats
	statsMtx              sync.RWMutex
}

// NewPerformanceTracker initializes a new performance tracker.
func NewPerformanceTracker(noiseThresholdPercent float64) *PerformanceTracker {
	return &PerformanceTracker{
		noiseThresholdPercent: noiseThresholdPercent,
		stats:                 make(map[string]*shared.PerformanceStats),
	}
}

// Grade grades the provided signal against the current price. Grading is
// idempotent: a signal already graded is skipped, and a signal whose price
// movement has not yet exceeded the noise threshold stays pending. Returns
// whether the signal was graded by this call.
func (t *PerformanceTracker) Grade(signal *shared.Signal, currentPrice float64) bool {
	if signal == nil || signal.State == shared.Graded {
		return false
	}

	movement := math.Abs(currentPrice - signal.Setup.Entry)
	threshold := math.Abs(signal.Setup.Entry) * t.noiseThresholdPercent / 100
	if movement <= threshold {
		return false
	}

	var favourable bool
	switch signal.Direction {
	case shared.Long:
		favourable = currentPrice > signal.Setup.Entry
	case shared.Short:
		favourable = currentPrice < signal.Setup.Entry
	}

	switch favourable {
	case true:
		signal.Outcome = shared.Win
	case false:
		signal.Outcome = shared.Loss
	}
	signal.State = shared.Graded

	t.statsMtx.Lock()
	defer t.statsMtx.Unlock()

	stats, ok := t.stats[signal.Market]
	if !ok {
		stats = &shared.PerformanceStats{}
		t.stats[signal.Market] = stats
	}

	stats.Total++
	if signal.Outcome == shared.Win {
		stats.Wins++
	}
	stats.WinRate = math.Round(float64(stats.Wins) / float64(stats.Total) * 100)

	return true
}

// Stats returns the rolling performance stats for the provided market.
func (t *PerformanceTracker) Stats(market string) shared.PerformanceStats {
	t.statsMtx.RLock()
	defer t.statsMtx.RUnlock()

	stats, ok := t.stats[market]
	if !ok {
		return shared.PerformanceStats{}
	}

	return *stats
}

// Reset clears the rolling counters for the provided market.
func (t *PerformanceTracker) Reset(market string) {
	t.statsMtx.Lock()
	defer t.statsMtx.Unlock()

	delete(t.stats, market)
}
