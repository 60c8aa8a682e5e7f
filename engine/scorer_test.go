package engine

import (
	"testing"

	"github.com/forwardfin/sweep/shared"
	"github.com/peterldowns/testy/assert"
)

func TestRuleScorer(t *testing.T) {
	scorer := &RuleScorer{}

	// Ensure a bare setup scores the moderate base band.
	base := scorer.Score(ScoreFeatures{
		Direction:   shared.Long,
		Momentum:    60,
		HasMomentum: true,
	})
	assert.Equal(t, base, float64(55))

	// Ensure a confirmed divergence boosts into the strong band.
	strong := scorer.Score(ScoreFeatures{
		Direction:           shared.Long,
		DivergenceConfirmed: true,
		Momentum:            60,
		HasMomentum:         true,
	})
	assert.Equal(t, strong, float64(75))

	// Ensure a fresh recovery from oversold adds a smaller boost.
	recovery := scorer.Score(ScoreFeatures{
		Direction:   shared.Long,
		Momentum:    35,
		HasMomentum: true,
	})
	assert.Equal(t, recovery, float64(63))

	rejection := scorer.Score(ScoreFeatures{
		Direction:   shared.Short,
		Momentum:    65,
		HasMomentum: true,
	})
	assert.Equal(t, rejection, float64(63))

	// Ensure missing momentum history degrades confidence.
	degraded := scorer.Score(ScoreFeatures{
		Direction: shared.Long,
	})
	assert.Equal(t, degraded, float64(50))

	// Ensure the combined score stays within the displayable range.
	combined := scorer.Score(ScoreFeatures{
		Direction:           shared.Long,
		DivergenceConfirmed: true,
		Momentum:            35,
		HasMomentum:         true,
	})
	assert.LessThanOrEqual(t, combined, float64(100))
	assert.GreaterThanOrEqual(t, combined, float64(0))
}
