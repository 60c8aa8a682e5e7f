package engine

import "github.com/forwardfin/sweep/shared"

// ScoreFeatures are the inputs a scorer grades a candidate setup on.
type ScoreFeatures struct {
	// Direction is the directional hypothesis of the setup.
	Direction shared.Direction
	// DivergenceConfirmed reports whether the auxiliary market confirmed the
	// sweep divergence.
	DivergenceConfirmed bool
	// Momentum is the current oscillator reading.
	Momentum float64
	// HasMomentum reports whether enough history existed to compute momentum.
	HasMomentum bool
}

// Scorer scores a candidate setup's features into a confidence percentage.
// Modelling this as an interface keeps the engine's control flow independent
// of whether the implementation is a hand-rolled rule set, a trained
// classifier or a stub.
type Scorer interface {
	// Score returns a confidence between 0 and 100 for the provided features.
	Score(features ScoreFeatures) float64
}

// RuleScorer is the default rule-based scorer.
type RuleScorer struct{}

// Ensure the rule scorer implements the Scorer interface.
var _ Scorer = (*RuleScorer)(nil)

// Score grades the provided features. A confirmed cross-market divergence is
// the strongest booster; a momentum reading freshly recovering from an
// extreme adds a smaller one. Missing momentum history degrades confidence
// rather than blocking the setup.
func (s *RuleScorer) Score(features ScoreFeatures) float64 {
	confidence := float64(55)

	if features.DivergenceConfirmed {
		confidence += 20
	}

	if !features.HasMomentum {
		confidence -= 5
		return clampConfidence(confidence)
	}

	switch features.Direction {
	case shared.Long:
		// A reading just recovering from oversold suggests the decline has
		// exhausted.
		if features.Momentum >= DefaultOversold && features.Momentum <= 50 {
			confidence += 8
		}
	case shared.Short:
		if features.Momentum <= DefaultOverbought && features.Momentum >= 50 {
			confidence += 8
		}
	}

	return clampConfidence(confidence)
}

// clampConfidence bounds a confidence to the displayable 0-100 range.
func clampConfidence(confidence float64) float64 {
	switch {
	case confidence < 0:
		return 0
	case confidence > 100:
		return 100
	default:
		return confidence
	}
}
