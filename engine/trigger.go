package engine

import "github.com/forwardfin/sweep/shared"

const (
	// TriggerLookback is the number of fine-grained candles consulted by the
	// entry trigger.
	TriggerLookback = 5
	// structureLookback is how many candles back the break of structure
	// references.
	structureLookback = 3
)

// DetectTrigger scans the most recent fine-grained candles for a directional
// entry trigger: a break of structure combined with an imbalance gap, where
// the breaking candle itself closes with the direction's sentiment. All three
// must be present. Returns false when fewer than the lookback length of
// candles are available.
func DetectTrigger(direction shared.Direction, candles []*shared.Candlestick) bool {
	if len(candles) < TriggerLookback {
		return false
	}

	latest := candles[len(candles)-1]
	structureRef := candles[len(candles)-1-structureLookback]
	twoBack := candles[len(candles)-3]
	fourBack := candles[len(candles)-5]

	switch direction {
	case shared.Long:
		// A close above the high of the structure reference candle shifts
		// short-term structure upwards.
		breakOfStructure := latest.Close > structureRef.High

		// A bullish imbalance leaves a gap between the wick ranges of the
		// first and third candle of the move.
		imbalance := twoBack.Low > fourBack.High

		// The breaking candle has to close directionally, a wick poking
		// through on a down candle is not a shift.
		sentiment := latest.FetchSentiment() == shared.Bullish

		return breakOfStructure && imbalance && sentiment
	case shared.Short:
		breakOfStructure := latest.Close < structureRef.Low
		imbalance := twoBack.High < fourBack.Low
		sentiment := latest.FetchSentiment() == shared.Bearish

		return breakOfStructure && imbalance && sentiment
	default:
		return false
	}
}
