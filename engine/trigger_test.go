package engine

import (
	"testing"

	"github.com/forwardfin/sweep/shared"
	"github.com/peterldowns/testy/assert"
)

func TestDetectTrigger(t *testing.T) {
	// Ensure insufficient history never triggers.
	short := []*shared.Candlestick{
		{Open: 80, Close: 81, High: 82, Low: 79},
		{Open: 81, Close: 82, High: 83, Low: 80},
	}
	assert.False(t, DetectTrigger(shared.Long, short))
	assert.False(t, DetectTrigger(shared.Long, nil))

	// A bullish break of structure with an imbalance gap: the close of the
	// latest candle clears the high three candles back, and the low of the
	// two-back candle sits above the high of the four-back candle.
	longTrigger := []*shared.Candlestick{
		{Open: 79.2, Close: 79.6, High: 79.8, Low: 79.0},
		{Open: 79.6, Close: 80.4, High: 80.5, Low: 79.5},
		{Open: 80.4, Close: 81.2, High: 81.4, Low: 80.2},
		{Open: 81.2, Close: 81.0, High: 81.5, Low: 80.8},
		{Open: 81.0, Close: 82.1, High: 82.3, Low: 80.9},
	}

	assert.True(t, DetectTrigger(shared.Long, longTrigger))
	assert.False(t, DetectTrigger(shared.Short, longTrigger))

	// Ensure a missing imbalance refutes the trigger even with a structure break.
	noGap := []*shared.Candlestick{
		{Open: 79.2, Close: 79.6, High: 80.9, Low: 79.0},
		{Open: 79.6, Close: 80.4, High: 80.5, Low: 79.5},
		{Open: 80.4, Close: 81.2, High: 81.4, Low: 80.2},
		{Open: 81.2, Close: 81.0, High: 81.5, Low: 80.8},
		{Open: 81.0, Close: 82.1, High: 82.3, Low: 80.9},
	}
	assert.False(t, DetectTrigger(shared.Long, noGap))

	// Ensure a missing structure break refutes the trigger even with a gap.
	noBreak := []*shared.Candlestick{
		{Open: 79.2, Close: 79.6, High: 79.8, Low: 79.0},
		{Open: 79.6, Close: 80.4, High: 83.0, Low: 79.5},
		{Open: 80.4, Close: 81.2, High: 81.4, Low: 80.2},
		{Open: 81.2, Close: 81.0, High: 81.5, Low: 80.8},
		{Open: 81.0, Close: 82.1, High: 82.3, Low: 80.9},
	}
	assert.False(t, DetectTrigger(shared.Long, noBreak))

	// Ensure a counter-sentiment close refutes the trigger: the latest candle
	// clears the structure high but closes below its open.
	bearishBreak := []*shared.Candlestick{
		{Open: 79.2, Close: 79.6, High: 79.8, Low: 79.0},
		{Open: 79.6, Close: 80.4, High: 80.5, Low: 79.5},
		{Open: 80.4, Close: 81.2, High: 81.4, Low: 80.2},
		{Open: 81.2, Close: 81.0, High: 81.5, Low: 80.8},
		{Open: 82.5, Close: 82.1, High: 82.6, Low: 80.9},
	}
	assert.False(t, DetectTrigger(shared.Long, bearishBreak))

	// Ensure the mirrored short trigger is detected.
	shortTrigger := []*shared.Candlestick{
		{Open: 130.8, Close: 130.4, High: 131.0, Low: 130.2},
		{Open: 130.4, Close: 129.6, High: 130.5, Low: 129.5},
		{Open: 129.6, Close: 128.8, High: 129.8, Low: 128.6},
		{Open: 128.8, Close: 129.0, High: 129.2, Low: 128.5},
		{Open: 129.0, Close: 127.9, High: 129.1, Low: 127.7},
	}

	assert.True(t, DetectTrigger(shared.Short, shortTrigger))
	assert.False(t, DetectTrigger(shared.Long, shortTrigger))
}
