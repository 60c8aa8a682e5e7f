package shared

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestCandlestickSnapshot(t *testing.T) {
	// Ensure snapshot sizes are sanity checked.
	_, err := NewCandlestickSnapshot(-1)
	assert.Error(t, err)

	_, err = NewCandlestickSnapshot(0)
	assert.Error(t, err)

	snapshot, err := NewCandlestickSnapshot(4)
	assert.NoError(t, err)
	assert.Nil(t, snapshot.Last())

	base := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	candle := func(minute int, close float64) *Candlestick {
		return &Candlestick{
			Open:  close - 1,
			Close: close,
			High:  close + 1,
			Low:   close - 2,
			Date:  base.Add(time.Duration(minute) * time.Minute),
		}
	}

	// Ensure candles are appended in order.
	added := snapshot.Update(candle(0, 10))
	assert.True(t, added)
	added = snapshot.Update(candle(1, 11))
	assert.True(t, added)
	assert.Equal(t, snapshot.Count(), 2)
	assert.Equal(t, snapshot.Last().Close, float64(11))

	// Ensure appending a duplicate candle is a no-op.
	added = snapshot.Update(candle(1, 99))
	assert.False(t, added)
	assert.Equal(t, snapshot.Count(), 2)
	assert.Equal(t, snapshot.Last().Close, float64(11))

	// Ensure appending a late candle is a no-op.
	added = snapshot.Update(candle(0, 99))
	assert.False(t, added)
	assert.Equal(t, snapshot.Count(), 2)

	// Ensure the oldest entry is evicted once the snapshot is at capacity.
	snapshot.Update(candle(2, 12))
	snapshot.Update(candle(3, 13))
	snapshot.Update(candle(4, 14))
	assert.Equal(t, snapshot.Count(), 4)

	set := snapshot.LastN(4)
	assert.Equal(t, len(set), 4)
	assert.Equal(t, set[0].Close, float64(11))
	assert.Equal(t, set[3].Close, float64(14))

	// Ensure requests beyond the snapshot count are clamped.
	set = snapshot.LastN(10)
	assert.Equal(t, len(set), 4)
	assert.Nil(t, snapshot.LastN(0))

	// Ensure close series are returned in order.
	closes := snapshot.CloseSeries(3)
	assert.Equal(t, closes, []float64{12, 13, 14})
}
