package market

import (
	"testing"
	"time"

	"github.com/forwardfin/sweep/shared"
	"github.com/peterldowns/testy/assert"
)

func TestSessionTracker(t *testing.T) {
	market := "^NDX"
	loc, err := time.LoadLocation(shared.NewYorkLocation)
	assert.NoError(t, err)

	now := time.Date(2025, 3, 4, 2, 30, 0, 0, loc)

	// Ensure invalid session times are rejected.
	_, err = NewSessionTracker(market, "bad", "09:00", now)
	assert.Error(t, err)

	tracker, err := NewSessionTracker(market, "03:00", "09:00", now)
	assert.NoError(t, err)

	// Ensure a window with no in-window candles reports untracked.
	window, tracked := tracker.Snapshot(now)
	assert.False(t, tracked)
	assert.False(t, window.Closed)

	// Ensure in-window candles tighten the session range.
	err = tracker.Update(&shared.Candlestick{
		Open: 102, Close: 104, High: 110, Low: 100,
		Date: time.Date(2025, 3, 4, 4, 0, 0, 0, loc),
	})
	assert.NoError(t, err)

	err = tracker.Update(&shared.Candlestick{
		Open: 104, Close: 103, High: 108, Low: 99,
		Date: time.Date(2025, 3, 4, 5, 0, 0, 0, loc),
	})
	assert.NoError(t, err)

	window, tracked = tracker.Snapshot(time.Date(2025, 3, 4, 5, 1, 0, 0, loc))
	assert.True(t, tracked)
	assert.False(t, window.Closed)
	assert.Equal(t, window.High, float64(110))
	assert.Equal(t, window.Low, float64(99))

	// Ensure the snapshot derives the closed state from the provided time even
	// when no candle has arrived after the close.
	window, _ = tracker.Snapshot(time.Date(2025, 3, 4, 9, 30, 0, 0, loc))
	assert.True(t, window.Closed)
	assert.Equal(t, window.High, float64(110))
	assert.Equal(t, window.Low, float64(99))

	// Ensure candles after the close do not alter the frozen range.
	err = tracker.Update(&shared.Candlestick{
		Open: 95, Close: 94, High: 96, Low: 90,
		Date: time.Date(2025, 3, 4, 10, 0, 0, 0, loc),
	})
	assert.NoError(t, err)

	window, _ = tracker.Snapshot(time.Date(2025, 3, 4, 10, 1, 0, 0, loc))
	assert.Equal(t, window.High, float64(110))
	assert.Equal(t, window.Low, float64(99))

	// Ensure a candle past the next day's open rotates in a fresh window.
	nextDay := time.Date(2025, 3, 5, 3, 30, 0, 0, loc)
	err = tracker.Update(&shared.Candlestick{
		Open: 120, Close: 121, High: 122, Low: 119,
		Date: nextDay,
	})
	assert.NoError(t, err)

	window, tracked = tracker.Snapshot(nextDay.Add(time.Minute))
	assert.True(t, tracked)
	assert.False(t, window.Closed)
	assert.Equal(t, window.High, float64(122))
	assert.Equal(t, window.Low, float64(119))

	// Ensure a candle before the next open does not rotate the window early.
	beforeOpen := time.Date(2025, 3, 6, 1, 0, 0, 0, loc)
	err = tracker.Update(&shared.Candlestick{
		Open: 130, Close: 131, High: 132, Low: 129,
		Date: beforeOpen,
	})
	assert.NoError(t, err)

	window, _ = tracker.Snapshot(beforeOpen)
	assert.Equal(t, window.High, float64(122))
	assert.Equal(t, window.Low, float64(119))
}
