package shared

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestSessionWindow(t *testing.T) {
	loc, err := time.LoadLocation(NewYorkLocation)
	assert.NoError(t, err)

	now := time.Date(2025, 3, 4, 2, 0, 0, 0, loc)

	// Ensure session open and close times are sanity checked.
	_, err = NewSessionWindow("^NDX", "bad", "09:00", now)
	assert.Error(t, err)

	_, err = NewSessionWindow("^NDX", "03:00", "bad", now)
	assert.Error(t, err)

	// Ensure a session window can be created.
	window, err := NewSessionWindow("^NDX", "03:00", "09:00", now)
	assert.NoError(t, err)
	assert.GreaterThan(t, window.Close.Unix(), window.Open.Unix())

	// Ensure the window state transitions from waiting to recording to closed.
	assert.Equal(t, window.State(now), SessionWaiting)
	assert.Equal(t, window.State(now.Add(time.Hour*2)), SessionRecording)
	assert.Equal(t, window.State(now.Add(time.Hour*8)), SessionClosed)

	// Ensure candles inside the window tighten the high and low.
	firstCandle := &Candlestick{
		Open:  5,
		Close: 10,
		High:  12,
		Low:   2,
		Date:  window.Open.Add(time.Minute),
	}

	window.Update(firstCandle)
	assert.True(t, window.Tracked)
	assert.Equal(t, window.High, firstCandle.High)
	assert.Equal(t, window.Low, firstCandle.Low)

	secondCandle := &Candlestick{
		Open:  12,
		Close: 20,
		High:  25,
		Low:   1,
		Date:  window.Open.Add(time.Minute * 2),
	}

	window.Update(secondCandle)
	assert.Equal(t, window.High, secondCandle.High)
	assert.Equal(t, window.Low, secondCandle.Low)
	assert.GreaterThanOrEqual(t, window.High, window.Low)

	// Ensure candles outside the window do not alter the range.
	outsideCandle := &Candlestick{
		Open:  10,
		Close: 40,
		High:  50,
		Low:   0.5,
		Date:  window.Close.Add(time.Minute),
	}

	window.Update(outsideCandle)
	assert.Equal(t, window.High, secondCandle.High)
	assert.Equal(t, window.Low, secondCandle.Low)

	// Ensure the range and midpoint are derived from the tracked extremes.
	assert.Equal(t, window.Range(), float64(24))
	assert.Equal(t, window.Midpoint(), float64(13))

	// Ensure the window freezes once marked closed.
	window.MarkClosed(window.Open)
	assert.False(t, window.Closed)

	window.MarkClosed(window.Close)
	assert.True(t, window.Closed)

	insideCandle := &Candlestick{
		Open:  10,
		Close: 12,
		High:  60,
		Low:   0.1,
		Date:  window.Open.Add(time.Minute * 3),
	}

	window.Update(insideCandle)
	assert.Equal(t, window.High, secondCandle.High)
	assert.Equal(t, window.Low, secondCandle.Low)

	// Ensure a window spanning midnight closes on the next day.
	overnight, err := NewSessionWindow("^NDX", "18:00", "03:00", now)
	assert.NoError(t, err)
	assert.GreaterThan(t, overnight.Close.Unix(), overnight.Open.Unix())
}
