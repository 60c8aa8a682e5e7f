package shared

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestSignal(t *testing.T) {
	// Ensure a signal can be created with sane defaults.
	setup := TradeSetup{
		Entry:      79,
		Stop:       78.5,
		Target:     110,
		Midpoint:   105,
		Size:       2,
		RiskAmount: 20,
		Valid:      true,
	}

	created := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	signal := NewSignal("^NDX", Long, setup, 78, "strong long signal", created)
	assert.NotEqual(t, signal.ID, "")
	assert.Equal(t, signal.State, Emitted)
	assert.Equal(t, signal.Outcome, Pending)

	// Ensure signal ids are unique.
	other := NewSignal("^NDX", Long, setup, 78, "strong long signal", created)
	assert.NotEqual(t, signal.ID, other.ID)

	// Ensure the notification payload mirrors the signal.
	payload := NewNotificationPayload(signal)
	assert.Equal(t, payload.Market, signal.Market)
	assert.Equal(t, payload.Direction, "long")
	assert.Equal(t, payload.Entry, setup.Entry)
	assert.Equal(t, payload.Stop, setup.Stop)
	assert.Equal(t, payload.Target, setup.Target)
	assert.Equal(t, payload.Size, setup.Size)
	assert.Equal(t, payload.Timestamp, "2025-03-04 10:30:00")

	// Ensure enum stringification covers all states.
	long := Long
	short := Short
	assert.Equal(t, long.String(), "long")
	assert.Equal(t, short.String(), "short")

	lowSwept := LowSwept
	highSwept := HighSwept
	assert.Equal(t, lowSwept.String(), "low swept")
	assert.Equal(t, highSwept.String(), "high swept")

	states := map[SignalState]string{
		Emitted: "emitted",
		Latched: "latched",
		Expired: "expired",
		Graded:  "graded",
	}
	for state, want := range states {
		assert.Equal(t, state.String(), want)
	}

	outcomes := map[Outcome]string{
		Pending: "pending",
		Win:     "win",
		Loss:    "loss",
	}
	for outcome, want := range outcomes {
		assert.Equal(t, outcome.String(), want)
	}
}
