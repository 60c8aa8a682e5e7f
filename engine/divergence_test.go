package engine

import (
	"testing"

	"github.com/forwardfin/sweep/shared"
	"github.com/peterldowns/testy/assert"
)

func TestConfirmsDivergence(t *testing.T) {
	auxWindow := &shared.SessionWindow{High: 5200, Low: 5100, Closed: true, Tracked: true}

	// Ensure divergence cannot be asserted without a closed auxiliary window.
	assert.False(t, ConfirmsDivergence(shared.LowSwept, nil, 5150))
	assert.False(t, ConfirmsDivergence(shared.LowSwept, &shared.SessionWindow{High: 5200, Low: 5100, Tracked: true}, 5150))
	assert.False(t, ConfirmsDivergence(shared.LowSwept, &shared.SessionWindow{Closed: true}, 5150))

	// Ensure a low sweep is confirmed when the auxiliary held above its low.
	assert.True(t, ConfirmsDivergence(shared.LowSwept, auxWindow, 5150))
	assert.False(t, ConfirmsDivergence(shared.LowSwept, auxWindow, 5090))
	assert.False(t, ConfirmsDivergence(shared.LowSwept, auxWindow, 5100))

	// Ensure a high sweep is confirmed when the auxiliary held below its high.
	assert.True(t, ConfirmsDivergence(shared.HighSwept, auxWindow, 5150))
	assert.False(t, ConfirmsDivergence(shared.HighSwept, auxWindow, 5250))
	assert.False(t, ConfirmsDivergence(shared.HighSwept, auxWindow, 5200))
}
