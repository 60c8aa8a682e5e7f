package engine

import (
	"testing"

	"github.com/forwardfin/sweep/shared"
	"github.com/peterldowns/testy/assert"
)

func TestAllowsEntry(t *testing.T) {
	thresholds := DefaultMomentumThresholds()
	assert.Equal(t, thresholds.Oversold, float64(30))
	assert.Equal(t, thresholds.Overbought, float64(70))

	// Ensure a long is suppressed while the decline is still accelerating.
	assert.False(t, AllowsEntry(shared.Long, 15, thresholds))
	assert.True(t, AllowsEntry(shared.Long, 30, thresholds))
	assert.True(t, AllowsEntry(shared.Long, 45, thresholds))
	assert.True(t, AllowsEntry(shared.Long, 90, thresholds))

	// Ensure a short is suppressed while the advance is still accelerating.
	assert.False(t, AllowsEntry(shared.Short, 85, thresholds))
	assert.True(t, AllowsEntry(shared.Short, 70, thresholds))
	assert.True(t, AllowsEntry(shared.Short, 55, thresholds))
	assert.True(t, AllowsEntry(shared.Short, 10, thresholds))
}
