package database

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestGenerateMetadataID(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)

	// Ensure metadata ids are deterministic per month, week and market.
	first := time.Date(2025, 3, 4, 10, 0, 0, 0, loc)
	assert.Equal(t, generateMetadataID(first, "^NDX"), "March-Week-0-^NDX")

	// Ensure days in the same week map to the same id.
	second := time.Date(2025, 3, 6, 15, 0, 0, 0, loc)
	assert.Equal(t, generateMetadataID(second, "^NDX"), "March-Week-0-^NDX")

	// Ensure a later week produces a different id.
	third := time.Date(2025, 3, 20, 10, 0, 0, 0, loc)
	assert.Equal(t, generateMetadataID(third, "^NDX"), "March-Week-2-^NDX")
}
