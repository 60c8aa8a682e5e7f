package shared

import "time"

// Clock returns the current exchange time. Injecting it keeps the periodic
// evaluation loops testable independent of wall-clock time.
type Clock func() time.Time

// NewYorkClock returns a clock sourcing the current new york time.
func NewYorkClock() (Clock, *time.Location, error) {
	_, loc, err := NewYorkTime()
	if err != nil {
		return nil, nil, err
	}

	clock := func() time.Time {
		return time.Now().In(loc)
	}

	return clock, loc, nil
}
