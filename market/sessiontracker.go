package market

import (
	"fmt"
	"sync"
	"time"

	"github.com/forwardfin/sweep/shared"
)

// SessionTracker derives the daily reference session range for a market.
// The tracked window is mutated only by the ingestion path; the evaluation
// path reads consistent copies via Snapshot.
type SessionTracker struct {
	market       string
	sessionOpen  string
	sessionClose string
	window       *shared.SessionWindow
	windowMtx    sync.RWMutex
}

// NewSessionTracker initializes a session tracker for the provided market.
func NewSessionTracker(market string, open string, close string, now time.Time) (*SessionTracker, error) {
	window, err := shared.NewSessionWindow(market, open, close, now)
	if err != nil {
		return nil, fmt.Errorf("creating session window: %w", err)
	}

	tracker := &SessionTracker{
		market:       market,
		sessionOpen:  open,
		sessionClose: close,
		window:       window,
	}

	return tracker, nil
}

// rotate replaces the tracked window once the provided time crosses the
// session open of a new trading day. The caller must hold the window mutex.
func (t *SessionTracker) rotate(now time.Time) error {
	candidate, err := shared.NewSessionWindow(t.market, t.sessionOpen, t.sessionClose, now)
	if err != nil {
		return fmt.Errorf("creating session window: %w", err)
	}

	if candidate.Open.After(t.window.Open) && !now.Before(candidate.Open) {
		t.window = candidate
	}

	return nil
}

// Update processes the provided candle, rotating the window on a new trading
// day and tightening the session high/low while the window records.
func (t *SessionTracker) Update(candle *shared.Candlestick) error {
	t.windowMtx.Lock()
	defer t.windowMtx.Unlock()

	err := t.rotate(candle.Date)
	if err != nil {
		return err
	}

	t.window.Update(candle)
	t.window.MarkClosed(candle.Date)

	return nil
}

// Snapshot returns a copy of the current session window. The closed flag is
// derived from the provided time so a window freezes even when no candles
// arrive after its close. The boolean result reports whether any candle has
// fallen inside the window yet.
func (t *SessionTracker) Snapshot(now time.Time) (shared.SessionWindow, bool) {
	t.windowMtx.RLock()
	defer t.windowMtx.RUnlock()

	window := t.window.Snapshot()
	if window.State(now) == shared.SessionClosed {
		window.Closed = true
	}

	return window, window.Tracked
}
