package shared

import (
	"fmt"
	"time"
)

// SessionState represents the lifecycle state of a session window.
type SessionState int

const (
	SessionWaiting SessionState = iota
	SessionRecording
	SessionClosed
)

// String stringifies the provided session state.
func (s *SessionState) String() string {
	switch *s {
	case SessionWaiting:
		return "waiting"
	case SessionRecording:
		return "recording"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SessionWindow represents the daily reference session range for a market.
// The high and low tighten monotonically while the window records and freeze
// once the window closes.
type SessionWindow struct {
	Market  string
	Open    time.Time
	Close   time.Time
	High    float64
	Low     float64
	Closed  bool
	Tracked bool
}

// NewSessionWindow initializes a new session window for the trading day of
// the provided time.
func NewSessionWindow(market string, open string, close string, now time.Time) (*SessionWindow, error) {
	sessionOpen, err := time.Parse(SessionTimeLayout, open)
	if err != nil {
		return nil, fmt.Errorf("parsing session open: %w", err)
	}

	sessionClose, err := time.Parse(SessionTimeLayout, close)
	if err != nil {
		return nil, fmt.Errorf("parsing session close: %w", err)
	}

	loc := now.Location()
	sOpen := time.Date(now.Year(), now.Month(), now.Day(), sessionOpen.Hour(), sessionOpen.Minute(), 0, 0, loc)
	sClose := time.Date(now.Year(), now.Month(), now.Day(), sessionClose.Hour(), sessionClose.Minute(), 0, 0, loc)
	if sClose.Before(sOpen) {
		sClose = sClose.Add(time.Hour * 24)
	}

	window := &SessionWindow{
		Market: market,
		Open:   sOpen,
		Close:  sClose,
	}

	return window, nil
}

// InWindow checks whether the provided time falls inside the session window.
func (s *SessionWindow) InWindow(t time.Time) bool {
	return (t.Equal(s.Open) || t.After(s.Open)) && t.Before(s.Close)
}

// State returns the session window state at the provided time.
func (s *SessionWindow) State(now time.Time) SessionState {
	switch {
	case now.Before(s.Open):
		return SessionWaiting
	case s.InWindow(now):
		return SessionRecording
	default:
		return SessionClosed
	}
}

// Update updates the provided session window's high and low with a candle
// dated inside the window. Updates after the window has closed are no-ops.
func (s *SessionWindow) Update(candle *Candlestick) {
	if s.Closed || !s.InWindow(candle.Date) {
		return
	}

	if !s.Tracked {
		s.Low = candle.Low
		s.High = candle.High
		s.Tracked = true
	}
	if candle.Low < s.Low {
		s.Low = candle.Low
	}
	if candle.High > s.High {
		s.High = candle.High
	}
}

// MarkClosed freezes the session window once its close time has passed.
func (s *SessionWindow) MarkClosed(now time.Time) {
	if !s.Closed && (now.Equal(s.Close) || now.After(s.Close)) {
		s.Closed = true
	}
}

// Range returns the size of the session range.
func (s *SessionWindow) Range() float64 {
	return s.High - s.Low
}

// Midpoint returns the median price of the session range.
func (s *SessionWindow) Midpoint() float64 {
	return s.Low + s.Range()/2
}

// Snapshot returns a copy of the session window safe for concurrent readers.
func (s *SessionWindow) Snapshot() SessionWindow {
	return *s
}
