package shared

import (
	"errors"
	"sync"
)

const (
	// SnapshotSize is the maximum number of entries for a candlestick snapshot.
	// Sized for a few hours of one-minute candles.
	SnapshotSize = 360
)

// CandlestickSnapshot represents a bounded, time-ordered snapshot of
// candlestick data for a market. Appends of stale or duplicate candles are
// no-ops, which makes the snapshot idempotent against late feed data.
type CandlestickSnapshot struct {
	data    []*Candlestick
	dataMtx sync.RWMutex
	start   int
	count   int
	size    int
}

// NewCandlestickSnapshot initializes a new candlestick snapshot.
func NewCandlestickSnapshot(size int) (*CandlestickSnapshot, error) {
	if size < 0 {
		return nil, errors.New("snapshot size cannot be negative")
	}
	if size == 0 {
		return nil, errors.New("snapshot size cannot be zero")
	}

	snapshot := &CandlestickSnapshot{
		data: make([]*Candlestick, size),
		size: size,
	}

	return snapshot, nil
}

// Update adds the provided candlestick to the snapshot. A candle dated at or
// before the most recent entry is discarded.
func (s *CandlestickSnapshot) Update(candle *Candlestick) bool {
	s.dataMtx.Lock()
	defer s.dataMtx.Unlock()

	if s.count > 0 {
		end := (s.start + s.count - 1) % s.size
		last := s.data[end]
		if !candle.Date.After(last.Date) {
			return false
		}
	}

	end := (s.start + s.count) % s.size
	s.data[end] = candle

	if s.count == s.size {
		// Overwrite the oldest entry when the snapshot is at capacity.
		s.start = (s.start + 1) % s.size
	} else {
		s.count++
	}

	return true
}

// Last returns the last added entry for the snapshot.
func (s *CandlestickSnapshot) Last() *Candlestick {
	s.dataMtx.RLock()
	defer s.dataMtx.RUnlock()

	if s.count == 0 {
		return nil
	}

	end := (s.start + s.count - 1) % s.size
	return s.data[end]
}

// LastN fetches the last n number of elements from the snapshot.
func (s *CandlestickSnapshot) LastN(n int) []*Candlestick {
	s.dataMtx.RLock()
	defer s.dataMtx.RUnlock()

	if n <= 0 {
		return nil
	}

	// Clamp the number of elements expected if it is greater than the snapshot count.
	if n > s.count {
		n = s.count
	}
	if n == 0 {
		return nil
	}

	set := make([]*Candlestick, n)
	start := (s.start + s.count - n + s.size) % s.size

	for i := range n {
		idx := (start + i) % s.size
		set[i] = s.data[idx]
	}

	return set
}

// Count returns the number of entries in the snapshot.
func (s *CandlestickSnapshot) Count() int {
	s.dataMtx.RLock()
	defer s.dataMtx.RUnlock()

	return s.count
}

// CloseSeries returns the closing prices of the last n entries in order.
func (s *CandlestickSnapshot) CloseSeries(n int) []float64 {
	candles := s.LastN(n)
	if len(candles) == 0 {
		return nil
	}

	closes := make([]float64, len(candles))
	for idx := range candles {
		closes[idx] = candles[idx].Close
	}

	return closes
}
