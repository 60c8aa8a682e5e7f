package market

import (
	"fmt"
	"time"

	"github.com/forwardfin/sweep/shared"
)

// MarketConfig represents the configuration for a tracked market.
type MarketConfig struct {
	// Market is the name of the tracked market.
	Market string
	// SessionOpen is the reference session open (time of day).
	SessionOpen string
	// SessionClose is the reference session close (time of day).
	SessionClose string
}

// Market owns the candle history and session range of one tracked market.
type Market struct {
	cfg     *MarketConfig
	candles *shared.CandlestickSnapshot
	session *SessionTracker
}

// NewMarket initializes a new market.
func NewMarket(cfg *MarketConfig, now time.Time) (*Market, error) {
	candles, err := shared.NewCandlestickSnapshot(shared.SnapshotSize)
	if err != nil {
		return nil, fmt.Errorf("creating candlestick snapshot: %w", err)
	}

	session, err := NewSessionTracker(cfg.Market, cfg.SessionOpen, cfg.SessionClose, now)
	if err != nil {
		return nil, fmt.Errorf("creating session tracker: %w", err)
	}

	mkt := &Market{
		cfg:     cfg,
		candles: candles,
		session: session,
	}

	return mkt, nil
}

// Update processes incoming candle data for the market. Stale or duplicate
// candles are discarded before they reach the session tracker.
func (m *Market) Update(candle *shared.Candlestick) error {
	added := m.candles.Update(candle)
	if !added {
		// do nothing, the candle is stale or a duplicate.
		return nil
	}

	err := m.session.Update(candle)
	if err != nil {
		return fmt.Errorf("updating session tracker: %w", err)
	}

	return nil
}
