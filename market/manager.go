package market

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/forwardfin/sweep/shared"
	"github.com/rs/zerolog"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
)

// ManagerConfig represents the market manager configuration.
type ManagerConfig struct {
	// Markets represents the tracked markets.
	Markets []string
	// SessionOpen is the reference session open (time of day).
	SessionOpen string
	// SessionClose is the reference session close (time of day).
	SessionClose string
	// Subscribe registers the manager for market data updates.
	Subscribe func(sub chan shared.Candlestick)
	// Clock returns the current exchange time.
	Clock shared.Clock
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *ManagerConfig) Validate() error {
	var errs error

	if len(cfg.Markets) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no markets provided for market manager"))
	}
	if cfg.SessionOpen == "" {
		errs = errors.Join(errs, fmt.Errorf("session open cannot be an empty string"))
	}
	if cfg.SessionClose == "" {
		errs = errors.Join(errs, fmt.Errorf("session close cannot be an empty string"))
	}
	if cfg.Subscribe == nil {
		errs = errors.Join(errs, fmt.Errorf("subscribe function cannot be nil"))
	}
	if cfg.Clock == nil {
		errs = errors.Join(errs, fmt.Errorf("clock cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Manager owns the candle store and session state of all tracked markets.
// Mutation happens only on the ingestion path (Run); the evaluation loop and
// the status api read through the snapshot accessors.
type Manager struct {
	cfg           *ManagerConfig
	markets       map[string]*Market
	marketsMtx    sync.RWMutex
	updateSignals chan shared.Candlestick
}

// NewManager initializes a new market manager.
func NewManager(cfg *ManagerConfig, now time.Time) (*Manager, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	markets := make(map[string]*Market)
	for idx := range cfg.Markets {
		mCfg := &MarketConfig{
			Market:       cfg.Markets[idx],
			SessionOpen:  cfg.SessionOpen,
			SessionClose: cfg.SessionClose,
		}

		mkt, err := NewMarket(mCfg, now)
		if err != nil {
			return nil, fmt.Errorf("creating %s market: %w", cfg.Markets[idx], err)
		}

		markets[cfg.Markets[idx]] = mkt
	}

	mgr := &Manager{
		cfg:           cfg,
		markets:       markets,
		updateSignals: make(chan shared.Candlestick, bufferSize),
	}

	cfg.Subscribe(mgr.updateSignals)

	return mgr, nil
}

// fetchMarket returns the tracked market with the provided name, lazily
// creating it for unknown names.
func (m *Manager) fetchMarket(name string) (*Market, error) {
	m.marketsMtx.RLock()
	mkt, ok := m.markets[name]
	m.marketsMtx.RUnlock()
	if ok {
		return mkt, nil
	}

	mCfg := &MarketConfig{
		Market:       name,
		SessionOpen:  m.cfg.SessionOpen,
		SessionClose: m.cfg.SessionClose,
	}

	mkt, err := NewMarket(mCfg, m.cfg.Clock())
	if err != nil {
		return nil, fmt.Errorf("creating %s market: %w", name, err)
	}

	m.marketsMtx.Lock()
	m.markets[name] = mkt
	m.marketsMtx.Unlock()

	return mkt, nil
}

// handleUpdateCandle processes the provided market update candle.
func (m *Manager) handleUpdateCandle(candle *shared.Candlestick) {
	mkt, err := m.fetchMarket(candle.Market)
	if err != nil {
		m.cfg.Logger.Error().Msgf("fetching market for update: %v", err)
		return
	}

	err = mkt.Update(candle)
	if err != nil {
		m.cfg.Logger.Error().Msgf("updating %s market: %v", candle.Market, err)
	}
}

// LatestCandle returns the most recent candle for the provided market, or nil
// if no candles have been observed yet.
func (m *Manager) LatestCandle(market string) *shared.Candlestick {
	m.marketsMtx.RLock()
	mkt, ok := m.markets[market]
	m.marketsMtx.RUnlock()
	if !ok {
		return nil
	}

	return mkt.candles.Last()
}

// LastN returns the last n candles for the provided market.
func (m *Manager) LastN(market string, n int) []*shared.Candlestick {
	m.marketsMtx.RLock()
	mkt, ok := m.markets[market]
	m.marketsMtx.RUnlock()
	if !ok {
		return nil
	}

	return mkt.candles.LastN(n)
}

// CloseSeries returns the closing prices of the last n candles for the
// provided market.
func (m *Manager) CloseSeries(market string, n int) []float64 {
	m.marketsMtx.RLock()
	mkt, ok := m.markets[market]
	m.marketsMtx.RUnlock()
	if !ok {
		return nil
	}

	return mkt.candles.CloseSeries(n)
}

// SessionSnapshot returns a copy of the provided market's session window and
// whether any candle has fallen inside it yet.
func (m *Manager) SessionSnapshot(market string, now time.Time) (shared.SessionWindow, bool) {
	m.marketsMtx.RLock()
	mkt, ok := m.markets[market]
	m.marketsMtx.RUnlock()
	if !ok {
		return shared.SessionWindow{}, false
	}

	return mkt.session.Snapshot(now)
}

// Run manages the lifecycle processes of the market manager.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case candle := <-m.updateSignals:
			m.handleUpdateCandle(&candle)
		}
	}
}
