package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/forwardfin/sweep/shared"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

const (
	// minSubscriberBuffer is the minimum buffer size for subscribers.
	minSubscriberBuffer = 8
	// fetchTimeout bounds a single market data fetch.
	fetchTimeout = time.Second * 10
	// backfillHours is how far back the initial catch up fetch reaches.
	backfillHours = 8
)

// ManagerConfig represents the configuration for the fetch manager.
type ManagerConfig struct {
	// Markets represents the tracked markets.
	Markets []string
	// ExchangeClient represents the market exchange client.
	ExchangeClient shared.MarketFetcher
	// FetchInterval is the candle polling interval in seconds.
	FetchInterval int
	// JobScheduler is the shared job scheduler.
	JobScheduler *gocron.Scheduler
	// Clock returns the current exchange time.
	Clock shared.Clock
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *ManagerConfig) Validate() error {
	var errs error

	if len(cfg.Markets) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no markets provided for fetch manager"))
	}
	if cfg.ExchangeClient == nil {
		errs = errors.Join(errs, fmt.Errorf("exchange client cannot be nil"))
	}
	if cfg.FetchInterval <= 0 {
		errs = errors.Join(errs, fmt.Errorf("fetch interval must be positive"))
	}
	if cfg.JobScheduler == nil {
		errs = errors.Join(errs, fmt.Errorf("job scheduler cannot be nil"))
	}
	if cfg.Clock == nil {
		errs = errors.Join(errs, fmt.Errorf("clock cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Manager represents the market data ingestion manager. It polls the exchange
// on a fixed interval and fans fetched candles out to subscribers.
type Manager struct {
	cfg              *ManagerConfig
	lastUpdatedTimes map[string]time.Time
	lastUpdatedMtx   sync.RWMutex
	subscribers      []chan shared.Candlestick
	subscribersMtx   sync.Mutex
}

// NewManager initializes the fetch manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	mgr := &Manager{
		cfg:              cfg,
		lastUpdatedTimes: make(map[string]time.Time),
		subscribers:      make([]chan shared.Candlestick, 0, minSubscriberBuffer),
	}

	return mgr, nil
}

// Subscribe registers the provided subscriber for market updates.
func (m *Manager) Subscribe(sub chan shared.Candlestick) {
	m.subscribersMtx.Lock()
	defer m.subscribersMtx.Unlock()

	m.subscribers = append(m.subscribers, sub)
}

// notifySubscribers notifies subscribers of the new market update.
func (m *Manager) notifySubscribers(candle *shared.Candlestick) {
	m.subscribersMtx.Lock()
	defer m.subscribersMtx.Unlock()

	for k := range m.subscribers {
		m.subscribers[k] <- *candle
	}
}

// LastUpdated returns the date of the most recent candle fetched for the
// provided market.
func (m *Manager) LastUpdated(market string) time.Time {
	m.lastUpdatedMtx.RLock()
	defer m.lastUpdatedMtx.RUnlock()

	return m.lastUpdatedTimes[market]
}

// Stale reports whether the provided market's feed has gone longer than the
// provided threshold without an update.
func (m *Manager) Stale(market string, threshold time.Duration) bool {
	last := m.LastUpdated(market)
	if last.IsZero() {
		return true
	}

	return m.cfg.Clock().Sub(last) > threshold
}

// fetchMarketData fetches new candles for the provided market and relays them
// to subscribers.
func (m *Manager) fetchMarketData(ctx context.Context, market string) error {
	start := m.LastUpdated(market)
	if start.IsZero() {
		start = m.cfg.Clock().Add(-time.Hour * backfillHours)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	data, err := m.cfg.ExchangeClient.FetchIntradayHistorical(fetchCtx, market, shared.OneMinute, start, time.Time{})
	if err != nil {
		return fmt.Errorf("fetching intraday data for %s: %w", market, err)
	}

	candles, err := m.cfg.ExchangeClient.ParseCandlesticks(data, market, shared.OneMinute)
	if err != nil {
		return fmt.Errorf("parsing candlesticks for %s: %w", market, err)
	}

	if len(candles) == 0 {
		return nil
	}

	for idx := range candles {
		m.notifySubscribers(&candles[idx])
	}

	m.lastUpdatedMtx.Lock()
	m.lastUpdatedTimes[market] = candles[len(candles)-1].Date
	m.lastUpdatedMtx.Unlock()

	return nil
}

// pollMarkets fetches new candles for all tracked markets.
func (m *Manager) pollMarkets(ctx context.Context) {
	for idx := range m.cfg.Markets {
		err := m.fetchMarketData(ctx, m.cfg.Markets[idx])
		if err != nil {
			m.cfg.Logger.Error().Msgf("polling %s: %v", m.cfg.Markets[idx], err)
		}
	}
}

// Run manages the lifecycle processes of the fetch manager.
func (m *Manager) Run(ctx context.Context) {
	_, err := m.cfg.JobScheduler.Every(m.cfg.FetchInterval).Seconds().Do(func() {
		m.pollMarkets(ctx)
	})
	if err != nil {
		m.cfg.Logger.Error().Msgf("scheduling market poll job: %v", err)
		return
	}

	m.cfg.JobScheduler.StartAsync()

	<-ctx.Done()
}
