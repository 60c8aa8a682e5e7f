package fetch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/forwardfin/sweep/shared"
	"github.com/go-co-op/gocron"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// fakeFetcher is a canned market fetcher for tests.
type fakeFetcher struct {
	candles []shared.Candlestick
	err     error
}

func (f *fakeFetcher) FetchIntradayHistorical(ctx context.Context, market string, timeframe shared.Timeframe, start time.Time, end time.Time) ([]gjson.Result, error) {
	if f.err != nil {
		return nil, f.err
	}

	return make([]gjson.Result, len(f.candles)), nil
}

func (f *fakeFetcher) ParseCandlesticks(data []gjson.Result, market string, timeframe shared.Timeframe) ([]shared.Candlestick, error) {
	return f.candles, nil
}

func TestManager(t *testing.T) {
	market := "^NDX"
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	candles := []shared.Candlestick{
		{Market: market, Close: 100, Date: now.Add(-time.Minute * 2)},
		{Market: market, Close: 101, Date: now.Add(-time.Minute)},
	}

	fetcher := &fakeFetcher{candles: candles}

	// Ensure the fetch manager config is validated.
	_, err := NewManager(&ManagerConfig{})
	assert.Error(t, err)

	cfg := &ManagerConfig{
		Markets:        []string{market},
		ExchangeClient: fetcher,
		FetchInterval:  10,
		JobScheduler:   gocron.NewScheduler(time.UTC),
		Clock:          clock,
		Logger:         &log.Logger,
	}

	mgr, err := NewManager(cfg)
	assert.NoError(t, err)

	// Ensure a market with no updates yet reports stale.
	assert.True(t, mgr.Stale(market, time.Minute*20))

	// Ensure subscribers receive fetched candles.
	sub := make(chan shared.Candlestick, 8)
	mgr.Subscribe(sub)

	err = mgr.fetchMarketData(context.Background(), market)
	assert.NoError(t, err)

	first := <-sub
	second := <-sub
	assert.Equal(t, first.Close, float64(100))
	assert.Equal(t, second.Close, float64(101))

	// Ensure the last updated time tracks the most recent candle.
	assert.Equal(t, mgr.LastUpdated(market), candles[1].Date)
	assert.False(t, mgr.Stale(market, time.Minute*20))
	assert.True(t, mgr.Stale(market, time.Second*30))

	// Ensure fetch failures surface as errors and do not update state.
	fetcher.err = fmt.Errorf("feed down")
	err = mgr.fetchMarketData(context.Background(), market)
	assert.Error(t, err)
	assert.Equal(t, mgr.LastUpdated(market), candles[1].Date)

	// Ensure polling logs rather than propagates failures.
	mgr.pollMarkets(context.Background())
}
