package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/forwardfin/sweep/shared"
	"github.com/tidwall/gjson"
)

const (
	// BaseURL is the production FMP API base url.
	BaseURL = "https://financialmodelingprep.com/stable"
)

// FMPConfig represents the configuration for the FMP client.
type FMPConfig struct {
	// APIKey is the FMP API Key.
	APIKey string
	// BaseURL is the FMP API base url.
	BaseURL string
}

// Validate asserts the config sane inputs.
func (cfg *FMPConfig) Validate() error {
	var errs error

	if cfg.APIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp api key cannot be an empty string"))
	}
	if cfg.BaseURL == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp base url cannot be an empty string"))
	}

	return errs
}

// FMPClient represents the Financial Modeling Preparation (FMP) API client.
type FMPClient struct {
	cfg   *FMPConfig
	httpc http.Client
	buf   *bytes.Buffer
}

// Ensure the FMPClient implements the MarketFetcher interface.
var _ shared.MarketFetcher = (*FMPClient)(nil)

// NewFMPClient instantiates a new FMP client.
func NewFMPClient(cfg *FMPConfig) (*FMPClient, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &FMPClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: time.Second * 5},
		buf:   bytes.NewBuffer(make([]byte, 0, 512)),
	}, nil
}

// formURL creates full urls including parameters for the api.
func (c *FMPClient) formURL(path string, params string) string {
	c.buf.WriteString(c.cfg.BaseURL)
	c.buf.WriteString(path)
	c.buf.WriteString("?")
	c.buf.WriteString(params)
	url := c.buf.String()
	c.buf.Reset()

	return url
}

// ParseCandlesticks parses candlesticks from the provided json data. The
// returned set is ordered oldest first regardless of the api's ordering.
func (c *FMPClient) ParseCandlesticks(data []gjson.Result, market string, timeframe shared.Timeframe) ([]shared.Candlestick, error) {
	candles := make([]shared.Candlestick, 0, len(data))

	for idx := range data {
		var candle shared.Candlestick

		candle.Open = data[idx].Get("open").Float()
		candle.Low = data[idx].Get("low").Float()
		candle.High = data[idx].Get("high").Float()
		candle.Close = data[idx].Get("close").Float()

		candle.Market = market
		candle.Timeframe = timeframe

		dt, err := time.Parse(shared.DateLayout, data[idx].Get("date").String())
		if err != nil {
			return nil, fmt.Errorf("parsing candlestick date: %w", err)
		}

		candle.Date = dt
		candles = append(candles, candle)
	}

	slices.SortFunc(candles, func(a, b shared.Candlestick) int {
		return a.Date.Compare(b.Date)
	})

	return candles, nil
}

// FetchIntradayHistorical fetches intraday historical market data.
func (c *FMPClient) FetchIntradayHistorical(ctx context.Context, market string, timeframe shared.Timeframe, start time.Time, end time.Time) ([]gjson.Result, error) {
	const oneMinuteHistoricalPath = "/historical-chart/1min"
	const fiveMinuteHistoricalPath = "/historical-chart/5min"

	params := url.Values{}
	params.Add("symbol", market)
	params.Add("apikey", c.cfg.APIKey)
	params.Add("from", start.Format(shared.DateLayout))
	if !end.IsZero() {
		params.Add("to", end.Format(shared.DateLayout))
	}

	var formedURL string

	switch timeframe {
	case shared.OneMinute:
		formedURL = c.formURL(oneMinuteHistoricalPath, params.Encode())
	case shared.FiveMinute:
		formedURL = c.formURL(fiveMinuteHistoricalPath, params.Encode())
	default:
		return nil, fmt.Errorf("unknown timeframe provided: %s", timeframe.String())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating intraday historical request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching intraday historical data (%s) for %s: %w", timeframe.String(), market, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching intraday historical data for %s: unexpected status %d", market, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	data := gjson.ParseBytes(body).Array()

	return data, nil
}
