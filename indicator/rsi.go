package indicator

import (
	"fmt"
	"time"

	"github.com/forwardfin/sweep/shared"
	talib "github.com/markcheno/go-talib"
)

const (
	// RSIPeriod is the lookback period for the relative strength index.
	RSIPeriod = 14
)

// RSI represents a unit RSI entry for a market.
type RSI struct {
	Value float64
	Date  time.Time
}

// RSIGenerator represents the Relative Strength Index indicator. The oscillator
// is bounded between 0 and 100 and gauges whether a move is still accelerating.
type RSIGenerator struct {
	Market    string
	Timeframe shared.Timeframe
	Period    int
	current   *RSI
}

// NewRSIGenerator initializes an RSI indicator for the provided market and timeframe.
func NewRSIGenerator(market string, timeframe shared.Timeframe) *RSIGenerator {
	return &RSIGenerator{
		Market:    market,
		Timeframe: timeframe,
		Period:    RSIPeriod,
	}
}

// Update recalculates the RSI from the provided closing price series. The
// series must span at least one period beyond the lookback for a stable value.
func (r *RSIGenerator) Update(closes []float64, date time.Time) (*RSI, error) {
	if len(closes) < r.Period+1 {
		return nil, fmt.Errorf("insufficient closes for rsi: %d < %d", len(closes), r.Period+1)
	}

	values := talib.Rsi(closes, r.Period)
	rsi := &RSI{
		Value: values[len(values)-1],
		Date:  date,
	}

	r.current = rsi
	return rsi, nil
}

// Current returns the most recently calculated RSI, or nil if there has not
// been enough data to calculate one yet.
func (r *RSIGenerator) Current() *RSI {
	return r.current
}
