package shared

import (
	"context"
	"time"

	"github.com/tidwall/gjson"
)

// MarketFetcher defines the requirements for fetching index market data.
type MarketFetcher interface {
	// FetchIntradayHistorical fetches intraday historical market data.
	FetchIntradayHistorical(ctx context.Context, market string, timeframe Timeframe, start time.Time, end time.Time) ([]gjson.Result, error)
	// ParseCandlesticks parses candlesticks from the provided json data.
	ParseCandlesticks(data []gjson.Result, market string, timeframe Timeframe) ([]Candlestick, error)
}

// Notifier defines the requirements for delivering signal alerts.
type Notifier interface {
	// Notify delivers the provided payload to the notification channel.
	Notify(ctx context.Context, payload NotificationPayload) error
}

// PauseChecker reports whether an external event pause (eg. high impact news)
// is active. A missing collaborator defaults to not paused.
type PauseChecker func() bool

// SignalStorer defines the requirements for persisting emitted signals.
type SignalStorer interface {
	// PersistSignal stores the provided signal.
	PersistSignal(ctx context.Context, signal *Signal) error
	// PersistGradedSignal updates the provided signal's graded outcome.
	PersistGradedSignal(ctx context.Context, signal *Signal) error
}
