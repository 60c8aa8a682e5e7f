package shared

import "time"

// Sentiment represents the candlestick sentiment.
type Sentiment int

const (
	Neutral Sentiment = iota
	Bullish
	Bearish
)

// String stringifies the provided sentiment.
func (s *Sentiment) String() string {
	switch *s {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "neutral"
	}
}

// Candlestick represents a unit candlestick for a market.
type Candlestick struct {
	Open  float64
	Low   float64
	High  float64
	Close float64
	Date  time.Time

	// Metadata.
	Market    string
	Timeframe Timeframe
}

// FetchSentiment returns the provided candlestick's sentiment.
func (c *Candlestick) FetchSentiment() Sentiment {
	sentiment := c.Close - c.Open
	switch {
	case sentiment < 0:
		return Bearish
	case sentiment > 0:
		return Bullish
	default:
		return Neutral
	}
}
