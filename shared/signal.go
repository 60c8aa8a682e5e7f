package shared

import (
	"time"

	"github.com/google/uuid"
)

// Direction represents the direction of a trade proposal.
type Direction int

const (
	Long Direction = iota
	Short
)

// String stringifies the provided direction.
func (d *Direction) String() string {
	switch *d {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "unknown"
	}
}

// SweepDirection classifies which side of the session range price has swept.
type SweepDirection int

const (
	LowSwept SweepDirection = iota
	HighSwept
)

// String stringifies the provided sweep direction.
func (d *SweepDirection) String() string {
	switch *d {
	case LowSwept:
		return "low swept"
	case HighSwept:
		return "high swept"
	default:
		return "unknown"
	}
}

// SweepEvent describes price trading beyond a closed session range. It is
// derived each evaluation tick, never persisted.
type SweepEvent struct {
	Direction      SweepDirection
	ReferenceLevel float64
	ObservedPrice  float64
	Date           time.Time
}

// TradeSetup represents a risk-sized trade proposal. It is computed fresh
// each evaluation tick and only promoted to a signal when all gates pass.
type TradeSetup struct {
	Entry      float64
	Stop       float64
	Target     float64
	Midpoint   float64
	Size       float64
	RiskAmount float64
	Valid      bool
}

// SignalState represents the lifecycle state of an emitted signal.
type SignalState int

const (
	Emitted SignalState = iota
	Latched
	Expired
	Graded
)

// String stringifies the provided signal state.
func (s *SignalState) String() string {
	switch *s {
	case Emitted:
		return "emitted"
	case Latched:
		return "latched"
	case Expired:
		return "expired"
	case Graded:
		return "graded"
	default:
		return "unknown"
	}
}

// Outcome represents the graded outcome of a signal.
type Outcome int

const (
	Pending Outcome = iota
	Win
	Loss
)

// String stringifies the provided outcome.
func (o *Outcome) String() string {
	switch *o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "pending"
	}
}

// Signal represents an emitted trade signal.
type Signal struct {
	ID         string
	Market     string
	Direction  Direction
	Setup      TradeSetup
	Confidence float64
	Narrative  string
	CreatedOn  time.Time
	State      SignalState
	Outcome    Outcome
}

// NewSignal initializes a new signal.
func NewSignal(market string, direction Direction, setup TradeSetup, confidence float64,
	narrative string, created time.Time) *Signal {
	return &Signal{
		ID:         uuid.New().String(),
		Market:     market,
		Direction:  direction,
		Setup:      setup,
		Confidence: confidence,
		Narrative:  narrative,
		CreatedOn:  created,
		State:      Emitted,
		Outcome:    Pending,
	}
}

// NotificationPayload is the structured alert delivered to the notification
// channel on signal emission.
type NotificationPayload struct {
	Market     string  `json:"symbol"`
	Direction  string  `json:"direction"`
	Entry      float64 `json:"entry"`
	Stop       float64 `json:"stop"`
	Target     float64 `json:"target"`
	Size       float64 `json:"size"`
	Confidence float64 `json:"confidence"`
	Narrative  string  `json:"narrative"`
	Timestamp  string  `json:"timestamp"`
}

// NewNotificationPayload builds the notification payload for the provided signal.
func NewNotificationPayload(signal *Signal) NotificationPayload {
	return NotificationPayload{
		Market:     signal.Market,
		Direction:  signal.Direction.String(),
		Entry:      signal.Setup.Entry,
		Stop:       signal.Setup.Stop,
		Target:     signal.Setup.Target,
		Size:       signal.Setup.Size,
		Confidence: signal.Confidence,
		Narrative:  signal.Narrative,
		Timestamp:  signal.CreatedOn.Format(DateLayout),
	}
}

// PerformanceStats represents rolling win/loss counters for graded signals.
type PerformanceStats struct {
	Wins    uint32  `json:"wins"`
	Total   uint32  `json:"total"`
	WinRate float64 `json:"win_rate"`
}
