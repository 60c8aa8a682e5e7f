package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/forwardfin/sweep/indicator"
	"github.com/forwardfin/sweep/shared"
	"github.com/rs/zerolog"
)

const (
	// momentumHistory is the number of closes requested for the oscillator.
	momentumHistory = 40
	// notifyTimeout bounds a single notification delivery so a broken
	// endpoint cannot stall the evaluation loop.
	notifyTimeout = time.Second * 5
)

// EngineState represents the evaluation state for the tracked market.
type EngineState int

const (
	Scanning EngineState = iota
	ZoneWatch
	TriggerWatch
)

// String stringifies the provided engine state.
func (s *EngineState) String() string {
	switch *s {
	case Scanning:
		return "scanning"
	case ZoneWatch:
		return "zone watch"
	case TriggerWatch:
		return "trigger watch"
	default:
		return "unknown"
	}
}

// EngineConfig represents the signal engine configuration.
type EngineConfig struct {
	// Market is the primary tracked market.
	Market string
	// AuxMarket is the correlated auxiliary market used for divergence checks.
	AuxMarket string
	// DeviationMultiplier scales the session range into reversal zones.
	DeviationMultiplier float64
	// ZoneTolerance is the near-equal factor applied to zone boundaries.
	ZoneTolerance float64
	// TradingWindowOpen is the start of the emission window (time of day).
	TradingWindowOpen string
	// TradingWindowClose is the end of the emission window (time of day).
	TradingWindowClose string
	// Cooldown is the per-direction emission cooldown.
	Cooldown time.Duration
	// LatchDuration is how long an emitted signal is held for display.
	LatchDuration time.Duration
	// Balance is the account balance used for sizing.
	Balance float64
	// RiskPercent is the account percentage risked per signal.
	RiskPercent float64
	// NoiseThresholdPercent is the grading noise threshold as a percentage of
	// the entry price.
	NoiseThresholdPercent float64
	// LatestCandle returns the most recent candle for a market.
	LatestCandle func(market string) *shared.Candlestick
	// LastN returns the last n candles for a market.
	LastN func(market string, n int) []*shared.Candlestick
	// CloseSeries returns the closing prices of the last n candles for a market.
	CloseSeries func(market string, n int) []float64
	// SessionSnapshot returns a copy of a market's session window.
	SessionSnapshot func(market string, now time.Time) (shared.SessionWindow, bool)
	// Notifier delivers emitted signal alerts.
	Notifier shared.Notifier
	// PauseChecker reports whether an external event pause is active. May be
	// nil, in which case emission is never paused.
	PauseChecker shared.PauseChecker
	// Scorer scores candidate setups into a confidence. May be nil, in which
	// case the rule-based default is used.
	Scorer Scorer
	// Storer persists emitted and graded signals. May be nil.
	Storer shared.SignalStorer
	// Clock returns the current exchange time.
	Clock shared.Clock
	// Logger represents the application logger.
	Logger zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *EngineConfig) Validate() error {
	var errs error

	if cfg.Market == "" {
		errs = errors.Join(errs, fmt.Errorf("market cannot be an empty string"))
	}
	if cfg.AuxMarket == "" {
		errs = errors.Join(errs, fmt.Errorf("auxiliary market cannot be an empty string"))
	}
	if cfg.DeviationMultiplier < 0 {
		errs = errors.Join(errs, fmt.Errorf("deviation multiplier cannot be negative"))
	}
	if cfg.TradingWindowOpen == "" || cfg.TradingWindowClose == "" {
		errs = errors.Join(errs, fmt.Errorf("trading window times cannot be empty strings"))
	}
	if cfg.Cooldown <= 0 {
		errs = errors.Join(errs, fmt.Errorf("cooldown must be positive"))
	}
	if cfg.LatchDuration <= 0 {
		errs = errors.Join(errs, fmt.Errorf("latch duration must be positive"))
	}
	if cfg.LatestCandle == nil || cfg.LastN == nil || cfg.CloseSeries == nil || cfg.SessionSnapshot == nil {
		errs = errors.Join(errs, fmt.Errorf("market accessors cannot be nil"))
	}
	if cfg.Notifier == nil {
		errs = errors.Join(errs, fmt.Errorf("notifier cannot be nil"))
	}
	if cfg.Clock == nil {
		errs = errors.Join(errs, fmt.Errorf("clock cannot be nil"))
	}

	return errs
}

// Engine evaluates the tracked market each tick and emits rate-limited,
// risk-sized signals when a full sweep-zone-trigger sequence confirms. All
// engine state is owned by the evaluation loop.
type Engine struct {
	cfg        *EngineConfig
	state      EngineState
	stateMtx   sync.RWMutex
	sweep      *shared.SweepEvent
	direction  shared.Direction
	zones      *DeviationZones
	windowOpen time.Time
	cooldowns  map[shared.Direction]time.Time
	thresholds MomentumThresholds
	rsi        *indicator.RSIGenerator
	perf       *PerformanceTracker
	pending    []*shared.Signal

	latched      *shared.Signal
	latchedUntil time.Time
	latchedMtx   sync.RWMutex

	notifyWG sync.WaitGroup
}

// NewEngine initializes a new signal engine.
func NewEngine(cfg *EngineConfig) (*Engine, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if cfg.Scorer == nil {
		cfg.Scorer = &RuleScorer{}
	}

	e := &Engine{
		cfg:        cfg,
		state:      Scanning,
		cooldowns:  make(map[shared.Direction]time.Time),
		thresholds: DefaultMomentumThresholds(),
		rsi:        indicator.NewRSIGenerator(cfg.Market, shared.OneMinute),
		perf:       NewPerformanceTracker(cfg.NoiseThresholdPercent),
	}

	return e, nil
}

// inTradingWindow checks whether the provided time falls inside the
// configured emission window.
func (e *Engine) inTradingWindow(now time.Time) (bool, error) {
	window, err := shared.NewSessionWindow(e.cfg.Market, e.cfg.TradingWindowOpen, e.cfg.TradingWindowClose, now)
	if err != nil {
		return false, fmt.Errorf("creating trading window: %w", err)
	}

	return window.InWindow(now), nil
}

// paused reports whether the external event pause is active.
func (e *Engine) paused() bool {
	if e.cfg.PauseChecker == nil {
		return false
	}

	return e.cfg.PauseChecker()
}

// coolingDown reports whether an unexpired cooldown exists for the provided
// direction. Cooldowns are tracked independently per direction so a long
// cooldown does not block a short signal.
func (e *Engine) coolingDown(direction shared.Direction, now time.Time) bool {
	until, ok := e.cooldowns[direction]
	if !ok {
		return false
	}

	return now.Before(until)
}

// momentum returns the current oscillator reading for the tracked market and
// whether enough history existed to compute one.
func (e *Engine) momentum() (float64, bool) {
	closes := e.cfg.CloseSeries(e.cfg.Market, momentumHistory)
	latest := e.cfg.LatestCandle(e.cfg.Market)
	if latest == nil {
		return 0, false
	}

	value, err := e.rsi.Update(closes, latest.Date)
	if err != nil {
		// Insufficient history degrades to no reading.
		return 0, false
	}

	return value.Value, true
}

// buildSetup constructs a risk-sized trade setup from the trigger candles and
// the session range. The stop sits beyond the recent swing extreme, the
// target at the opposite side of the session range, with the range midpoint
// exposed as a first scale-out level.
func (e *Engine) buildSetup(direction shared.Direction, entry float64, window *shared.SessionWindow,
	candles []*shared.Candlestick) shared.TradeSetup {
	var stop, target float64

	switch direction {
	case shared.Long:
		stop = candles[0].Low
		for idx := range candles {
			if candles[idx].Low < stop {
				stop = candles[idx].Low
			}
		}
		target = window.High
	case shared.Short:
		stop = candles[0].High
		for idx := range candles {
			if candles[idx].High > stop {
				stop = candles[idx].High
			}
		}
		target = window.Low
	}

	size, riskAmount := SizeAndRisk(entry, stop, e.cfg.Balance, e.cfg.RiskPercent)

	return shared.TradeSetup{
		Entry:      entry,
		Stop:       stop,
		Target:     target,
		Midpoint:   window.Midpoint(),
		Size:       size,
		RiskAmount: riskAmount,
		Valid:      true,
	}
}

// buildNarrative composes the display narrative for an emitted signal.
func (e *Engine) buildNarrative(direction shared.Direction, confidence float64, divergence bool) string {
	var band string
	switch {
	case confidence > 70:
		band = "Strong"
	case confidence > 55:
		band = "Moderate"
	default:
		band = "Uncertain"
	}

	var reason string
	switch direction {
	case shared.Long:
		reason = "liquidity swept below the session low into the projected reversal zone and short-term structure shifted up"
	case shared.Short:
		reason = "liquidity swept above the session high into the projected reversal zone and short-term structure shifted down"
	}

	if divergence {
		reason += fmt.Sprintf("; %s failed to confirm the move", e.cfg.AuxMarket)
	}

	return fmt.Sprintf("%s %s signal for %s: %s.", band, direction.String(), e.cfg.Market, reason)
}

// emit constructs and records a signal, latches it for display and delivers
// the alert. Delivery failures are logged, never rolled back: the signal
// remains recorded internally for grading.
func (e *Engine) emit(direction shared.Direction, setup shared.TradeSetup, confidence float64,
	narrative string, now time.Time) *shared.Signal {
	signal := shared.NewSignal(e.cfg.Market, direction, setup, confidence, narrative, now)
	signal.State = shared.Latched

	e.latchedMtx.Lock()
	e.latched = signal
	e.latchedUntil = now.Add(e.cfg.LatchDuration)
	e.latchedMtx.Unlock()

	e.cooldowns[direction] = now.Add(e.cfg.Cooldown)
	e.pending = append(e.pending, signal)

	payload := shared.NewNotificationPayload(signal)
	e.notifyWG.Add(1)
	go func() {
		defer e.notifyWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		err := e.cfg.Notifier.Notify(ctx, payload)
		if err != nil {
			e.cfg.Logger.Error().Msgf("delivering %s signal notification: %v", direction.String(), err)
		}
	}()

	if e.cfg.Storer != nil {
		// Persist a copy, the evaluation loop keeps mutating the signal as
		// it is graded.
		e.notifyWG.Add(1)
		go func(record shared.Signal) {
			defer e.notifyWG.Done()

			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()

			err := e.cfg.Storer.PersistSignal(ctx, &record)
			if err != nil {
				e.cfg.Logger.Error().Msgf("persisting %s signal: %v", direction.String(), err)
			}
		}(*signal)
	}

	e.cfg.Logger.Info().Msgf("emitted %s signal for %s @ %.2f (confidence %.0f)",
		direction.String(), e.cfg.Market, setup.Entry, confidence)

	return signal
}

// setState transitions the evaluation state. Writes are guarded so the status
// server can read the state concurrently.
func (e *Engine) setState(state EngineState) {
	e.stateMtx.Lock()
	e.state = state
	e.stateMtx.Unlock()
}

// resetWatch returns the engine to scanning.
func (e *Engine) resetWatch() {
	e.setState(Scanning)
	e.sweep = nil
	e.zones = nil
}

// expireLatch marks a latched signal expired once its hold duration lapses.
func (e *Engine) expireLatch(now time.Time) {
	e.latchedMtx.Lock()
	defer e.latchedMtx.Unlock()

	if e.latched == nil || now.Before(e.latchedUntil) {
		return
	}

	if e.latched.State == shared.Latched {
		e.latched.State = shared.Expired
	}
}

// gradePending grades recorded signals against the current price and prunes
// the graded ones. A pending signal may still be the latched one, so grading
// mutations happen under the latch lock.
func (e *Engine) gradePending(currentPrice float64) {
	remaining := e.pending[:0]
	for idx := range e.pending {
		signal := e.pending[idx]

		e.latchedMtx.Lock()
		graded := e.perf.Grade(signal, currentPrice)
		e.latchedMtx.Unlock()
		if !graded {
			remaining = append(remaining, signal)
			continue
		}

		e.cfg.Logger.Info().Msgf("graded %s signal for %s: %s",
			signal.Direction.String(), signal.Market, signal.Outcome.String())

		if e.cfg.Storer != nil {
			e.notifyWG.Add(1)
			go func(record shared.Signal) {
				defer e.notifyWG.Done()

				ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
				defer cancel()

				err := e.cfg.Storer.PersistGradedSignal(ctx, &record)
				if err != nil {
					e.cfg.Logger.Error().Msgf("persisting graded signal: %v", err)
				}
			}(*signal)
		}
	}

	e.pending = remaining
}

// Evaluate runs one evaluation tick against a consistent snapshot of the
// candle store and session window.
func (e *Engine) Evaluate() {
	now := e.cfg.Clock()

	e.expireLatch(now)

	candle := e.cfg.LatestCandle(e.cfg.Market)
	if candle == nil {
		// No market data yet.
		return
	}

	price := candle.Close
	defer e.gradePending(price)

	window, tracked := e.cfg.SessionSnapshot(e.cfg.Market, now)
	if !tracked || !window.Closed {
		// The reference session is still forming; any in-flight watch state
		// from a previous session is stale.
		if e.state != Scanning {
			e.resetWatch()
		}
		return
	}

	// A new session window resets the watch sequence.
	if e.state != Scanning && !window.Open.Equal(e.windowOpen) {
		e.resetWatch()
	}

	switch e.state {
	case Scanning:
		sweep := DetectSweep(price, &window, now)
		if sweep == nil {
			return
		}

		e.sweep = sweep
		e.windowOpen = window.Open
		e.zones = ProjectZones(&window, e.cfg.DeviationMultiplier)
		switch sweep.Direction {
		case shared.LowSwept:
			e.direction = shared.Long
		case shared.HighSwept:
			e.direction = shared.Short
		}
		e.setState(ZoneWatch)

		e.cfg.Logger.Info().Msgf("%s detected for %s at %.2f, watching zone",
			sweep.Direction.String(), e.cfg.Market, price)

	case ZoneWatch:
		if !ZoneReached(price, e.zones, e.sweep.Direction, e.cfg.ZoneTolerance) {
			return
		}

		e.setState(TriggerWatch)
		e.cfg.Logger.Info().Msgf("%s reversal zone reached for %s at %.2f, watching trigger",
			e.sweep.Direction.String(), e.cfg.Market, price)

	case TriggerWatch:
		candles := e.cfg.LastN(e.cfg.Market, TriggerLookback)
		if !DetectTrigger(e.direction, candles) {
			return
		}

		momentum, hasMomentum := e.momentum()
		if hasMomentum && !AllowsEntry(e.direction, momentum, e.thresholds) {
			// The move is still accelerating; keep watching.
			return
		}

		inWindow, err := e.inTradingWindow(now)
		if err != nil {
			e.cfg.Logger.Error().Msgf("checking trading window: %v", err)
			return
		}
		if !inWindow || e.paused() || e.coolingDown(e.direction, now) {
			return
		}

		auxWindow, _ := e.cfg.SessionSnapshot(e.cfg.AuxMarket, now)
		var auxPrice float64
		auxCandle := e.cfg.LatestCandle(e.cfg.AuxMarket)
		if auxCandle != nil {
			auxPrice = auxCandle.Close
		}
		divergence := ConfirmsDivergence(e.sweep.Direction, &auxWindow, auxPrice)

		confidence := e.cfg.Scorer.Score(ScoreFeatures{
			Direction:           e.direction,
			DivergenceConfirmed: divergence,
			Momentum:            momentum,
			HasMomentum:         hasMomentum,
		})

		setup := e.buildSetup(e.direction, price, &window, candles)
		narrative := e.buildNarrative(e.direction, confidence, divergence)

		e.emit(e.direction, setup, confidence, narrative, now)
		e.resetWatch()
	}
}

// LatchedSignal returns a copy of the currently latched signal for display,
// or nil if none is held. Returning a copy keeps the evaluation loop the sole
// writer of signal state.
func (e *Engine) LatchedSignal() *shared.Signal {
	e.latchedMtx.RLock()
	defer e.latchedMtx.RUnlock()

	if e.latched == nil {
		return nil
	}

	latched := *e.latched
	return &latched
}

// Stats returns the rolling performance stats for the tracked market.
func (e *Engine) Stats() shared.PerformanceStats {
	return e.perf.Stats(e.cfg.Market)
}

// State returns the current evaluation state.
func (e *Engine) State() EngineState {
	e.stateMtx.RLock()
	defer e.stateMtx.RUnlock()

	return e.state
}

// Run manages the lifecycle processes of the signal engine. In-flight
// notification sends are allowed to complete or time out before returning.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.notifyWG.Wait()
			return
		case <-ticker.C:
			e.Evaluate()
		}
	}
}
