package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/forwardfin/sweep/api"
	"github.com/forwardfin/sweep/database"
	"github.com/forwardfin/sweep/engine"
	"github.com/forwardfin/sweep/fetch"
	"github.com/forwardfin/sweep/market"
	"github.com/forwardfin/sweep/notify"
	"github.com/forwardfin/sweep/shared"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"go.uber.org/atomic"
)

// evalInterval is the cadence of engine evaluation ticks.
const evalInterval = time.Second * 5

// SweepConfig represents the configuration struct for the sweep service.
type SweepConfig struct {
	// Market is the primary tracked market.
	Market string
	// AuxMarket is the correlated auxiliary market used for divergence checks.
	AuxMarket string
	// FMPAPIKey is the FMP service API Key.
	FMPAPIKey string
	// WebhookURL is the notification webhook endpoint.
	WebhookURL string
	// ListenAddr is the status server listen address.
	ListenAddr string
	// SessionOpen is the reference session open (time of day).
	SessionOpen string
	// SessionClose is the reference session close (time of day).
	SessionClose string
	// TradingWindowOpen is the start of the emission window (time of day).
	TradingWindowOpen string
	// TradingWindowClose is the end of the emission window (time of day).
	TradingWindowClose string
	// DeviationMultiplier scales the session range into reversal zones.
	DeviationMultiplier float64
	// ZoneTolerance is the near-equal factor applied to zone boundaries.
	ZoneTolerance float64
	// CooldownMinutes is the per-direction emission cooldown in minutes.
	CooldownMinutes uint32
	// LatchMinutes is how long an emitted signal is held for display, in minutes.
	LatchMinutes uint32
	// Balance is the account balance used for sizing.
	Balance float64
	// RiskPercent is the account percentage risked per signal.
	RiskPercent float64
	// NoiseThresholdPercent is the grading noise threshold as a percentage of
	// the entry price.
	NoiseThresholdPercent float64
	// StalenessMinutes is how long without a fresh candle before the feed is
	// considered stale, in minutes.
	StalenessMinutes uint32
	// FetchIntervalSeconds is the market data poll interval in seconds.
	FetchIntervalSeconds int
	// DBAddr is the optional database connection endpoint. Leaving it empty
	// disables persistence.
	DBAddr string
	// DBUser is the database user.
	DBUser string
	// DBPass is the database user pass.
	DBPass string
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *SweepConfig) Validate() error {
	var errs error

	if cfg.Market == "" {
		errs = errors.Join(errs, fmt.Errorf("market cannot be an empty string"))
	}
	if cfg.AuxMarket == "" {
		errs = errors.Join(errs, fmt.Errorf("auxiliary market cannot be an empty string"))
	}
	if cfg.FMPAPIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp api key cannot be an empty string"))
	}
	if cfg.WebhookURL == "" {
		errs = errors.Join(errs, fmt.Errorf("webhook url cannot be an empty string"))
	}
	if cfg.ListenAddr == "" {
		errs = errors.Join(errs, fmt.Errorf("listen address cannot be an empty string"))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	return errs
}

// Sweep represents a liquidity sweep signal service.
type Sweep struct {
	cfg           *SweepConfig
	fetchManager  *fetch.Manager
	marketManager *market.Manager
	signalEngine  *engine.Engine
	statusServer  *api.Server
	db            *database.Database
	logger        *zerolog.Logger
	wg            sync.WaitGroup
}

// NewSweep initializes a new sweep service.
func NewSweep(ctx context.Context, cfg *SweepConfig) (*Sweep, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "sweep").Logger()

	clock, loc, err := shared.NewYorkClock()
	if err != nil {
		return nil, fmt.Errorf("creating new york clock: %v", err)
	}
	now := clock()

	jobScheduler := gocron.NewScheduler(loc)

	fmp, err := fetch.NewFMPClient(&fetch.FMPConfig{APIKey: cfg.FMPAPIKey, BaseURL: fetch.BaseURL})
	if err != nil {
		return nil, fmt.Errorf("creating fmp client: %v", err)
	}

	fetchMgrLogger := logger.With().Str("component", "fetchmanager").Logger()
	fetchMgr, err := fetch.NewManager(&fetch.ManagerConfig{
		Markets:        []string{cfg.Market, cfg.AuxMarket},
		ExchangeClient: fmp,
		FetchInterval:  cfg.FetchIntervalSeconds,
		JobScheduler:   jobScheduler,
		Clock:          clock,
		Logger:         &fetchMgrLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating fetch manager: %v", err)
	}

	marketMgrLogger := logger.With().Str("component", "marketmanager").Logger()
	marketMgr, err := market.NewManager(&market.ManagerConfig{
		Markets:      []string{cfg.Market, cfg.AuxMarket},
		SessionOpen:  cfg.SessionOpen,
		SessionClose: cfg.SessionClose,
		Subscribe:    fetchMgr.Subscribe,
		Clock:        clock,
		Logger:       &marketMgrLogger,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("creating market manager: %v", err)
	}

	notifierLogger := logger.With().Str("component", "notifier").Logger()
	notifier, err := notify.NewWebhook(&notify.WebhookConfig{
		URL:    cfg.WebhookURL,
		Logger: &notifierLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating webhook notifier: %v", err)
	}

	var db *database.Database
	var storer shared.SignalStorer
	if cfg.DBAddr != "" {
		dbLogger := logger.With().Str("component", "database").Logger()
		db, err = database.NewDatabase(ctx, &database.DatabaseConfig{
			Endpoint: cfg.DBAddr,
			User:     cfg.DBUser,
			Pass:     cfg.DBPass,
			Logger:   &dbLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating database: %v", err)
		}
		storer = db
	}

	// The operator toggles the emission pause through the status api.
	paused := atomic.NewBool(false)

	engineLogger := logger.With().Str("component", "engine").Logger()
	signalEngine, err := engine.NewEngine(&engine.EngineConfig{
		Market:                cfg.Market,
		AuxMarket:             cfg.AuxMarket,
		DeviationMultiplier:   cfg.DeviationMultiplier,
		ZoneTolerance:         cfg.ZoneTolerance,
		TradingWindowOpen:     cfg.TradingWindowOpen,
		TradingWindowClose:    cfg.TradingWindowClose,
		Cooldown:              time.Minute * time.Duration(cfg.CooldownMinutes),
		LatchDuration:         time.Minute * time.Duration(cfg.LatchMinutes),
		Balance:               cfg.Balance,
		RiskPercent:           cfg.RiskPercent,
		NoiseThresholdPercent: cfg.NoiseThresholdPercent,
		LatestCandle:          marketMgr.LatestCandle,
		LastN:                 marketMgr.LastN,
		CloseSeries:           marketMgr.CloseSeries,
		SessionSnapshot:       marketMgr.SessionSnapshot,
		Notifier:              notifier,
		PauseChecker:          paused.Load,
		Storer:                storer,
		Clock:                 clock,
		Logger:                engineLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating signal engine: %v", err)
	}

	staleThreshold := time.Minute * time.Duration(cfg.StalenessMinutes)
	serverLogger := logger.With().Str("component", "server").Logger()
	statusServer, err := api.NewServer(&api.ServerConfig{
		ListenAddr:      cfg.ListenAddr,
		Market:          cfg.Market,
		LatestCandle:    marketMgr.LatestCandle,
		SessionSnapshot: marketMgr.SessionSnapshot,
		LatchedSignal:   signalEngine.LatchedSignal,
		Stats:           signalEngine.Stats,
		EngineState:     signalEngine.State,
		Stale: func(name string) bool {
			return fetchMgr.Stale(name, staleThreshold)
		},
		Paused:    paused.Load,
		SetPaused: paused.Store,
		Clock:     clock,
		Logger:    &serverLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating status server: %v", err)
	}

	service := &Sweep{
		cfg:           cfg,
		fetchManager:  fetchMgr,
		marketManager: marketMgr,
		signalEngine:  signalEngine,
		statusServer:  statusServer,
		db:            db,
		logger:        &logger,
	}

	return service, nil
}

// Run handles the lifecycle processes of the sweep service.
func (s *Sweep) Run(ctx context.Context) {
	s.wg.Add(4)

	go func() {
		s.marketManager.Run(ctx)
		s.wg.Done()
	}()

	go func() {
		s.signalEngine.Run(ctx, evalInterval)
		s.wg.Done()
	}()

	go func() {
		s.statusServer.Run(ctx)
		s.wg.Done()
	}()

	go func() {
		s.fetchManager.Run(ctx)
		s.wg.Done()
	}()

	s.wg.Wait()
}
