package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/forwardfin/sweep/service"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweepCfg := service.SweepConfig{
		Market:                cfg.Symbol,
		AuxMarket:             cfg.AuxSymbol,
		FMPAPIKey:             cfg.FMPAPIKey,
		WebhookURL:            cfg.WebhookURL,
		ListenAddr:            cfg.ListenAddr,
		SessionOpen:           cfg.SessionOpen,
		SessionClose:          cfg.SessionClose,
		TradingWindowOpen:     cfg.TradingWindowOpen,
		TradingWindowClose:    cfg.TradingWindowClose,
		DeviationMultiplier:   cfg.DeviationMultiplier,
		ZoneTolerance:         cfg.ZoneTolerance,
		CooldownMinutes:       uint32(cfg.CooldownMinutes),
		LatchMinutes:          uint32(cfg.LatchMinutes),
		Balance:               cfg.Balance,
		RiskPercent:           cfg.RiskPercent,
		NoiseThresholdPercent: cfg.NoiseThresholdPercent,
		StalenessMinutes:      uint32(cfg.StalenessMinutes),
		FetchIntervalSeconds:  cfg.FetchIntervalSeconds,
		DBAddr:                cfg.DBAddr,
		DBUser:                cfg.DBUser,
		DBPass:                cfg.DBPass,
		Cancel:                cancel,
	}
	sweep, err := service.NewSweep(ctx, &sweepCfg)
	if err != nil {
		log.Printf("creating sweep service: %v", err)
		return
	}

	go handleTermination(ctx, cancel)
	sweep.Run(ctx)
}
