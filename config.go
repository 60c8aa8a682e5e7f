package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/joho/godotenv"
)

// Default tunables applied when not set via environment or flags.
const (
	defaultSymbol                = "^NDX"
	defaultAuxSymbol             = "^SPX"
	defaultListenAddr            = ":8080"
	defaultSessionOpen           = "20:00"
	defaultSessionClose          = "00:00"
	defaultTradingWindowOpen     = "08:30"
	defaultTradingWindowClose    = "12:00"
	defaultDeviationMultiplier   = 2.0
	defaultZoneTolerance         = 1.001
	defaultCooldownMinutes       = 30
	defaultLatchMinutes          = 15
	defaultBalance               = 10000
	defaultRiskPercent           = 1
	defaultNoiseThresholdPercent = 0.05
	defaultStalenessMinutes      = 20
	defaultFetchIntervalSeconds  = 60
)

// Config is the configuration struct for the service.
type Config struct {
	// Symbol is the primary tracked market.
	Symbol string
	// AuxSymbol is the correlated auxiliary market used for divergence checks.
	AuxSymbol string
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
	// CooldownMinutes is the per-direction signal cooldown in minutes.
	CooldownMinutes int
	// LatchMinutes is how long an emitted signal is held for display, in minutes.
	LatchMinutes int
	// Balance is the account balance used for sizing.
	Balance float64
	// RiskPercent is the account percentage risked per signal.
	RiskPercent float64
	// NoiseThresholdPercent is the grading noise threshold as a percentage of
	// the entry price.
	NoiseThresholdPercent float64
	// StalenessMinutes is how long without a fresh candle before the feed is
	// considered stale, in minutes.
	StalenessMinutes int
	// FetchIntervalSeconds is the market data poll interval in seconds.
	FetchIntervalSeconds int
	// DBAddr is the optional database connection endpoint.
	DBAddr string
	// DBUser is the database user.
	DBUser string
	// DBPass is the database user pass.
	DBPass string

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.Symbol == "" {
		errs = errors.Join(errs, fmt.Errorf("symbol cannot be an empty string"))
	}
	if cfg.AuxSymbol == "" {
		errs = errors.Join(errs, fmt.Errorf("auxsymbol cannot be an empty string"))
	}
	if cfg.FMPAPIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp api key cannot be an empty string"))
	}
	if cfg.WebhookURL == "" {
		errs = errors.Join(errs, fmt.Errorf("webhook url cannot be an empty string"))
	}
	if cfg.DeviationMultiplier <= 0 {
		errs = errors.Join(errs, fmt.Errorf("deviation multiplier must be positive"))
	}
	if cfg.RiskPercent < 0 || cfg.RiskPercent > 100 {
		errs = errors.Join(errs, fmt.Errorf("risk percent must be between 0 and 100"))
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Float64:
		var def float64
		if defValue != "" {
			def, _ = strconv.ParseFloat(defValue, 64)
		}
		flag.Float64Var(value.(*float64), name, def, usage)
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// applyDefaults fills in default values for tunables left unset.
func (cfg *Config) applyDefaults() {
	if cfg.Symbol == "" {
		cfg.Symbol = defaultSymbol
	}
	if cfg.AuxSymbol == "" {
		cfg.AuxSymbol = defaultAuxSymbol
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.SessionOpen == "" {
		cfg.SessionOpen = defaultSessionOpen
	}
	if cfg.SessionClose == "" {
		cfg.SessionClose = defaultSessionClose
	}
	if cfg.TradingWindowOpen == "" {
		cfg.TradingWindowOpen = defaultTradingWindowOpen
	}
	if cfg.TradingWindowClose == "" {
		cfg.TradingWindowClose = defaultTradingWindowClose
	}
	if cfg.DeviationMultiplier == 0 {
		cfg.DeviationMultiplier = defaultDeviationMultiplier
	}
	if cfg.ZoneTolerance == 0 {
		cfg.ZoneTolerance = defaultZoneTolerance
	}
	if cfg.CooldownMinutes == 0 {
		cfg.CooldownMinutes = defaultCooldownMinutes
	}
	if cfg.LatchMinutes == 0 {
		cfg.LatchMinutes = defaultLatchMinutes
	}
	if cfg.Balance == 0 {
		cfg.Balance = defaultBalance
	}
	if cfg.RiskPercent == 0 {
		cfg.RiskPercent = defaultRiskPercent
	}
	if cfg.NoiseThresholdPercent == 0 {
		cfg.NoiseThresholdPercent = defaultNoiseThresholdPercent
	}
	if cfg.StalenessMinutes == 0 {
		cfg.StalenessMinutes = defaultStalenessMinutes
	}
	if cfg.FetchIntervalSeconds == 0 {
		cfg.FetchIntervalSeconds = defaultFetchIntervalSeconds
	}
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	flags := []struct {
		name  string
		value interface{}
		usage string
	}{
		{"symbol", &cfg.Symbol, "the primary tracked market"},
		{"auxsymbol", &cfg.AuxSymbol, "the correlated auxiliary market"},
		{"fmpapikey", &cfg.FMPAPIKey, "the FMP api key"},
		{"webhookurl", &cfg.WebhookURL, "the notification webhook endpoint"},
		{"listenaddr", &cfg.ListenAddr, "the status server listen address"},
		{"sessionopen", &cfg.SessionOpen, "the reference session open (HH:MM)"},
		{"sessionclose", &cfg.SessionClose, "the reference session close (HH:MM)"},
		{"tradingwindowopen", &cfg.TradingWindowOpen, "the emission window open (HH:MM)"},
		{"tradingwindowclose", &cfg.TradingWindowClose, "the emission window close (HH:MM)"},
		{"deviationmultiplier", &cfg.DeviationMultiplier, "the session range deviation multiplier"},
		{"zonetolerance", &cfg.ZoneTolerance, "the near-equal zone boundary factor"},
		{"cooldownminutes", &cfg.CooldownMinutes, "the per-direction signal cooldown in minutes"},
		{"latchminutes", &cfg.LatchMinutes, "the signal latch duration in minutes"},
		{"balance", &cfg.Balance, "the account balance used for sizing"},
		{"riskpercent", &cfg.RiskPercent, "the account percentage risked per signal"},
		{"noisethresholdpercent", &cfg.NoiseThresholdPercent, "the grading noise threshold percent"},
		{"stalenessminutes", &cfg.StalenessMinutes, "the feed staleness threshold in minutes"},
		{"fetchintervalseconds", &cfg.FetchIntervalSeconds, "the market data poll interval in seconds"},
		{"dbaddr", &cfg.DBAddr, "the database connection endpoint"},
		{"dbuser", &cfg.DBUser, "the database user"},
		{"dbpass", &cfg.DBPass, "the database user pass"},
	}
	for _, entry := range flags {
		err = cfg.registerFlag(entry.name, entry.value, entry.usage)
		if err != nil {
			return err
		}
	}

	// Parse command-line flags.
	flag.Parse()

	cfg.applyDefaults()

	return cfg.Validate()
}
