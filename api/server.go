package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/forwardfin/sweep/engine"
	"github.com/forwardfin/sweep/shared"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// shutdownTimeout bounds the graceful shutdown of the status server.
const shutdownTimeout = time.Second * 5

// ServerConfig is the configuration for the status server.
type ServerConfig struct {
	// ListenAddr is the address the server listens on.
	ListenAddr string
	// Market is the primary tracked market.
	Market string
	// LatestCandle returns the most recent candle for a market.
	LatestCandle func(market string) *shared.Candlestick
	// SessionSnapshot returns a copy of a market's session window.
	SessionSnapshot func(market string, now time.Time) (shared.SessionWindow, bool)
	// LatchedSignal returns the currently latched signal, or nil.
	LatchedSignal func() *shared.Signal
	// Stats returns the rolling performance stats for a market.
	Stats func() shared.PerformanceStats
	// EngineState returns the current evaluation state.
	EngineState func() engine.EngineState
	// Stale reports whether a market's feed has gone stale.
	Stale func(market string) bool
	// Paused reports whether the operator emission pause is active.
	Paused func() bool
	// SetPaused toggles the operator emission pause.
	SetPaused func(paused bool)
	// Clock returns the current exchange time.
	Clock shared.Clock
	// Logger is the server logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *ServerConfig) Validate() error {
	var errs error

	if cfg.ListenAddr == "" {
		errs = errors.Join(errs, fmt.Errorf("listen address cannot be an empty string"))
	}
	if cfg.Market == "" {
		errs = errors.Join(errs, fmt.Errorf("market cannot be an empty string"))
	}
	if cfg.LatestCandle == nil || cfg.SessionSnapshot == nil || cfg.LatchedSignal == nil ||
		cfg.Stats == nil || cfg.EngineState == nil || cfg.Stale == nil {
		errs = errors.Join(errs, fmt.Errorf("status accessors cannot be nil"))
	}
	if cfg.Paused == nil || cfg.SetPaused == nil {
		errs = errors.Join(errs, fmt.Errorf("pause accessors cannot be nil"))
	}
	if cfg.Clock == nil {
		errs = errors.Join(errs, fmt.Errorf("clock cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// signalView is the wire representation of a latched signal.
type signalView struct {
	ID         string  `json:"id"`
	Market     string  `json:"symbol"`
	Direction  string  `json:"direction"`
	Entry      float64 `json:"entry"`
	Stop       float64 `json:"stop"`
	Target     float64 `json:"target"`
	Midpoint   float64 `json:"midpoint"`
	Size       float64 `json:"size"`
	Confidence float64 `json:"confidence"`
	Narrative  string  `json:"narrative"`
	State      string  `json:"state"`
	Outcome    string  `json:"outcome"`
	CreatedOn  string  `json:"created_on"`
}

// statusResponse is the wire representation of the engine status.
type statusResponse struct {
	Market      string                  `json:"symbol"`
	Status      string                  `json:"status"`
	Paused      bool                    `json:"paused"`
	EngineState string                  `json:"engine_state"`
	Price       float64                 `json:"price"`
	SessionHigh float64                 `json:"session_high"`
	SessionLow  float64                 `json:"session_low"`
	Signal      *signalView             `json:"signal"`
	Performance shared.PerformanceStats `json:"performance"`
	Timestamp   string                  `json:"timestamp"`
}

// Server is the read-only status server for the signal engine.
type Server struct {
	cfg        *ServerConfig
	httpServer *http.Server
}

// NewServer initializes a new status server.
func NewServer(cfg *ServerConfig) (*Server, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	s := &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: router,
		},
	}

	router.GET("/api/health", s.handleHealth)
	router.GET("/api/status", s.handleStatus)
	router.POST("/api/pause", s.handlePause)
	router.POST("/api/resume", s.handleResume)

	return s, nil
}

// handleHealth responds to liveness probes.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handlePause activates the operator emission pause.
func (s *Server) handlePause(c *gin.Context) {
	s.cfg.SetPaused(true)
	s.cfg.Logger.Info().Msg("signal emission paused")
	c.JSON(http.StatusOK, gin.H{"paused": true})
}

// handleResume lifts the operator emission pause.
func (s *Server) handleResume(c *gin.Context) {
	s.cfg.SetPaused(false)
	s.cfg.Logger.Info().Msg("signal emission resumed")
	c.JSON(http.StatusOK, gin.H{"paused": false})
}

// handleStatus reports the current engine status. The handler only reads
// snapshots so it always responds, even while the feed is stale.
func (s *Server) handleStatus(c *gin.Context) {
	now := s.cfg.Clock()

	status := "live"
	if s.cfg.Stale(s.cfg.Market) {
		status = "stale"
	}

	var price float64
	candle := s.cfg.LatestCandle(s.cfg.Market)
	if candle != nil {
		price = candle.Close
	}

	var sessionHigh, sessionLow float64
	window, tracked := s.cfg.SessionSnapshot(s.cfg.Market, now)
	if tracked {
		sessionHigh = window.High
		sessionLow = window.Low
	}

	var view *signalView
	signal := s.cfg.LatchedSignal()
	if signal != nil {
		view = &signalView{
			ID:         signal.ID,
			Market:     signal.Market,
			Direction:  signal.Direction.String(),
			Entry:      signal.Setup.Entry,
			Stop:       signal.Setup.Stop,
			Target:     signal.Setup.Target,
			Midpoint:   signal.Setup.Midpoint,
			Size:       signal.Setup.Size,
			Confidence: signal.Confidence,
			Narrative:  signal.Narrative,
			State:      signal.State.String(),
			Outcome:    signal.Outcome.String(),
			CreatedOn:  signal.CreatedOn.Format(shared.DateLayout),
		}
	}

	state := s.cfg.EngineState()
	c.JSON(http.StatusOK, statusResponse{
		Market:      s.cfg.Market,
		Status:      status,
		Paused:      s.cfg.Paused(),
		EngineState: state.String(),
		Price:       price,
		SessionHigh: sessionHigh,
		SessionLow:  sessionLow,
		Signal:      view,
		Performance: s.cfg.Stats(),
		Timestamp:   now.Format(shared.DateLayout),
	})
}

// Run manages the lifecycle processes of the status server.
func (s *Server) Run(ctx context.Context) {
	go func() {
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.cfg.Logger.Error().Msgf("status server: %v", err)
		}
	}()

	s.cfg.Logger.Info().Msgf("status server listening on %s", s.cfg.ListenAddr)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.cfg.Logger.Error().Msgf("shutting down status server: %v", err)
	}
}
