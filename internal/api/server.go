// Package api exposes the control loop over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dm/netopt-go/internal/action"
	"github.com/dm/netopt-go/internal/config"
	"github.com/dm/netopt-go/internal/coord"
	"github.com/dm/netopt-go/internal/model"
	"github.com/dm/netopt-go/internal/simnet"
	"github.com/dm/netopt-go/internal/store"
)

const version = "1.0.0"

// Server serves the REST facade and the Prometheus scrape endpoint.
type Server struct {
	cfg     config.APIConfig
	coord   *coord.Coordinator
	journal *store.Journal
	reg     *prometheus.Registry
	log     *slog.Logger
}

// New builds a server. journal may be nil; the decisions endpoint then reports
// an empty history. reg may be nil to skip the scrape endpoint.
func New(cfg config.APIConfig, c *coord.Coordinator, journal *store.Journal, reg *prometheus.Registry, log *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		coord:   c,
		journal: journal,
		reg:     reg,
		log:     log.With("component", "api"),
	}
}

// Router assembles the gin handler.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	api := r.Group("/api")
	{
		api.GET("/info", s.info)
		api.GET("/status", s.status)
		api.GET("/metrics", s.metrics)
		api.GET("/decisions", s.decisions)
		api.GET("/performance", s.performance)
		api.GET("/anomalies", s.anomalies)
		api.GET("/actions", s.actions)
		api.GET("/events", s.events)
		api.GET("/learning", s.learning)
		api.POST("/cycle", s.runCycles)
		api.POST("/simulate", s.simulate)
		api.POST("/start", s.start)
		api.POST("/stop", s.stop)
		api.GET("/health", s.healthCheck)
	}

	if s.reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})))
	}
	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Router(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("http server listening", "addr", s.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "Autonomous Network Optimizer",
		"version": version,
		"status":  "running",
		"endpoints": gin.H{
			"/api/status":      "System status and pipeline state",
			"/api/metrics":     "Current network metrics",
			"/api/decisions":   "Decision history",
			"/api/performance": "Performance metrics",
			"/api/cycle":       "Run optimization cycle",
			"/api/simulate":    "Trigger network scenario",
		},
	})
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.coord.Status())
}

func (s *Server) metrics(c *gin.Context) {
	snap := s.coord.Snapshot()
	if len(snap.Nodes) == 0 {
		snap = s.coord.Simulator().Sample()
	}
	c.JSON(http.StatusOK, gin.H{
		"metrics": snap,
		"summary": snap.Summarize(),
	})
}

func (s *Server) decisions(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	var entries []store.DecisionEntry
	if s.journal != nil {
		var err error
		entries, err = s.journal.Decisions(limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if entries == nil {
		entries = []store.DecisionEntry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(entries),
		"decisions": entries,
	})
}

func (s *Server) performance(c *gin.Context) {
	resp := gin.H{
		"summary":       s.coord.Performance(),
		"cycle_history": s.coord.CycleHistory(10),
	}
	if trends, ok := s.coord.Evaluator().Trends(); ok {
		resp["feedback_trends"] = trends
	} else {
		resp["feedback_trends"] = gin.H{"message": "Insufficient data for trend analysis"}
	}
	if s.journal != nil {
		if recent, err := s.journal.Performance(20); err == nil {
			resp["recent_performance"] = recent
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) anomalies(c *gin.Context) {
	anomalies := s.coord.Anomalies()
	if anomalies == nil {
		anomalies = []model.Anomaly{}
	}
	history := s.coord.AnomalyHistory(100)
	if history == nil {
		history = []model.Anomaly{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(anomalies),
		"anomalies": anomalies,
		"history":   history,
	})
}

func (s *Server) actions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"available_actions": action.AvailableActions(),
		"execution_history": s.coord.Executor().History(20),
	})
}

func (s *Server) events(c *gin.Context) {
	events := s.coord.Simulator().EventHistory()
	if events == nil {
		events = []simnet.EventRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (s *Server) learning(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"summary":           s.coord.Tracker().LearningSummary(),
		"action_statistics": s.coord.Tracker().ActionStatistics(),
	})
}

type cycleRequest struct {
	Count int `json:"count"`
}

func (s *Server) runCycles(c *gin.Context) {
	req := cycleRequest{Count: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Count < 1 {
		req.Count = 1
	}
	if req.Count > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Maximum 10 cycles allowed per request"})
		return
	}

	results := make([]model.CycleRecord, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		results = append(results, s.coord.RunCycle(c.Request.Context()))
	}
	c.JSON(http.StatusOK, gin.H{
		"cycles_run": req.Count,
		"results":    results,
	})
}

type scenarioRequest struct {
	Scenario string `json:"scenario" binding:"required"`
}

func (s *Server) simulate(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.coord.TriggerScenario(req.Scenario)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid scenario. Valid options: %v", simnet.Scenarios),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scenario": req.Scenario,
		"result":   result,
	})
}

func (s *Server) start(c *gin.Context) {
	if s.coord.Running() {
		c.JSON(http.StatusOK, gin.H{"status": "already running"})
		return
	}
	go func() {
		if err := s.coord.RunContinuous(context.Background()); err != nil {
			s.log.Error("continuous run ended", "err", err)
		}
	}()
	c.JSON(http.StatusOK, gin.H{
		"status":  "started",
		"message": "Continuous monitoring started in background",
	})
}

func (s *Server) stop(c *gin.Context) {
	s.coord.Stop()
	c.JSON(http.StatusOK, gin.H{
		"status":  "stopped",
		"message": "Monitoring stopped",
	})
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func intQuery(c *gin.Context, key string, def int) int {
	v := def
	if raw, ok := c.GetQuery(key); ok {
		if _, err := fmt.Sscanf(raw, "%d", &v); err != nil || v < 1 {
			v = def
		}
	}
	return v
}
