package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dm/netopt-go/internal/action"
	"github.com/dm/netopt-go/internal/api"
	"github.com/dm/netopt-go/internal/config"
	"github.com/dm/netopt-go/internal/coord"
	"github.com/dm/netopt-go/internal/decision"
	"github.com/dm/netopt-go/internal/feedback"
	"github.com/dm/netopt-go/internal/obs"
	"github.com/dm/netopt-go/internal/simnet"
	"github.com/dm/netopt-go/internal/store"
	"github.com/dm/netopt-go/internal/tui"
)

var (
	configPath string
	logLevel   string
	dryRun     bool

	cycleCount int
	autoStart  bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "netopt",
	Short: "Autonomous network optimization agent",
	Long: `netopt runs a self-healing control loop over a simulated network:
it observes node metrics, detects anomalies, asks an LLM (or a rule table)
for corrective actions, executes them, and evaluates the outcome.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if dryRun {
			cfg.Action.DryRun = true
		}
		return nil
	},
}

var cycleRunCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run a fixed number of optimization cycles and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(os.Stderr, cfg.LogLevel)
		c, _, _, err := buildCoordinator(log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		for i := 0; i < cycleCount; i++ {
			rec := c.RunCycle(ctx)
			fmt.Printf("cycle %d: status=%s health=%.1f anomalies=%d actions=%d duration=%s\n",
				rec.Cycle,
				rec.Status,
				rec.Phases.Monitor.HealthScore,
				rec.Phases.Monitor.AnomalyCount,
				rec.Phases.Action.Summary.Total,
				rec.Duration.Round(time.Millisecond),
			)
			if ctx.Err() != nil {
				break
			}
		}

		perf := c.Performance()
		fmt.Printf("completed %d/%d cycles, action success rate %.0f%%\n",
			perf.CompletedCycles, perf.TotalCycles, perf.ActionSuccessRate*100)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the optimization loop continuously until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(os.Stderr, cfg.LogLevel)
		c, _, _, err := buildCoordinator(log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Info("starting continuous optimization",
			"interval", cfg.Monitor.PollingInterval,
			"nodes", cfg.Network.Nodes,
		)
		if err := c.RunContinuous(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the management API and Prometheus metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(os.Stderr, cfg.LogLevel)
		c, journal, reg, err := buildCoordinator(log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if autoStart {
			go func() {
				if err := c.RunContinuous(ctx); err != nil && ctx.Err() == nil {
					log.Error("optimization loop stopped", "error", err)
				}
			}()
		}

		srv := api.New(cfg.API, c, journal, reg, log)
		log.Info("serving management API", "addr", cfg.API.ListenAddr, "autostart", autoStart)
		return srv.Run(ctx)
	},
}

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Run the interactive terminal dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal, so structured logs are discarded.
		log := newLogger(io.Discard, cfg.LogLevel)
		c, _, _, err := buildCoordinator(log)
		if err != nil {
			return err
		}

		app := tui.NewApp(c, cfg.Monitor.PollingInterval)
		_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
		return err
	},
}

// buildCoordinator wires the full pipeline from the loaded config.
func buildCoordinator(log *slog.Logger) (*coord.Coordinator, *store.Journal, *prometheus.Registry, error) {
	journal, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open journal: %w", err)
	}

	reg := prometheus.NewRegistry()

	seed := uint64(time.Now().UnixNano())
	backend := decision.NewBackend(cfg.LLM)
	c := coord.New(coord.Options{
		Config:    cfg,
		Simulator: simnet.New(cfg.Network, rand.NewPCG(seed, seed>>1)),
		Engine:    decision.New(backend, cfg.Decision, log),
		Executor:  action.New(cfg.Action.DryRun, rand.NewPCG(seed>>2, seed>>3), log),
		Evaluator: feedback.New(cfg.Feedback.HistoryWindow, log),
		Tracker:   feedback.NewTracker(),
		Journal:   journal,
		Metrics:   obs.NewMetrics(reg),
		Logger:    log,
	})

	log.Info("pipeline assembled",
		"backend", backend.Name(),
		"nodes", cfg.Network.Nodes,
		"dry_run", cfg.Action.DryRun,
	)
	return c, journal, reg, nil
}

// newLogger builds the process-wide slog logger at the configured level.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "log actions instead of executing them")

	cycleRunCmd.Flags().IntVarP(&cycleCount, "count", "n", 1, "number of cycles to run")
	serveCmd.Flags().BoolVar(&autoStart, "start", false, "start the optimization loop immediately")

	rootCmd.AddCommand(cycleRunCmd, runCmd, serveCmd, dashCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
