// Package coord orchestrates the observe, decide, act, evaluate pipeline.
package coord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dm/netopt-go/internal/action"
	"github.com/dm/netopt-go/internal/config"
	"github.com/dm/netopt-go/internal/decision"
	"github.com/dm/netopt-go/internal/feedback"
	"github.com/dm/netopt-go/internal/health"
	"github.com/dm/netopt-go/internal/model"
	"github.com/dm/netopt-go/internal/obs"
	"github.com/dm/netopt-go/internal/simnet"
	"github.com/dm/netopt-go/internal/store"
)

// SystemStatus is the live state reported by the API.
type SystemStatus struct {
	Running         bool       `json:"running"`
	Backend         string     `json:"backend"`
	NodeCount       int        `json:"node_count"`
	TotalCycles     int        `json:"total_cycles"`
	LastCycleTime   *time.Time `json:"last_cycle,omitempty"`
	FeedbackEntries int        `json:"feedback_entries"`
	HealthScore     float64    `json:"health_score"`
	AnomalyCount    int        `json:"anomaly_count"`
}

// PerformanceSummary aggregates cycle outcomes.
type PerformanceSummary struct {
	TotalCycles       int     `json:"total_cycles"`
	CompletedCycles   int     `json:"completed_cycles"`
	FailedCycles      int     `json:"failed_cycles"`
	SuccessRate       float64 `json:"success_rate"`
	AvgCycleDuration  float64 `json:"average_cycle_duration"`
	ActionsTaken      int     `json:"actions_taken"`
	SuccessfulActions int     `json:"successful_actions"`
	ActionSuccessRate float64 `json:"action_success_rate"`
}

// Coordinator wires the pipeline components and runs cycles. Safe for
// concurrent use.
type Coordinator struct {
	mu sync.Mutex

	cfg       config.Config
	sim       *simnet.Simulator
	engine    *decision.Engine
	executor  *action.Executor
	evaluator *feedback.Evaluator
	tracker   *feedback.Tracker
	journal   *store.Journal
	metrics   *obs.Metrics
	log       *slog.Logger

	cycleCount   int
	lastCycle    *time.Time
	history      *model.Ring[model.CycleRecord]
	anomHist     *model.Ring[model.Anomaly]
	lastSnapshot model.Snapshot
	lastAnoms    []model.Anomaly
	lastHealth   float64

	running  bool
	stopCh   chan struct{}
	stopOnce *sync.Once

	// settle is the pause between acting and re-observing so action
	// effects reach the next sample. Tests set it to zero.
	settle func(ctx context.Context)
}

// Options carries the coordinator's collaborators. Journal and Metrics may be
// nil to disable persistence and instrumentation.
type Options struct {
	Config    config.Config
	Simulator *simnet.Simulator
	Engine    *decision.Engine
	Executor  *action.Executor
	Evaluator *feedback.Evaluator
	Tracker   *feedback.Tracker
	Journal   *store.Journal
	Metrics   *obs.Metrics
	Logger    *slog.Logger
}

// New assembles a coordinator from its components.
func New(opts Options) *Coordinator {
	return &Coordinator{
		cfg:        opts.Config,
		sim:        opts.Simulator,
		engine:     opts.Engine,
		executor:   opts.Executor,
		evaluator:  opts.Evaluator,
		tracker:    opts.Tracker,
		journal:    opts.Journal,
		metrics:    opts.Metrics,
		log:        opts.Logger.With("component", "coordinator"),
		history:    model.NewRing[model.CycleRecord](100),
		anomHist:   model.NewRing[model.Anomaly](100),
		lastHealth: 100,
		settle: func(ctx context.Context) {
			t := time.NewTimer(time.Second)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		},
	}
}

// RunCycle executes one observe, decide, act, evaluate pass. A cycle never
// returns an error: failures are captured in the returned record.
func (c *Coordinator) RunCycle(ctx context.Context) (rec model.CycleRecord) {
	c.mu.Lock()
	c.cycleCount++
	n := c.cycleCount
	c.mu.Unlock()

	start := time.Now()
	c.log.Info("starting optimization cycle", "cycle", n)

	rec = model.CycleRecord{
		Cycle:     n,
		StartTime: start,
		Status:    model.CycleCompleted,
	}

	defer func() {
		if p := recover(); p != nil {
			rec.Status = model.CycleFailed
			rec.Error = fmt.Sprintf("%v", p)
			c.log.Error("cycle failed", "cycle", n, "err", rec.Error)
		}
		rec.EndTime = time.Now()
		rec.Duration = rec.EndTime.Sub(start)

		c.mu.Lock()
		c.history.Push(rec)
		end := rec.EndTime
		c.lastCycle = &end
		c.mu.Unlock()

		if c.metrics != nil {
			c.metrics.ObserveCycle(rec.Status, rec.Duration.Seconds())
		}
		c.log.Info("cycle complete", "cycle", n, "duration", rec.Duration, "status", rec.Status)
	}()

	// Phase 1: observe
	snap := c.sim.Sample()
	anomalies := health.DetectAnomalies(snap)
	score := health.NetworkScore(snap)
	c.recordObservation(snap, anomalies, score)

	rec.Phases.Monitor = model.MonitorPhase{
		Status:       model.PhaseCompleted,
		HealthScore:  score,
		AnomalyCount: len(anomalies),
	}
	if len(anomalies) > 0 {
		c.log.Warn("anomalies detected", "count", len(anomalies), "health", score)
	}

	// Phase 2: decide
	dec := c.engine.Decide(ctx, snap, anomalies, score)
	rec.Phases.Decision = model.DecisionPhase{
		Status:         model.PhaseCompleted,
		ActionRequired: dec.ActionRequired,
		ActionsPlanned: len(dec.Actions),
		Confidence:     dec.Confidence,
	}
	if c.metrics != nil {
		c.metrics.ObserveDecision(dec)
	}
	if c.journal != nil {
		if err := c.journal.AppendDecision(store.DecisionEntry{
			Decision:     dec,
			HealthScore:  score,
			AnomalyCount: len(anomalies),
		}); err != nil {
			c.log.Error("failed to persist decision", "err", err)
		}
	}

	// Phases 3 and 4: act, then evaluate
	if dec.ActionRequired && len(dec.Actions) > 0 {
		outcomes := c.executeActions(ctx, snap, dec.Actions)
		rec.Phases.Action = model.ActionPhase{
			Status:   model.PhaseCompleted,
			Executed: true,
			Summary:  model.Summarize(outcomes),
		}

		c.settle(ctx)
		post := c.sim.Sample()
		fb := c.evaluator.Evaluate(outcomes, snap, post)
		c.engine.RecordFeedback(fb.Context())
		c.recordEvaluation(fb)

		rec.Phases.Feedback = model.FeedbackPhase{
			Status:           model.PhaseCompleted,
			ImprovementScore: fb.ImprovementScore,
			Success:          fb.OverallSuccess,
		}
	} else {
		c.log.Info("no actions needed, skipping act and evaluate phases")
		rec.Phases.Action = model.ActionPhase{Status: model.PhaseSkipped}
		rec.Phases.Feedback = model.FeedbackPhase{Status: model.PhaseSkipped}
	}

	return rec
}

func (c *Coordinator) recordObservation(snap model.Snapshot, anomalies []model.Anomaly, score float64) {
	c.mu.Lock()
	c.lastSnapshot = snap
	c.lastAnoms = anomalies
	c.lastHealth = score
	for _, a := range anomalies {
		c.anomHist.Push(a)
	}
	c.mu.Unlock()

	c.tracker.RecordHealthSnapshot(score, len(anomalies))
	if c.metrics != nil {
		nodeScores := make(map[string]float64, len(snap.Nodes))
		for _, m := range snap.Nodes {
			nodeScores[m.NodeID] = health.NodeScore(m)
		}
		c.metrics.SetHealth(score, nodeScores)
		for _, a := range anomalies {
			c.metrics.ObserveAnomaly(a)
		}
	}
}

func (c *Coordinator) executeActions(ctx context.Context, pre model.Snapshot, items []model.ActionItem) []model.ActionOutcome {
	outcomes := make([]model.ActionOutcome, 0, len(items))
	for _, item := range items {
		c.log.Info("executing action", "action", item.Action, "target", item.Target, "priority", item.Priority)

		actx, cancel := context.WithTimeout(ctx, c.cfg.Action.ActionTimeout)
		out := c.executor.Execute(actx, item)
		cancel()

		if before, ok := pre.Node(item.Target); ok {
			b := before
			out.MetricsBefore = &b
		}
		if err := c.sim.ApplyActionEffect(item.Target, item.Action, out.Success); err != nil {
			c.log.Warn("could not apply action effect", "target", item.Target, "err", err)
		}
		if c.metrics != nil {
			c.metrics.ObserveAction(item.Action, out.Success)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func (c *Coordinator) recordEvaluation(fb model.FeedbackRecord) {
	for _, af := range fb.Actions {
		c.tracker.RecordActionResult(af.Action, af.Target, af.ExecutionSuccess, af.Score, fb.ImprovementScore)
	}
	if c.metrics != nil {
		c.metrics.SetImprovement(fb.ImprovementScore)
	}
	if c.journal != nil {
		if err := c.journal.AppendPerformance(store.PerformanceEntry{
			ImprovementScore: fb.ImprovementScore,
			AvgEffectiveness: fb.AvgEffectiveness,
			Success:          fb.OverallSuccess,
		}); err != nil {
			c.log.Error("failed to persist performance entry", "err", err)
		}
	}
}

// RunContinuous runs cycles until Stop is called or the context is
// cancelled. Returns the context error, if any.
func (c *Coordinator) RunContinuous(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.stopOnce = &sync.Once{}
	stopCh := c.stopCh
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	interval := c.cfg.Monitor.PollingInterval
	c.log.Info("starting continuous optimization", "interval", interval)

	for {
		c.RunCycle(ctx)

		select {
		case <-ctx.Done():
			c.log.Info("continuous optimization cancelled")
			return ctx.Err()
		case <-stopCh:
			c.log.Info("continuous optimization stopped")
			return nil
		case <-time.After(interval):
		}
	}
}

// Stop halts a continuous run. Safe to call multiple times; a no-op when not
// running.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	once, ch := c.stopOnce, c.stopCh
	c.mu.Unlock()
	if once == nil || ch == nil {
		return
	}
	once.Do(func() { close(ch) })
}

// Running reports whether a continuous run is active.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Snapshot returns the last observed metrics.
func (c *Coordinator) Snapshot() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSnapshot
}

// Anomalies returns the anomalies from the last observation.
func (c *Coordinator) Anomalies() []model.Anomaly {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Anomaly, len(c.lastAnoms))
	copy(out, c.lastAnoms)
	return out
}

// AnomalyHistory returns the most recent detected anomalies across cycles,
// oldest first. Retention is capped at the ring's capacity.
func (c *Coordinator) AnomalyHistory(limit int) []model.Anomaly {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anomHist.Last(limit)
}

// Status reports the live system state.
func (c *Coordinator) Status() SystemStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SystemStatus{
		Running:         c.running,
		Backend:         c.engine.BackendName(),
		NodeCount:       c.cfg.Network.Nodes,
		TotalCycles:     c.cycleCount,
		LastCycleTime:   c.lastCycle,
		FeedbackEntries: len(c.engine.FeedbackContext()),
		HealthScore:     c.lastHealth,
		AnomalyCount:    len(c.lastAnoms),
	}
}

// CycleHistory returns the most recent cycle records, oldest first.
func (c *Coordinator) CycleHistory(limit int) []model.CycleRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Last(limit)
}

// Performance aggregates outcomes across retained cycle history.
func (c *Coordinator) Performance() PerformanceSummary {
	c.mu.Lock()
	cycles := c.history.Items()
	c.mu.Unlock()

	sum := PerformanceSummary{TotalCycles: len(cycles), ActionSuccessRate: 1.0}
	if len(cycles) == 0 {
		return sum
	}

	var durSum float64
	for _, rec := range cycles {
		if rec.Status == model.CycleCompleted {
			sum.CompletedCycles++
			durSum += rec.Duration.Seconds()
		} else {
			sum.FailedCycles++
		}
		if rec.Phases.Action.Executed {
			sum.ActionsTaken += rec.Phases.Action.Summary.Total
			sum.SuccessfulActions += rec.Phases.Action.Summary.Successful
		}
	}
	sum.SuccessRate = float64(sum.CompletedCycles) / float64(len(cycles))
	if sum.CompletedCycles > 0 {
		sum.AvgCycleDuration = durSum / float64(sum.CompletedCycles)
	}
	if sum.ActionsTaken > 0 {
		sum.ActionSuccessRate = float64(sum.SuccessfulActions) / float64(sum.ActionsTaken)
	}
	return sum
}

// TriggerScenario forwards a scenario request to the simulator.
func (c *Coordinator) TriggerScenario(name string) (simnet.ScenarioResult, error) {
	return c.sim.TriggerScenario(name)
}

// Simulator exposes the underlying metrics source for event history queries.
func (c *Coordinator) Simulator() *simnet.Simulator { return c.sim }

// Executor exposes the action executor for history queries.
func (c *Coordinator) Executor() *action.Executor { return c.executor }

// Evaluator exposes the feedback evaluator for trend queries.
func (c *Coordinator) Evaluator() *feedback.Evaluator { return c.evaluator }

// Tracker exposes the performance tracker for learning queries.
func (c *Coordinator) Tracker() *feedback.Tracker { return c.tracker }

// SetSettleDelay overrides the pause between acting and re-observing.
func (c *Coordinator) SetSettleDelay(d time.Duration) {
	c.settle = func(ctx context.Context) {
		if d <= 0 {
			return
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
		}
	}
}
