package coord

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/netopt-go/internal/action"
	"github.com/dm/netopt-go/internal/config"
	"github.com/dm/netopt-go/internal/decision"
	"github.com/dm/netopt-go/internal/feedback"
	"github.com/dm/netopt-go/internal/model"
	"github.com/dm/netopt-go/internal/simnet"
	"github.com/dm/netopt-go/internal/store"
)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	cfg := config.Default()
	cfg.Network.Nodes = 5
	cfg.Network.EventProbability = 0 // keep background noise quiet
	cfg.Monitor.PollingInterval = 10 * time.Millisecond

	log := slog.Default()
	journal, err := store.Open(t.TempDir())
	require.NoError(t, err)

	executor := action.New(false, rand.NewPCG(7, 7), log)
	executor.DisableDelay()

	c := New(Options{
		Config:    cfg,
		Simulator: simnet.New(cfg.Network, rand.NewPCG(42, 42)),
		Engine:    decision.New(&decision.MockBackend{}, cfg.Decision, log),
		Executor:  executor,
		Evaluator: feedback.New(cfg.Feedback.HistoryWindow, log),
		Tracker:   feedback.NewTracker(),
		Journal:   journal,
		Logger:    log,
	})
	c.SetSettleDelay(0)
	return c
}

func TestRunCycle_HealthyNetworkSkipsActions(t *testing.T) {
	c := newTestCoordinator(t)

	rec := c.RunCycle(context.Background())

	assert.Equal(t, 1, rec.Cycle)
	assert.Equal(t, model.CycleCompleted, rec.Status)
	assert.Equal(t, model.PhaseCompleted, rec.Phases.Monitor.Status)
	assert.Greater(t, rec.Phases.Monitor.HealthScore, 90.0)
	assert.Zero(t, rec.Phases.Monitor.AnomalyCount)
	assert.False(t, rec.Phases.Decision.ActionRequired)
	assert.Equal(t, model.PhaseSkipped, rec.Phases.Action.Status)
	assert.Equal(t, model.PhaseSkipped, rec.Phases.Feedback.Status)
}

func TestRunCycle_OutageTriggersFullPipeline(t *testing.T) {
	c := newTestCoordinator(t)

	res, err := c.TriggerScenario("outage")
	require.NoError(t, err)
	require.Len(t, res.AffectedNodes, 1)

	rec := c.RunCycle(context.Background())

	assert.Equal(t, model.CycleCompleted, rec.Status)
	assert.Greater(t, rec.Phases.Monitor.AnomalyCount, 0, "outage must surface anomalies")
	assert.True(t, rec.Phases.Decision.ActionRequired)
	assert.Greater(t, rec.Phases.Decision.ActionsPlanned, 0)
	assert.LessOrEqual(t, rec.Phases.Decision.ActionsPlanned, 3)
	assert.Equal(t, model.PhaseCompleted, rec.Phases.Action.Status)
	assert.True(t, rec.Phases.Action.Executed)
	assert.Equal(t, model.PhaseCompleted, rec.Phases.Feedback.Status)
}

func TestRunCycle_FeedbackFlowsIntoNextDecision(t *testing.T) {
	c := newTestCoordinator(t)

	_, err := c.TriggerScenario("outage")
	require.NoError(t, err)
	c.RunCycle(context.Background())

	status := c.Status()
	assert.Equal(t, 1, status.FeedbackEntries, "evaluation must reach the decision engine")
}

func TestRunCycle_PersistsDecisionsAndPerformance(t *testing.T) {
	c := newTestCoordinator(t)

	_, err := c.TriggerScenario("outage")
	require.NoError(t, err)
	c.RunCycle(context.Background())

	decisions, err := c.journal.Decisions(10)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.True(t, decisions[0].Decision.ActionRequired)

	perf, err := c.journal.Performance(10)
	require.NoError(t, err)
	assert.Len(t, perf, 1)
}

func TestRunCycle_CycleHistoryAccumulates(t *testing.T) {
	c := newTestCoordinator(t)

	for i := 0; i < 3; i++ {
		c.RunCycle(context.Background())
	}

	history := c.CycleHistory(10)
	require.Len(t, history, 3)
	assert.Equal(t, 1, history[0].Cycle)
	assert.Equal(t, 3, history[2].Cycle)

	perf := c.Performance()
	assert.Equal(t, 3, perf.TotalCycles)
	assert.Equal(t, 3, perf.CompletedCycles)
	assert.Equal(t, 1.0, perf.SuccessRate)
}

func TestRunCycle_PanicMarksCycleFailed(t *testing.T) {
	c := newTestCoordinator(t)
	c.tracker = nil // a collaborator blowing up mid-cycle must not crash the loop

	rec := c.RunCycle(context.Background())

	assert.Equal(t, model.CycleFailed, rec.Status)
	assert.NotEmpty(t, rec.Error)
	assert.False(t, rec.EndTime.IsZero())

	// The failed record still lands in history and in the aggregates.
	c.tracker = feedback.NewTracker()
	rec = c.RunCycle(context.Background())
	assert.Equal(t, model.CycleCompleted, rec.Status)

	perf := c.Performance()
	assert.Equal(t, 2, perf.TotalCycles)
	assert.Equal(t, 1, perf.CompletedCycles)
	assert.Equal(t, 1, perf.FailedCycles)
	assert.Equal(t, 0.5, perf.SuccessRate)
}

func TestAnomalyHistory_AccumulatesAcrossCycles(t *testing.T) {
	c := newTestCoordinator(t)

	c.RunCycle(context.Background())
	require.Empty(t, c.AnomalyHistory(100), "healthy network must not record anomalies")

	_, err := c.TriggerScenario("outage")
	require.NoError(t, err)
	c.RunCycle(context.Background())
	first := c.AnomalyHistory(100)
	require.NotEmpty(t, first)

	c.RunCycle(context.Background())
	second := c.AnomalyHistory(100)
	assert.GreaterOrEqual(t, len(second), len(first), "history must retain anomalies from prior cycles")
	assert.LessOrEqual(t, len(second), 100)
	assert.Equal(t, first[0], second[0], "oldest retained anomaly must be stable until eviction")
}

func TestRunContinuous_StopIsIdempotent(t *testing.T) {
	c := newTestCoordinator(t)

	done := make(chan error, 1)
	go func() {
		done <- c.RunContinuous(context.Background())
	}()

	require.Eventually(t, c.Running, time.Second, 5*time.Millisecond)

	c.Stop()
	c.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("continuous run did not stop")
	}
	assert.False(t, c.Running())
}

func TestRunContinuous_ContextCancel(t *testing.T) {
	c := newTestCoordinator(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.RunContinuous(ctx)
	}()

	require.Eventually(t, c.Running, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("continuous run did not honor cancellation")
	}
}

func TestStatus_ReflectsObservation(t *testing.T) {
	c := newTestCoordinator(t)

	status := c.Status()
	assert.False(t, status.Running)
	assert.Equal(t, "mock", status.Backend)
	assert.Equal(t, 5, status.NodeCount)
	assert.Zero(t, status.TotalCycles)

	c.RunCycle(context.Background())
	status = c.Status()
	assert.Equal(t, 1, status.TotalCycles)
	require.NotNil(t, status.LastCycleTime)
	assert.Greater(t, status.HealthScore, 0.0)
}
