package feedback

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/netopt-go/internal/model"
)

func snapshotWith(nodes ...model.NodeMetrics) model.Snapshot {
	return model.Snapshot{Nodes: nodes}
}

func node(id string, latency, bandwidth, loss, cpu, mem float64) model.NodeMetrics {
	return model.NodeMetrics{
		NodeID: id, Latency: latency, Bandwidth: bandwidth,
		PacketLoss: loss, CPUUsage: cpu, MemoryUsage: mem,
	}
}

func TestEvaluate_EmptyOutcomes(t *testing.T) {
	e := New(100, slog.Default())
	rec := e.Evaluate(nil, model.Snapshot{}, model.Snapshot{})
	assert.True(t, rec.OverallSuccess)
	assert.Zero(t, rec.ImprovementScore)
	assert.Equal(t, "No actions to evaluate", rec.Details)
	assert.Len(t, e.History(), 1)
}

func TestEvaluate_IdenticalSnapshotsAreNeutral(t *testing.T) {
	e := New(100, slog.Default())
	snap := snapshotWith(node("n1", 150, 800, 1, 50, 50))

	rec := e.Evaluate([]model.ActionOutcome{
		{Action: model.ActionOptimizeRouting, Target: "n1", Success: true},
	}, snap, snap)

	assert.Zero(t, rec.ImprovementScore)
	require.Len(t, rec.Actions, 1)
	// No movement in any metric: base score 0, no expectation bonus.
	assert.InDelta(t, 0.0, rec.Actions[0].Score, 1e-9)
	assert.Equal(t, model.RatingNone, rec.Actions[0].Rating)
}

func TestEvaluate_FailedActionScoresLow(t *testing.T) {
	e := New(100, slog.Default())
	pre := snapshotWith(node("n1", 150, 800, 1, 50, 50))

	rec := e.Evaluate([]model.ActionOutcome{
		{Action: model.ActionRestartService, Target: "n1", Success: false},
	}, pre, pre)

	require.Len(t, rec.Actions, 1)
	assert.Equal(t, 0.1, rec.Actions[0].Score)
	assert.Equal(t, model.RatingFailed, rec.Actions[0].Rating)
	assert.False(t, rec.OverallSuccess)
}

func TestEvaluate_MissingTargetScoresUnknown(t *testing.T) {
	e := New(100, slog.Default())
	pre := snapshotWith(node("n1", 150, 800, 1, 50, 50))

	rec := e.Evaluate([]model.ActionOutcome{
		{Action: model.ActionAlert, Target: "n9", Success: true},
	}, pre, pre)

	require.Len(t, rec.Actions, 1)
	assert.Equal(t, 0.5, rec.Actions[0].Score)
	assert.Equal(t, model.RatingUnknown, rec.Actions[0].Rating)
}

func TestEvaluate_ImprovementRaisesScore(t *testing.T) {
	e := New(100, slog.Default())
	pre := snapshotWith(node("n1", 200, 600, 8, 85, 60))
	post := snapshotWith(node("n1", 120, 800, 2, 60, 55))

	rec := e.Evaluate([]model.ActionOutcome{
		{Action: model.ActionOptimizeRouting, Target: "n1", Success: true},
	}, pre, post)

	require.Len(t, rec.Actions, 1)
	fb := rec.Actions[0]
	// Latency -80, loss -6, bandwidth +200, cpu -25, mem -5: every credit
	// category contributes, plus the latency expectation bonus.
	assert.Greater(t, fb.Score, 0.8)
	assert.Equal(t, model.RatingHighly, fb.Rating)
	assert.True(t, rec.OverallSuccess)
	assert.Greater(t, rec.ImprovementScore, 0.0)
	require.NotNil(t, fb.Delta)
	assert.True(t, fb.Delta.Improved)
}

func TestEvaluate_DegradationReportsWarning(t *testing.T) {
	e := New(100, slog.Default())
	pre := snapshotWith(node("n1", 30, 1000, 0.1, 30, 40))
	post := snapshotWith(node("n1", 300, 400, 20, 90, 90))

	rec := e.Evaluate([]model.ActionOutcome{
		{Action: model.ActionLoadBalance, Target: "n1", Success: true},
	}, pre, post)

	assert.Less(t, rec.ImprovementScore, -5.0)
	assert.Contains(t, rec.Details, "Health decreased")
}

func TestContext_SimplifiesRecentRecords(t *testing.T) {
	e := New(100, slog.Default())
	pre := snapshotWith(node("n1", 200, 600, 8, 85, 60))
	post := snapshotWith(node("n1", 120, 800, 2, 60, 55))

	for i := 0; i < 12; i++ {
		e.Evaluate([]model.ActionOutcome{
			{Action: model.ActionOptimizeRouting, Target: "n1", Success: true},
		}, pre, post)
	}

	ctx := e.Context()
	require.Len(t, ctx, 10)
	assert.True(t, ctx[0].Success)
	require.Len(t, ctx[0].Actions, 1)
	assert.True(t, ctx[0].Actions[0].Effective)
}

func TestTrends(t *testing.T) {
	e := New(100, slog.Default())

	_, ok := e.Trends()
	assert.False(t, ok, "one record is not enough for a trend")

	pre := snapshotWith(node("n1", 200, 600, 8, 85, 60))
	post := snapshotWith(node("n1", 120, 800, 2, 60, 55))
	for i := 0; i < 6; i++ {
		e.Evaluate([]model.ActionOutcome{
			{Action: model.ActionOptimizeRouting, Target: "n1", Success: true},
		}, pre, post)
	}

	trends, ok := e.Trends()
	require.True(t, ok)
	assert.Equal(t, "stable", trends.Trend)
	assert.Greater(t, trends.AvgImprovement, 0.0)
	assert.Equal(t, 6, trends.DataPoints)
}
