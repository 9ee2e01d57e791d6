package decision

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/netopt-go/internal/config"
	"github.com/dm/netopt-go/internal/model"
)

type stubBackend struct {
	response string
	err      error
	calls    int
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Generate(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.response, s.err
}

func newTestEngine(b Backend) *Engine {
	return New(b, config.Default().Decision, slog.Default())
}

func healthySnapshot() model.Snapshot {
	return model.Snapshot{Nodes: []model.NodeMetrics{{
		NodeID: "node_0", Latency: 20, Bandwidth: 1000, PacketLoss: 0.1, CPUUsage: 30, MemoryUsage: 40,
	}}}
}

func TestDecide_HealthyShortCircuit(t *testing.T) {
	stub := &stubBackend{}
	e := newTestEngine(stub)

	dec := e.Decide(context.Background(), healthySnapshot(), nil, 98.0)

	assert.False(t, dec.ActionRequired)
	assert.Empty(t, dec.Actions)
	assert.Zero(t, stub.calls, "backend must not be consulted for a healthy network")
}

func TestDecide_ParsesFencedJSON(t *testing.T) {
	stub := &stubBackend{response: "```json\n" + `{
		"action_required": true,
		"reasoning": "latency is elevated",
		"recommended_actions": [
			{"action": "optimize_routing", "target": "node_2", "priority": "high", "params": {"optimize_path": true}}
		],
		"confidence": 0.9
	}` + "\n```"}
	e := newTestEngine(stub)

	anomalies := []model.Anomaly{{Type: model.AnomalyHighLatency, NodeID: "node_2", Severity: model.SeverityWarning}}
	dec := e.Decide(context.Background(), healthySnapshot(), anomalies, 70.0)

	require.True(t, dec.ActionRequired)
	require.Len(t, dec.Actions, 1)
	assert.Equal(t, model.ActionOptimizeRouting, dec.Actions[0].Action)
	assert.Equal(t, "node_2", dec.Actions[0].Target)
	assert.Equal(t, 0.9, dec.Confidence)
	assert.False(t, dec.Fallback)
}

func TestDecide_MissingActionRequiredDefaultsTrue(t *testing.T) {
	stub := &stubBackend{response: `{
		"reasoning": "loss spike on node_3",
		"recommended_actions": [
			{"action": "reduce_traffic", "target": "node_3", "priority": "high"}
		],
		"confidence": 0.85
	}`}
	e := newTestEngine(stub)

	anomalies := []model.Anomaly{{Type: model.AnomalyHighPacketLoss, NodeID: "node_3"}}
	dec := e.Decide(context.Background(), healthySnapshot(), anomalies, 65.0)

	assert.True(t, dec.ActionRequired, "plan without action_required must still be actionable")
	require.Len(t, dec.Actions, 1)
	assert.Equal(t, model.ActionReduceTraffic, dec.Actions[0].Action)
}

func TestDecide_ExplicitActionRequiredFalseHonored(t *testing.T) {
	stub := &stubBackend{response: `{
		"action_required": false,
		"reasoning": "transient blip, no intervention needed",
		"recommended_actions": [],
		"confidence": 0.75
	}`}
	e := newTestEngine(stub)

	anomalies := []model.Anomaly{{Type: model.AnomalyHighCPU, NodeID: "node_1"}}
	dec := e.Decide(context.Background(), healthySnapshot(), anomalies, 80.0)

	assert.False(t, dec.ActionRequired)
	assert.Empty(t, dec.Actions)
}

func TestDecide_TruncatesToMaxActions(t *testing.T) {
	stub := &stubBackend{response: `{
		"action_required": true,
		"reasoning": "many problems",
		"recommended_actions": [
			{"action": "optimize_routing", "target": "node_0", "priority": "high"},
			{"action": "reduce_traffic", "target": "node_1", "priority": "critical"},
			{"action": "load_balance", "target": "node_2", "priority": "high"},
			{"action": "clear_cache", "target": "node_3", "priority": "medium"},
			{"action": "alert", "target": "node_4", "priority": "low"}
		],
		"confidence": 0.8
	}`}
	e := newTestEngine(stub)

	anomalies := []model.Anomaly{{Type: model.AnomalyHighCPU, NodeID: "node_0"}}
	dec := e.Decide(context.Background(), healthySnapshot(), anomalies, 60.0)

	assert.Len(t, dec.Actions, 3)
}

func TestDecide_UnparseableResponse(t *testing.T) {
	stub := &stubBackend{response: "I think the network looks a bit slow today."}
	e := newTestEngine(stub)

	anomalies := []model.Anomaly{{Type: model.AnomalyHighLatency, NodeID: "node_1"}}
	dec := e.Decide(context.Background(), healthySnapshot(), anomalies, 75.0)

	assert.True(t, dec.ParseError)
	assert.Equal(t, 0.5, dec.Confidence)
	assert.Empty(t, dec.Actions)
	assert.Contains(t, dec.Reasoning, "slow")
}

func TestDecide_BackendErrorFallsBackToRules(t *testing.T) {
	stub := &stubBackend{err: errors.New("rate limited")}
	e := newTestEngine(stub)

	anomalies := []model.Anomaly{
		{Type: model.AnomalyHighPacketLoss, NodeID: "n1", Severity: model.SeverityCritical},
	}
	dec := e.Decide(context.Background(), healthySnapshot(), anomalies, 50.0)

	require.True(t, dec.Fallback)
	require.Len(t, dec.Actions, 1)
	assert.Equal(t, model.ActionReduceTraffic, dec.Actions[0].Action)
	assert.Equal(t, "n1", dec.Actions[0].Target)
	assert.Equal(t, model.PriorityCritical, dec.Actions[0].Priority)
	assert.Equal(t, 0.6, dec.Confidence)
}

func TestFallback_RuleTable(t *testing.T) {
	e := newTestEngine(&stubBackend{})

	cases := []struct {
		anomaly    model.Anomaly
		wantAction model.ActionType
		wantPrio   model.Priority
	}{
		{model.Anomaly{Type: model.AnomalyHighLatency, NodeID: "a", Severity: model.SeverityCritical}, model.ActionOptimizeRouting, model.PriorityHigh},
		{model.Anomaly{Type: model.AnomalyHighLatency, NodeID: "a", Severity: model.SeverityWarning}, model.ActionOptimizeRouting, model.PriorityMedium},
		{model.Anomaly{Type: model.AnomalyHighCPU, NodeID: "a"}, model.ActionLoadBalance, model.PriorityHigh},
		{model.Anomaly{Type: model.AnomalyHighMemory, NodeID: "a"}, model.ActionClearCache, model.PriorityMedium},
		{model.Anomaly{Type: model.AnomalyLowBandwidth, NodeID: "a"}, model.ActionRequestBandwidth, model.PriorityMedium},
	}
	for _, tc := range cases {
		dec := e.fallback([]model.Anomaly{tc.anomaly})
		require.Len(t, dec.Actions, 1)
		assert.Equal(t, tc.wantAction, dec.Actions[0].Action)
		assert.Equal(t, tc.wantPrio, dec.Actions[0].Priority)
	}
}

func TestRecordFeedback_WindowIsBounded(t *testing.T) {
	e := newTestEngine(&stubBackend{})
	for i := 0; i < 30; i++ {
		e.RecordFeedback(model.FeedbackEntry{Success: true, Improvement: float64(i)})
	}
	got := e.FeedbackContext()
	require.Len(t, got, 20)
	assert.Equal(t, 10.0, got[0].Improvement)
	assert.Equal(t, 29.0, got[19].Improvement)
}

func TestMockBackend_RecommendsByKeyword(t *testing.T) {
	b := &MockBackend{}
	e := New(b, config.Default().Decision, slog.Default())

	m := model.NodeMetrics{NodeID: "node_3", Latency: 250, Bandwidth: 900, PacketLoss: 0.1, CPUUsage: 40, MemoryUsage: 50}
	anomalies := []model.Anomaly{{
		Type: model.AnomalyHighLatency, NodeID: "node_3", Value: 250, Threshold: 100,
		Severity: model.SeverityCritical, Description: "Node node_3 latency is 250.0ms",
	}}
	dec := e.Decide(context.Background(), model.Snapshot{Nodes: []model.NodeMetrics{m}}, anomalies, 70.0)

	require.True(t, dec.ActionRequired)
	require.NotEmpty(t, dec.Actions)
	assert.Equal(t, model.ActionOptimizeRouting, dec.Actions[0].Action)
	assert.Equal(t, "node_3", dec.Actions[0].Target)
}

func TestMockBackend_QuietWhenNominal(t *testing.T) {
	b := &MockBackend{}
	raw, err := b.Generate(context.Background(), "", "## Current Network State\nAll metrics are within normal ranges.")
	require.NoError(t, err)

	jsonStr, err := extractJSON(raw)
	require.NoError(t, err)
	var dec model.Decision
	require.NoError(t, json.Unmarshal([]byte(jsonStr), &dec))
	assert.False(t, dec.ActionRequired)
}
