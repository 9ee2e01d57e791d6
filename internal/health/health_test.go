package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/netopt-go/internal/model"
)

func nominal(id string) model.NodeMetrics {
	return model.NodeMetrics{
		NodeID:      id,
		Latency:     20,
		Bandwidth:   1000,
		PacketLoss:  0.01,
		CPUUsage:    30,
		MemoryUsage: 40,
		Connections: 100,
	}
}

func TestNodeScore(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*model.NodeMetrics)
		wantMin float64
		wantMax float64
	}{
		{"nominal is near perfect", func(m *model.NodeMetrics) {}, 99, 100},
		{"high latency penalized", func(m *model.NodeMetrics) { m.Latency = 150 }, 69, 71},
		{"latency penalty is capped", func(m *model.NodeMetrics) { m.Latency = 400 }, 69, 71},
		{"packet loss penalized", func(m *model.NodeMetrics) { m.PacketLoss = 10 }, 49, 51},
		{"low bandwidth penalized", func(m *model.NodeMetrics) { m.Bandwidth = 100 }, 83, 85},
		{"degraded everything floors at zero", func(m *model.NodeMetrics) {
			m.Latency = 500
			m.PacketLoss = 50
			m.Bandwidth = 10
			m.CPUUsage = 100
			m.MemoryUsage = 100
		}, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := nominal("n1")
			tc.mutate(&m)
			got := NodeScore(m)
			assert.GreaterOrEqual(t, got, tc.wantMin)
			assert.LessOrEqual(t, got, tc.wantMax)
		})
	}
}

func TestNetworkScore_EmptySnapshot(t *testing.T) {
	assert.Equal(t, 100.0, NetworkScore(model.Snapshot{}))
}

func TestDetectAnomalies_NominalIsQuiet(t *testing.T) {
	snap := model.Snapshot{Nodes: []model.NodeMetrics{nominal("n1"), nominal("n2")}}
	assert.Empty(t, DetectAnomalies(snap))
	assert.Greater(t, NetworkScore(snap), 90.0)
}

func TestDetectAnomalies_HighLatencyCritical(t *testing.T) {
	m := nominal("n1")
	m.Latency = 250
	anomalies := DetectAnomalies(model.Snapshot{Nodes: []model.NodeMetrics{m}})
	require.Len(t, anomalies, 1)
	assert.Equal(t, model.AnomalyHighLatency, anomalies[0].Type)
	assert.Equal(t, "n1", anomalies[0].NodeID)
	assert.Equal(t, model.SeverityCritical, anomalies[0].Severity)
}

func TestDetectAnomalies_SeverityBands(t *testing.T) {
	m := nominal("n1")
	m.Latency = 150    // warning
	m.PacketLoss = 8   // critical always
	m.CPUUsage = 96    // critical
	m.MemoryUsage = 90 // warning

	byType := map[model.AnomalyType]model.Anomaly{}
	for _, a := range DetectAnomalies(model.Snapshot{Nodes: []model.NodeMetrics{m}}) {
		byType[a.Type] = a
	}
	require.Len(t, byType, 4)
	assert.Equal(t, model.SeverityWarning, byType[model.AnomalyHighLatency].Severity)
	assert.Equal(t, model.SeverityCritical, byType[model.AnomalyHighPacketLoss].Severity)
	assert.Equal(t, model.SeverityCritical, byType[model.AnomalyHighCPU].Severity)
	assert.Equal(t, model.SeverityWarning, byType[model.AnomalyHighMemory].Severity)
}
