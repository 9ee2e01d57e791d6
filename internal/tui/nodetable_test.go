package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/netopt-go/internal/model"
)

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		Nodes: []model.NodeMetrics{
			{NodeID: "node_0", Latency: 20, Bandwidth: 900, PacketLoss: 0.5, CPUUsage: 30, MemoryUsage: 40, Connections: 100},
			{NodeID: "node_1", Latency: 250, Bandwidth: 80, PacketLoss: 12, CPUUsage: 96, MemoryUsage: 50, Connections: 300},
			{NodeID: "node_2", Latency: 60, Bandwidth: 600, PacketLoss: 1, CPUUsage: 55, MemoryUsage: 60, Connections: 150},
		},
		Timestamp: time.Now(),
	}
}

func TestNodeRows_CountsAnomaliesPerNode(t *testing.T) {
	anomalies := []model.Anomaly{
		{Type: model.AnomalyHighLatency, NodeID: "node_1"},
		{Type: model.AnomalyHighCPU, NodeID: "node_1"},
		{Type: model.AnomalyHighMemory, NodeID: "node_2"},
	}

	rows := nodeRows(testSnapshot(), anomalies)
	require.Len(t, rows, 3)

	assert.Equal(t, 0, rows[0].Anomalies)
	assert.Equal(t, 2, rows[1].Anomalies)
	assert.Equal(t, 1, rows[2].Anomalies)
}

func TestNodeRows_HealthScore(t *testing.T) {
	rows := nodeRows(testSnapshot(), nil)

	assert.InDelta(t, 97.5, rows[0].Health, 0.001, "nominal node loses only the loss penalty")
	assert.Less(t, rows[1].Health, rows[2].Health, "degraded node scores below mildly loaded node")
}

func TestSortNodeRows_ByLatency(t *testing.T) {
	rows := nodeRows(testSnapshot(), nil)

	sorted := sortNodeRows(rows, 1, true)
	assert.Equal(t, "node_1", sorted[0].NodeID)
	assert.Equal(t, "node_0", sorted[2].NodeID)

	sorted = sortNodeRows(rows, 1, false)
	assert.Equal(t, "node_0", sorted[0].NodeID)
}

func TestSortNodeRows_UnsortedPreservesOrder(t *testing.T) {
	rows := nodeRows(testSnapshot(), nil)

	sorted := sortNodeRows(rows, -1, true)
	assert.Equal(t, "node_0", sorted[0].NodeID)
	assert.Equal(t, "node_1", sorted[1].NodeID)
	assert.Equal(t, "node_2", sorted[2].NodeID)
}

func TestNodeTable_DefaultSortSickestFirst(t *testing.T) {
	m := NewNodeTable()
	m.SetData(nodeRows(testSnapshot(), nil))

	require.Len(t, m.displayRows, 3)
	assert.Equal(t, "node_1", m.displayRows[0].NodeID)
}

func TestNodeTable_ViewRendersRows(t *testing.T) {
	m := NewNodeTable()
	m.SetData(nodeRows(testSnapshot(), nil))

	out := stripANSI(m.View(120))
	assert.Contains(t, out, "Node Metrics")
	assert.Contains(t, out, "node_0")
	assert.Contains(t, out, "node_1")
	assert.Contains(t, out, "Health↑", "active sort column carries a direction arrow")
}

func TestNodeTable_ViewEmptyWithoutData(t *testing.T) {
	m := NewNodeTable()
	assert.Empty(t, m.View(120))
}

func TestHealthSeverity(t *testing.T) {
	assert.Equal(t, severityNormal, healthSeverity(95))
	assert.Equal(t, severityWarning, healthSeverity(80))
	assert.Equal(t, severityCritical, healthSeverity(50))
}
