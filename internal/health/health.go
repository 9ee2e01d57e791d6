// Package health scores node and network condition and flags anomalies.
package health

import (
	"fmt"
	"math"

	"github.com/dm/netopt-go/internal/model"
)

// Anomaly detection thresholds.
const (
	LatencyWarn   = 100.0 // ms
	LatencyCrit   = 200.0
	PacketLossMax = 5.0 // percent
	BandwidthMin  = 100.0
	CPUWarn       = 80.0
	MemoryWarn    = 85.0
	ResourceCrit  = 95.0
)

// NodeScore rates a single node 0..100. Each metric past its comfort band
// deducts a capped penalty from a perfect score.
func NodeScore(m model.NodeMetrics) float64 {
	score := 100.0
	if m.Latency > 50 {
		score -= math.Min(30, (m.Latency-50)*0.3)
	}
	score -= m.PacketLoss * 5
	if m.Bandwidth < 500 {
		score -= math.Min(20, (500-m.Bandwidth)*0.04)
	}
	if m.CPUUsage > 70 {
		score -= math.Min(20, (m.CPUUsage-70)*0.7)
	}
	if m.MemoryUsage > 70 {
		score -= math.Min(15, (m.MemoryUsage-70)*0.5)
	}
	return math.Max(0, score)
}

// NetworkScore averages node scores across a snapshot. An empty snapshot
// scores 100.
func NetworkScore(snap model.Snapshot) float64 {
	if len(snap.Nodes) == 0 {
		return 100.0
	}
	var sum float64
	for _, m := range snap.Nodes {
		sum += NodeScore(m)
	}
	return sum / float64(len(snap.Nodes))
}

// DetectAnomalies inspects every node in the snapshot and reports each
// metric outside its acceptable range.
func DetectAnomalies(snap model.Snapshot) []model.Anomaly {
	var out []model.Anomaly
	for _, m := range snap.Nodes {
		out = append(out, nodeAnomalies(m)...)
	}
	return out
}

func nodeAnomalies(m model.NodeMetrics) []model.Anomaly {
	var out []model.Anomaly

	if m.Latency > LatencyWarn {
		sev := model.SeverityWarning
		if m.Latency > LatencyCrit {
			sev = model.SeverityCritical
		}
		out = append(out, model.Anomaly{
			Type:        model.AnomalyHighLatency,
			NodeID:      m.NodeID,
			Value:       m.Latency,
			Threshold:   LatencyWarn,
			Severity:    sev,
			Description: fmt.Sprintf("Node %s latency is %.1fms", m.NodeID, m.Latency),
		})
	}
	if m.PacketLoss > PacketLossMax {
		out = append(out, model.Anomaly{
			Type:        model.AnomalyHighPacketLoss,
			NodeID:      m.NodeID,
			Value:       m.PacketLoss,
			Threshold:   PacketLossMax,
			Severity:    model.SeverityCritical,
			Description: fmt.Sprintf("Node %s packet loss is %.2f%%", m.NodeID, m.PacketLoss),
		})
	}
	if m.Bandwidth < BandwidthMin {
		out = append(out, model.Anomaly{
			Type:        model.AnomalyLowBandwidth,
			NodeID:      m.NodeID,
			Value:       m.Bandwidth,
			Threshold:   BandwidthMin,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("Node %s bandwidth dropped to %.0f Mbps", m.NodeID, m.Bandwidth),
		})
	}
	if m.CPUUsage > CPUWarn {
		sev := model.SeverityWarning
		if m.CPUUsage >= ResourceCrit {
			sev = model.SeverityCritical
		}
		out = append(out, model.Anomaly{
			Type:        model.AnomalyHighCPU,
			NodeID:      m.NodeID,
			Value:       m.CPUUsage,
			Threshold:   CPUWarn,
			Severity:    sev,
			Description: fmt.Sprintf("Node %s CPU usage is %.1f%%", m.NodeID, m.CPUUsage),
		})
	}
	if m.MemoryUsage > MemoryWarn {
		sev := model.SeverityWarning
		if m.MemoryUsage >= ResourceCrit {
			sev = model.SeverityCritical
		}
		out = append(out, model.Anomaly{
			Type:        model.AnomalyHighMemory,
			NodeID:      m.NodeID,
			Value:       m.MemoryUsage,
			Threshold:   MemoryWarn,
			Severity:    sev,
			Description: fmt.Sprintf("Node %s memory usage is %.1f%%", m.NodeID, m.MemoryUsage),
		})
	}
	return out
}
