package model

import "time"

// NodeMetrics holds one node's instantaneous metrics. Values are immutable
// once created; components pass copies across phase boundaries.
type NodeMetrics struct {
	NodeID      string    `json:"node_id"`
	Latency     float64   `json:"latency"`      // milliseconds
	Bandwidth   float64   `json:"bandwidth"`    // Mbps
	PacketLoss  float64   `json:"packet_loss"`  // percent, 0-100
	CPUUsage    float64   `json:"cpu_usage"`    // percent, 0-100
	MemoryUsage float64   `json:"memory_usage"` // percent, 0-100
	Connections int       `json:"connections"`
	Timestamp   time.Time `json:"timestamp"`
}

// Snapshot is an ordered collection of per-node metrics for one observation
// instant.
type Snapshot struct {
	Nodes     []NodeMetrics `json:"nodes"`
	Timestamp time.Time     `json:"timestamp"`
}

// Summary holds aggregate statistics across all nodes in a snapshot.
type Summary struct {
	NodeCount      int     `json:"node_count"`
	AvgLatency     float64 `json:"avg_latency"`
	MaxLatency     float64 `json:"max_latency"`
	AvgBandwidth   float64 `json:"avg_bandwidth"`
	MinBandwidth   float64 `json:"min_bandwidth"`
	AvgPacketLoss  float64 `json:"avg_packet_loss"`
	MaxPacketLoss  float64 `json:"max_packet_loss"`
	AvgCPU         float64 `json:"avg_cpu"`
	MaxCPU         float64 `json:"max_cpu"`
	AvgMemory      float64 `json:"avg_memory"`
	MaxMemory      float64 `json:"max_memory"`
	HealthyNodes   int     `json:"healthy_nodes"`
	UnhealthyNodes int     `json:"unhealthy_nodes"`
}

// Healthy reports whether every metric is inside its nominal range.
// The thresholds match the anomaly detector's trigger points: a healthy
// node by this definition produces zero anomalies.
func (n NodeMetrics) Healthy() bool {
	return n.Latency < 100 &&
		n.Bandwidth > 100 &&
		n.PacketLoss < 5 &&
		n.CPUUsage < 80 &&
		n.MemoryUsage < 85
}

// Summarize computes aggregate statistics for the snapshot. Returns the zero
// Summary when the snapshot has no nodes.
func (s Snapshot) Summarize() Summary {
	if len(s.Nodes) == 0 {
		return Summary{}
	}

	sum := Summary{
		NodeCount:    len(s.Nodes),
		MinBandwidth: s.Nodes[0].Bandwidth,
	}

	var latSum, bwSum, lossSum, cpuSum, memSum float64
	for _, n := range s.Nodes {
		latSum += n.Latency
		bwSum += n.Bandwidth
		lossSum += n.PacketLoss
		cpuSum += n.CPUUsage
		memSum += n.MemoryUsage

		if n.Latency > sum.MaxLatency {
			sum.MaxLatency = n.Latency
		}
		if n.Bandwidth < sum.MinBandwidth {
			sum.MinBandwidth = n.Bandwidth
		}
		if n.PacketLoss > sum.MaxPacketLoss {
			sum.MaxPacketLoss = n.PacketLoss
		}
		if n.CPUUsage > sum.MaxCPU {
			sum.MaxCPU = n.CPUUsage
		}
		if n.MemoryUsage > sum.MaxMemory {
			sum.MaxMemory = n.MemoryUsage
		}
		if n.Healthy() {
			sum.HealthyNodes++
		} else {
			sum.UnhealthyNodes++
		}
	}

	count := float64(len(s.Nodes))
	sum.AvgLatency = latSum / count
	sum.AvgBandwidth = bwSum / count
	sum.AvgPacketLoss = lossSum / count
	sum.AvgCPU = cpuSum / count
	sum.AvgMemory = memSum / count

	return sum
}

// Node returns the metrics for the named node and whether it was present.
func (s Snapshot) Node(id string) (NodeMetrics, bool) {
	for _, n := range s.Nodes {
		if n.NodeID == id {
			return n, true
		}
	}
	return NodeMetrics{}, false
}

// MetricsDelta is the per-node change between two snapshots. Negative changes
// in latency, loss, CPU, and memory are favorable; positive bandwidth change
// is favorable.
type MetricsDelta struct {
	NodeID           string  `json:"node_id"`
	LatencyChange    float64 `json:"latency_change"`
	BandwidthChange  float64 `json:"bandwidth_change"`
	PacketLossChange float64 `json:"packet_loss_change"`
	CPUChange        float64 `json:"cpu_change"`
	MemoryChange     float64 `json:"memory_change"`
	ImprovementScore float64 `json:"improvement_score"`
	Improved         bool    `json:"improved"`
}

// Delta computes the metric changes from before to after.
func Delta(before, after NodeMetrics) MetricsDelta {
	return MetricsDelta{
		NodeID:           after.NodeID,
		LatencyChange:    after.Latency - before.Latency,
		BandwidthChange:  after.Bandwidth - before.Bandwidth,
		PacketLossChange: after.PacketLoss - before.PacketLoss,
		CPUChange:        after.CPUUsage - before.CPUUsage,
		MemoryChange:     after.MemoryUsage - before.MemoryUsage,
	}
}
