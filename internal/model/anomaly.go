package model

// AnomalyType identifies which metric breached its threshold.
type AnomalyType string

const (
	AnomalyHighLatency    AnomalyType = "high_latency"
	AnomalyHighPacketLoss AnomalyType = "high_packet_loss"
	AnomalyLowBandwidth   AnomalyType = "low_bandwidth"
	AnomalyHighCPU        AnomalyType = "high_cpu"
	AnomalyHighMemory     AnomalyType = "high_memory"
)

// Severity is the urgency tier of an anomaly.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Anomaly is a single threshold breach on one metric of one node. Anomalies
// are produced fresh each cycle and never mutated.
type Anomaly struct {
	Type        AnomalyType `json:"type"`
	NodeID      string      `json:"node"`
	Value       float64     `json:"value"`
	Threshold   float64     `json:"threshold"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
}
