package model

import "time"

// ActionOutcome is the result of executing one ActionItem, one-to-one.
// A failed or timed-out execution is still a valid outcome, never an error.
type ActionOutcome struct {
	Action        ActionType    `json:"action"`
	Target        string        `json:"target"`
	Success       bool          `json:"success"`
	Message       string        `json:"message"`
	Duration      time.Duration `json:"duration_ms"`
	MetricsBefore *NodeMetrics  `json:"metrics_before,omitempty"`
	MetricsAfter  *NodeMetrics  `json:"metrics_after,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// BatchSummary aggregates the outcomes of one decision's action plan.
type BatchSummary struct {
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// Summarize computes the batch summary for a set of outcomes.
func Summarize(outcomes []ActionOutcome) BatchSummary {
	s := BatchSummary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Success {
			s.Successful++
		}
	}
	s.Failed = s.Total - s.Successful
	if s.Total > 0 {
		s.SuccessRate = float64(s.Successful) / float64(s.Total)
	}
	return s
}

// ExecutionRecord is one decision's executed batch, kept in the executor's
// capped history.
type ExecutionRecord struct {
	Timestamp  time.Time       `json:"timestamp"`
	Reasoning  string          `json:"decision_reasoning"`
	Confidence float64         `json:"decision_confidence"`
	Outcomes   []ActionOutcome `json:"results"`
	Summary    BatchSummary    `json:"summary"`
}
