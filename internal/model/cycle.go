package model

import "time"

// PhaseStatus describes how a single pipeline phase ended.
type PhaseStatus string

const (
	PhaseCompleted PhaseStatus = "completed"
	PhaseSkipped   PhaseStatus = "skipped"
)

// CycleStatus is the overall outcome of a cycle.
type CycleStatus string

const (
	CycleCompleted CycleStatus = "completed"
	CycleFailed    CycleStatus = "failed"
)

// MonitorPhase digests the observe phase.
type MonitorPhase struct {
	Status       PhaseStatus `json:"status"`
	HealthScore  float64     `json:"health_score"`
	AnomalyCount int         `json:"anomaly_count"`
}

// DecisionPhase digests the decide phase.
type DecisionPhase struct {
	Status         PhaseStatus `json:"status"`
	ActionRequired bool        `json:"action_required"`
	ActionsPlanned int         `json:"actions_recommended"`
	Confidence     float64     `json:"confidence"`
}

// ActionPhase digests the act phase.
type ActionPhase struct {
	Status   PhaseStatus  `json:"status"`
	Executed bool         `json:"executed"`
	Summary  BatchSummary `json:"summary"`
}

// FeedbackPhase digests the evaluate phase.
type FeedbackPhase struct {
	Status           PhaseStatus `json:"status"`
	ImprovementScore float64     `json:"improvement_score"`
	Success          bool        `json:"success"`
}

// PhaseReports groups the per-phase digests of one cycle.
type PhaseReports struct {
	Monitor  MonitorPhase  `json:"monitor"`
	Decision DecisionPhase `json:"decision"`
	Action   ActionPhase   `json:"action"`
	Feedback FeedbackPhase `json:"feedback"`
}

// CycleRecord is the coordinator-owned report of one full pipeline pass.
type CycleRecord struct {
	Cycle     int           `json:"cycle"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Phases    PhaseReports  `json:"phases"`
	Status    CycleStatus   `json:"status"`
	Error     string        `json:"error,omitempty"`
}
