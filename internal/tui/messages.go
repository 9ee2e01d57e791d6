package tui

import (
	"time"

	"github.com/dm/netopt-go/internal/coord"
	"github.com/dm/netopt-go/internal/model"
)

// CycleMsg delivers the result of an optimization cycle to the TUI.
type CycleMsg struct {
	Record    model.CycleRecord
	Snapshot  model.Snapshot
	Anomalies []model.Anomaly
	Health    float64
	Status    coord.SystemStatus
}

// ScenarioMsg reports that a simulation scenario was injected.
type ScenarioMsg struct {
	Scenario string
	Err      error
}

// TickMsg triggers the next scheduled cycle.
type TickMsg time.Time
