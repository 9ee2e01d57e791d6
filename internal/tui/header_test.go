package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dm/netopt-go/internal/coord"
	"github.com/dm/netopt-go/internal/model"
)

func TestRenderHeader_WaitingBeforeFirstCycle(t *testing.T) {
	app := &App{width: 100, pollInterval: 5 * time.Second}

	out := stripANSI(renderHeader(app))
	assert.Contains(t, out, "Network Optimizer")
	assert.Contains(t, out, "WAITING")
	assert.Contains(t, out, "Cycle #0")
}

func TestRenderHeader_StatusFromHealthScore(t *testing.T) {
	app := &App{
		width:        100,
		pollInterval: 5 * time.Second,
		cycles:       3,
		health:       95.2,
		status:       coord.SystemStatus{Backend: "mock"},
		lastCycle:    time.Date(2026, 8, 30, 12, 4, 5, 0, time.UTC),
	}

	out := stripANSI(renderHeader(app))
	assert.Contains(t, out, "[mock]")
	assert.Contains(t, out, "OPTIMAL")
	assert.Contains(t, out, "95.2")
	assert.Contains(t, out, "Cycle #3")
	assert.Contains(t, out, "Last: 12:04:05")
	assert.Contains(t, out, "Poll: 5s")
}

func TestRenderHeader_DegradedAndCritical(t *testing.T) {
	app := &App{width: 100, pollInterval: time.Second, cycles: 1, health: 75}
	assert.Contains(t, stripANSI(renderHeader(app)), "DEGRADED")

	app.health = 40
	assert.Contains(t, stripANSI(renderHeader(app)), "CRITICAL")
}

func TestRenderHeader_PausedMarker(t *testing.T) {
	app := &App{width: 100, pollInterval: time.Second, cycles: 1, health: 95, paused: true}
	assert.Contains(t, stripANSI(renderHeader(app)), "PAUSED")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "5s", formatDuration(5*time.Second))
	assert.Equal(t, "2m", formatDuration(2*time.Minute))
}

func TestHealthLabel(t *testing.T) {
	assert.Equal(t, "optimal", healthLabel(90.1))
	assert.Equal(t, "degraded", healthLabel(90))
	assert.Equal(t, "degraded", healthLabel(70))
	assert.Equal(t, "critical", healthLabel(69.9))
}

func TestRenderOverview_EmptyBeforeFirstCycle(t *testing.T) {
	app := &App{width: 100}
	assert.Empty(t, renderOverview(app))
}

func TestRenderOverview_Cards(t *testing.T) {
	app := &App{
		width:  120,
		cycles: 1,
		health: 88.4,
		snap:   testSnapshot(),
		anomalies: []model.Anomaly{
			{Type: model.AnomalyHighLatency, NodeID: "node_1", Severity: model.SeverityCritical},
		},
	}

	out := stripANSI(renderOverview(app))
	assert.Contains(t, out, "DEGRADED")
	assert.Contains(t, out, "Health")
	assert.Contains(t, out, "Nodes OK")
	assert.Contains(t, out, "Anomalies")
	assert.Contains(t, out, "Actions")
	assert.Contains(t, out, "CPU")
	assert.Contains(t, out, "Memory")
}

func TestRenderMiniBar(t *testing.T) {
	assert.Equal(t, "██░░", renderMiniBar(50, 4))
	assert.Equal(t, "░░░░", renderMiniBar(0, 4))
	assert.Equal(t, "████", renderMiniBar(150, 4))
	assert.Equal(t, "", renderMiniBar(50, 0))
}
