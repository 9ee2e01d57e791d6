package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/netopt-go/internal/coord"
	"github.com/dm/netopt-go/internal/model"
)

// sparkCap bounds the per-metric history kept for sparklines.
const sparkCap = 120

// App is the root Bubble Tea model for the netopt dashboard. It drives the
// optimization loop directly: every tick runs one full cycle on the embedded
// coordinator and re-renders from its result.
type App struct {
	coord        *coord.Coordinator
	pollInterval time.Duration

	// Cycle state
	cycling   bool // true while a cycleCmd goroutine is in-flight
	paused    bool
	snap      model.Snapshot
	anomalies []model.Anomaly
	health    float64
	status    coord.SystemStatus
	last      model.CycleRecord
	cycles    int
	lastCycle time.Time

	// Sparkline history, one ring per charted metric.
	healthHist *model.Ring[float64]
	latHist    *model.Ring[float64]
	lossHist   *model.Ring[float64]
	cpuHist    *model.Ring[float64]

	// Node table
	nodeTable NodeTableModel

	// Layout
	width, height int

	// UI state
	showHelp bool
	notice   string // transient scenario feedback line
}

// NewApp creates a new App driving the given coordinator.
func NewApp(c *coord.Coordinator, interval time.Duration) *App {
	return &App{
		coord:        c,
		pollInterval: interval,
		cycling:      true, // Init() always issues an immediate cycleCmd
		healthHist:   model.NewRing[float64](sparkCap),
		latHist:      model.NewRing[float64](sparkCap),
		lossHist:     model.NewRing[float64](sparkCap),
		cpuHist:      model.NewRing[float64](sparkCap),
		nodeTable:    NewNodeTable(),
	}
}

// Init implements tea.Model. Runs the first cycle immediately on launch.
func (app *App) Init() tea.Cmd {
	return cycleCmd(app.coord)
}

// Update implements tea.Model — the single state-mutation entry point.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height

	case CycleMsg:
		app.cycling = false
		app.snap = msg.Snapshot
		app.anomalies = msg.Anomalies
		app.health = msg.Health
		app.status = msg.Status
		app.last = msg.Record
		app.cycles = msg.Record.Cycle
		app.lastCycle = msg.Record.EndTime

		summary := msg.Snapshot.Summarize()
		app.healthHist.Push(msg.Health)
		app.latHist.Push(summary.AvgLatency)
		app.lossHist.Push(summary.AvgPacketLoss)
		app.cpuHist.Push(summary.AvgCPU)

		app.nodeTable.SetData(nodeRows(msg.Snapshot, msg.Anomalies))

		if app.paused {
			return app, nil
		}
		return app, tickCmd(app.pollInterval)

	case ScenarioMsg:
		if msg.Err != nil {
			app.notice = "scenario failed: " + msg.Err.Error()
		} else {
			app.notice = "injected scenario: " + msg.Scenario
		}

	case TickMsg:
		if app.cycling || app.paused {
			return app, nil
		}
		app.cycling = true
		return app, cycleCmd(app.coord)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return app, tea.Quit
		case key.Matches(msg, keys.Cycle):
			if app.cycling {
				return app, nil
			}
			app.cycling = true
			return app, cycleCmd(app.coord)
		case key.Matches(msg, keys.Pause):
			app.paused = !app.paused
			if !app.paused && !app.cycling {
				app.cycling = true
				return app, cycleCmd(app.coord)
			}
		case key.Matches(msg, keys.Help):
			app.showHelp = !app.showHelp
		case key.Matches(msg, keys.HighTraffic):
			return app, scenarioCmd(app.coord, "high_traffic")
		case key.Matches(msg, keys.Outage):
			return app, scenarioCmd(app.coord, "outage")
		case key.Matches(msg, keys.Degrade):
			return app, scenarioCmd(app.coord, "gradual_degradation")
		case key.Matches(msg, keys.Recover):
			return app, scenarioCmd(app.coord, "recovery")
		case key.Matches(msg, keys.Normal):
			return app, scenarioCmd(app.coord, "normal")
		default:
			var cmd tea.Cmd
			app.nodeTable, cmd = app.nodeTable.Update(msg)
			return app, cmd
		}
	}

	return app, nil
}

// View implements tea.Model. Renders the full dashboard.
func (app *App) View() string {
	var parts []string

	if h := renderHeader(app); h != "" {
		parts = append(parts, h)
	}
	if o := renderOverview(app); o != "" {
		parts = append(parts, o)
	}
	if m := renderMetricsRow(app); m != "" {
		parts = append(parts, m)
	}
	if t := app.nodeTable.View(app.width); t != "" {
		parts = append(parts, t)
	}
	if p := renderCyclePanel(app); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, renderFooter(app))

	return strings.Join(parts, "\n")
}

// tickCmd schedules the next cycle after duration d.
func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// cycleCmd is a Bubble Tea command that runs one full observe-decide-act-
// evaluate pass on the coordinator and returns its digest as a CycleMsg.
// RunCycle records failures inside the CycleRecord instead of erroring, so
// the command always produces a CycleMsg.
func cycleCmd(c *coord.Coordinator) tea.Cmd {
	return func() tea.Msg {
		rec := c.RunCycle(context.Background())
		return CycleMsg{
			Record:    rec,
			Snapshot:  c.Snapshot(),
			Anomalies: c.Anomalies(),
			Health:    rec.Phases.Monitor.HealthScore,
			Status:    c.Status(),
		}
	}
}

// scenarioCmd injects a named simulation scenario.
func scenarioCmd(c *coord.Coordinator, name string) tea.Cmd {
	return func() tea.Msg {
		_, err := c.TriggerScenario(name)
		return ScenarioMsg{Scenario: name, Err: err}
	}
}
