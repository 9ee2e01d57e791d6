package tui

import (
	"fmt"
	"strings"
	"time"
)

// maxPanelAnomalies caps the anomaly list so the panel cannot crowd out the
// node table on busy networks.
const maxPanelAnomalies = 5

// renderCyclePanel renders the per-cycle detail panel: the phase digest of
// the last cycle, the current anomaly list, and any transient scenario
// notice. Returns empty until the first cycle completes.
func renderCyclePanel(app *App) string {
	if app.cycles == 0 {
		return ""
	}

	var lines []string

	rec := app.last
	phase := fmt.Sprintf("Cycle %d  %s  monitor:%s decide:%s act:%s evaluate:%s",
		rec.Cycle,
		rec.Duration.Round(time.Millisecond),
		rec.Phases.Monitor.Status,
		rec.Phases.Decision.Status,
		rec.Phases.Action.Status,
		rec.Phases.Feedback.Status,
	)
	lines = append(lines, StyleDim.Render(phase))

	if rec.Phases.Decision.ActionRequired {
		lines = append(lines, StyleCyan.Render(fmt.Sprintf(
			"  planned %d action(s) at confidence %.2f",
			rec.Phases.Decision.ActionsPlanned, rec.Phases.Decision.Confidence)))
	}
	if rec.Phases.Feedback.Status == "completed" {
		style := StyleGreen
		if !rec.Phases.Feedback.Success {
			style = StyleYellow
		}
		lines = append(lines, style.Render(fmt.Sprintf(
			"  improvement %+.1f", rec.Phases.Feedback.ImprovementScore)))
	}

	if len(app.anomalies) > 0 {
		lines = append(lines, StyleDim.Render("Anomalies"))
		for i, a := range app.anomalies {
			if i >= maxPanelAnomalies {
				lines = append(lines, StyleDim.Render(fmt.Sprintf(
					"  ... and %d more", len(app.anomalies)-maxPanelAnomalies)))
				break
			}
			style := StyleYellow
			if a.Severity == "critical" {
				style = StyleRed
			}
			lines = append(lines, style.Render("  ["+string(a.Severity)+"] "+a.Description))
		}
	}

	if app.notice != "" {
		lines = append(lines, StylePurple.Render(app.notice))
	}

	return strings.Join(lines, "\n")
}
