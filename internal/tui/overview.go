package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderOverview renders the 7-stat overview bar.
// Wide terminals (>= 80 cols): all 7 cards in a single horizontal row.
// Narrow terminals (< 80 cols): cards stacked in rows of 2 (4 rows: 2+2+2+1).
// Returns empty string until the first cycle completes.
func renderOverview(app *App) string {
	if app.cycles == 0 {
		return ""
	}

	width := app.width
	if width <= 0 {
		width = 80
	}

	narrowMode := width < 80

	var cardWidth int
	if narrowMode {
		// 2 cards per row: split width evenly between 2 cards.
		cardWidth = (width - 4) / 2
		if cardWidth < 10 {
			cardWidth = 10
		}
	} else {
		cardWidth = (width - 14) / 7
		if cardWidth < 8 {
			cardWidth = 8
		}
	}

	// Mini bar inner width: card width minus padding (1 char each side).
	barWidth := cardWidth - 4
	if barWidth < 4 {
		barWidth = 4
	}

	summary := app.snap.Summarize()

	// Card 1: Network Status — colored background.
	label := healthLabel(app.health)
	var statusBg lipgloss.Color
	switch label {
	case "optimal":
		statusBg = colorGreen
	case "degraded":
		statusBg = colorYellow
	default:
		statusBg = colorRed
	}
	card1 := StyleOverviewCard.
		Background(statusBg).
		Foreground(colorDark).
		Bold(true).
		Width(cardWidth).
		Render(strings.ToUpper(label) + "\nStatus")

	// Card 2: Health score with mini bar.
	card2 := severityCardStyle().
		Foreground(statusBg).
		Width(cardWidth).
		Render(fmt.Sprintf("%.1f", app.health) + "\n" + renderMiniBar(app.health, barWidth) + "\nHealth")

	// Card 3: Healthy node count — blue foreground.
	card3 := StyleOverviewCard.
		Foreground(colorBlue).
		Width(cardWidth).
		Render(fmt.Sprintf("%d/%d", summary.HealthyNodes, summary.NodeCount) + "\nNodes OK")

	// Card 4: Anomalies — purple normally, red when any are critical.
	anomalyFg := colorPurple
	for _, a := range app.anomalies {
		if a.Severity == "critical" {
			anomalyFg = colorRed
			break
		}
	}
	card4 := StyleOverviewCard.
		Foreground(anomalyFg).
		Width(cardWidth).
		Render(fmt.Sprintf("%d", len(app.anomalies)) + "\nAnomalies")

	// Card 5: Actions executed in the last cycle — cyan foreground.
	batch := app.last.Phases.Action.Summary
	card5 := StyleOverviewCard.
		Foreground(colorCyan).
		Width(cardWidth).
		Render(fmt.Sprintf("%d/%d", batch.Successful, batch.Total) + "\nActions")

	// Card 6: Avg CPU% with mini bar — threshold-colored via cpuSeverity.
	cpuSev := cpuSeverity(summary.AvgCPU)
	cpuVal := fmt.Sprintf("%.1f%%", summary.AvgCPU)
	if cpuSev == severityCritical {
		cpuVal += "!"
	}
	card6 := severityCardStyle().
		Foreground(severityColor(cpuSev)).
		Width(cardWidth).
		Render(cpuVal + "\n" + renderMiniBar(summary.AvgCPU, barWidth) + "\nCPU")

	// Card 7: Avg memory% with mini bar — threshold-colored via memorySeverity.
	memSev := memorySeverity(summary.AvgMemory)
	memVal := fmt.Sprintf("%.1f%%", summary.AvgMemory)
	if memSev == severityCritical {
		memVal += "!"
	}
	card7 := severityCardStyle().
		Foreground(severityColor(memSev)).
		Width(cardWidth).
		Render(memVal + "\n" + renderMiniBar(summary.AvgMemory, barWidth) + "\nMemory")

	if narrowMode {
		// Arrange 7 cards in rows of 2 (4 rows: 2+2+2+1).
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, card1, card2)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, card3, card4)
		row3 := lipgloss.JoinHorizontal(lipgloss.Top, card5, card6)
		return lipgloss.JoinVertical(lipgloss.Left, row1, row2, row3, card7)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, card1, card2, card3, card4, card5, card6, card7)
}

// severityCardStyle is StyleOverviewCard without a fixed foreground, so the
// caller can apply threshold coloring.
func severityCardStyle() lipgloss.Style {
	return StyleOverviewCard
}

// renderMiniBar renders a mini progress bar using Unicode block characters.
// Fills proportionally using "█" (U+2588) for filled and "░" (U+2591) for empty cells.
func renderMiniBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
