package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// renderMetricsRow renders the four trend cards: health score, average
// latency, average packet loss, and average CPU, each with a sparkline of
// the recent cycles. Returns empty until the first cycle completes.
func renderMetricsRow(app *App) string {
	if app.cycles == 0 {
		return ""
	}

	label := StyleDim.Render("Network Trends")

	summary := app.snap.Summarize()

	// Threshold-based title styles: normal severity keeps the dim style,
	// warning/critical apply alert colors.
	latTitleStyle := alertTitleStyle(latencySeverity(summary.AvgLatency))
	lossTitleStyle := alertTitleStyle(lossSeverity(summary.AvgPacketLoss))
	cpuTitleStyle := alertTitleStyle(cpuSeverity(summary.AvgCPU))

	healthVal := fmt.Sprintf("%.1f", app.health)
	latVal := fmt.Sprintf("%.1f ms", summary.AvgLatency)
	lossVal := fmt.Sprintf("%.2f%%", summary.AvgPacketLoss)
	cpuVal := fmt.Sprintf("%.1f%%", summary.AvgCPU)

	if app.width > 0 && app.width < 80 {
		// 2x2 grid layout for narrow terminals.
		// Each card renders at (cardWidth-2) chars wide (lipgloss Width includes
		// padding, border adds 2). For 2 cards to fill app.width:
		// 2*(cardWidth-2)=app.width → cardWidth=(app.width+4)/2. Widths below
		// the minimum card size return empty instead of overflowing.
		cardWidth := (app.width + 4) / 2
		if cardWidth < 8 {
			return ""
		}
		narrowLabel := StyleDim.MaxWidth(app.width).Render("Network Trends")
		top := lipgloss.JoinHorizontal(lipgloss.Top,
			renderMetricCard("Health Score", healthVal, "", app.healthHist.Items(), cardWidth, colorGreen, StyleDim),
			renderMetricCard("Avg Latency", latVal, "", app.latHist.Items(), cardWidth, colorYellow, latTitleStyle),
		)
		bottom := lipgloss.JoinHorizontal(lipgloss.Top,
			renderMetricCard("Packet Loss", lossVal, "", app.lossHist.Items(), cardWidth, colorRed, lossTitleStyle),
			renderMetricCard("Avg CPU", cpuVal, "", app.cpuHist.Items(), cardWidth, colorCyan, cpuTitleStyle),
		)
		return lipgloss.JoinVertical(lipgloss.Left, narrowLabel, top, bottom)
	}

	// 1x4 horizontal row for wide terminals.
	cardWidth := (app.width + 8) / 4
	if cardWidth < 20 {
		cardWidth = 20
	}

	cards := []string{
		renderMetricCard("Health Score", healthVal, "", app.healthHist.Items(), cardWidth, colorGreen, StyleDim),
		renderMetricCard("Avg Latency", latVal, "", app.latHist.Items(), cardWidth, colorYellow, latTitleStyle),
		renderMetricCard("Packet Loss", lossVal, "", app.lossHist.Items(), cardWidth, colorRed, lossTitleStyle),
		renderMetricCard("Avg CPU", cpuVal, "", app.cpuHist.Items(), cardWidth, colorCyan, cpuTitleStyle),
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	return lipgloss.JoinVertical(lipgloss.Left, label, row)
}

// alertTitleStyle returns the card title style for a severity level.
func alertTitleStyle(s severity) lipgloss.Style {
	if s == severityNormal {
		return StyleDim
	}
	return severityToStyle(s).Bold(true)
}

// renderMetricCard renders a single metric card with title, value, and sparkline.
//
// Layout (3 rows inside a rounded border):
//
//	╭──────────────────╮
//	│ Title            │   ← titleStyle (dim normally; yellow/red when degraded)
//	│ 24.8 ms          │   ← bold, metric color
//	│ ▁▂▃▅▇█▇▅▃▂       │   ← colored sparkline of recent cycles
//	╰──────────────────╯
func renderMetricCard(title, value, unit string, sparkValues []float64, cardWidth int, color lipgloss.Color, titleStyle lipgloss.Style) string {
	// Minimum of 8 avoids zero/negative Width() args.
	const minCardWidth = 8
	if cardWidth < minCardWidth {
		cardWidth = minCardWidth
	}

	// Inner width = card width minus border (2) and padding (2).
	// lipgloss Width() includes padding in its measurement, so available content
	// width = Width - padding = (cardWidth-4) - 2 = cardWidth-6.
	innerWidth := cardWidth - 6
	if innerWidth < 1 {
		innerWidth = 1
	}

	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(color)

	titleLine := titleStyle.Render(title)

	valueLine := valueStyle.Render(value)
	if unit != "" {
		valueLine = valueStyle.Render(value + " " + unit)
	}

	sparkLine := RenderSparkline(sparkValues, innerWidth, color)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Padding(0, 1).
		Width(cardWidth - 4)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleLine,
		valueLine,
		sparkLine,
	))
}
