package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the top header bar with title, health status, and cycle info.
//
// Layout:
//   left:   "Network Optimizer  [backend]"
//   center: colored "● STATUS  87.3" health indicator ("● PAUSED" suffix when paused)
//   right:  "Cycle #N  Last: HH:MM:SS  Poll: Ns"
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	left := "Network Optimizer"
	if app.status.Backend != "" {
		left += "  [" + app.status.Backend + "]"
	}

	var center string
	if app.cycles == 0 {
		center = StyleDim.Render("● WAITING")
	} else {
		label := healthLabel(app.health)
		center = StatusStyle(label).Render(fmt.Sprintf("● %s  %.1f", strings.ToUpper(label), app.health))
		if app.paused {
			center += "  " + StyleDim.Render("PAUSED")
		}
	}

	lastStr := "--:--:--"
	if !app.lastCycle.IsZero() {
		lastStr = app.lastCycle.Format("15:04:05")
	}
	right := StyleDim.Render(fmt.Sprintf("Cycle #%d  Last: %s  Poll: %s",
		app.cycles, lastStr, formatDuration(app.pollInterval)))

	// Build row: left + padding + center + padding + right, filling innerWidth.
	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	spacing := innerWidth - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right

	return StyleHeader.Width(width).Render(row)
}

// formatDuration formats a poll interval as a compact string, e.g. "10s" or "2m".
func formatDuration(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
