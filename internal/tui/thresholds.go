package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/netopt-go/internal/health"
)

// severity represents the alert level for a metric value.
type severity int

const (
	severityNormal   severity = iota
	severityWarning           // yellow
	severityCritical          // red
)

// latencySeverity mirrors the anomaly detector's latency tiers.
func latencySeverity(ms float64) severity {
	switch {
	case ms > health.LatencyCrit:
		return severityCritical
	case ms > health.LatencyWarn:
		return severityWarning
	default:
		return severityNormal
	}
}

// lossSeverity returns Critical for any packet loss above the detector threshold.
func lossSeverity(pct float64) severity {
	if pct > health.PacketLossMax {
		return severityCritical
	}
	return severityNormal
}

// bandwidthSeverity returns Warning when bandwidth drops below the floor.
func bandwidthSeverity(mbps float64) severity {
	if mbps < health.BandwidthMin {
		return severityWarning
	}
	return severityNormal
}

// cpuSeverity mirrors the anomaly detector's CPU tiers.
func cpuSeverity(pct float64) severity {
	switch {
	case pct >= health.ResourceCrit:
		return severityCritical
	case pct > health.CPUWarn:
		return severityWarning
	default:
		return severityNormal
	}
}

// memorySeverity mirrors the anomaly detector's memory tiers.
func memorySeverity(pct float64) severity {
	switch {
	case pct >= health.ResourceCrit:
		return severityCritical
	case pct > health.MemoryWarn:
		return severityWarning
	default:
		return severityNormal
	}
}

// severityToStyle maps a severity level to the appropriate lipgloss style.
func severityToStyle(s severity) lipgloss.Style {
	switch s {
	case severityWarning:
		return StyleYellow
	case severityCritical:
		return StyleRed
	default:
		return lipgloss.NewStyle()
	}
}

// severityColor maps a severity level to its base color, defaulting to green.
func severityColor(s severity) lipgloss.Color {
	switch s {
	case severityWarning:
		return colorYellow
	case severityCritical:
		return colorRed
	default:
		return colorGreen
	}
}
