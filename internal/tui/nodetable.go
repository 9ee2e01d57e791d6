package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/netopt-go/internal/format"
	"github.com/dm/netopt-go/internal/health"
	"github.com/dm/netopt-go/internal/model"
)

// nodeRow is one rendered row of the node table: a node's metrics plus its
// derived health score and anomaly count for this cycle.
type nodeRow struct {
	NodeID      string
	Latency     float64
	Bandwidth   float64
	PacketLoss  float64
	CPUUsage    float64
	MemoryUsage float64
	Connections int
	Health      float64
	Anomalies   int
}

// nodeRows builds table rows from a snapshot and the cycle's anomalies.
func nodeRows(snap model.Snapshot, anomalies []model.Anomaly) []nodeRow {
	counts := make(map[string]int, len(anomalies))
	for _, a := range anomalies {
		counts[a.NodeID]++
	}

	rows := make([]nodeRow, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		rows = append(rows, nodeRow{
			NodeID:      n.NodeID,
			Latency:     n.Latency,
			Bandwidth:   n.Bandwidth,
			PacketLoss:  n.PacketLoss,
			CPUUsage:    n.CPUUsage,
			MemoryUsage: n.MemoryUsage,
			Connections: n.Connections,
			Health:      health.NodeScore(n),
			Anomalies:   counts[n.NodeID],
		})
	}
	return rows
}

// NodeTableModel is a sortable, paginated table of per-node metrics.
type NodeTableModel struct {
	tableModel
	allRows     []nodeRow // unsorted source data
	displayRows []nodeRow // after sort applied
}

// NewNodeTable returns a NodeTableModel with 8-column layout and default
// sort by health score (col 8) ascending, so the sickest nodes sort first.
func NewNodeTable() NodeTableModel {
	cols := []columnDef{
		{Title: "Node", Width: 12},
		{Title: "Latency", Width: 10},
		{Title: "Bandwidth", Width: 11},
		{Title: "Loss%", Width: 7},
		{Title: "CPU%", Width: 7},
		{Title: "Mem%", Width: 7},
		{Title: "Conns", Width: 7},
		{Title: "Health", Width: 8},
	}
	m := NodeTableModel{
		tableModel: newTableModel(cols),
	}
	m.sortCol = 7 // Health
	m.sortDesc = false
	return m
}

// SetData applies the current sort to rows, storing the result as
// displayRows ready for rendering.
func (m *NodeTableModel) SetData(rows []nodeRow) {
	m.allRows = rows
	m.displayRows = sortNodeRows(rows, m.sortCol, m.sortDesc)
	m.clampPage(len(m.displayRows))
}

// Update handles keyboard events for sorting and pagination. It delegates to
// the embedded tableModel and re-applies the sort when the sort column or
// direction changes.
func (m NodeTableModel) Update(msg tea.Msg) (NodeTableModel, tea.Cmd) {
	prevSort := m.sortCol
	prevDesc := m.sortDesc

	base, cmd := m.tableModel.Update(msg)
	m.tableModel = base

	if m.sortCol != prevSort || m.sortDesc != prevDesc {
		m.displayRows = sortNodeRows(m.allRows, m.sortCol, m.sortDesc)
	}
	m.clampPage(len(m.displayRows))
	return m, cmd
}

// View renders the complete "Node Metrics" section: a header bar followed by
// the lipgloss table body for the current page.
func (m *NodeTableModel) View(width int) string {
	if len(m.allRows) == 0 {
		return ""
	}

	pc := pageCount(len(m.displayRows), m.pageSize)
	hdr := StyleDim.Render(fmt.Sprintf("Node Metrics  [1-8: sort]  [←→: page]  Page %d/%d", m.page+1, pc))

	// Build column header strings, appending a sort direction arrow to the
	// active sort column.
	headers := make([]string, len(m.columns))
	for i, c := range m.columns {
		if i == m.sortCol {
			arrow := "↓"
			if !m.sortDesc {
				arrow = "↑"
			}
			headers[i] = c.Title + arrow
		} else {
			headers[i] = c.Title
		}
	}

	start, end := pageBounds(len(m.displayRows), m.page, m.pageSize)
	page := m.displayRows[start:end]

	sortCol := m.sortCol
	rows := page
	t := ltable.New().
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				if col == sortCol {
					return lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
				}
				return lipgloss.NewStyle().Bold(true).Foreground(colorGray)
			}
			base := lipgloss.NewStyle()
			if row%2 == 0 {
				base = base.Background(colorAlt)
			}
			if row < 0 || row >= len(rows) {
				return base.Foreground(colorWhite)
			}
			r := rows[row]
			// Threshold coloring on the metric columns; identity columns
			// stay neutral.
			switch col {
			case 0:
				return base.Foreground(colorBlue)
			case 1:
				return base.Inherit(severityToStyle(latencySeverity(r.Latency)))
			case 2:
				return base.Inherit(severityToStyle(bandwidthSeverity(r.Bandwidth)))
			case 3:
				return base.Inherit(severityToStyle(lossSeverity(r.PacketLoss)))
			case 4:
				return base.Inherit(severityToStyle(cpuSeverity(r.CPUUsage)))
			case 5:
				return base.Inherit(severityToStyle(memorySeverity(r.MemoryUsage)))
			case 7:
				return base.Foreground(severityColor(healthSeverity(r.Health)))
			default:
				return base.Foreground(colorWhite)
			}
		}).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(false)

	if width > 0 {
		t = t.Width(width)
	}

	for _, r := range page {
		t = t.Row(
			r.NodeID,
			format.FormatLatency(r.Latency),
			format.FormatBandwidth(r.Bandwidth),
			format.FormatPercent(r.PacketLoss),
			format.FormatPercent(r.CPUUsage),
			format.FormatPercent(r.MemoryUsage),
			format.FormatNumber(int64(r.Connections)),
			fmt.Sprintf("%.1f", r.Health),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, hdr, t.String())
}

// healthSeverity maps a node health score to an alert level.
func healthSeverity(score float64) severity {
	switch {
	case score < 70:
		return severityCritical
	case score <= 90:
		return severityWarning
	default:
		return severityNormal
	}
}

// sortNodeRows returns rows ordered by the given column. Ties and the
// unsorted state (-1) preserve the incoming order.
func sortNodeRows(rows []nodeRow, col int, desc bool) []nodeRow {
	out := make([]nodeRow, len(rows))
	copy(out, rows)
	if col < 0 {
		return out
	}

	less := func(a, b nodeRow) bool {
		switch col {
		case 0:
			return strings.Compare(a.NodeID, b.NodeID) < 0
		case 1:
			return a.Latency < b.Latency
		case 2:
			return a.Bandwidth < b.Bandwidth
		case 3:
			return a.PacketLoss < b.PacketLoss
		case 4:
			return a.CPUUsage < b.CPUUsage
		case 5:
			return a.MemoryUsage < b.MemoryUsage
		case 6:
			return a.Connections < b.Connections
		default:
			return a.Health < b.Health
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}
