package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// sparkLevels are the block glyphs used to draw metric histories, lowest to
// highest.
var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline draws a metric history (oldest first) as a row of block
// glyphs exactly width runes wide. Shorter histories are left-padded with
// spaces and longer ones show only the most recent width samples. Bars are
// scaled against the window maximum, so a flat-zero series sits on the floor
// glyph.
func RenderSparkline(values []float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	out := make([]rune, width)
	for i := range out {
		out[i] = ' '
	}

	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}

	pad := width - len(values)
	for i, v := range values {
		lvl := 0
		if max > 0 {
			lvl = int(v / max * float64(len(sparkLevels)-1))
		}
		if lvl < 0 {
			lvl = 0
		} else if lvl >= len(sparkLevels) {
			lvl = len(sparkLevels) - 1
		}
		out[pad+i] = sparkLevels[lvl]
	}

	return lipgloss.NewStyle().Foreground(color).Render(string(out))
}
