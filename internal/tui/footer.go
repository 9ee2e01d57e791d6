package tui

// renderFooter draws the bottom hint bar at full terminal width. The long
// form lists every binding; the short form keeps the dashboard quiet while
// cycles run, and calls out the paused state so a stalled loop is obvious.
func renderFooter(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}
	if app.showHelp {
		return StyleDim.Width(width).Render(helpText)
	}
	hint := "? for help"
	if app.paused {
		hint = "paused, p to resume  ·  ? for help"
	}
	return StyleDim.Width(width).Render(hint)
}
