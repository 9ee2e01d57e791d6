package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// columnDef describes a single column in a table.
type columnDef struct {
	Title string
	Width int
}

// tableModel is the generic base for sortable, paginated tables.
type tableModel struct {
	columns  []columnDef
	sortCol  int // -1 = unsorted
	sortDesc bool
	page     int // 0-indexed
	pageSize int // default 10
}

// newTableModel initialises a tableModel with sensible defaults.
func newTableModel(cols []columnDef) tableModel {
	return tableModel{
		columns:  cols,
		sortCol:  -1,
		pageSize: 10,
	}
}

// Update handles keyboard input for sorting and pagination.
func (t tableModel) Update(msg tea.Msg) (tableModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}

	switch {
	case key.Matches(keyMsg, keys.PrevPage):
		if t.page > 0 {
			t.page--
		}
	case key.Matches(keyMsg, keys.NextPage):
		t.page++
	default:
		// Digit keys 1-9 → set sort column.
		col := digitToCol(keyMsg.String())
		if col >= 0 && col < len(t.columns) {
			if col == t.sortCol {
				t.sortDesc = !t.sortDesc
			} else {
				t.sortCol = col
				t.sortDesc = true // default: descending for new column
			}
			t.page = 0
		}
	}
	return t, nil
}

// digitToCol converts a "1"-"9" key string to a 0-indexed column number.
// Returns -1 for any other string.
func digitToCol(s string) int {
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '1')
	}
	return -1
}

// pageCount returns the total number of pages for totalRows rows at pageSize
// rows per page. Always at least 1.
func pageCount(totalRows, pageSize int) int {
	if totalRows == 0 || pageSize <= 0 {
		return 1
	}
	c := totalRows / pageSize
	if totalRows%pageSize != 0 {
		c++
	}
	return c
}

// pageBounds returns the [start, end) row range visible on the current page.
func pageBounds(totalRows, page, pageSize int) (int, int) {
	if pageSize <= 0 || totalRows == 0 {
		return 0, totalRows
	}
	start := page * pageSize
	if start >= totalRows {
		start = 0
	}
	end := start + pageSize
	if end > totalRows {
		end = totalRows
	}
	return start, end
}

// clampPage ensures the page index stays within valid bounds given the total
// number of rows and the configured pageSize.
func (t *tableModel) clampPage(totalRows int) {
	pc := pageCount(totalRows, t.pageSize)
	if t.page >= pc {
		t.page = pc - 1
	}
	if t.page < 0 {
		t.page = 0
	}
}
