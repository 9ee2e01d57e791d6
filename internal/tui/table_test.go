package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDigitToCol(t *testing.T) {
	assert.Equal(t, 0, digitToCol("1"))
	assert.Equal(t, 8, digitToCol("9"))
	assert.Equal(t, -1, digitToCol("0"))
	assert.Equal(t, -1, digitToCol("a"))
	assert.Equal(t, -1, digitToCol("12"))
	assert.Equal(t, -1, digitToCol(""))
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 1, pageCount(0, 10))
	assert.Equal(t, 1, pageCount(10, 10))
	assert.Equal(t, 2, pageCount(11, 10))
	assert.Equal(t, 3, pageCount(25, 10))
	assert.Equal(t, 1, pageCount(5, 0))
}

func TestPageBounds(t *testing.T) {
	start, end := pageBounds(25, 0, 10)
	assert.Equal(t, 0, start)
	assert.Equal(t, 10, end)

	start, end = pageBounds(25, 2, 10)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	// Out-of-range page wraps back to the first page.
	start, end = pageBounds(25, 9, 10)
	assert.Equal(t, 0, start)
	assert.Equal(t, 10, end)
}

func TestTableModel_SortKeyTogglesDirection(t *testing.T) {
	m := newTableModel([]columnDef{{Title: "A"}, {Title: "B"}})

	m, _ = m.Update(keyRunes("2"))
	assert.Equal(t, 1, m.sortCol)
	assert.True(t, m.sortDesc)

	// Same column again flips direction.
	m, _ = m.Update(keyRunes("2"))
	assert.Equal(t, 1, m.sortCol)
	assert.False(t, m.sortDesc)

	// Switching column resets to descending.
	m, _ = m.Update(keyRunes("1"))
	assert.Equal(t, 0, m.sortCol)
	assert.True(t, m.sortDesc)
}

func TestTableModel_SortKeyOutOfRangeIgnored(t *testing.T) {
	m := newTableModel([]columnDef{{Title: "A"}, {Title: "B"}})
	m.sortCol = 1

	m, _ = m.Update(keyRunes("9"))
	assert.Equal(t, 1, m.sortCol)
}

func TestTableModel_Paging(t *testing.T) {
	m := newTableModel([]columnDef{{Title: "A"}})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.page, "prev page clamps at 0")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.page)

	m.clampPage(5) // one page of data pulls the index back
	assert.Equal(t, 0, m.page)
}
