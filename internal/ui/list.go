package ui

import (
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"taskcards/internal/task"
)

const (
	defaultWidth = 100
	minCardWidth = 30
)

// buildCards derives a fresh card for every task, in order. Nothing from a
// previous render survives.
func buildCards(tasks []task.Task) []Card {
	cards := make([]Card, 0, len(tasks))
	for _, t := range tasks {
		cards = append(cards, NewCard(t))
	}
	return cards
}

// columns picks one, two or three cards per row depending on width.
func columns(width int) int {
	switch {
	case width >= 3*minCardWidth+12:
		return 3
	case width >= 2*minCardWidth+8:
		return 2
	default:
		return 1
	}
}

// renderRows lays cards out as grid rows and reports which row holds the
// selected card.
func renderRows(cards []Card, selected, width int) ([]string, int) {
	cols := columns(width)
	cardWidth := width / cols
	var rows []string
	selectedRow := 0
	for start := 0; start < len(cards); start += cols {
		end := min(start+cols, len(cards))
		cells := make([]string, 0, cols)
		for i := start; i < end; i++ {
			cells = append(cells, renderCard(cards[i], i == selected, cardWidth))
			if i == selected {
				selectedRow = len(rows)
			}
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return rows, selectedRow
}

// renderGrid draws the cards into at most height lines, scrolled so the
// selected card stays visible. A non-positive height shows everything.
func renderGrid(cards []Card, selected, width, height int) string {
	if width <= 0 {
		width = defaultWidth
	}
	rows, selectedRow := renderRows(cards, selected, width)
	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if height <= 0 {
		return content
	}

	bottom := 0
	for i := 0; i <= selectedRow && i < len(rows); i++ {
		bottom += lipgloss.Height(rows[i])
	}
	vp := viewport.New(width, height)
	vp.SetContent(content)
	vp.SetYOffset(max(bottom-height, 0))
	return vp.View()
}
