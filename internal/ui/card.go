package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskcards/internal/imageref"
	"taskcards/internal/task"
)

// Card is everything a rendered card shows, derived from one task.
type Card struct {
	TaskID      int64
	Tag         string
	Title       string
	Description string
	Due         string
	Image       string
	Importance  int
	Badge       task.Class
	Completed   bool
	Action      string
}

func NewCard(t task.Task) Card {
	c := Card{
		TaskID:      t.ID,
		Tag:         "Task",
		Title:       t.Name,
		Description: t.Description,
		Due:         "Due: " + task.FormatDate(t.Deadline),
		Image:       imageref.Describe(t.ImageRef),
		Completed:   t.Completed,
		Action:      "Complete",
	}
	if t.Completed {
		c.Action = "Undo"
	}
	return c.withImportance(t.Importance)
}

// withImportance refreshes only the priority badge.
func (c Card) withImportance(v int) Card {
	c.Importance = v
	c.Badge = task.ImportanceClass(v)
	return c
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	selectedCardStyle = cardStyle.
				BorderForeground(lipgloss.Color("63"))

	completedCardStyle = cardStyle.
				BorderForeground(lipgloss.Color("237")).
				Faint(true)

	tagStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	doneTitleStyle = titleStyle.Strikethrough(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	actionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	badgeStyles = map[task.Class]lipgloss.Style{
		task.ClassLow:    lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42")),
		task.ClassMedium: lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")),
		task.ClassHigh:   lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("196")),
	}
)

func renderCard(c Card, selected bool, width int) string {
	style := cardStyle
	switch {
	case selected:
		style = selectedCardStyle
	case c.Completed:
		style = completedCardStyle
	}
	inner := max(width-style.GetHorizontalFrameSize(), 10)

	header := tagStyle.Render(c.Tag)
	marker := "⋮"
	if c.Completed {
		marker = "✓ ⋮"
	}
	gap := max(inner-lipgloss.Width(header)-lipgloss.Width(marker), 1)
	header += strings.Repeat(" ", gap) + marker

	title := titleStyle
	if c.Completed {
		title = doneTitleStyle
	}

	footerLeft := "⚑ Priority " + badgeStyles[c.Badge].Render(fmt.Sprintf("%d", c.Importance))
	footerRight := actionStyle.Render("[" + c.Action + "]")
	gap = max(inner-lipgloss.Width(footerLeft)-lipgloss.Width(footerRight), 1)
	footer := footerLeft + strings.Repeat(" ", gap) + footerRight

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		mutedStyle.Render("▣ "+c.Image),
		"",
		title.Width(inner).Render(c.Title),
		lipgloss.NewStyle().Width(inner).Render(c.Description),
		mutedStyle.Render(c.Due),
		"",
		footer,
	)
	return style.Width(inner + style.GetHorizontalPadding()).Render(body)
}
