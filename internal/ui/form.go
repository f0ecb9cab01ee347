package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskcards/internal/session"
)

const (
	fieldName = iota
	fieldDescription
	fieldDeadline
	fieldPriority
	fieldImage
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Name *",
	"Description",
	"Deadline (YYYY-MM-DD)",
	"Priority",
	"Image file",
}

type form struct {
	inputs [fieldCount]textinput.Model
	focus  int
}

func newForm() form {
	placeholders := [fieldCount]string{
		"What needs doing?",
		"optional",
		"today",
		"0",
		"path to an image, optional",
	}
	var f form
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 256
		ti.Width = 40
		ti.Prompt = "> "
		f.inputs[i] = ti
	}
	f.inputs[fieldPriority].CharLimit = 4
	f.inputs[fieldDeadline].CharLimit = 10
	return f
}

func (f *form) open() tea.Cmd {
	f.focus = fieldName
	return f.inputs[f.focus].Focus()
}

// reset clears every field, like resetting the form after a save.
func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
		f.inputs[i].Blur()
	}
	f.focus = fieldName
}

func (f *form) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) setWidth(w int) {
	for i := range f.inputs {
		f.inputs[i].Width = w
	}
}

func (f form) draft() session.Draft {
	return session.Draft{
		Name:        f.inputs[fieldName].Value(),
		Description: f.inputs[fieldDescription].Value(),
		Deadline:    f.inputs[fieldDeadline].Value(),
		Priority:    f.inputs[fieldPriority].Value(),
		ImagePath:   f.inputs[fieldImage].Value(),
	}
}

var (
	formStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2)
	formTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	activeLabel     = lipgloss.NewStyle().Bold(true)
	inactiveLabel   = mutedStyle
	formStatusStyle = mutedStyle.Italic(true)
)

func (f form) view(busy string) string {
	var b strings.Builder
	b.WriteString(formTitleStyle.Render("Add Task"))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		l := inactiveLabel
		if i == f.focus {
			l = activeLabel
		}
		b.WriteString(l.Render(fieldLabels[i]))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if busy != "" {
		b.WriteString("\n")
		b.WriteString(formStatusStyle.Render(busy))
	}
	return formStyle.Render(b.String())
}
