package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"taskcards/internal/config"
)

type keyMap struct {
	Quit           key.Binding
	Add            key.Binding
	Up             key.Binding
	Down           key.Binding
	Left           key.Binding
	Right          key.Binding
	Toggle         key.Binding
	Delete         key.Binding
	Menu           key.Binding
	PriorityUp     key.Binding
	SortCycle      key.Binding
	SortNone       key.Binding
	SortImportance key.Binding
	SortDeadline   key.Binding
	SortName       key.Binding
	Confirm        key.Binding
	Cancel         key.Binding
	NextField      key.Binding
	PrevField      key.Binding
}

func label(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func newKeyMap(k config.Keymap) keyMap {
	return keyMap{
		Quit:           key.NewBinding(key.WithKeys(k.Quit, "ctrl+c"), key.WithHelp(label(k.Quit), "quit")),
		Add:            key.NewBinding(key.WithKeys(k.Add), key.WithHelp(label(k.Add), "add")),
		Up:             key.NewBinding(key.WithKeys(k.Up, "up"), key.WithHelp("↑/"+label(k.Up), "up")),
		Down:           key.NewBinding(key.WithKeys(k.Down, "down"), key.WithHelp("↓/"+label(k.Down), "down")),
		Left:           key.NewBinding(key.WithKeys(k.Left, "left"), key.WithHelp("←/"+label(k.Left), "left")),
		Right:          key.NewBinding(key.WithKeys(k.Right, "right"), key.WithHelp("→/"+label(k.Right), "right")),
		Toggle:         key.NewBinding(key.WithKeys(k.Toggle), key.WithHelp(label(k.Toggle), "complete/undo")),
		Delete:         key.NewBinding(key.WithKeys(k.Delete), key.WithHelp(label(k.Delete), "delete")),
		Menu:           key.NewBinding(key.WithKeys(k.Menu), key.WithHelp(label(k.Menu), "menu")),
		PriorityUp:     key.NewBinding(key.WithKeys(k.PriorityUp), key.WithHelp(label(k.PriorityUp), "priority")),
		SortCycle:      key.NewBinding(key.WithKeys(k.SortCycle), key.WithHelp(label(k.SortCycle), "sort")),
		SortNone:       key.NewBinding(key.WithKeys(k.SortNone), key.WithHelp(label(k.SortNone), "unsorted")),
		SortImportance: key.NewBinding(key.WithKeys(k.SortImportance), key.WithHelp(label(k.SortImportance), "by importance")),
		SortDeadline:   key.NewBinding(key.WithKeys(k.SortDeadline), key.WithHelp(label(k.SortDeadline), "by deadline")),
		SortName:       key.NewBinding(key.WithKeys(k.SortName), key.WithHelp(label(k.SortName), "by name")),
		Confirm:        key.NewBinding(key.WithKeys(k.Confirm), key.WithHelp(label(k.Confirm), "save")),
		Cancel:         key.NewBinding(key.WithKeys(k.Cancel), key.WithHelp(label(k.Cancel), "close")),
		NextField:      key.NewBinding(key.WithKeys(k.NextField), key.WithHelp(label(k.NextField), "next field")),
		PrevField:      key.NewBinding(key.WithKeys(k.PrevField), key.WithHelp(label(k.PrevField), "prev field")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.PriorityUp, k.Delete, k.Menu, k.SortCycle, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Add, k.Toggle, k.PriorityUp, k.Delete, k.Menu},
		{k.SortCycle, k.SortNone, k.SortImportance, k.SortDeadline, k.SortName},
		{k.Quit},
	}
}

// formKeys is the help shown while the create form is open.
type formKeys struct{ keyMap }

func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.PrevField, k.Confirm, k.Cancel}
}

func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
