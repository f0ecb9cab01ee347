package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"taskcards/internal/config"
	"taskcards/internal/imageref"
	"taskcards/internal/session"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeMenu
)

type actionKind int

const (
	actionDelete actionKind = iota
	actionToggle
	actionBump
)

// cardAction targets a task by id rather than by its position on screen.
type cardAction struct {
	kind actionKind
	id   int64
}

type imageLoadedMsg imageref.Result

// pendingCreate is a submitted form waiting on its image decode.
type pendingCreate struct {
	token string
	draft session.Draft
}

type Model struct {
	sess   *session.Session
	cfg    config.Config
	keys   keyMap
	log    *logrus.Entry
	loader *imageref.Loader

	cards   []Card
	cursor  int
	sortKey session.SortKey
	mode    mode
	form    form
	pending *pendingCreate
	spinner spinner.Model
	help    help.Model
	width   int
	height  int
	status  string
}

func NewModel(sess *session.Session, cfg config.Config, log *logrus.Entry) (Model, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	m := Model{
		sess:    sess,
		cfg:     cfg,
		keys:    newKeyMap(cfg.Keys),
		log:     log,
		loader:  imageref.NewLoader(cfg.DecodeTimeout()).WithMaxBytes(cfg.MaxImageBytes),
		sortKey: session.ParseSortKey(cfg.DefaultSort),
		mode:    modeList,
		form:    newForm(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		status:  fmt.Sprintf("Press '%s' to add, %s to complete, '%s' to delete.", cfg.Keys.Add, label(cfg.Keys.Toggle), cfg.Keys.Delete),
	}
	if err := m.refresh(); err != nil {
		return m, err
	}
	return m, nil
}

func Run(sess *session.Session, cfg config.Config, log *logrus.Entry) error {
	m, err := NewModel(sess, cfg, log)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

// resetView drops any sorted view and rebuilds the cards in insertion order.
func (m *Model) resetView() error {
	m.sortKey = session.SortNone
	return m.refresh()
}

// refresh rebuilds every card from the collection in the current sort order.
func (m *Model) refresh() error {
	tasks, err := m.sess.View(m.sortKey)
	if err != nil {
		return err
	}
	m.cards = buildCards(tasks)
	m.cursor = clampCursor(m.cursor, len(m.cards))
	return nil
}

func (m Model) selectedID() (int64, bool) {
	if len(m.cards) == 0 {
		return 0, false
	}
	return m.cards[clampCursor(m.cursor, len(m.cards))].TaskID, true
}

func (m Model) indexOf(id int64) int {
	for i, c := range m.cards {
		if c.TaskID == id {
			return i
		}
	}
	return -1
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAddMode(msg)
		case modeMenu:
			return m.updateMenuMode(msg)
		}
		return m.updateListMode(msg)
	case imageLoadedMsg:
		return m.imageLoaded(msg)
	case spinner.TickMsg:
		if m.pending == nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.form.setWidth(max(msg.Width-16, 20))
	}
	return m, nil
}

func (m Model) updateListMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := columns(m.gridWidth())
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.loader.Cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		if m.cursor+cols < len(m.cards) {
			m.cursor += cols
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor-cols >= 0 {
			m.cursor -= cols
		}
	case key.Matches(msg, m.keys.Right):
		m.cursor = clampCursor(m.cursor+1, len(m.cards))
	case key.Matches(msg, m.keys.Left):
		m.cursor = clampCursor(m.cursor-1, len(m.cards))
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.status = "Add mode: fill in the fields and press " + label(m.cfg.Keys.Confirm)
		return m, m.form.open()
	case key.Matches(msg, m.keys.Toggle):
		return m.dispatchSelected(actionToggle)
	case key.Matches(msg, m.keys.Delete):
		return m.dispatchSelected(actionDelete)
	case key.Matches(msg, m.keys.PriorityUp):
		return m.dispatchSelected(actionBump)
	case key.Matches(msg, m.keys.Menu):
		if len(m.cards) > 0 {
			m.mode = modeMenu
		}
	case key.Matches(msg, m.keys.SortCycle):
		return m.sortBy(m.sortKey.Next())
	case key.Matches(msg, m.keys.SortNone):
		return m.sortBy(session.SortNone)
	case key.Matches(msg, m.keys.SortImportance):
		return m.sortBy(session.SortImportance)
	case key.Matches(msg, m.keys.SortDeadline):
		return m.sortBy(session.SortDeadline)
	case key.Matches(msg, m.keys.SortName):
		return m.sortBy(session.SortName)
	}
	return m, nil
}

func (m Model) updateMenuMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Delete):
		m.mode = modeList
		return m.dispatchSelected(actionDelete)
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Menu):
		m.mode = modeList
	}
	return m, nil
}

func (m Model) dispatchSelected(kind actionKind) (tea.Model, tea.Cmd) {
	id, ok := m.selectedID()
	if !ok {
		return m, nil
	}
	return m.dispatch(cardAction{kind: kind, id: id}), nil
}

// dispatch applies a card action. Delete and toggle rebuild the whole list in
// insertion order; a priority bump only patches the affected card.
func (m Model) dispatch(a cardAction) Model {
	switch a.kind {
	case actionDelete:
		if err := m.sess.Remove(a.id); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
			return m
		}
		m.status = "Deleted task"
	case actionToggle:
		t, err := m.sess.ToggleCompleted(a.id)
		if err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m
		}
		m.status = "Marked pending"
		if t.Completed {
			m.status = "Completed task"
		}
	case actionBump:
		t, err := m.sess.IncrementImportance(a.id)
		if err != nil {
			m.status = fmt.Sprintf("priority failed: %v", err)
			return m
		}
		if i := m.indexOf(a.id); i >= 0 {
			m.cards[i] = m.cards[i].withImportance(t.Importance)
		}
		m.status = fmt.Sprintf("Priority %d", t.Importance)
		return m
	}
	if err := m.resetView(); err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
	}
	return m
}

func (m Model) sortBy(k session.SortKey) (tea.Model, tea.Cmd) {
	m.sortKey = k
	if err := m.refresh(); err != nil {
		m.status = fmt.Sprintf("sort failed: %v", err)
		return m, nil
	}
	m.cursor = 0
	m.status = "Sorted by " + k.String()
	return m, nil
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.loader.Cancel()
		m.pending = nil
		m.form.reset()
		m.mode = modeList
		m.status = "Cancelled"
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		return m, m.form.move(1)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.form.move(-1)
	case key.Matches(msg, m.keys.Confirm):
		return m.submit()
	default:
		return m, m.form.update(msg)
	}
}

// submit creates the task, or starts decoding its image first. A blank name
// does nothing and leaves the form open.
func (m Model) submit() (tea.Model, tea.Cmd) {
	d := m.form.draft()
	if strings.TrimSpace(d.Name) == "" {
		return m, nil
	}
	if !d.HasImage() {
		return m.finishCreate(d, "")
	}
	token, run := m.loader.Begin(context.Background(), d.ImagePath)
	m.pending = &pendingCreate{token: token, draft: d}
	m.log.WithFields(logrus.Fields{"token": token, "path": d.ImagePath}).Debug("image decode started")
	decode := func() tea.Msg { return imageLoadedMsg(run()) }
	return m, tea.Batch(m.spinner.Tick, decode)
}

func (m Model) imageLoaded(msg imageLoadedMsg) (tea.Model, tea.Cmd) {
	if m.pending == nil || !m.loader.Current(msg.Token) || msg.Token != m.pending.token {
		m.log.WithField("token", msg.Token).Debug("stale image decode dropped")
		return m, nil
	}
	m.loader.Finish(msg.Token)
	p := m.pending
	m.pending = nil
	if msg.Err != nil {
		m.log.WithError(msg.Err).WithField("path", p.draft.ImagePath).Warn("image decode failed")
		return m, nil
	}
	return m.finishCreate(p.draft, msg.Ref)
}

func (m Model) finishCreate(d session.Draft, imageRef string) (tea.Model, tea.Cmd) {
	t, ok, err := m.sess.Create(d, imageRef)
	if err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	if !ok {
		return m, nil
	}
	if err := m.resetView(); err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
	} else if i := m.indexOf(t.ID); i >= 0 {
		m.cursor = i
		m.status = "Added task"
	}
	m.form.reset()
	m.mode = modeList
	return m, nil
}

func (m Model) gridWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("63")).Padding(0, 1)
	menuStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("196")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Tasks"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  sort: %s · %d tasks", m.sortKey, len(m.cards))))
	b.WriteString("\n\n")

	var footer strings.Builder
	footer.WriteString("\n")
	footer.WriteString(statusStyle.Render(m.status))
	footer.WriteString("\n")
	if m.mode == modeAdd {
		footer.WriteString(m.help.View(formKeys{m.keys}))
	} else {
		footer.WriteString(m.help.View(m.keys))
	}

	switch {
	case m.mode == modeAdd:
		busy := ""
		if m.pending != nil {
			busy = m.spinner.View() + " loading image…"
		}
		b.WriteString(m.form.view(busy))
	case len(m.cards) == 0:
		b.WriteString("No tasks yet. Press '" + m.cfg.Keys.Add + "' to add one.")
	default:
		height := 0
		if m.height > 0 {
			height = max(m.height-lipgloss.Height(b.String())-lipgloss.Height(footer.String())-1, 3)
		}
		b.WriteString(renderGrid(m.cards, m.cursor, m.gridWidth(), height))
	}

	if m.mode == modeMenu {
		b.WriteString("\n")
		b.WriteString(m.renderMenu())
	}

	b.WriteString("\n")
	b.WriteString(footer.String())
	return b.String()
}

func (m Model) renderMenu() string {
	id, ok := m.selectedID()
	if !ok {
		return ""
	}
	title := m.cards[m.indexOf(id)].Title
	return menuStyle.Render(fmt.Sprintf("%s\n> Delete  (%s confirm · %s close)",
		title, label(m.cfg.Keys.Confirm), label(m.cfg.Keys.Cancel)))
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
