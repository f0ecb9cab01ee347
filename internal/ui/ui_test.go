package ui

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskcards/internal/config"
	"taskcards/internal/session"
	"taskcards/internal/storage"
	"taskcards/internal/task"
)

var fixedNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.Local)

func newTestModel(t *testing.T) (Model, *session.Session) {
	t.Helper()
	store, err := storage.Open()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sess := session.New(store, session.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, sess.Seed())

	l := logrus.New()
	l.SetOutput(io.Discard)
	cfg := config.Default()
	cfg.LogPath = ""

	m, err := NewModel(sess, cfg, logrus.NewEntry(l))
	require.NoError(t, err)
	return m, sess
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func deliver(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// decodeResult runs the batch returned by submit and picks out the decode.
func decodeResult(t *testing.T, cmd tea.Cmd) imageLoadedMsg {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok, "expected a batch command")
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(imageLoadedMsg); ok {
			return msg
		}
	}
	t.Fatal("no image decode in batch")
	return imageLoadedMsg{}
}

func names(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Title
	}
	return out
}

func collectionSize(t *testing.T, sess *session.Session) int {
	t.Helper()
	tasks, err := sess.Tasks()
	require.NoError(t, err)
	return len(tasks)
}

func writePNG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cat.png")
	data := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 24)...)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestInitialRenderShowsSeedCards(t *testing.T) {
	m, _ := newTestModel(t)
	require.Len(t, m.cards, 5)

	first := m.cards[0]
	assert.Equal(t, "Take Dog for Walk", first.Title)
	assert.Equal(t, "dog.png", first.Image)
	assert.Equal(t, "Due: Jan 27, 2024", first.Due)
	assert.Equal(t, task.ClassMedium, first.Badge)
	assert.Equal(t, "Complete", first.Action)
}

func TestDeleteButtonRemovesSelectedTask(t *testing.T) {
	m, sess := newTestModel(t)
	victim := m.cards[0].TaskID

	m, _ = press(t, m, "d")

	assert.Len(t, m.cards, 4)
	assert.Equal(t, -1, m.indexOf(victim))
	assert.Equal(t, 4, collectionSize(t, sess))
}

func TestMenuDeleteRemovesSelectedTask(t *testing.T) {
	m, sess := newTestModel(t)
	m, _ = press(t, m, "l")
	victim := m.cards[1].TaskID

	m, _ = press(t, m, "m")
	assert.Equal(t, modeMenu, m.mode)
	m, _ = press(t, m, "enter")

	assert.Equal(t, modeList, m.mode)
	assert.Len(t, m.cards, 4)
	assert.Equal(t, -1, m.indexOf(victim))
	assert.Equal(t, 4, collectionSize(t, sess))
}

func TestMenuCloseKeepsTask(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "m", "esc")
	assert.Equal(t, modeList, m.mode)
	assert.Len(t, m.cards, 5)
}

func TestToggleCompleteTwice(t *testing.T) {
	m, sess := newTestModel(t)
	id := m.cards[0].TaskID

	m, _ = press(t, m, " ")
	assert.True(t, m.cards[0].Completed)
	assert.Equal(t, "Undo", m.cards[0].Action)
	got, err := sess.Get(id)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	m, _ = press(t, m, " ")
	assert.False(t, m.cards[0].Completed)
	assert.Equal(t, "Complete", m.cards[0].Action)
}

func TestPriorityBumpPatchesOnlyThatCard(t *testing.T) {
	m, sess := newTestModel(t)
	m, _ = press(t, m, "1")
	require.Equal(t, "Gym Session", m.cards[0].Title)
	before := names(m.cards)

	// Gym Session sits at the ceiling.
	m, _ = press(t, m, "+")
	assert.Equal(t, 5, m.cards[0].Importance)

	// Grocery Shopping (0) keeps its slot ahead of Project Deadline.
	idx := 3
	require.Equal(t, "Grocery Shopping", m.cards[idx].Title)
	m.cursor = idx
	m, _ = press(t, m, "+", "+")
	assert.Equal(t, 2, m.cards[idx].Importance)
	assert.Equal(t, task.ClassMedium, m.cards[idx].Badge)
	assert.Equal(t, before, names(m.cards), "bump must not reorder cards")

	got, err := sess.Get(m.cards[idx].TaskID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Importance)
}

func TestSortKeys(t *testing.T) {
	m, sess := newTestModel(t)
	canonical := names(m.cards)

	m, _ = press(t, m, "3")
	assert.Equal(t, []string{"Grocery Shopping", "Gym Session", "Project Deadline", "Take Dog for Walk", "Team Meeting"}, names(m.cards))

	m, _ = press(t, m, "2")
	assert.Equal(t, []string{"Take Dog for Walk", "Gym Session", "Grocery Shopping", "Team Meeting", "Project Deadline"}, names(m.cards))

	m, _ = press(t, m, "s")
	assert.Equal(t, session.SortName, m.sortKey)
	m, _ = press(t, m, "s")
	assert.Equal(t, session.SortNone, m.sortKey)
	assert.Equal(t, canonical, names(m.cards))

	tasks, err := sess.Tasks()
	require.NoError(t, err)
	assert.Equal(t, "Take Dog for Walk", tasks[0].Name)
}

func TestFullRerenderReturnsToInsertionOrder(t *testing.T) {
	m, sess := newTestModel(t)
	insertion := []string{"Take Dog for Walk", "Grocery Shopping", "Team Meeting", "Gym Session", "Project Deadline"}

	m, _ = press(t, m, "3")
	require.Equal(t, "Grocery Shopping", m.cards[0].Title)

	m, _ = press(t, m, " ")
	assert.Equal(t, session.SortNone, m.sortKey)
	assert.Equal(t, insertion, names(m.cards))
	tasks, err := sess.Tasks()
	require.NoError(t, err)
	for i, tk := range tasks {
		assert.Equal(t, tk.ID, m.cards[i].TaskID)
	}

	m, _ = press(t, m, "1")
	m.cursor = 0
	m, _ = press(t, m, "d")
	assert.Equal(t, session.SortNone, m.sortKey)
	assert.Equal(t, []string{"Take Dog for Walk", "Grocery Shopping", "Team Meeting", "Project Deadline"}, names(m.cards))

	m, _ = press(t, m, "3", "a")
	m.form.inputs[fieldName].SetValue("Buy milk")
	m, _ = press(t, m, "enter")
	assert.Equal(t, session.SortNone, m.sortKey)
	assert.Equal(t, []string{"Take Dog for Walk", "Grocery Shopping", "Team Meeting", "Project Deadline", "Buy milk"}, names(m.cards))
	assert.Equal(t, "Buy milk", m.cards[m.cursor].Title)
}

func TestCreateWithoutImage(t *testing.T) {
	m, sess := newTestModel(t)

	m, _ = press(t, m, "a")
	require.Equal(t, modeAdd, m.mode)
	m.form.inputs[fieldName].SetValue("Buy milk")
	m, _ = press(t, m, "enter")

	assert.Equal(t, modeList, m.mode)
	assert.Empty(t, m.form.inputs[fieldName].Value())
	require.Len(t, m.cards, 6)
	assert.Equal(t, 6, collectionSize(t, sess))

	c := m.cards[m.cursor]
	assert.Equal(t, "Buy milk", c.Title)
	assert.Equal(t, 0, c.Importance)
	assert.Equal(t, "task.png", c.Image)
	assert.Equal(t, "Due: "+task.FormatDate(fixedNow), c.Due)
	assert.False(t, c.Completed)
}

func TestCreateWithEmptyNameStaysOpen(t *testing.T) {
	m, sess := newTestModel(t)

	m, _ = press(t, m, "a")
	m.form.inputs[fieldPriority].SetValue("3")
	m, cmd := press(t, m, "enter")

	assert.Nil(t, cmd)
	assert.Equal(t, modeAdd, m.mode)
	assert.Len(t, m.cards, 5)
	assert.Equal(t, 5, collectionSize(t, sess))
}

func TestCreateWithImageWaitsForDecode(t *testing.T) {
	m, sess := newTestModel(t)

	m, _ = press(t, m, "a")
	m.form.inputs[fieldName].SetValue("Pet the cat")
	m.form.inputs[fieldPriority].SetValue("4")
	m.form.inputs[fieldImage].SetValue(writePNG(t))
	m, cmd := press(t, m, "enter")

	require.NotNil(t, m.pending)
	assert.Equal(t, modeAdd, m.mode)
	assert.Equal(t, 5, collectionSize(t, sess))

	m = deliver(t, m, decodeResult(t, cmd))

	assert.Nil(t, m.pending)
	assert.Equal(t, modeList, m.mode)
	require.Len(t, m.cards, 6)
	c := m.cards[m.cursor]
	assert.Equal(t, "Pet the cat", c.Title)
	assert.Equal(t, 4, c.Importance)
	assert.True(t, strings.HasPrefix(c.Image, "embedded image/png"))
}

func TestSupersededDecodeIsDropped(t *testing.T) {
	m, sess := newTestModel(t)
	path := writePNG(t)

	m, _ = press(t, m, "a")
	m.form.inputs[fieldName].SetValue("Once")
	m.form.inputs[fieldImage].SetValue(path)
	m, first := press(t, m, "enter")
	m, second := press(t, m, "enter")

	stale := decodeResult(t, first)
	fresh := decodeResult(t, second)
	require.NotEqual(t, stale.Token, fresh.Token)

	m = deliver(t, m, stale)
	assert.Equal(t, 5, collectionSize(t, sess))
	assert.NotNil(t, m.pending)

	m = deliver(t, m, fresh)
	assert.Equal(t, 6, collectionSize(t, sess))
	assert.Equal(t, modeList, m.mode)
}

func TestFailedDecodeCreatesNothing(t *testing.T) {
	m, sess := newTestModel(t)

	m, _ = press(t, m, "a")
	m.form.inputs[fieldName].SetValue("Ghost")
	m.form.inputs[fieldImage].SetValue(filepath.Join(t.TempDir(), "missing.png"))
	m, cmd := press(t, m, "enter")

	m = deliver(t, m, decodeResult(t, cmd))

	assert.Nil(t, m.pending)
	assert.Equal(t, modeAdd, m.mode)
	assert.Equal(t, 5, collectionSize(t, sess))
}

func TestCancelDropsPendingDecode(t *testing.T) {
	m, sess := newTestModel(t)

	m, _ = press(t, m, "a")
	m.form.inputs[fieldName].SetValue("Never")
	m.form.inputs[fieldImage].SetValue(writePNG(t))
	m, cmd := press(t, m, "enter")
	m, _ = press(t, m, "esc")

	assert.Equal(t, modeList, m.mode)
	assert.Nil(t, m.pending)

	m = deliver(t, m, decodeResult(t, cmd))
	assert.Equal(t, 5, collectionSize(t, sess))
	assert.Len(t, m.cards, 5)
}

func TestFormFieldNavigation(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "a", "tab", "tab")
	assert.Equal(t, fieldDeadline, m.form.focus)

	m, _ = press(t, m, "x")
	assert.Equal(t, "x", m.form.inputs[fieldDeadline].Value())
}

func TestGridNavigation(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	require.Equal(t, 3, columns(m.gridWidth()))

	m, _ = press(t, m, "j")
	assert.Equal(t, 3, m.cursor)
	m, _ = press(t, m, "l", "l")
	assert.Equal(t, 4, m.cursor)
	m, _ = press(t, m, "k")
	assert.Equal(t, 1, m.cursor)
}

func TestViewRendersCards(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(t, m, tea.WindowSizeMsg{Width: 120, Height: 60})

	out := m.View()
	assert.Contains(t, out, "Take Dog for Walk")
	assert.Contains(t, out, "sort: none")

	m, _ = press(t, m, "a")
	assert.Contains(t, m.View(), "Add Task")
}

func TestDeleteAllShowsEmptyState(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "d", "d", "d", "d", "d")
	assert.Empty(t, m.cards)
	assert.Contains(t, m.View(), "No tasks yet")

	m, _ = press(t, m, "d", " ", "+")
	assert.Empty(t, m.cards)
}
