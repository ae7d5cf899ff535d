package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtodo/internal/service"
	"vtodo/internal/store"
)

func newModel(t *testing.T) (*Model, *store.Store) {
	t.Helper()
	s := store.New(context.Background(), nil)
	return New(s), s
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		m.Update(key(k))
	}
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestAddItemThroughInput(t *testing.T) {
	m, s := newModel(t)

	press(m, "a")
	assert.Equal(t, modeAdd, m.mode)
	typeText(m, "buy milk")
	press(m, "enter")

	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, []service.Item{{Text: "buy milk"}}, s.ListItems(""))
	assert.Contains(t, m.View(), "buy milk")
}

func TestEscCancelsInput(t *testing.T) {
	m, s := newModel(t)

	press(m, "a")
	typeText(m, "nope")
	press(m, "esc")

	assert.Equal(t, modeNormal, m.mode)
	assert.Empty(t, s.ListItems(""))
}

func TestToggleMoveAndRemove(t *testing.T) {
	m, s := newModel(t)
	require.NoError(t, s.AddItem("", "a"))
	require.NoError(t, s.AddItem("", "b"))
	m.Update(RefreshMsg{})

	press(m, "x")
	assert.True(t, s.ListItems("")[0].Done)

	press(m, "J")
	assert.Equal(t, "b", s.ListItems("")[0].Text)
	assert.Equal(t, 1, m.cursor)

	press(m, "K")
	assert.Equal(t, "a", s.ListItems("")[0].Text)
	assert.Equal(t, 0, m.cursor)

	press(m, "d")
	assert.Equal(t, []service.Item{{Text: "b"}}, s.ListItems(""))
}

func TestClearDone(t *testing.T) {
	m, s := newModel(t)
	require.NoError(t, s.AddItem("", "a"))
	require.NoError(t, s.ToggleItem("", 0))
	m.Update(RefreshMsg{})

	press(m, "c")
	assert.Empty(t, s.ListItems(""))
	assert.Equal(t, "cleared 1", m.status)
}

func TestCursorStaysInRange(t *testing.T) {
	m, s := newModel(t)
	require.NoError(t, s.AddItem("", "a"))
	require.NoError(t, s.AddItem("", "b"))
	m.Update(RefreshMsg{})

	press(m, "j", "j", "j")
	assert.Equal(t, 1, m.cursor)

	require.NoError(t, s.RemoveItem("", 1))
	m.Update(RefreshMsg{})
	assert.Equal(t, 0, m.cursor)
}

func TestNewListAndSwitch(t *testing.T) {
	m, s := newModel(t)

	press(m, "n")
	typeText(m, "Groceries")
	press(m, "enter")
	assert.Equal(t, "Groceries", s.ListNames().Current)

	press(m, "tab")
	assert.Equal(t, service.DefaultList, s.ListNames().Current)

	press(m, "shift+tab")
	assert.Equal(t, "Groceries", s.ListNames().Current)
}

func TestNewListExisting(t *testing.T) {
	m, s := newModel(t)

	press(m, "n")
	typeText(m, service.DefaultList)
	press(m, "enter")

	assert.Equal(t, "list already exists: Personal", m.status)
	assert.Len(t, s.ListNames().Lists, 1)
}

func TestDeleteListConfirm(t *testing.T) {
	m, s := newModel(t)
	_, err := s.CreateList("Work")
	require.NoError(t, err)
	m.Update(RefreshMsg{})

	press(m, "D")
	assert.Equal(t, modeConfirmDelete, m.mode)
	assert.Contains(t, m.View(), `Delete list "Work"`)
	press(m, "n")
	assert.Equal(t, []string{service.DefaultList, "Work"}, s.ListNames().Lists)

	press(m, "D", "y")
	assert.Equal(t, []string{service.DefaultList}, s.ListNames().Lists)
	assert.Equal(t, service.DefaultList, s.ListNames().Current)
	assert.Equal(t, "deleted Work", m.status)
}

func TestDefaultListCannotBeDeleted(t *testing.T) {
	m, _ := newModel(t)

	press(m, "D")
	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, "cannot delete Personal list", m.status)
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRefreshFromChanges(t *testing.T) {
	s := store.New(context.Background(), nil)
	changes := make(chan struct{}, 1)
	m := New(s, WithChanges(changes))

	cmd := m.Init()
	require.NotNil(t, cmd)

	require.NoError(t, s.AddItem("", "remote"))
	changes <- struct{}{}
	msg := cmd()
	assert.Equal(t, RefreshMsg{}, msg)

	_, next := m.Update(msg)
	assert.NotNil(t, next)
	assert.Contains(t, m.View(), "remote")
}

func TestViewListsTabs(t *testing.T) {
	m, s := newModel(t)
	_, err := s.CreateList("Work")
	require.NoError(t, err)
	m.Update(RefreshMsg{})

	view := m.View()
	assert.Contains(t, view, "Personal")
	assert.Contains(t, view, "Work")
	assert.Contains(t, view, "no items")
}
