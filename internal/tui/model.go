// Package tui is the interactive terminal front-end. It talks to the store
// directly and re-renders whenever any caller changes it.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vtodo/internal/service"
)

type mode int

const (
	modeNormal mode = iota
	modeAdd
	modeNewList
	modeConfirmDelete
)

// RefreshMsg tells the model the store changed underneath it.
type RefreshMsg struct{}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	cursorStyle    = lipgloss.NewStyle().Bold(true)
	doneStyle      = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	statusStyle    = lipgloss.NewStyle().Italic(true)
	helpStyle      = lipgloss.NewStyle().Faint(true)
)

const helpText = "j/k move  x toggle  a add  d delete  J/K reorder  c clear done  tab/shift+tab list  n new list  D delete list  q quit"

// Model is the bubbletea model for one store.
type Model struct {
	svc     service.Service
	changes <-chan struct{}

	snap   service.Snapshot
	cursor int
	mode   mode
	input  textinput.Model
	status string
}

// Option configures a Model.
type Option func(*Model)

// WithChanges makes the model re-render on every value received from ch.
func WithChanges(ch <-chan struct{}) Option {
	return func(m *Model) { m.changes = ch }
}

// New returns a model showing the active list of svc.
func New(svc service.Service, opts ...Option) *Model {
	inp := textinput.New()
	inp.Prompt = "> "
	m := &Model{svc: svc, input: inp}
	for _, opt := range opts {
		opt(m)
	}
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return RefreshMsg{}
	}
}

// refresh re-reads the store and keeps the cursor inside the active list.
func (m *Model) refresh() {
	m.snap = m.svc.Snapshot()
	n := len(m.items())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) items() []service.Item {
	items, _ := m.snap.Find(m.snap.Active)
	return items
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshMsg:
		m.refresh()
		return m, m.waitForChange()
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd, modeNewList:
			return m.updateInput(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m *Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	n := len(m.items())
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "tab":
		m.switchList(1)
	case "shift+tab":
		m.switchList(-1)
	case "x", " ", "space":
		if n > 0 {
			m.report(m.svc.ToggleItem("", m.cursor))
		}
	case "d":
		if n > 0 {
			m.report(m.svc.RemoveItem("", m.cursor))
		}
	case "J":
		if m.cursor < n-1 && m.report(m.svc.MoveItem("", m.cursor, m.cursor+1)) {
			m.cursor++
		}
	case "K":
		if m.cursor > 0 && m.report(m.svc.MoveItem("", m.cursor, m.cursor-1)) {
			m.cursor--
		}
	case "c":
		removed := m.svc.ClearDone("")
		m.status = fmt.Sprintf("cleared %d", removed)
	case "a":
		return m, m.startInput(modeAdd, "New item")
	case "n":
		return m, m.startInput(modeNewList, "New list name")
	case "D":
		if m.snap.Active == service.DefaultList {
			m.status = fmt.Sprintf("cannot delete %s list", service.DefaultList)
			break
		}
		m.mode = modeConfirmDelete
	}
	m.refresh()
	return m, nil
}

func (m *Model) startInput(md mode, placeholder string) tea.Cmd {
	m.mode = md
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.endInput()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		md := m.mode
		m.endInput()
		if value == "" {
			return m, nil
		}
		switch md {
		case modeAdd:
			if m.report(m.svc.AddItem("", value)) {
				m.refresh()
				m.cursor = len(m.items()) - 1
			}
		case modeNewList:
			created, err := m.svc.CreateList(value)
			if m.report(err) && !created {
				m.status = "list already exists: " + service.NormalizeName(value)
			}
		}
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) endInput() {
	m.mode = modeNormal
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeNormal
	switch msg.String() {
	case "y", "Y":
		name := m.snap.Active
		if m.report(m.svc.DeleteList(name)) {
			m.status = "deleted " + name
		}
		m.refresh()
	default:
		m.status = "kept " + m.snap.Active
	}
	return m, nil
}

// switchList activates the list step positions away from the active one.
func (m *Model) switchList(step int) {
	names := m.snap.Names()
	if len(names) < 2 {
		return
	}
	at := 0
	for i, n := range names {
		if n == m.snap.Active {
			at = i
			break
		}
	}
	next := names[(at+step+len(names))%len(names)]
	if m.report(m.svc.SwitchActiveList(next)) {
		m.cursor = 0
	}
}

// report shows err in the status line and reports whether it was nil.
func (m *Model) report(err error) bool {
	if err == nil {
		return true
	}
	m.status = "error: " + err.Error()
	return false
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("vtodo"))
	b.WriteString("\n\n")

	tabs := make([]string, 0, len(m.snap.Lists))
	for _, l := range m.snap.Lists {
		if l.Name == m.snap.Active {
			tabs = append(tabs, activeTabStyle.Render(l.Name))
		} else {
			tabs = append(tabs, tabStyle.Render(l.Name))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	items := m.items()
	if len(items) == 0 {
		b.WriteString(helpStyle.Render("no items"))
		b.WriteString("\n")
	}
	for i, it := range items {
		mark := "[ ]"
		text := it.Text
		if it.Done {
			mark = "[x]"
			text = doneStyle.Render(text)
		}
		line := fmt.Sprintf("  %s %s", mark, text)
		if i == m.cursor {
			line = cursorStyle.Render("> " + mark + " " + text)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	switch m.mode {
	case modeAdd:
		b.WriteString("\nAdd to " + m.snap.Active + "\n" + m.input.View() + "\n")
	case modeNewList:
		b.WriteString("\nCreate list\n" + m.input.View() + "\n")
	case modeConfirmDelete:
		b.WriteString(fmt.Sprintf("\nDelete list %q and its %d items? [y] Yes  [n] No\n", m.snap.Active, len(items)))
	}

	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(helpText))
	return b.String()
}

// Run shows the UI for svc until the user quits or ctx is cancelled.
func Run(ctx context.Context, svc service.Service) error {
	changes := make(chan struct{}, 1)
	cancel := svc.Subscribe(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer cancel()

	p := tea.NewProgram(New(svc, WithChanges(changes)), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
