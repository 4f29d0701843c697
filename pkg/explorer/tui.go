package explorer

import (
	"strings"
	"time"

	"github.com/arthur-debert/dodex/pkg/style"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap lists the bindings of the explore program.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	ExpandAll key.Binding
	Check     key.Binding
	UnmarkAll key.Binding
	Reload    key.Binding
	Quit      key.Binding
}

var Keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "toggle"),
	),
	ExpandAll: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "expand all"),
	),
	Check: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "check"),
	),
	UnmarkAll: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "unmark all"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Actions are the operations the program triggers. Nil actions are skipped.
type Actions struct {
	Check     func()
	UnmarkAll func()
	Reload    func() (*types.Folder, error)
}

// StatusMsg replaces the status line.
type StatusMsg string

type tickMsg time.Time

// RefreshInterval is how often the view is redrawn to pick up marks
// applied in the background.
const RefreshInterval = 200 * time.Millisecond

// Model is the bubbletea model of the explore program.
type Model struct {
	explorer *Explorer
	actions  Actions
	cursor   int
	height   int
	status   string
}

// NewModel returns a model browsing e.
func NewModel(e *Explorer, actions Actions) *Model {
	return &Model{explorer: e, actions: actions}
}

// Cursor returns the selected row index.
func (m *Model) Cursor() int { return m.cursor }

// Status returns the status line.
func (m *Model) Status() string { return m.status }

func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tick()

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, Keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, Keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, Keys.Down):
			if m.cursor < len(m.explorer.Rows())-1 {
				m.cursor++
			}

		case key.Matches(msg, Keys.Toggle):
			if row := m.selected(); row != nil && row.IsFolder {
				m.explorer.Toggle(row.Path())
			}

		case key.Matches(msg, Keys.ExpandAll):
			m.explorer.ExpandAll()

		case key.Matches(msg, Keys.Check):
			if m.actions.Check != nil {
				m.status = "Check requested"
				m.actions.Check()
			}

		case key.Matches(msg, Keys.UnmarkAll):
			if m.actions.UnmarkAll != nil {
				m.actions.UnmarkAll()
				m.status = "All marks removed"
			}

		case key.Matches(msg, Keys.Reload):
			if m.actions.Reload != nil {
				root, err := m.actions.Reload()
				if err != nil {
					m.status = err.Error()
					return m, nil
				}
				m.explorer.Reload(root)
				m.clamp()
			}
		}
	}
	return m, nil
}

func (m *Model) selected() *Row {
	rows := m.explorer.Rows()
	if m.cursor >= 0 && m.cursor < len(rows) {
		return rows[m.cursor]
	}
	return nil
}

func (m *Model) clamp() {
	if n := len(m.explorer.Rows()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render(m.explorer.Root().Name))
	b.WriteString("\n")

	lines := strings.Split(m.explorer.Render(m.cursor), "\n")
	if visible := m.height - 5; m.height > 0 && visible > 0 && len(lines) > visible {
		start := min(max(m.cursor-visible/2, 0), len(lines)-visible)
		lines = lines[start : start+visible]
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(style.MutedStyle.Render(m.status))
	}

	var help []string
	for _, k := range []key.Binding{Keys.Up, Keys.Down, Keys.Toggle, Keys.ExpandAll, Keys.Check, Keys.UnmarkAll, Keys.Reload, Keys.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(style.HelpStyle.Render(strings.Join(help, " • ")))
	return b.String()
}
