// Package splitview is the terminal UI collaborator: given the ResultInfo
// collection produced by one run, it renders a split view (agent list next
// to the selected agent's interleaved stdout/stderr and change summary) and
// returns either a promotion target or a cancellation. It is a consumer of
// the core, not part of it; the core only depends on the Selection contract
// this package returns.
package splitview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/takumi3488/parari/internal/agent"
	"github.com/takumi3488/parari/internal/runrequest"
)

// Selection is the outcome of one split-view session: either a 0-based
// promotion target, or a cancellation. Mirrors the two-outcome shape of the
// original implementation's split-view result rather than a bare
// (int, error) pair.
type Selection struct {
	Index     int
	Cancelled bool
}

// Muted terminal palette for the split view's panels, status marks and
// change counts.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7eb8da")) // steel blue

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3d4450")) // slate

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7ec699")) // sage green

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d48a8a")) // dusty rose

	addedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7ec699"))

	modifiedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7eb8da"))

	deletedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d48a8a"))

	stderrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d48a8a"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6e7681"))
)

// agentItem adapts a ResultInfo to bubbles/list.Item.
type agentItem struct {
	info  runrequest.ResultInfo
	index int
}

func (i agentItem) Title() string {
	status := failedStyle.Render("✗ failed")
	if i.info.Success {
		status = successStyle.Render("✓ ok")
	}
	return fmt.Sprintf("%s  %s", i.info.Name, status)
}

func (i agentItem) Description() string {
	if i.info.ChangeSummary == nil {
		return "no change summary available"
	}
	cs := i.info.ChangeSummary
	return fmt.Sprintf("%s  %s  %s",
		addedStyle.Render(fmt.Sprintf("+%d", cs.FilesAdded)),
		modifiedStyle.Render(fmt.Sprintf("~%d", cs.FilesModified)),
		deletedStyle.Render(fmt.Sprintf("-%d", cs.FilesDeleted)),
	)
}

func (i agentItem) FilterValue() string { return i.info.Name }

type model struct {
	list     list.Model
	viewport viewport.Model
	results  []runrequest.ResultInfo
	ready    bool
	done     bool
	selected int
	cancel   bool
}

func newModel(results []runrequest.ResultInfo) model {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = agentItem{info: r, index: i}
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(1)

	l := list.New(items, delegate, 40, 20)
	l.Title = "Agents"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	vp := viewport.New(60, 20)

	m := model{list: l, viewport: vp, results: results, selected: -1}
	m.syncViewport()
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m *model) syncViewport() {
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.results) {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(renderOutput(m.results[idx]))
}

func renderOutput(r runrequest.ResultInfo) string {
	var b strings.Builder
	for _, line := range r.OutputLines {
		switch line.Kind {
		case agent.Stderr:
			b.WriteString(stderrStyle.Render(line.Text))
		default:
			b.WriteString(line.Text)
		}
		b.WriteString("\n")
	}
	if r.ChangeSummary != nil && len(r.ChangeSummary.ChangedFiles) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("changed files"))
		b.WriteString("\n")
		for _, f := range r.ChangeSummary.ChangedFiles {
			b.WriteString("  " + f + "\n")
		}
	}
	return b.String()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width/3, msg.Height-4)
		m.viewport.Width = msg.Width - msg.Width/3 - 4
		m.viewport.Height = msg.Height - 4
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			idx := m.list.Index()
			if idx >= 0 && idx < len(m.results) {
				m.selected = idx
			}
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "q", "esc":
			m.cancel = true
			m.done = true
			return m, tea.Quit
		case "up", "k", "down", "j":
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			m.syncViewport()
			return m, cmd
		case "pgup", "pgdown", "u", "d":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.syncViewport()
	return m, cmd
}

func (m model) View() string {
	if m.done {
		return ""
	}
	left := borderStyle.Render(m.list.View())
	right := borderStyle.Render(m.viewport.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	help := helpStyle.Render("↑/↓ select · enter promote · q cancel")
	return lipgloss.JoinVertical(lipgloss.Left, body, help)
}

// Run renders the full-screen split view and blocks until the user picks a
// winner or cancels.
func Run(results []runrequest.ResultInfo) (Selection, error) {
	if len(results) == 0 {
		return Selection{Cancelled: true}, nil
	}
	p := tea.NewProgram(newModel(results), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Selection{}, err
	}
	m := final.(model)
	if m.cancel || m.selected < 0 {
		return Selection{Cancelled: true}, nil
	}
	return Selection{Index: m.selected}, nil
}
