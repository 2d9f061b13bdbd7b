package sessions

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	trackerdto "activitylog/internal/modules/tracker/dto"
	"activitylog/internal/platform/durfmt"
	"activitylog/internal/ui/theme"
)

// Limit is how many recent sessions the pane loads.
const Limit = 50

const stampLayout = "2006-01-02 15:04:05"

type SessionsPort interface {
	AllSessions(ctx context.Context, input trackerdto.SessionsInput) ([]trackerdto.SessionOutput, error)
}

type LoadedMsg struct {
	Sessions []trackerdto.SessionOutput
	Err      error
}

type sessionItem struct {
	session trackerdto.SessionOutput
}

func (i sessionItem) Title() string {
	title := theme.Activity(i.session.Activity).Render(i.session.Activity)
	if i.session.Live {
		title += theme.Hot.Render("  ● live")
	}
	return title
}

func (i sessionItem) Description() string {
	return fmt.Sprintf("%s  %s", i.session.Start.Format(stampLayout), durfmt.HMS(i.session.DurationSec))
}

func (i sessionItem) FilterValue() string { return i.session.Activity }

// Model lists recent sessions newest first with a detail pane.
type Model struct {
	port    SessionsPort
	list    list.Model
	detail  viewport.Model
	spinner spinner.Model
	loading bool
	err     error
	width   int
	height  int
}

func New(port SessionsPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Sessions"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, detail: viewport.New(0, 0), spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Refresh(), m.spinner.Tick)
}

// Refresh reloads the list from storage.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return LoadedMsg{}
		}
		sessions, err := m.port.AllSessions(context.Background(), trackerdto.SessionsInput{Limit: Limit})
		return LoadedMsg{Sessions: sessions, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		items := make([]list.Item, len(msg.Sessions))
		for i, s := range msg.Sessions {
			items[i] = sessionItem{session: s}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.detail.SetContent(m.renderDetail())
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if !m.loading {
		var cmd tea.Cmd
		prev := m.list.Index()
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
		if m.list.Index() != prev {
			m.detail.SetContent(m.renderDetail())
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading sessions…")
	}
	if m.err != nil {
		return theme.Error.Render("sessions: " + m.err.Error())
	}
	listW := m.width * 6 / 10
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := theme.Pane.Width(m.width - listW - 2).Height(m.height - 2).Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is open, in which case
// global key bindings must yield.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m *Model) resize() {
	listW := m.width * 6 / 10
	m.list.SetSize(listW, m.height)
	m.detail.Width = m.width - listW - 4
	m.detail.Height = m.height - 2
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(sessionItem)
	if !ok {
		return theme.Muted.Render("No sessions yet")
	}
	s := item.session
	end := s.End.Format(stampLayout)
	if s.Live {
		end += " (live)"
	}
	var sb strings.Builder
	sb.WriteString(theme.Activity(s.Activity).Render(s.Activity) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:       ") + fmt.Sprint(s.ID) + "\n")
	sb.WriteString(theme.Muted.Render("start:    ") + s.Start.Format(stampLayout) + "\n")
	sb.WriteString(theme.Muted.Render("end:      ") + end + "\n")
	sb.WriteString(theme.Muted.Render("duration: ") + durfmt.HMS(s.DurationSec) + "\n")
	sb.WriteString("\n" + theme.Muted.Render("r: refresh  /: filter"))
	return sb.String()
}
