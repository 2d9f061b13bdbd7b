package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	trackerdto "activitylog/internal/modules/tracker/dto"
	"activitylog/internal/platform/durfmt"
	"activitylog/internal/ui/components"
	"activitylog/internal/ui/theme"
	sessionsview "activitylog/internal/ui/views/sessions"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// The UI never writes state itself: every change goes through the tracker
// port, and the clock is read from its published snapshot.

type trackerPort interface {
	Switch(ctx context.Context, input trackerdto.StartInput) (trackerdto.StateOutput, error)
	Stop(ctx context.Context, input trackerdto.StopInput) (trackerdto.StateOutput, error)
	State() trackerdto.StateOutput
	CurrentElapsed() time.Duration
	TodayTotals(ctx context.Context) ([]trackerdto.TotalOutput, error)
	AllSessions(ctx context.Context, input trackerdto.SessionsInput) ([]trackerdto.SessionOutput, error)
}

type activityPort interface {
	List(ctx context.Context) ([]string, error)
}

const (
	customEntry    = "Custom"
	frameInterval  = 50 * time.Millisecond
	totalsInterval = time.Second
	headerHeight   = 6
)

// Binding maps a single key to an activity name.
type Binding struct {
	Key      string
	Activity string
}

type Options struct {
	Bindings []Binding
	// TotalsOrder fixes the leading entries of the totals line.
	TotalsOrder []string
}

// ─── async messages ───────────────────────────────────────────────────────────

type frameMsg struct{}

type totalsTickMsg struct{}

type totalsLoadedMsg struct {
	totals []trackerdto.TotalOutput
	err    error
}

type activitiesLoadedMsg struct {
	names []string
	err   error
}

type stateMsg struct {
	action string
	state  trackerdto.StateOutput
	err    error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type focusID int

const (
	focusPicker focusID = iota
	focusSessions
)

type keyMap struct {
	Switch  key.Binding
	Start   key.Binding
	Up      key.Binding
	Down    key.Binding
	Custom  key.Binding
	Stop    key.Binding
	Totals  key.Binding
	Refresh key.Binding
	Focus   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys(bindings []Binding) keyMap {
	keys := make([]string, 0, len(bindings))
	for _, b := range bindings {
		keys = append(keys, b.Key)
	}
	switchHelp := "1-9"
	if len(keys) > 0 {
		switchHelp = keys[0] + "-" + keys[len(keys)-1]
	}
	return keyMap{
		Switch:  key.NewBinding(key.WithKeys(keys...), key.WithHelp(switchHelp, "switch activity")),
		Start:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start selected")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Custom:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "custom activity")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Totals:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today's totals")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh sessions")),
		Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus sessions")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Switch, k.Stop, k.Totals, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Switch, k.Start, k.Up, k.Down, k.Custom},
		{k.Stop, k.Totals, k.Refresh, k.Focus},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model: stopwatch, totals line, activity
// picker and the sessions pane.
type Model struct {
	tracker    trackerPort
	activities activityPort
	bindings   map[string]string
	order      []string

	keys     keyMap
	help     help.Model
	showHelp bool
	prompt   components.ActivityPrompt
	sessions sessionsview.Model
	focus    focusID

	picker     []string
	cursor     int
	state      trackerdto.StateOutput
	elapsed    time.Duration
	showTotals bool
	totals     map[string]float64
	status     string
	width      int
	height     int
}

func NewModel(tracker trackerPort, activities activityPort, opts Options) Model {
	bindings := make(map[string]string, len(opts.Bindings))
	for _, b := range opts.Bindings {
		bindings[b.Key] = b.Activity
	}
	return Model{
		tracker:    tracker,
		activities: activities,
		bindings:   bindings,
		order:      opts.TotalsOrder,
		keys:       defaultKeys(opts.Bindings),
		help:       help.New(),
		prompt:     components.NewActivityPrompt(),
		sessions:   sessionsview.New(tracker),
		state:      tracker.State(),
		totals:     map[string]float64{},
		status:     "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(),
		totalsTickCmd(),
		m.loadActivitiesCmd(),
		m.sessions.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The prompt intercepts all input while open.
	if _, isKey := msg.(tea.KeyMsg); isKey && m.prompt.Open() {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prompt.SetWidth(min(m.width-4, 60))
		m.help.Width = m.width
		var cmd tea.Cmd
		m.sessions, cmd = m.sessions.Update(tea.WindowSizeMsg{Width: m.width, Height: m.sessionsHeight()})
		return m, cmd

	case frameMsg:
		m.state = m.tracker.State()
		m.elapsed = m.tracker.CurrentElapsed()
		return m, frameCmd()

	case totalsTickMsg:
		if m.showTotals {
			return m, tea.Batch(totalsTickCmd(), m.loadTotalsCmd())
		}
		return m, totalsTickCmd()

	case totalsLoadedMsg:
		if msg.err != nil {
			m.status = "totals: " + msg.err.Error()
			return m, nil
		}
		m.totals = make(map[string]float64, len(msg.totals))
		for _, t := range msg.totals {
			m.totals[t.Activity] = t.Seconds
		}
		return m, nil

	case activitiesLoadedMsg:
		if msg.err != nil {
			m.status = "activities: " + msg.err.Error()
			return m, nil
		}
		m.picker = pickerOrder(msg.names)
		if m.cursor >= len(m.picker) {
			m.cursor = len(m.picker) - 1
		}
		return m, nil

	case stateMsg:
		if msg.err != nil {
			m.status = msg.action + " failed: " + msg.err.Error()
			return m, nil
		}
		m.state = msg.state
		m.elapsed = m.tracker.CurrentElapsed()
		m.status = msg.action
		if msg.state.Running {
			m.status += ": " + msg.state.Activity
		}
		return m, tea.Batch(m.loadActivitiesCmd(), m.loadTotalsCmd(), m.sessions.Refresh())

	case components.PromptSubmitMsg:
		if msg.Name == "" {
			m.status = "no activity name given"
			return m, nil
		}
		return m, m.switchCmd(msg.Name)

	case components.PromptCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.sessions, cmd = m.sessions.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}
	if m.focus == focusSessions && m.sessions.Filtering() {
		var cmd tea.Cmd
		m.sessions, cmd = m.sessions.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusPicker {
			m.focus = focusSessions
		} else {
			m.focus = focusPicker
		}
		return m, nil
	case key.Matches(msg, m.keys.Totals):
		m.showTotals = !m.showTotals
		if m.showTotals {
			return m, m.loadTotalsCmd()
		}
		return m, nil
	case key.Matches(msg, m.keys.Stop):
		return m, m.stopCmd()
	case key.Matches(msg, m.keys.Refresh):
		m.status = "refreshing sessions"
		return m, m.sessions.Refresh()
	case key.Matches(msg, m.keys.Custom):
		return m, m.prompt.Show(m.picker)
	}

	if name, ok := m.bindings[msg.String()]; ok {
		return m, m.switchCmd(name)
	}

	if m.focus == focusSessions {
		var cmd tea.Cmd
		m.sessions, cmd = m.sessions.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.picker)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Start):
		if m.cursor < 0 || m.cursor >= len(m.picker) {
			return m, nil
		}
		if name := m.picker[m.cursor]; name != customEntry {
			return m, m.switchCmd(name)
		}
		return m, m.prompt.Show(m.picker)
	}
	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderClock()
	status := m.renderStatusBar()

	var body string
	switch {
	case m.showHelp:
		body = lipgloss.NewStyle().Width(m.width).Height(m.sessionsHeight()).Render(m.help.View(m.keys))
	case m.prompt.Open():
		body = lipgloss.Place(m.width, m.sessionsHeight(), lipgloss.Center, lipgloss.Center, m.prompt.View())
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderPicker(), m.sessions.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m Model) renderClock() string {
	label := "IDLE"
	style := theme.Muted.Bold(true)
	if m.state.Running {
		label = theme.ActivityLabel(m.state.Activity)
		style = theme.Activity(m.state.Activity)
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("activitylog") + "\n\n")
	sb.WriteString(style.Render(label+"  "+durfmt.Clock(m.elapsed)) + "\n")
	if m.showTotals {
		sb.WriteString(theme.Muted.Render(TotalsLine(m.order, m.totals)))
	}
	return lipgloss.NewStyle().Height(headerHeight - 1).Render(sb.String())
}

func (m Model) renderPicker() string {
	reverse := make(map[string]string, len(m.bindings))
	for k, name := range m.bindings {
		reverse[strings.ToLower(name)] = k
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Activities") + "\n\n")
	for i, name := range m.picker {
		hint := reverse[strings.ToLower(name)]
		if name == customEntry {
			hint = "c"
		}
		line := "  "
		if i == m.cursor && m.focus == focusPicker {
			line = theme.Hot.Render("> ")
		}
		if hint != "" {
			line += theme.Muted.Render(hint + " ")
		} else {
			line += "  "
		}
		line += theme.Activity(name).Render(name)
		sb.WriteString(line + "\n")
	}
	style := theme.Pane.Height(max(m.sessionsHeight()-2, 1))
	return style.Render(sb.String())
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.state.LastError != "" {
		left = theme.Error.Render("storage: "+m.state.LastError) + "  " + left
	}
	right := theme.Muted.Render("?:help  t:totals  c:custom  x:stop  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) sessionsHeight() int {
	return max(m.height-headerHeight-1, 3)
}

// TotalsLine renders today's totals: the fixed order first, then any other
// activity with time recorded, alphabetically.
func TotalsLine(order []string, totals map[string]float64) string {
	seen := make(map[string]bool, len(order))
	entries := make([]string, 0, len(order)+len(totals))
	for _, name := range order {
		seen[name] = true
		entries = append(entries, theme.ActivityLabel(name)+" "+durfmt.Seconds(totals[name]))
	}
	var extra []string
	for name, secs := range totals {
		if !seen[name] && secs > 0 {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		entries = append(entries, theme.ActivityLabel(name)+" "+durfmt.Seconds(totals[name]))
	}
	return strings.Join(entries, "  •  ")
}

// pickerOrder keeps the registry order and moves Custom to the end.
func pickerOrder(names []string) []string {
	out := make([]string, 0, len(names)+1)
	for _, n := range names {
		if !strings.EqualFold(n, customEntry) {
			out = append(out, n)
		}
	}
	return append(out, customEntry)
}

// ─── async commands ───────────────────────────────────────────────────────────

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func totalsTickCmd() tea.Cmd {
	return tea.Tick(totalsInterval, func(time.Time) tea.Msg { return totalsTickMsg{} })
}

func (m Model) switchCmd(name string) tea.Cmd {
	return func() tea.Msg {
		st, err := m.tracker.Switch(context.Background(), trackerdto.StartInput{Name: name})
		return stateMsg{action: "switched", state: st, err: err}
	}
}

func (m Model) stopCmd() tea.Cmd {
	return func() tea.Msg {
		st, err := m.tracker.Stop(context.Background(), trackerdto.StopInput{})
		return stateMsg{action: "stopped", state: st, err: err}
	}
}

func (m Model) loadTotalsCmd() tea.Cmd {
	return func() tea.Msg {
		totals, err := m.tracker.TodayTotals(context.Background())
		return totalsLoadedMsg{totals: totals, err: err}
	}
}

func (m Model) loadActivitiesCmd() tea.Cmd {
	return func() tea.Msg {
		names, err := m.activities.List(context.Background())
		return activitiesLoadedMsg{names: names, err: err}
	}
}
