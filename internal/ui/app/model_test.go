package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trackerdto "activitylog/internal/modules/tracker/dto"
	"activitylog/internal/ui/components"
)

type fakeTracker struct {
	mu       sync.Mutex
	calls    []string
	state    trackerdto.StateOutput
	elapsed  time.Duration
	totals   []trackerdto.TotalOutput
	sessions []trackerdto.SessionOutput
}

func (f *fakeTracker) Switch(_ context.Context, in trackerdto.StartInput) (trackerdto.StateOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "switch:"+in.Name)
	f.state = trackerdto.StateOutput{Running: true, Activity: in.Name}
	return f.state, nil
}

func (f *fakeTracker) Stop(context.Context, trackerdto.StopInput) (trackerdto.StateOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "stop")
	f.state = trackerdto.StateOutput{}
	return f.state, nil
}

func (f *fakeTracker) State() trackerdto.StateOutput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeTracker) CurrentElapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elapsed
}

func (f *fakeTracker) TodayTotals(context.Context) ([]trackerdto.TotalOutput, error) {
	return f.totals, nil
}

func (f *fakeTracker) AllSessions(context.Context, trackerdto.SessionsInput) ([]trackerdto.SessionOutput, error) {
	return f.sessions, nil
}

type fakeActivities struct{ names []string }

func (f fakeActivities) List(context.Context) ([]string, error) { return f.names, nil }

func newTestModel(tr *fakeTracker) Model {
	m := NewModel(tr, fakeActivities{names: []string{"Break", "Custom", "Study", "Work"}}, Options{
		Bindings:    []Binding{{"1", "Work"}, {"2", "Study"}, {"3", "Break"}},
		TotalsOrder: []string{"Work", "Study", "Break"},
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	next, _ = next.Update(activitiesLoadedMsg{names: []string{"Break", "Custom", "Study", "Work"}})
	return next.(Model)
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestBoundKeySwitchesActivity(t *testing.T) {
	t.Parallel()
	tr := &fakeTracker{}
	m := newTestModel(tr)

	m, cmd := press(t, m, "2")
	m = run(t, m, cmd)
	assert.Equal(t, []string{"switch:Study"}, tr.calls)
	assert.True(t, m.state.Running)
	assert.Equal(t, "switched: Study", m.status)

	m, cmd = press(t, m, "x")
	m = run(t, m, cmd)
	assert.Equal(t, []string{"switch:Study", "stop"}, tr.calls)
	assert.False(t, m.state.Running)
}

func TestPickerPutsCustomLastAndOpensPrompt(t *testing.T) {
	t.Parallel()
	tr := &fakeTracker{}
	m := newTestModel(tr)
	require.Equal(t, []string{"Break", "Study", "Work", "Custom"}, m.picker)

	m, cmd := press(t, m, "enter")
	run(t, m, cmd)
	assert.Equal(t, []string{"switch:Break"}, tr.calls)

	for range 3 {
		m, _ = press(t, m, "down")
	}
	m, _ = press(t, m, "enter")
	assert.True(t, m.prompt.Open())

	next, cmd := m.Update(components.PromptSubmitMsg{Name: "Reading"})
	run(t, next.(Model), cmd)
	assert.Equal(t, "switch:Reading", tr.calls[len(tr.calls)-1])
}

func TestTotalsToggle(t *testing.T) {
	t.Parallel()
	tr := &fakeTracker{totals: []trackerdto.TotalOutput{{Activity: "Work", Seconds: 3900}, {Activity: "Gym", Seconds: 600}}}
	m := newTestModel(tr)

	m, cmd := press(t, m, "t")
	require.True(t, m.showTotals)
	m = run(t, m, cmd)
	assert.Contains(t, m.View(), "WORK 1h 5m  •  STUDY 0m  •  HOME 0m  •  Gym 10m")

	m, cmd = press(t, m, "t")
	assert.False(t, m.showTotals)
	assert.Nil(t, cmd)
	assert.NotContains(t, m.View(), "WORK 1h 5m")
}

func TestFrameReadsSnapshot(t *testing.T) {
	t.Parallel()
	tr := &fakeTracker{state: trackerdto.StateOutput{Running: true, Activity: "Work"}, elapsed: time.Hour + 2*time.Minute + 3*time.Second + 450*time.Millisecond}
	m := newTestModel(tr)
	next, cmd := m.Update(frameMsg{})
	assert.NotNil(t, cmd)
	view := next.(Model).View()
	assert.Contains(t, view, "WORK  01:02:03.45")
	assert.Empty(t, tr.calls)
}

func TestTotalsLine(t *testing.T) {
	t.Parallel()
	line := TotalsLine([]string{"Work", "Projects"}, map[string]float64{"Projects": 7200, "Zen": 60, "Idle": 0})
	assert.Equal(t, "WORK 0m  •  PROJ 2h  •  Zen 1m", line)
	assert.False(t, strings.Contains(line, "Idle"))
}
