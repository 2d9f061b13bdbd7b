package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"activitylog/internal/ui/theme"
)

// PromptSubmitMsg carries the activity name the user typed.
type PromptSubmitMsg struct{ Name string }

// PromptCancelMsg is sent when the prompt is dismissed with esc.
type PromptCancelMsg struct{}

const (
	maxSuggestions = 5
	promptMinWidth = 20
	promptDefWidth = 48
)

var (
	promptBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(theme.Peach).
			Padding(0, 1)

	suggestion     = lipgloss.NewStyle().Foreground(theme.Subtext0)
	bestSuggestion = lipgloss.NewStyle().Foreground(theme.Peach).Bold(true)
)

// ActivityPrompt asks for a free-form activity name. Registered names that
// share the typed prefix are suggested; tab takes the first suggestion.
type ActivityPrompt struct {
	field textinput.Model
	names []string
	open  bool
	width int
}

func NewActivityPrompt() ActivityPrompt {
	field := textinput.New()
	field.Prompt = "> "
	field.Placeholder = "activity name"
	field.CharLimit = 64
	return ActivityPrompt{field: field}
}

func (p ActivityPrompt) Open() bool { return p.open }

// Show opens the prompt, empty, with names as suggestions.
func (p *ActivityPrompt) Show(names []string) tea.Cmd {
	p.open = true
	p.names = names
	p.field.Reset()
	return p.field.Focus()
}

func (p *ActivityPrompt) SetWidth(w int) { p.width = w }

func (p *ActivityPrompt) close(msg tea.Msg) tea.Cmd {
	p.open = false
	p.field.Blur()
	return func() tea.Msg { return msg }
}

func (p ActivityPrompt) Update(msg tea.Msg) (ActivityPrompt, tea.Cmd) {
	if !p.open {
		return p, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.Type {
	case tea.KeyEsc:
		return p, p.close(PromptCancelMsg{})
	case tea.KeyEnter:
		return p, p.close(PromptSubmitMsg{Name: strings.TrimSpace(p.field.Value())})
	case tea.KeyTab:
		if s := p.suggestions(); len(s) > 0 {
			p.field.SetValue(s[0])
			p.field.CursorEnd()
		}
		return p, nil
	}
	var cmd tea.Cmd
	p.field, cmd = p.field.Update(msg)
	return p, cmd
}

func (p ActivityPrompt) suggestions() []string {
	typed := strings.ToLower(strings.TrimSpace(p.field.Value()))
	out := make([]string, 0, maxSuggestions)
	for _, name := range p.names {
		if len(out) == maxSuggestions {
			break
		}
		if strings.HasPrefix(strings.ToLower(name), typed) {
			out = append(out, name)
		}
	}
	return out
}

func (p ActivityPrompt) View() string {
	if !p.open {
		return ""
	}
	lines := []string{theme.Title.Render("Custom activity"), p.field.View()}
	for i, s := range p.suggestions() {
		if i == 0 {
			lines = append(lines, bestSuggestion.Render("  "+s+"  ⇥"))
			continue
		}
		lines = append(lines, suggestion.Render("  "+s))
	}
	w := p.width
	if w < promptMinWidth {
		w = promptDefWidth
	}
	return promptBox.Width(w - 2).Render(strings.Join(lines, "\n"))
}
