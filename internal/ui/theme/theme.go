package theme

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha.
var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface1 = lipgloss.Color("#45475a")
	Overlay1 = lipgloss.Color("#7f849c")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Blue     = lipgloss.Color("#89b4fa")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Red      = lipgloss.Color("#f38ba8")
	Peach    = lipgloss.Color("#fab387")

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Foreground(Text).
		Padding(0, 1)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Error = lipgloss.NewStyle().Foreground(Red)
)

var activityColors = map[string]lipgloss.Color{
	"Work":     Green,
	"Study":    Blue,
	"Break":    Overlay1,
	"Waste":    Red,
	"Projects": Yellow,
}

var activityLabels = map[string]string{
	"Work":     "WORK",
	"Study":    "STUDY",
	"Break":    "HOME",
	"Waste":    "WASTE",
	"Projects": "PROJ",
}

// ActivityColor is the accent for a default activity; other names are gray.
func ActivityColor(name string) lipgloss.Color {
	if c, ok := activityColors[name]; ok {
		return c
	}
	return Overlay1
}

// ActivityLabel is the short tag shown next to the clock and in the totals
// line. Names without a tag are shown as-is.
func ActivityLabel(name string) string {
	if l, ok := activityLabels[name]; ok {
		return l
	}
	return name
}

func Activity(name string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ActivityColor(name)).Bold(true)
}
