package out

import (
	"fmt"

	"github.com/charmbracelet/glamour"

	reportout "activitylog/internal/modules/report/port/out"
)

type GlamourRenderer struct {
	style string
	width int
}

// NewGlamourRenderer renders with a named glamour style ("dark", "light",
// "notty", ...). A width of 0 disables word wrap.
func NewGlamourRenderer(style string, width int) reportout.Renderer {
	if style == "" {
		style = "dark"
	}
	return GlamourRenderer{style: style, width: width}
}

func (r GlamourRenderer) Render(md string) (string, error) {
	tr, err := glamour.NewTermRenderer(
		glamour.WithStylePath(r.style),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		return "", fmt.Errorf("build renderer: %w", err)
	}
	out, err := tr.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
