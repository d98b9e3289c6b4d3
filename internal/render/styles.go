package render

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	colorHigh   = lipgloss.AdaptiveColor{Light: "#B5382A", Dark: "#E05A3A"}
	colorMedium = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD93D"}
	colorLow    = lipgloss.AdaptiveColor{Light: "#5F7A3A", Dark: "#A8B545"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A89984"}
)

var (
	styleBadge = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleTitle = lipgloss.NewStyle().Bold(true)
	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)
)

// ColorEnabled reports whether w should receive styled output. NO_COLOR
// wins over everything, then w must be a terminal.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // Fd() fits in int on all supported platforms
}

type palette struct {
	color bool
}

func (p palette) badge(risk string) string {
	label := "[" + risk + "]"
	if !p.color {
		return label
	}
	var bg lipgloss.AdaptiveColor
	switch risk {
	case "HIGH":
		bg = colorHigh
	case "MEDIUM":
		bg = colorMedium
	default:
		bg = colorLow
	}
	return styleBadge.Background(bg).Foreground(lipgloss.Color("#1A1410")).Render(risk)
}

func (p palette) title(s string) string {
	if !p.color {
		return s
	}
	return styleTitle.Render(s)
}

func (p palette) muted(s string) string {
	if !p.color {
		return s
	}
	return styleMuted.Render(s)
}
