package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/daviddao/zcon/internal/render"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#1E1E2E"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")).
			Bold(true)

	selectorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#313244")).
			Padding(0, 1)

	outboundMark = dimStyle.Render("»")
)

var stateStyles = map[string]lipgloss.Style{
	"connecting": lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	"open":       lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")).Bold(true),
	"closed":     lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true),
}

// classStyles maps render classes to terminal styles. A segment takes the
// style of its most specific class that has one.
var classStyles = map[string]lipgloss.Style{
	render.ClassKind:              lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	render.ClassKind + "-command": lipgloss.NewStyle().Foreground(lipgloss.Color("#FAB387")).Bold(true),
	render.ClassKind + "-event":   lipgloss.NewStyle().Foreground(lipgloss.Color("#89DCEB")).Bold(true),
	render.ClassKind + "-message": lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")).Bold(true),
	render.ClassName:              lipgloss.NewStyle().Foreground(lipgloss.Color("#CDD6F4")),
	render.ClassMeta:              lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	render.ClassMetaSource:        lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA")).Bold(true),
	render.ClassMetaSpace:         lipgloss.NewStyle().Foreground(lipgloss.Color("#CBA6F7")),
	render.ClassData:              lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")).Italic(true),
}

func segmentStyle(classes []string) (lipgloss.Style, bool) {
	for i := len(classes) - 1; i >= 0; i-- {
		if st, ok := classStyles[classes[i]]; ok {
			return st, true
		}
	}
	return lipgloss.Style{}, false
}

func styleText(classes []string, text string) string {
	if text == "" {
		return ""
	}
	if st, ok := segmentStyle(classes); ok {
		return st.Render(text)
	}
	return text
}

// styleEntry renders an entry for the terminal. Its visible text equals
// Entry.Text(), with a marker in front of sent frames.
func styleEntry(e render.Entry) string {
	var b strings.Builder
	if e.Direction == render.Outbound {
		b.WriteString(outboundMark)
		b.WriteByte(' ')
	}
	for _, seg := range e.Segments {
		b.WriteString(styleText(seg.Classes, seg.Text))
		for _, c := range seg.Children {
			b.WriteString(styleText(c.Classes, c.Text))
		}
		b.WriteByte(' ')
	}
	return b.String()
}

// truncateLines truncates each line in content to at most width visible
// characters, preserving ANSI escape codes. This prevents terminal line
// wrapping when the window is resized narrower.
func truncateLines(content string, width int) string {
	if width <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = ansi.Truncate(line, width, "…")
		}
	}
	return strings.Join(lines, "\n")
}
