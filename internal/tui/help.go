package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kindling-io/kindling/internal/workspace"
)

type helpSection struct {
	title string
	keys  []helpKey
}

type helpKey struct {
	key  string
	desc string
}

var localHelpSections = []helpSection{
	{
		title: "Navigation",
		keys: []helpKey{
			{"Ctrl+q", "Quit"},
			{"Tab", "Switch panel focus"},
			{"Ctrl+w", "Close project"},
		},
	},
	{
		title: "Projects",
		keys: []helpKey{
			{"j/k ↑/↓", "Navigate"},
			{"Enter", "Open project / use template"},
			{"n", "New project"},
			{"x", "Delete project"},
			{"Esc", "Back to projects"},
		},
	},
	{
		title: "Panels",
		keys: []helpKey{
			{"Enter", "Send chat or assistant prompt"},
			{"Ctrl+y", "Apply assistant suggestion"},
			{"PgUp/PgDn", "Scroll"},
		},
	},
}

// renderHelp renders the shortcuts overlay: the registry bindings first,
// then the shell's own navigation keys.
func renderHelp(bindings []workspace.Binding, width int) string {
	maxWidth := 60
	if width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	shortcuts := helpSection{title: "Shortcuts"}
	for _, b := range bindings {
		shortcuts.keys = append(shortcuts.keys, helpKey{formatChord(b.Chord), b.Description})
	}
	sectionsIn := append([]helpSection{shortcuts}, localHelpSections...)

	title := overlayTitleStyle.Render("Keyboard Shortcuts")
	sections := make([]string, 0, len(sectionsIn)*4+3)
	sections = append(sections, title)

	for _, sec := range sectionsIn {
		header := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Render(sec.title)
		sections = append(sections, "", header)

		for _, k := range sec.keys {
			keyCol := lipgloss.NewStyle().
				Width(14).
				Foreground(colorWhite).
				Bold(true).
				Render(k.key)
			descCol := lipgloss.NewStyle().
				Foreground(colorDim).
				Render(k.desc)
			sections = append(sections, "  "+keyCol+descCol)
		}
	}

	sections = append(sections, "", lipgloss.NewStyle().Foreground(colorDim).Render("Press Esc to close"))

	content := strings.Join(sections, "\n")
	return overlayStyle.Width(maxWidth).Render(content)
}

// formatChord renders a chord the way the help and status bar show keys,
// e.g. "Ctrl+k".
func formatChord(c workspace.Chord) string {
	parts := strings.Split(c.String(), "+")
	for i, p := range parts[:len(parts)-1] {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "+")
}
