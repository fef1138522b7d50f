package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/kindling-io/kindling/internal/workspace"
)

// Slot indexes into the three workspace columns.
const (
	slotLeft = iota
	slotMain
	slotSide
	slotCount
)

// panelLayout holds computed dimensions for the three-column layout.
type panelLayout struct {
	widths        [slotCount]int // including borders
	contentHeight int
	offsets       [slotCount]int // x position of each column for mouse hit testing
}

func computeLayout(width, height int) panelLayout {
	// Reserve: 1 line header, 1 line status bar
	contentHeight := height - 2
	if contentHeight < 3 {
		contentHeight = 3
	}

	left := width * 25 / 100
	side := width * 30 / 100
	if left < 20 {
		left = 20
	}
	if side < 20 {
		side = 20
	}
	main := width - left - side
	if main < 20 {
		main = 20
	}

	return panelLayout{
		widths:        [slotCount]int{left, main, side},
		contentHeight: contentHeight,
		offsets:       [slotCount]int{0, left, left + main},
	}
}

// inner returns the content size of a slot without its border.
func (l panelLayout) inner(slot int) (width, height int) {
	width = l.widths[slot] - 2
	height = l.contentHeight - 2
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// slotAt returns the slot under column x.
func (l panelLayout) slotAt(x int) int {
	for s := slotCount - 1; s >= 0; s-- {
		if x >= l.offsets[s] {
			return s
		}
	}
	return slotLeft
}

func panelTitle(p workspace.Panel) string {
	switch p {
	case workspace.PanelChat:
		return "Chat"
	case workspace.PanelEditor:
		return "Code"
	case workspace.PanelPreview:
		return "Preview"
	case workspace.PanelAssistant:
		return "AI Assistant"
	case workspace.PanelCollaboration:
		return "Collaboration"
	}
	return ""
}

func renderPanels(contents [slotCount]string, titles [slotCount]string, layout panelLayout, focused int) string {
	cols := make([]string, 0, slotCount)
	for s := 0; s < slotCount; s++ {
		style := unfocusedBorderStyle
		if s == focused {
			style = focusedBorderStyle
		}
		w, h := layout.inner(s)
		body := panelTitleStyle.Render(titles[s]) + "\n" + contents[s]
		cols = append(cols, style.
			Width(w).
			Height(h).
			Render(truncateContent(body, w, h)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// truncateContent ensures content fits within the given dimensions.
func truncateContent(content string, width, height int) string {
	lines := strings.Split(content, "\n")

	// Limit to height
	if len(lines) > height {
		lines = lines[:height]
	}

	// Truncate long lines (ANSI-aware)
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}

	return strings.Join(lines, "\n")
}
