package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// renderOverlay renders an overlay centered on top of the base view.
func renderOverlay(base, overlayContent string, width, height int) string {
	// Dim the background
	baseLines := strings.Split(base, "\n")
	for i, line := range baseLines {
		baseLines[i] = overlayDimStyle.Render(ansi.Strip(line))
	}

	overlayLines := strings.Split(overlayContent, "\n")
	overlayWidth := 0
	for _, l := range overlayLines {
		if w := lipgloss.Width(l); w > overlayWidth {
			overlayWidth = w
		}
	}

	top := (height - len(overlayLines)) / 2
	left := (width - overlayWidth) / 2
	if top < 1 {
		top = 1
	}
	if left < 1 {
		left = 1
	}

	return placeLines(baseLines, overlayLines, top, left)
}

// renderToast pins a one-line toast to the top right corner of base.
func renderToast(base, toast string, width int) string {
	if toast == "" {
		return base
	}
	lines := strings.Split(base, "\n")
	left := width - lipgloss.Width(toast) - 1
	if left < 0 {
		left = 0
	}
	return placeLines(lines, []string{toast}, 1, left)
}

// placeLines writes fg over bg starting at row top, column left, using
// ANSI-aware slicing so styled background cells survive on both sides.
func placeLines(bg, fg []string, top, left int) string {
	result := make([]string, len(bg))
	copy(result, bg)
	for i, line := range fg {
		row := top + i
		if row >= len(result) {
			continue
		}
		b := result[row]
		bgWidth := lipgloss.Width(b)

		leftPart := ansi.Truncate(b, left, "")
		if pad := left - lipgloss.Width(leftPart); pad > 0 {
			leftPart += strings.Repeat(" ", pad)
		}

		rightPart := ""
		rightStart := left + lipgloss.Width(line)
		if rightStart < bgWidth {
			rightPart = ansi.Cut(b, rightStart, bgWidth)
		}

		result[row] = leftPart + "\033[0m" + line + "\033[0m" + rightPart
	}
	return strings.Join(result, "\n")
}
