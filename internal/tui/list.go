package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// listItem is one row of a listView. Headers are skipped by the cursor.
type listItem struct {
	isHeader bool
	title    string
	desc     string
	index    int // position in the owner's backing slice
}

// listView is a scrollable cursor list shared by the project list, the
// template picker and the command palette.
type listView struct {
	items        []listItem
	cursor       int
	scrollOffset int
	height       int
	empty        string
}

func (l *listView) SetItems(items []listItem) {
	l.items = items
	if l.cursor >= len(l.items) {
		l.cursor = len(l.items) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.skipHeaders(1)
	l.ensureVisible()
}

func (l *listView) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	l.height = h
	l.ensureVisible()
}

// Selected returns the backing index under the cursor, or -1.
func (l *listView) Selected() int {
	if l.cursor < 0 || l.cursor >= len(l.items) || l.items[l.cursor].isHeader {
		return -1
	}
	return l.items[l.cursor].index
}

func (l *listView) Reset() {
	l.cursor = 0
	l.scrollOffset = 0
	l.skipHeaders(1)
}

func (l *listView) MoveUp() {
	if len(l.items) == 0 {
		return
	}
	l.cursor--
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.skipHeaders(-1)
	l.ensureVisible()
}

func (l *listView) MoveDown() {
	if len(l.items) == 0 {
		return
	}
	l.cursor++
	if l.cursor >= len(l.items) {
		l.cursor = len(l.items) - 1
	}
	l.skipHeaders(1)
	l.ensureVisible()
}

func (l *listView) skipHeaders(direction int) {
	for l.cursor >= 0 && l.cursor < len(l.items) && l.items[l.cursor].isHeader {
		l.cursor += direction
	}
	if l.cursor < 0 {
		l.cursor = 0
		for l.cursor < len(l.items) && l.items[l.cursor].isHeader {
			l.cursor++
		}
	}
	if l.cursor >= len(l.items) {
		l.cursor = len(l.items) - 1
		for l.cursor >= 0 && l.items[l.cursor].isHeader {
			l.cursor--
		}
	}
}

func (l *listView) ensureVisible() {
	if l.height <= 0 {
		return
	}
	if l.cursor < l.scrollOffset {
		l.scrollOffset = l.cursor
	}
	if l.cursor >= l.scrollOffset+l.height {
		l.scrollOffset = l.cursor - l.height + 1
	}
	if l.scrollOffset < 0 {
		l.scrollOffset = 0
	}
}

// View renders the visible rows.
func (l *listView) View(width int) string {
	if len(l.items) == 0 {
		return lipgloss.NewStyle().Foreground(colorDim).Render(l.empty)
	}

	height := l.height
	if height <= 0 {
		height = len(l.items)
	}
	var lines []string
	end := l.scrollOffset + height
	if end > len(l.items) {
		end = len(l.items)
	}

	for i := l.scrollOffset; i < end; i++ {
		item := l.items[i]

		if item.isHeader {
			line := sectionHeaderStyle.Render(item.title)
			if i > 0 {
				line = "\n" + line
			}
			lines = append(lines, line)
			continue
		}

		text := item.title
		if item.desc != "" {
			text += "  " + itemDescStyle.Render(item.desc)
		}
		// Truncate to fit width (2 for indent prefix)
		if maxWidth := width - 2; maxWidth > 0 {
			text = ansi.Truncate(text, maxWidth, "…")
		}

		if i == l.cursor {
			text = selectedItemStyle.Width(width - 2).Render(text)
		}
		lines = append(lines, "  "+text)
	}

	// Scroll indicators
	if l.scrollOffset > 0 {
		lines = append([]string{lipgloss.NewStyle().Foreground(colorDim).Render("  ▲ more")}, lines...)
	}
	if end < len(l.items) {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorDim).Render("  ▼ more"))
	}

	return strings.Join(lines, "\n")
}
