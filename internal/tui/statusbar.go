package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kindling-io/kindling/internal/workspace"
)

// confirmMode values.
const (
	confirmNone   = 0
	confirmDelete = 1
	confirmQuit   = 2
)

func renderStatusBar(m *Model, width int) string {
	switch m.confirmMode {
	case confirmDelete:
		name := ""
		if m.confirmProject != nil {
			name = m.confirmProject.Name
		}
		return renderConfirmBar("Delete project \""+name+"\"? (y/n)", width)
	case confirmQuit:
		return renderConfirmBar("Unsaved changes. Quit anyway? (y/n)", width)
	}

	// Error display
	if m.err != nil {
		return renderErrorBar(m.err.Error(), width)
	}

	left := " " + getKeyHints(m)

	var right []string
	if m.snap.View == workspace.ViewWorkspace {
		right = append(right, renderBuildStatus(m.snap.Save, m.now()))
	}
	right = append(right, hintStyle.Render(m.backend))
	rightStr := strings.Join(right, hintStyle.Render(" · ")) + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if gap < 1 {
		gap = 1
	}

	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + rightStr)
}

func renderBuildStatus(s workspace.SaveStatus, now time.Time) string {
	switch s.Status {
	case workspace.BuildBuilding:
		return buildBuildingStyle.Render("● Saving...")
	case workspace.BuildError:
		return buildErrorStyle.Render("✗ Save failed")
	}
	if s.LastSavedAt.IsZero() {
		return buildSuccessStyle.Render("✓ Up to date")
	}
	return buildSuccessStyle.Render("✓ Saved " + relativeTime(now, s.LastSavedAt))
}

func getKeyHints(m *Model) string {
	if m.palette.IsOpen() {
		return keyHint("↑/↓", "select") + "  " + keyHint("Enter", "run") + "  " + keyHint("Esc", "close")
	}
	if m.snap.Editor.ShowSettings {
		return keyHint("j/k", "navigate") + "  " + keyHint("Enter", "edit") + "  " +
			keyHint("Space", "toggle") + "  " + keyHint("Esc", "close")
	}

	base := keyHint("Ctrl+q", "quit") + "  " + keyHint(m.chordLabel("showShortcuts", "Ctrl+/"), "shortcuts")

	switch m.snap.View {
	case workspace.ViewLanding:
		return base
	case workspace.ViewProjectManager:
		return base + "  " + keyHint("Enter", "open") + "  " + keyHint("n", "new") + "  " +
			keyHint("x", "delete") + "  " + keyHint("r", "reload")
	case workspace.ViewTemplatePicker:
		return base + "  " + keyHint("Enter", "create") + "  " + keyHint("Esc", "back")
	}

	hints := base + "  " + keyHint(m.chordLabel("openCommandPalette", "Ctrl+k"), "commands") + "  " +
		keyHint("Tab", "switch") + "  " + keyHint("Ctrl+w", "close")
	switch m.focusedPanel() {
	case workspace.PanelChat:
		hints += "  " + keyHint("Enter", "generate")
	case workspace.PanelAssistant:
		hints += "  " + keyHint("Enter", "ask") + "  " + keyHint("Ctrl+y", "apply")
	case workspace.PanelEditor:
		hints += "  " + keyHint(m.chordLabel("saveProject", "Ctrl+s"), "save")
	}
	return hints
}

func keyHint(k, desc string) string {
	if k == "" {
		return hintStyle.Render(desc)
	}
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderConfirmBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorYellow).
		Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "0"}).
		Width(width).
		Render(" " + msg)
}

func renderErrorBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorRed).
		Width(width).
		Render(" " + msg)
}

// renderToastLine styles a notice for the toast corner.
func renderToastLine(level workspace.NoticeLevel, msg string) string {
	switch level {
	case workspace.NoticeSuccess:
		return toastSuccessStyle.Render("✓ " + msg)
	case workspace.NoticeError:
		return toastErrorStyle.Render("✗ " + msg)
	}
	return toastInfoStyle.Render(msg)
}
