package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kindling-io/kindling/internal/workspace"
)

func renderHeader(snap workspace.Snapshot, width int) string {
	dot := lipgloss.NewStyle().Foreground(colorOrange).Render("●")
	name := lipgloss.NewStyle().Bold(true).Render("Kindling")

	var title string
	switch snap.View {
	case workspace.ViewLanding:
		title = ""
	case workspace.ViewProjectManager:
		title = "Projects"
	case workspace.ViewTemplatePicker:
		title = "New project"
	case workspace.ViewWorkspace:
		if snap.Project != nil {
			title = snap.Project.Name
		}
	}

	left := fmt.Sprintf(" %s %s", dot, name)
	if title != "" {
		left += hintStyle.Render(" / ") + lipgloss.NewStyle().Bold(true).Render(title)
	}

	var badges []string
	if snap.View == workspace.ViewWorkspace {
		badges = append(badges, renderModeBadge(snap.Editor))
		if snap.IsOwner {
			badges = append(badges, badgeOwnerStyle.Render("owner"))
		} else {
			badges = append(badges, badgeViewerStyle.Render("viewer"))
		}
	}
	switch {
	case snap.Auth.Loading:
		badges = append(badges, hintStyle.Render("signing in..."))
	case snap.Auth.User != nil:
		badges = append(badges, hintStyle.Render(snap.Auth.User.Email))
	}
	right := strings.Join(badges, "  ") + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderModeBadge(e workspace.EditorState) string {
	if e.DevMode {
		return badgeDevStyle.Render("● Dev")
	}
	if e.ShowAIAssistant {
		return badgePreviewStyle.Render("● Preview + AI")
	}
	return badgePreviewStyle.Render("● Preview")
}
