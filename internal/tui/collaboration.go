package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kindling-io/kindling/internal/workspace"
)

// renderCollaboration shows ownership and the share link.
func renderCollaboration(snap workspace.Snapshot, width int) string {
	if snap.Project == nil {
		return ""
	}
	var lines []string

	owner := badgeViewerStyle.Render("● Viewing a project you don't own")
	if snap.IsOwner {
		owner = badgeOwnerStyle.Render("● You own this project")
	}
	lines = append(lines, owner, "")

	if snap.Auth.User != nil {
		who := snap.Auth.User.Email
		if snap.Auth.User.DisplayName != "" {
			who = snap.Auth.User.DisplayName + " <" + snap.Auth.User.Email + ">"
		}
		lines = append(lines, hintStyle.Render("Signed in as"), who, "")
	}

	lines = append(lines,
		hintStyle.Render("Share link"),
		lipgloss.NewStyle().Foreground(colorCyan).Width(width).Render(snap.ShareURL),
		"",
		keyHint("Ctrl+l", "copy link"),
	)
	return strings.Join(lines, "\n")
}
