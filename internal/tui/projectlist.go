package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kindling-io/kindling/internal/models"
)

// ProjectList shows the signed-in user's projects, most recently edited first.
type ProjectList struct {
	list     listView
	projects []*models.Project
	loading  bool
}

// NewProjectList creates an empty project list.
func NewProjectList() *ProjectList {
	return &ProjectList{
		list:    listView{empty: "No projects yet. Press 'n' to start one from a template."},
		loading: true,
	}
}

// SetProjects replaces the list with the projects owned by ownerID.
func (pl *ProjectList) SetProjects(projects []*models.Project, ownerID string, now time.Time) {
	pl.loading = false
	pl.projects = pl.projects[:0]
	for _, p := range projects {
		if p.OwnerID == ownerID {
			pl.projects = append(pl.projects, p)
		}
	}
	sort.SliceStable(pl.projects, func(i, j int) bool {
		return pl.projects[i].UpdatedAt.After(pl.projects[j].UpdatedAt)
	})

	items := make([]listItem, 0, len(pl.projects)+1)
	if len(pl.projects) > 0 {
		items = append(items, listItem{isHeader: true, title: fmt.Sprintf("Your projects (%d)", len(pl.projects))})
	}
	for i, p := range pl.projects {
		desc := "edited " + relativeTime(now, p.UpdatedAt)
		if p.Description != "" {
			desc = p.Description + " · " + desc
		}
		items = append(items, listItem{title: p.Name, desc: desc, index: i})
	}
	pl.list.SetItems(items)
}

// Remove drops a project from the list without a reload.
func (pl *ProjectList) Remove(id string, ownerID string, now time.Time) {
	kept := make([]*models.Project, 0, len(pl.projects))
	for _, p := range pl.projects {
		if p.ProjectID != id {
			kept = append(kept, p)
		}
	}
	pl.SetProjects(kept, ownerID, now)
}

// SetLoading marks the list as waiting for the store.
func (pl *ProjectList) SetLoading() {
	pl.loading = true
}

// SetHeight sets the visible height.
func (pl *ProjectList) SetHeight(h int) {
	pl.list.SetHeight(h)
}

// SelectedProject returns the project under the cursor, or nil.
func (pl *ProjectList) SelectedProject() *models.Project {
	i := pl.list.Selected()
	if i < 0 || i >= len(pl.projects) {
		return nil
	}
	return pl.projects[i]
}

// MoveUp moves the cursor up.
func (pl *ProjectList) MoveUp() { pl.list.MoveUp() }

// MoveDown moves the cursor down.
func (pl *ProjectList) MoveDown() { pl.list.MoveDown() }

// View renders the list.
func (pl *ProjectList) View(width int) string {
	if pl.loading {
		return lipgloss.NewStyle().Foreground(colorDim).Render("Loading projects...")
	}
	return pl.list.View(width)
}

// relativeTime formats t relative to now, e.g. "3m ago".
func relativeTime(now, t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < 0:
		return "just now"
	case d < 10*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return strings.TrimSpace(t.Local().Format("Jan 2 15:04"))
	}
}
