package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/templates"
)

// TemplatePicker lists the template catalog grouped by category.
type TemplatePicker struct {
	list      listView
	templates []models.Template
	creating  string
}

// NewTemplatePicker builds the picker over catalog.
func NewTemplatePicker(catalog *templates.Catalog) *TemplatePicker {
	tp := &TemplatePicker{list: listView{empty: "No templates available."}}
	if catalog != nil {
		tp.templates = catalog.All()
	}

	var items []listItem
	seen := map[string]bool{}
	var order []string
	for _, t := range tp.templates {
		if !seen[t.Category] {
			seen[t.Category] = true
			order = append(order, t.Category)
		}
	}
	for _, cat := range order {
		var group []listItem
		for i, t := range tp.templates {
			if t.Category == cat {
				group = append(group, listItem{title: t.Name, desc: t.Description, index: i})
			}
		}
		name := cat
		if name == "" {
			name = "Templates"
		}
		items = append(items, listItem{isHeader: true, title: fmt.Sprintf("%s (%d)", name, len(group))})
		items = append(items, group...)
	}
	tp.list.SetItems(items)
	return tp
}

// SelectedTemplate returns the template under the cursor.
func (tp *TemplatePicker) SelectedTemplate() (models.Template, bool) {
	i := tp.list.Selected()
	if i < 0 || i >= len(tp.templates) {
		return models.Template{}, false
	}
	return tp.templates[i], true
}

// SetCreating shows a progress line while a template is instantiated.
func (tp *TemplatePicker) SetCreating(name string) {
	tp.creating = name
}

// SetHeight sets the visible height.
func (tp *TemplatePicker) SetHeight(h int) { tp.list.SetHeight(h - 2) }

// MoveUp moves the cursor up.
func (tp *TemplatePicker) MoveUp() { tp.list.MoveUp() }

// MoveDown moves the cursor down.
func (tp *TemplatePicker) MoveDown() { tp.list.MoveDown() }

// View renders the picker.
func (tp *TemplatePicker) View(width int) string {
	title := panelTitleStyle.Render("Choose a template")
	if tp.creating != "" {
		return title + "\n\n" + lipgloss.NewStyle().Foreground(colorYellow).
			Render(fmt.Sprintf("Creating project from %q...", tp.creating))
	}
	return title + "\n\n" + tp.list.View(width)
}
