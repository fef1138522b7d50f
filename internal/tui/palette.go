package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kindling-io/kindling/internal/workspace"
)

// Palette is the command palette overlay: a filter input over the
// router's commands.
type Palette struct {
	input    textinput.Model
	commands []workspace.Command
	matches  []workspace.Command
	list     listView
	open     bool
}

// NewPalette creates a palette over commands.
func NewPalette(commands []workspace.Command) *Palette {
	ti := textinput.New()
	ti.Placeholder = "Type a command"
	ti.Prompt = "> "
	ti.CharLimit = 64
	p := &Palette{
		input:    ti,
		commands: commands,
		list:     listView{empty: "No matching commands", height: 8},
	}
	p.filter()
	return p
}

// Open resets the query and focuses the input.
func (p *Palette) Open() {
	if p.open {
		return
	}
	p.open = true
	p.input.SetValue("")
	p.input.Focus()
	p.filter()
	p.list.Reset()
}

// Close blurs the input.
func (p *Palette) Close() {
	p.open = false
	p.input.Blur()
}

// IsOpen reports whether the palette is showing.
func (p *Palette) IsOpen() bool { return p.open }

// Selected returns the highlighted command.
func (p *Palette) Selected() (workspace.Command, bool) {
	i := p.list.Selected()
	if i < 0 || i >= len(p.matches) {
		return workspace.Command{}, false
	}
	return p.matches[i], true
}

// MoveUp moves the highlight up.
func (p *Palette) MoveUp() { p.list.MoveUp() }

// MoveDown moves the highlight down.
func (p *Palette) MoveDown() { p.list.MoveDown() }

// Update forwards a key to the filter input.
func (p *Palette) Update(msg tea.KeyMsg) {
	before := p.input.Value()
	p.input, _ = p.input.Update(msg)
	if p.input.Value() != before {
		p.filter()
		p.list.Reset()
	}
}

// filter keeps commands whose title, id or category contain every word
// of the query.
func (p *Palette) filter() {
	words := strings.Fields(strings.ToLower(p.input.Value()))
	p.matches = p.matches[:0]
	for _, c := range p.commands {
		hay := strings.ToLower(c.Title + " " + string(c.ID) + " " + c.Category + " " + c.Description)
		ok := true
		for _, w := range words {
			if !strings.Contains(hay, w) {
				ok = false
				break
			}
		}
		if ok {
			p.matches = append(p.matches, c)
		}
	}

	items := make([]listItem, 0, len(p.matches))
	for i, c := range p.matches {
		items = append(items, listItem{
			title: c.Title + " " + categoryStyle.Render(c.Category),
			desc:  c.Description,
			index: i,
		})
	}
	p.list.SetItems(items)
}

// View renders the overlay content.
func (p *Palette) View(width int) string {
	w := width - 10
	if w > 64 {
		w = 64
	}
	if w < 30 {
		w = 30
	}
	p.input.Width = w - 8

	body := lipgloss.JoinVertical(lipgloss.Left,
		overlayTitleStyle.Render("Command Palette"),
		p.input.View(),
		"",
		p.list.View(w-4),
		"",
		overlayDimStyle.Render("Enter to run · Esc to close"),
	)
	return overlayStyle.Width(w).Render(body)
}
