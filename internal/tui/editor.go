package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// EditorPanel is the code editor shown in developer mode.
type EditorPanel struct {
	area textarea.Model
}

// NewEditorPanel creates an empty editor.
func NewEditorPanel() *EditorPanel {
	ta := textarea.New()
	ta.Placeholder = "<!-- start typing -->"
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	return &EditorPanel{area: ta}
}

// SetSize updates dimensions.
func (e *EditorPanel) SetSize(width, height int) {
	e.area.SetWidth(width)
	e.area.SetHeight(height - 1) // title
}

// SetValue replaces the buffer when it differs, keeping the cursor otherwise.
func (e *EditorPanel) SetValue(code string) {
	if e.area.Value() != code {
		e.area.SetValue(code)
	}
}

// Value returns the buffer.
func (e *EditorPanel) Value() string { return e.area.Value() }

// Focus focuses the text area.
func (e *EditorPanel) Focus() { e.area.Focus() }

// Blur blurs the text area.
func (e *EditorPanel) Blur() { e.area.Blur() }

// Update forwards a key and reports whether the buffer changed.
func (e *EditorPanel) Update(msg tea.KeyMsg) (changed bool) {
	before := e.area.Value()
	e.area, _ = e.area.Update(msg)
	return e.area.Value() != before
}

// View renders the editor.
func (e *EditorPanel) View() string {
	return e.area.View()
}

// PreviewPanel is a read-only view of the code.
type PreviewPanel struct {
	viewport viewport.Model
	content  string
}

// NewPreviewPanel creates an empty preview.
func NewPreviewPanel() *PreviewPanel {
	return &PreviewPanel{viewport: viewport.New(40, 10)}
}

// SetSize updates dimensions.
func (p *PreviewPanel) SetSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = height - 1 // title
}

// SetContent updates the previewed code.
func (p *PreviewPanel) SetContent(code string) {
	if code == p.content {
		return
	}
	p.content = code
	lines := strings.Split(code, "\n")
	gutter := lipgloss.NewStyle().Foreground(colorDim)
	width := len(fmt.Sprint(len(lines)))
	for i, l := range lines {
		lines[i] = gutter.Render(fmt.Sprintf("%*d ", width, i+1)) + l
	}
	p.viewport.SetContent(strings.Join(lines, "\n"))
}

// ScrollUp scrolls the viewport up.
func (p *PreviewPanel) ScrollUp(n int) { p.viewport.ScrollUp(n) }

// ScrollDown scrolls the viewport down.
func (p *PreviewPanel) ScrollDown(n int) { p.viewport.ScrollDown(n) }

// View renders the preview.
func (p *PreviewPanel) View() string {
	if p.content == "" {
		return lipgloss.NewStyle().Foreground(colorDim).Render("Nothing to preview yet. Describe a page in the chat.")
	}
	return p.viewport.View()
}
