package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type chatEntry struct {
	fromUser bool
	text     string
	failed   bool
}

// PromptPanel is a prompt input over a short history. The chat panel
// replaces the code with generator output; the assistant panel keeps the
// last suggestion until it is applied.
type PromptPanel struct {
	input      textinput.Model
	viewport   viewport.Model
	history    []chatEntry
	pending    bool
	suggestion string
	hint       string
	width      int
	height     int
}

// NewPromptPanel creates a prompt panel with the given placeholder and
// empty-state hint.
func NewPromptPanel(placeholder, hint string) *PromptPanel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 2000
	vp := viewport.New(40, 10)
	return &PromptPanel{input: ti, viewport: vp, hint: hint}
}

// SetSize updates dimensions.
func (c *PromptPanel) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.input.Width = width - 3
	vpHeight := height - 3 // title, blank line, input
	if vpHeight < 1 {
		vpHeight = 1
	}
	c.viewport.Width = width
	c.viewport.Height = vpHeight
	c.refresh()
}

// Focus focuses the input.
func (c *PromptPanel) Focus() { c.input.Focus() }

// Blur blurs the input.
func (c *PromptPanel) Blur() { c.input.Blur() }

// Update forwards a key to the input or scrolls the history.
func (c *PromptPanel) Update(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyPgUp:
		c.viewport.HalfPageUp()
		return
	case tea.KeyPgDown:
		c.viewport.HalfPageDown()
		return
	}
	c.input, _ = c.input.Update(msg)
}

// Submit takes the current prompt. It returns "" when the input is empty
// or a request is already pending.
func (c *PromptPanel) Submit() string {
	prompt := strings.TrimSpace(c.input.Value())
	if prompt == "" || c.pending {
		return ""
	}
	c.input.SetValue("")
	c.pending = true
	c.history = append(c.history, chatEntry{fromUser: true, text: prompt})
	c.refresh()
	return prompt
}

// Resolve records the outcome of the pending request.
func (c *PromptPanel) Resolve(reply string, err error) {
	c.pending = false
	if err != nil {
		c.history = append(c.history, chatEntry{text: err.Error(), failed: true})
	} else {
		c.history = append(c.history, chatEntry{text: reply})
	}
	c.refresh()
}

// Pending reports whether a request is in flight.
func (c *PromptPanel) Pending() bool { return c.pending }

// SetSuggestion stores a suggestion to apply later.
func (c *PromptPanel) SetSuggestion(code string) {
	c.suggestion = code
	c.refresh()
}

// TakeSuggestion returns and clears the stored suggestion.
func (c *PromptPanel) TakeSuggestion() string {
	s := c.suggestion
	c.suggestion = ""
	c.refresh()
	return s
}

func (c *PromptPanel) refresh() {
	var lines []string
	for _, e := range c.history {
		switch {
		case e.fromUser:
			lines = append(lines, lipgloss.NewStyle().Bold(true).Render("you: ")+e.text)
		case e.failed:
			lines = append(lines, lipgloss.NewStyle().Foreground(colorRed).Render("error: "+e.text))
		default:
			lines = append(lines, lipgloss.NewStyle().Foreground(colorCyan).Render("kindling: ")+e.text)
		}
		lines = append(lines, "")
	}
	if c.suggestion != "" {
		lines = append(lines,
			lipgloss.NewStyle().Foreground(colorGreen).Render("Suggestion ready, Ctrl+y to apply:"),
			c.suggestion,
		)
	}
	if c.pending {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorYellow).Render("thinking..."))
	}
	c.viewport.SetContent(lipgloss.NewStyle().Width(c.viewport.Width).Render(strings.Join(lines, "\n")))
	c.viewport.GotoBottom()
}

// View renders the history above the input.
func (c *PromptPanel) View() string {
	body := c.viewport.View()
	if len(c.history) == 0 && c.suggestion == "" && !c.pending {
		body = lipgloss.NewStyle().Foreground(colorDim).Width(c.width).Render(c.hint)
	}
	return body + "\n\n" + c.input.View()
}
