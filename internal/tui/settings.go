package tui

import (
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/workspace"
)

// FieldType defines the type of a settings field.
type FieldType int

const (
	fieldText FieldType = iota
	fieldToggle
)

// Settings field keys.
const (
	settingDevMode      = "dev_mode"
	settingAIAssistant  = "ai_assistant"
	settingShareOrigin  = "share_origin"
	settingSaveDebounce = "save_debounce"
	settingGenerator    = "generator.command"
	settingStoreBackend = "store.backend"
	settingLogLevel     = "log_level"
)

// SettingsField is a single field in the settings form.
type SettingsField struct {
	Label     string
	Key       string
	Value     string
	BoolValue bool
	Type      FieldType
}

// SettingsForm is the settings dialog. Toggles act on the open workspace;
// text fields are written to settings.yaml.
type SettingsForm struct {
	fields  []SettingsField
	cursor  int
	editing bool
	invalid string
	input   textinput.Model
	width   int
}

// NewSettingsForm creates a new settings form.
func NewSettingsForm() *SettingsForm {
	ti := textinput.New()
	ti.CharLimit = 200
	return &SettingsForm{
		input: ti,
		width: 60,
	}
}

// Load populates fields from the editor flags and the persisted settings.
func (s *SettingsForm) Load(editor workspace.EditorState, settings *models.Settings) {
	if settings == nil {
		settings = models.NewSettings()
	}
	s.fields = []SettingsField{
		{Label: "Developer mode", Key: settingDevMode, BoolValue: editor.DevMode, Type: fieldToggle},
		{Label: "AI assistant", Key: settingAIAssistant, BoolValue: editor.ShowAIAssistant, Type: fieldToggle},
		{Label: "Share origin", Key: settingShareOrigin, Value: settings.ShareOrigin, Type: fieldText},
		{Label: "Save debounce", Key: settingSaveDebounce, Value: settings.SaveDebounce, Type: fieldText},
		{Label: "Generator command", Key: settingGenerator, Value: settings.Generator.Command, Type: fieldText},
		{Label: "Store backend", Key: settingStoreBackend, Value: settings.Store.Backend, Type: fieldText},
		{Label: "Log level", Key: settingLogLevel, Value: settings.LogLevel, Type: fieldText},
	}
	if s.cursor >= len(s.fields) {
		s.cursor = 0
	}
}

// SetWidth updates the overlay width.
func (s *SettingsForm) SetWidth(width int) {
	s.width = width
	s.input.Width = width - 26
}

// MoveUp moves cursor up.
func (s *SettingsForm) MoveUp() {
	if !s.editing && s.cursor > 0 {
		s.cursor--
	}
}

// MoveDown moves cursor down.
func (s *SettingsForm) MoveDown() {
	if !s.editing && s.cursor < len(s.fields)-1 {
		s.cursor++
	}
}

// Toggle flips a boolean field.
func (s *SettingsForm) Toggle() (changed bool, key string, value any) {
	if s.cursor < 0 || s.cursor >= len(s.fields) {
		return false, "", nil
	}
	f := &s.fields[s.cursor]
	if f.Type == fieldToggle {
		f.BoolValue = !f.BoolValue
		return true, f.Key, f.BoolValue
	}
	return false, "", nil
}

// StartEdit begins inline editing of the current text field.
func (s *SettingsForm) StartEdit() bool {
	if s.cursor < 0 || s.cursor >= len(s.fields) {
		return false
	}
	f := s.fields[s.cursor]
	if f.Type != fieldText {
		return false
	}
	s.editing = true
	s.invalid = ""
	s.input.SetValue(f.Value)
	s.input.CursorEnd()
	s.input.Focus()
	return true
}

// FinishEdit confirms the current edit. Invalid values are rejected and
// keep the previous value.
func (s *SettingsForm) FinishEdit() (changed bool, key string, value any) {
	if !s.editing {
		return false, "", nil
	}
	s.editing = false
	s.input.Blur()

	f := &s.fields[s.cursor]
	newVal := strings.TrimSpace(s.input.Value())

	if msg := validateSetting(f.Key, newVal); msg != "" {
		s.invalid = msg
		return false, "", nil
	}
	s.invalid = ""

	if newVal != f.Value {
		f.Value = newVal
		return true, f.Key, newVal
	}
	return false, "", nil
}

// CancelEdit cancels the current edit.
func (s *SettingsForm) CancelEdit() {
	s.editing = false
	s.input.Blur()
}

// IsEditing returns whether a field is being edited.
func (s *SettingsForm) IsEditing() bool {
	return s.editing
}

// InputModel returns the text input model for Update forwarding.
func (s *SettingsForm) InputModel() *textinput.Model {
	return &s.input
}

// View renders the settings overlay.
func (s *SettingsForm) View() string {
	var lines []string
	lines = append(lines, overlayTitleStyle.Render("Settings"))

	for i, f := range s.fields {
		var line string
		label := settingsLabelStyle.Render(f.Label + ":")

		if f.Type == fieldToggle {
			var val string
			if f.BoolValue {
				val = settingsToggleOn.Render("[ON]")
			} else {
				val = settingsToggleOff.Render("[OFF]")
			}
			line = label + " " + val
		} else {
			if s.editing && i == s.cursor {
				line = label + " " + s.input.View()
			} else {
				val := f.Value
				if val == "" {
					val = lipgloss.NewStyle().Foreground(colorDim).Render("(empty)")
				} else {
					val = settingsValueStyle.Render(val)
				}
				line = label + " " + val
			}
		}

		if i == s.cursor {
			line = settingsCursorStyle.Width(s.width - 6).Render(line)
		}
		lines = append(lines, line)
	}

	lines = append(lines, "")
	if s.invalid != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorRed).Render(s.invalid))
	}
	lines = append(lines, overlayDimStyle.Render("Enter edit · Space toggle · Esc close"))
	lines = append(lines, overlayDimStyle.Render("Text fields are saved to settings.yaml and apply on next launch"))

	return overlayStyle.Width(s.width).Render(strings.Join(lines, "\n"))
}

func validateSetting(key, value string) string {
	switch key {
	case settingShareOrigin:
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "Share origin must be an absolute URL"
		}
	case settingSaveDebounce:
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return "Save debounce must be a positive duration like 1s or 500ms"
		}
	case settingStoreBackend:
		switch value {
		case models.StoreBackendFile, models.StoreBackendSQLite, models.StoreBackendRemote, models.StoreBackendMemory:
		default:
			return "Store backend must be file, sqlite, remote or memory"
		}
	case settingLogLevel:
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
		default:
			return "Log level must be debug, info, warn or error"
		}
	}
	return ""
}

// applySetting writes a text field into settings.
func applySetting(settings *models.Settings, key, value string) {
	switch key {
	case settingShareOrigin:
		settings.ShareOrigin = value
	case settingSaveDebounce:
		settings.SaveDebounce = value
	case settingGenerator:
		settings.Generator.Command = value
	case settingStoreBackend:
		settings.Store.Backend = value
	case settingLogLevel:
		settings.LogLevel = strings.ToLower(value)
	}
}
