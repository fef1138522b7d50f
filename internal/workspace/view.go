package workspace

import "time"

// View is the single active screen.
type View int

const (
	ViewLanding View = iota
	ViewTemplatePicker
	ViewProjectManager
	ViewWorkspace
)

func (v View) String() string {
	switch v {
	case ViewLanding:
		return "landing"
	case ViewTemplatePicker:
		return "template-picker"
	case ViewProjectManager:
		return "project-manager"
	case ViewWorkspace:
		return "workspace"
	default:
		return "unknown"
	}
}

// BuildStatus is the outcome of the latest settled save.
type BuildStatus int

const (
	BuildSuccess BuildStatus = iota
	BuildBuilding
	BuildError
)

func (s BuildStatus) String() string {
	switch s {
	case BuildSuccess:
		return "success"
	case BuildBuilding:
		return "building"
	case BuildError:
		return "error"
	default:
		return "unknown"
	}
}

// SaveStatus tracks persistence of the current project.
type SaveStatus struct {
	Status      BuildStatus
	LastSavedAt time.Time // zero until the first successful save
	Err         error     // set while Status is BuildError
}

// EditorState holds the code buffer and the independent panel flags.
type EditorState struct {
	CurrentCode        string
	DevMode            bool
	ShowAIAssistant    bool
	ShowCommandPalette bool
	ShowShortcutsHelp  bool
	ShowSettings       bool
}

// Panel identifies a workspace panel.
type Panel int

const (
	PanelChat Panel = iota
	PanelEditor
	PanelPreview
	PanelAssistant
	PanelCollaboration
)

func (p Panel) String() string {
	switch p {
	case PanelChat:
		return "Chat"
	case PanelEditor:
		return "Editor"
	case PanelPreview:
		return "Preview"
	case PanelAssistant:
		return "AI Assistant"
	case PanelCollaboration:
		return "Collaboration"
	default:
		return "?"
	}
}

// PanelLayout assigns panels to the three workspace slots.
type PanelLayout struct {
	Left Panel
	Main Panel
	Side Panel
}

// LayoutFor derives the slot assignment from the editor flags. Dev mode
// puts the editor in front with the preview beside it; otherwise the
// preview is in front and the side slot shows the assistant or the
// collaboration panel.
func LayoutFor(e EditorState) PanelLayout {
	l := PanelLayout{Left: PanelChat}
	switch {
	case e.DevMode:
		l.Main, l.Side = PanelEditor, PanelPreview
	case e.ShowAIAssistant:
		l.Main, l.Side = PanelPreview, PanelAssistant
	default:
		l.Main, l.Side = PanelPreview, PanelCollaboration
	}
	return l
}
