package workspace

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Modifier is a bit set of chord modifiers.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
)

// Chord is a key plus modifiers, e.g. ctrl+k.
type Chord struct {
	Key  string
	Mods Modifier
}

// String renders the chord the way ParseChord reads it.
func (c Chord) String() string {
	var parts []string
	if c.Mods&ModCtrl != 0 {
		parts = append(parts, "ctrl")
	}
	if c.Mods&ModAlt != 0 {
		parts = append(parts, "alt")
	}
	if c.Mods&ModShift != 0 {
		parts = append(parts, "shift")
	}
	key := c.Key
	// Terminals send ctrl+/ as ctrl+_; show it the way users type it.
	if c.Mods&ModCtrl != 0 && key == "_" {
		key = "/"
	}
	return strings.Join(append(parts, key), "+")
}

// ParseChord reads chords like "ctrl+k", "Ctrl+Shift+P" or "alt+enter".
// ctrl+/ and ctrl+_ are the same chord.
func ParseChord(s string) (Chord, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Chord{}, fmt.Errorf("empty key chord")
	}

	var c Chord
	// A trailing "+" is the plus key itself, e.g. "ctrl++".
	if strings.HasSuffix(s, "++") {
		c.Key = "+"
		s = strings.TrimSuffix(s, "++")
	} else if s == "+" {
		return Chord{Key: "+"}, nil
	}

	parts := strings.Split(s, "+")
	if c.Key == "" {
		c.Key = parts[len(parts)-1]
		parts = parts[:len(parts)-1]
	}
	for _, p := range parts {
		switch p {
		case "ctrl", "control", "cmd", "meta":
			c.Mods |= ModCtrl
		case "alt", "option":
			c.Mods |= ModAlt
		case "shift":
			c.Mods |= ModShift
		default:
			return Chord{}, fmt.Errorf("unknown modifier %q in %q", p, s)
		}
	}
	if c.Key == "" {
		return Chord{}, fmt.Errorf("missing key in %q", s)
	}
	if c.Mods&ModCtrl != 0 && c.Key == "/" {
		c.Key = "_"
	}
	return c, nil
}

// Binding ties a chord to an action.
type Binding struct {
	Name        string
	Chord       Chord
	Description string
	Run         func(ctx context.Context) error
}

// Registry holds bindings in registration order. When two bindings share
// a chord, the one registered first wins.
type Registry struct {
	mu       sync.RWMutex
	bindings []Binding
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends bindings.
func (r *Registry) Register(bs ...Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = append(r.bindings, bs...)
}

// Match returns the first binding for c.
func (r *Registry) Match(c Chord) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bindings {
		if b.Chord == c {
			return b, true
		}
	}
	return Binding{}, false
}

// Handle runs the first binding for c. It reports whether a binding
// captured the chord, and the action's error.
func (r *Registry) Handle(ctx context.Context, c Chord) (bool, error) {
	b, ok := r.Match(c)
	if !ok {
		return false, nil
	}
	if b.Run == nil {
		return true, nil
	}
	return true, b.Run(ctx)
}

// Bindings returns a copy of the registered bindings.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}

type defaultBinding struct {
	name  string
	chord string
	desc  string
}

// Default chords, keyed by the name used in settings keybinding overrides.
var defaultBindings = []defaultBinding{
	{"openCommandPalette", "ctrl+k", "Open command palette"},
	{"showShortcuts", "ctrl+/", "Show shortcuts"},
	{string(CmdSaveProject), "ctrl+s", "Save project"},
	{string(CmdNewProject), "ctrl+n", "New project"},
	{string(CmdToggleDevMode), "ctrl+d", "Toggle developer mode"},
	{string(CmdToggleAIAssistant), "ctrl+a", "Toggle AI assistant"},
	{string(CmdShareProject), "ctrl+l", "Copy share link"},
	{string(CmdOpenSettings), "ctrl+o", "Settings"},
}

// DefaultBindings builds the standard bindings over router. overrides
// maps a binding name to a replacement chord; unknown names are reported.
func DefaultBindings(router *Router, overrides map[string]string) ([]Binding, error) {
	known := make(map[string]bool, len(defaultBindings))
	out := make([]Binding, 0, len(defaultBindings))

	for _, d := range defaultBindings {
		known[d.name] = true
		chordStr := d.chord
		if o, ok := overrides[d.name]; ok && o != "" {
			chordStr = o
		}
		chord, err := ParseChord(chordStr)
		if err != nil {
			return nil, fmt.Errorf("keybinding %s: %w", d.name, err)
		}
		out = append(out, Binding{
			Name:        d.name,
			Chord:       chord,
			Description: d.desc,
			Run:         bindingAction(router, d.name),
		})
	}

	for name := range overrides {
		if !known[name] {
			return out, fmt.Errorf("keybinding %s: no such action", name)
		}
	}
	return out, nil
}

func bindingAction(router *Router, name string) func(context.Context) error {
	switch name {
	case "openCommandPalette":
		return func(context.Context) error {
			router.ws.SetCommandPalette(true)
			return nil
		}
	case "showShortcuts":
		return func(context.Context) error {
			router.ws.SetShortcutsHelp(true)
			return nil
		}
	default:
		id := CommandID(name)
		return func(ctx context.Context) error {
			return router.Dispatch(ctx, id, nil)
		}
	}
}
