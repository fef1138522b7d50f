package models

import "time"

// Store backends.
const (
	StoreBackendFile   = "file"
	StoreBackendSQLite = "sqlite"
	StoreBackendRemote = "remote"
	StoreBackendMemory = "memory"
)

// DefaultSaveDebounce is the quiet period after the last edit before a save is issued.
const DefaultSaveDebounce = time.Second

// StoreConfig selects where projects are persisted.
type StoreConfig struct {
	Backend string `yaml:"backend"` // "file" | "sqlite" | "remote" | "memory"
	Address string `yaml:"address"` // host:port for "remote"; empty uses daemon.yaml
	Path    string `yaml:"path"`    // database file for "sqlite"; empty uses the default
}

// GeneratorConfig configures the external code generator.
type GeneratorConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Timeout string   `yaml:"timeout"`
}

// Settings represents global application settings.
// This corresponds to ~/.kindling/settings.yaml.
type Settings struct {
	Version      int               `yaml:"version"`
	ShareOrigin  string            `yaml:"share_origin"`
	SaveDebounce string            `yaml:"save_debounce"`
	LogLevel     string            `yaml:"log_level"`
	Store        StoreConfig       `yaml:"store"`
	Generator    GeneratorConfig   `yaml:"generator"`
	Keybindings  map[string]string `yaml:"keybindings,omitempty"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:      1,
		ShareOrigin:  "https://kindling.dev",
		SaveDebounce: DefaultSaveDebounce.String(),
		LogLevel:     "info",
		Store: StoreConfig{
			Backend: StoreBackendFile,
		},
		Generator: GeneratorConfig{
			Timeout: "2m",
		},
	}
}

// DebounceInterval parses SaveDebounce, falling back to the default when unset or invalid.
func (s *Settings) DebounceInterval() time.Duration {
	d, err := time.ParseDuration(s.SaveDebounce)
	if err != nil || d <= 0 {
		return DefaultSaveDebounce
	}
	return d
}

// GeneratorTimeout parses Generator.Timeout. Zero means no limit.
func (s *Settings) GeneratorTimeout() time.Duration {
	d, err := time.ParseDuration(s.Generator.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
