package cli

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kindling-io/kindling/internal/config"
	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/workspace"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Show or change global settings",
	Long: `Show or change the global settings in ~/.kindling/settings.yaml.

Keys:
  share_origin        Origin used for share links (absolute URL)
  save_debounce       Quiet period before an edit is saved (e.g. 1s)
  log_level           debug, info, warn or error
  store.backend       file, sqlite, remote or memory
  store.address       host:port of kindlingd for the remote backend
  store.path          Database file for the sqlite backend
  generator.command   Executable that turns prompts into code
  generator.args      Space separated arguments for the generator
  generator.timeout   Generator time limit (e.g. 2m, 0 for none)
  keybindings.<name>  Chord for a shortcut, e.g. keybindings.saveProject=ctrl+s`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsShowCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	out := cmd.OutOrStdout()
	row := func(k, v string) {
		if v == "" {
			v = styleHint.Render("(empty)")
		} else {
			v = styleValue.Render(v)
		}
		fmt.Fprintf(out, "  %s %s\n", styleLabel.Render(fmt.Sprintf("%-19s", k)), v)
	}
	row("share_origin", settings.ShareOrigin)
	row("save_debounce", settings.SaveDebounce)
	row("log_level", settings.LogLevel)
	row("store.backend", settings.Store.Backend)
	row("store.address", settings.Store.Address)
	row("store.path", settings.Store.Path)
	row("generator.command", settings.Generator.Command)
	row("generator.args", strings.Join(settings.Generator.Args, " "))
	row("generator.timeout", settings.Generator.Timeout)

	names := make([]string, 0, len(settings.Keybindings))
	for name := range settings.Keybindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row("keybindings."+name, settings.Keybindings[name])
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	key, value, ok := strings.Cut(args[0], "=")
	if len(args) == 2 {
		if ok {
			return fmt.Errorf("use either 'key value' or 'key=value'")
		}
		value = args[1]
	} else if !ok {
		return fmt.Errorf("missing value for %s", key)
	}

	if err := setSetting(settings, strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
		return err
	}
	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("Updated "+key+"."))
	if strings.HasPrefix(key, "store.") {
		fmt.Fprintln(cmd.OutOrStdout(), styleWarning.Render("Restart running workspaces to switch stores."))
	}
	return nil
}

// setSetting validates value and writes it to key.
func setSetting(s *models.Settings, key, value string) error {
	switch key {
	case "share_origin":
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("share_origin must be an absolute URL, got %q", value)
		}
		s.ShareOrigin = strings.TrimRight(value, "/")
	case "save_debounce":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("save_debounce must be a positive duration, got %q", value)
		}
		s.SaveDebounce = value
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			s.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("log_level must be debug, info, warn or error, got %q", value)
		}
	case "store.backend":
		switch value {
		case models.StoreBackendFile, models.StoreBackendSQLite, models.StoreBackendRemote, models.StoreBackendMemory:
			s.Store.Backend = value
		default:
			return fmt.Errorf("store.backend must be file, sqlite, remote or memory, got %q", value)
		}
	case "store.address":
		s.Store.Address = value
	case "store.path":
		s.Store.Path = value
	case "generator.command":
		s.Generator.Command = value
	case "generator.args":
		s.Generator.Args = strings.Fields(value)
	case "generator.timeout":
		if d, err := time.ParseDuration(value); err != nil || d < 0 {
			return fmt.Errorf("generator.timeout must be a duration, got %q", value)
		}
		s.Generator.Timeout = value
	default:
		name, ok := strings.CutPrefix(key, "keybindings.")
		if !ok || name == "" {
			return fmt.Errorf("unknown setting %q", key)
		}
		return setKeybinding(s, name, value)
	}
	return nil
}

// setKeybinding stores a chord override, or removes it for an empty value.
func setKeybinding(s *models.Settings, name, chord string) error {
	if chord == "" {
		delete(s.Keybindings, name)
		return nil
	}
	overrides := map[string]string{name: chord}
	if _, err := workspace.DefaultBindings(nil, overrides); err != nil {
		return err
	}
	if s.Keybindings == nil {
		s.Keybindings = make(map[string]string)
	}
	s.Keybindings[name] = chord
	return nil
}
