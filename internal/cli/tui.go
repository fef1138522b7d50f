package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kindling-io/kindling/internal/auth"
	"github.com/kindling-io/kindling/internal/config"
	"github.com/kindling-io/kindling/internal/generator"
	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/store"
	"github.com/kindling-io/kindling/internal/templates"
	"github.com/kindling-io/kindling/internal/tui"
	"github.com/kindling-io/kindling/internal/workspace"
)

// runTUI opens the interactive workspace.
func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the workspace needs a terminal; use 'kindling project' for scripting")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	logger, closeLog, err := config.OpenLogFile(settings.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("starting kindling", "backend", settings.Store.Backend)

	if settings.Store.Backend == models.StoreBackendRemote && settings.Store.Address == "" {
		if err := EnsureDaemon(""); err != nil {
			return err
		}
	}

	st, err := store.Open(settings)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", settings.Store.Backend, err)
	}
	defer st.Close()

	provider, err := auth.NewFileProvider(logger.With("component", "auth"))
	if err != nil {
		return fmt.Errorf("failed to watch session: %w", err)
	}
	if err := provider.Start(); err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	defer provider.Stop()

	tplDir, err := config.GlobalTemplatesDir()
	if err != nil {
		return err
	}
	catalog, err := templates.Load(tplDir)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	var gen generator.Generator
	cmdGen, err := generator.FromSettings(settings, logger)
	switch {
	case err == nil:
		gen = cmdGen
	case errors.Is(err, generator.ErrNotConfigured):
		logger.Info("no generator configured, chat disabled")
	default:
		logger.Warn("generator unavailable", "error", err)
	}

	ws := workspace.New(workspace.Options{
		Store:       st,
		Logger:      logger,
		Debounce:    settings.DebounceInterval(),
		ShareOrigin: settings.ShareOrigin,
	})
	router := workspace.NewRouter(ws, logger)

	bindings, err := workspace.DefaultBindings(router, settings.Keybindings)
	if err != nil {
		return fmt.Errorf("invalid keybindings in settings: %w", err)
	}
	registry := workspace.NewRegistry()
	registry.Register(bindings...)

	return tui.Run(cmd.Context(), tui.Options{
		Workspace: ws,
		Router:    router,
		Registry:  registry,
		Bus:       workspace.NewBus(0),
		Auth:      provider,
		Templates: catalog,
		Generator: gen,
		Settings:  settings,
		Backend:   settings.Store.Backend,
		Logger:    logger,
	})
}
