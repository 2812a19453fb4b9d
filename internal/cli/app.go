package cli

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/seniorplus/agenda/internal/config"
	"github.com/seniorplus/agenda/internal/event"
	"github.com/seniorplus/agenda/internal/importer"
	"github.com/seniorplus/agenda/internal/kv"
	"github.com/seniorplus/agenda/internal/persist"
	"github.com/seniorplus/agenda/internal/store"
	"github.com/seniorplus/agenda/internal/tabsync"
)

// App is the assembled command stack: configuration, storage and the event
// store with a user session established. Close releases the database handle.
type App struct {
	Config  *config.Config
	DB      *kv.Store
	Layer   *persist.Layer
	Store   *store.EventStore
	Watcher *tabsync.Watcher
	Clock   event.Clock
}

// Close releases the storage handle.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// newApp builds the full stack for a command invocation.
//
// The config file is resolved from --config or the default location and
// created on first run; --db overrides the configured storage path without
// touching the config file. Store notifications go to the command's stdout
// and stderr unless JSON output is requested.
func newApp(cmd *cobra.Command, opts *RootOptions) (*App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	storagePath := cfg.StoragePath
	if opts.Database != "" {
		storagePath = opts.Database
	}
	if dir := filepath.Dir(storagePath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to create storage directory", err)
		}
	}

	db, err := kv.Open(storagePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open storage", err)
	}

	log := slog.Default()
	clock := event.SystemClock{}
	norm := event.NewNormalizer(event.UUIDv7Generator{}, clock, cfg.Location())
	layer := persist.NewLayer(db, norm, clock, log)

	validator, err := importer.NewValidator(norm)
	if err != nil {
		db.Close()
		return nil, WrapExitError(ExitCommandError, "failed to build import validator", err)
	}

	notify := newConsoleNotifier(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Format == "json")
	st := store.New(layer, validator, clock, notify)
	st.SetUser(cmd.Context(), cfg.User)

	return &App{
		Config:  cfg,
		DB:      db,
		Layer:   layer,
		Store:   st,
		Watcher: tabsync.New(layer, st, log),
		Clock:   clock,
	}, nil
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.Config
	if path == "" {
		path = defaultConfigPath()
	}
	return config.Load(path)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".agenda", "config.yaml")
}

// newFormatter builds the formatter for a command using its own writers so
// tests can capture output.
func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
