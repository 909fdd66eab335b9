// Package cli implements the cardspace command-line interface.
//
// Commands load the card dataset from the configured persistence backends,
// falling back to the dataset file named by the "data" setting, and write
// every change back through the same backends.
//
// # Commands
//
//   - import, export: move whole datasets in and out
//   - import-csv: convert the curated candidate spreadsheet
//   - layout, show, resolve: inspect what the engine would do
//   - hierarchy: draw the card tree
//   - browse: navigate the card tree in the terminal
//   - serve: run the engine behind the HTTP API
//
// All commands support --verbose (-v) for debug-level logging and
// --config to name a config file explicitly.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardspace/internal/config"
	"github.com/matzehuels/cardspace/pkg/buildinfo"
	"github.com/matzehuels/cardspace/pkg/catalog"
	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/errors"
	"github.com/matzehuels/cardspace/pkg/persist"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFile string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cardspace",
		Short:         "Cardspace arranges cards in 3D space",
		Long:          `Cardspace arranges a curated set of cards in 3D space, lets you drill into their hierarchy, and serves the arrangement engine over HTTP.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var verbose bool
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		c.SetLogLevel(levelFor(verbose))
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: cardspace.{toml,yaml,json} in . or ~/.config/cardspace)")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCSVCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.hierarchyCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		c.Logger.Debug("config loaded", "file", cfg.File)
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Workspace
// =============================================================================

// workspace is a loaded dataset wired to its persistence backends.
type workspace struct {
	cfg   *config.Config
	cat   *catalog.Catalog
	store *entity.Store
	saver *persist.Saver
	// source names where the dataset came from.
	source string
}

// openWorkspace loads the dataset from the backends, or from the data file
// when the backends hold nothing. A missing data file yields an empty store.
// Store mutations are saved through the backends from then on.
func (c *CLI) openWorkspace(ctx context.Context) (*workspace, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	cat, err := cfg.LoadCatalog()
	if err != nil {
		return nil, err
	}
	backend, err := persist.Open(ctx, cfg.PersistConfig())
	if err != nil {
		return nil, err
	}

	store := entity.NewStore(entity.WithLogger(c.Logger))
	saver := persist.NewSaver(backend, store, persist.WithKey(cfg.Persist.Key), persist.WithLogger(c.Logger))
	ws := &workspace{cfg: cfg, cat: cat, store: store, saver: saver, source: backend.Name()}

	ok, err := saver.Load(ctx)
	if err != nil {
		_ = saver.Close()
		return nil, err
	}
	if !ok {
		if err := ws.loadFile(cfg.Data); err != nil {
			_ = saver.Close()
			return nil, err
		}
	}
	store.SetPersist(saver.Hook(ctx))
	c.Logger.Debug("dataset ready", "source", ws.source, "entities", store.Len())
	return ws, nil
}

func (w *workspace) loadFile(path string) error {
	w.source = "empty"
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotFound, err, "read %s", path)
	}
	if err := w.store.Import(data); err != nil {
		return err
	}
	w.source = path
	return nil
}

// save writes the dataset to the backends.
func (w *workspace) save(ctx context.Context) (bool, error) {
	return w.saver.Save(ctx)
}

func (w *workspace) Close() error { return w.saver.Close() }
