// Package cli implements the command line of the mdBook diagram
// preprocessors.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mdbook-svg/pkg/buildinfo"
	"github.com/matzehuels/mdbook-svg/pkg/cache"
	"github.com/matzehuels/mdbook-svg/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mdbook-svg"

	// cacheFile selects the on-disk cache below the default cache directory.
	cacheFile = "file"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands of one preprocessor.
type CLI struct {
	Logger *log.Logger
	Preset config.Preset

	// In and Out carry the mdBook protocol. They default to stdin/stdout.
	In  io.Reader
	Out io.Writer

	// Getenv reads environment overrides. It defaults to os.Getenv.
	Getenv func(string) string
}

// New creates a CLI for preset with a logger writing to w.
func New(w io.Writer, level log.Level, preset config.Preset) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Preset: preset,
		In:     os.Stdin,
		Out:    os.Stdout,
		Getenv: os.Getenv,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// name is the executable name mdBook knows the preprocessor by.
func (c *CLI) name() string {
	return "mdbook-" + c.Preset.Name
}

// RootCommand creates the root cobra command with all subcommands registered.
// Run without arguments it acts as the mdBook preprocessor.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   c.name(),
		Short: fmt.Sprintf("mdBook preprocessor that renders %s diagrams to SVG", c.Preset.Name),
		Long: fmt.Sprintf(`%s replaces fenced code blocks marked %q with rendered SVG.

mdBook runs it as a preprocessor: the book arrives as JSON on stdin and
leaves, with every diagram rendered, on stdout. Configure it in book.toml:

  [preprocessor.%s]
  after = ["links"]`, c.name(), c.Preset.InfoString, c.Preset.Name),
		Version:       buildinfo.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreprocess(cmd.Context())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.supportsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// loadConfig decodes the preprocessor table and applies defaults,
// environment overrides and validation.
func (c *CLI) loadConfig(cfg config.Config) (config.Config, error) {
	cfg.SetDefaults(c.Preset)
	if err := cfg.ApplyEnv(c.Getenv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	c.Logger.Debug("loaded config", "preprocessor", c.Preset.Name, "config", cfg.String())
	return cfg, nil
}

// =============================================================================
// Cache
// =============================================================================

// openCache opens the cache the config selects. The cache setting "file" means the
// on-disk cache in cache-dir, or in the default cache directory.
func (c *CLI) openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	spec := cfg.Cache
	if spec == cacheFile {
		dir := cfg.CacheDir
		if dir == "" {
			d, err := c.cacheDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		spec = "file://" + dir
	}
	return cache.Open(ctx, spec)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the preset's cache directory using the XDG standard
// (~/.cache/mdbook-svg/<preset>/).
func (c *CLI) cacheDir() (string, error) {
	if cacheHome := c.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName, c.Preset.Name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName, c.Preset.Name), nil
}
