// Package cli implements the deponpm command-line interface.
//
// The root command audits one source per run: a manifest location given as
// an argument, a batch file (--file), or a GitHub organization (--org, with
// --comprehensive or --complete for history crawls). Subcommands manage the
// commit cache and show the effective configuration.
//
// # Logging
//
// Progress is logged to stderr with charmbracelet/log at info level;
// --verbose (-v) switches to debug and registers hooks that log every stage,
// HTTP request, and cache access. Reports go to stdout or --output.
//
// # Exit Status
//
// A run that finds unclaimed names returns [ErrUnclaimed] after the report
// has been written, so main can exit 1 without printing anything further.
package cli

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/0xs3fo/ddeponpm/pkg/buildinfo"
	"github.com/0xs3fo/ddeponpm/pkg/config"
	"github.com/0xs3fo/ddeponpm/pkg/httputil"
)

// appName is the application name used for display.
const appName = "deponpm"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// ErrUnclaimed reports that the audit completed and found unclaimed names.
var ErrUnclaimed = errors.New("unclaimed dependencies found")

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer // report destination when --output is not set
}

// New creates a CLI that logs to w at the given level and writes reports to
// stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.auditCommand()
	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())

	return root
}

// =============================================================================
// Cache
// =============================================================================

// openCache returns the commit cache described by cfg, or nil when caching
// is disabled or the cache directory cannot be created.
func (c *CLI) openCache(cfg config.Config) *httputil.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return nil
	}
	cache, err := httputil.NewCache(dir, cfg.Cache.TTL.Duration)
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return nil
	}
	return cache
}

// cacheDir returns the configured cache directory, falling back to the XDG
// default (~/.cache/deponpm/).
func cacheDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return httputil.DefaultDir()
}
