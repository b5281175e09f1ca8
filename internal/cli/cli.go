// Package cli implements the kirchhoff command-line interface.
//
// Commands read a netlist (line, TOML or JSON format, picked from the file
// extension or --input-format), run the analysis pipeline and print results
// as styled tables or, with --json, as the pipeline's report.
//
// # Commands
//
//   - solve: branch currents of the full circuit
//   - reduce: branch currents of the constant (capacitor-free) part
//   - analyze: classification, spanning tree, cycles and partition
//   - render: Graphviz drawings of the circuit or its currents
//   - convert: rewrite a netlist in another format
//   - simulate: trajectory of dX/dt = A·X from a problem file
//   - explore: interactive browser for cycles and equations
//   - serve: HTTP API
//   - cache: manage the report cache
//
// # Configuration
//
// Defaults come from $XDG_CONFIG_HOME/kirchhoff/config.toml (see package
// config); flags override them.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kirchhoff/pkg/buildinfo"
	"github.com/matzehuels/kirchhoff/pkg/cache"
	"github.com/matzehuels/kirchhoff/pkg/config"
	"github.com/matzehuels/kirchhoff/pkg/errors"
	"github.com/matzehuels/kirchhoff/pkg/observability"
	"github.com/matzehuels/kirchhoff/pkg/pipeline"
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	noCache    bool
	redisURL   string
	verbose    bool
	quiet      bool
}

// New creates a CLI that logs to w at info level with the default
// configuration. Flags and the config file take effect when a command runs.
func New(w io.Writer) *CLI {
	return &CLI{
		Logger: newLogger(w, log.InfoLevel),
		Config: config.Default(),
	}
}

// ExitCode maps the error returned by the root command to a process exit
// status: 0 on success, 130 on interrupt, 2 when the circuit description is
// at fault and 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, context.Canceled):
		return 130
	case errors.IsUserError(err):
		return 2
	}
	return 1
}

func (c *CLI) logLevel() log.Level {
	switch {
	case c.verbose:
		return log.DebugLevel
	case c.quiet:
		return log.WarnLevel
	}
	return log.InfoLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "kirchhoff",
		Short:        "Kirchhoff solves linear circuits by fundamental cycle analysis",
		Long:         `Kirchhoff reads a circuit netlist, builds its spanning tree and fundamental cycles, assembles Kirchhoff's voltage and current laws into a linear system and solves it for every branch current.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.Logger.SetLevel(c.logLevel())
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/kirchhoff/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the report cache")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output")
	root.PersistentFlags().BoolVarP(&c.quiet, "quiet", "q", false, "log warnings and errors only")
	root.PersistentFlags().StringVar(&c.redisURL, "redis", "", "cache reports in redis at this URL instead of on disk")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.reduceCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// loadConfig reads the configuration file and installs logging hooks.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.redisURL != "" {
		c.Config.Cache.RedisURL = c.redisURL
	}
	if c.noCache {
		c.Config.Cache.Disabled = true
	}

	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if _, ok := cc.(*cache.RedisCache); ok {
		// A redis server may be shared with other applications.
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), config.AppName+":")
	}
	runner := pipeline.NewRunner(cc, keyer, c.Logger)
	runner.ReportTTL = time.Duration(c.Config.Cache.TTL)
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	cfg := c.Config.Cache
	if cfg.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		return rc, nil
	}
	dir, err := c.Config.CacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}
