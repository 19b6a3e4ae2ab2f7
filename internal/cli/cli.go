// Package cli implements the release-stats-csv command-line interface.
//
// The root command fetches the releases of one GitHub repository, derives
// per-release download statistics and writes them to
// "./<repo>-downloads.csv". Subcommands serve the same report over HTTP
// (serve), browse it interactively (view) and manage the page cache (cache).
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context and tagged with a per-run id.
package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/releasestats/pkg/buildinfo"
	"github.com/matzehuels/releasestats/pkg/cache"
	apperrors "github.com/matzehuels/releasestats/pkg/errors"
	"github.com/matzehuels/releasestats/pkg/integrations/github"
	"github.com/matzehuels/releasestats/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "release-stats-csv"

	// tokenEnv holds the GitHub token.
	tokenEnv = "GH_TOKEN"
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

	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	opts options
}

// options holds flag values shared by the commands.
type options struct {
	configPath string
	verbose    bool

	apiURL    string
	userAgent string
	cacheDir  string
	cacheTTL  time.Duration
	noCache   bool
	redisURL  string
	timeout   time.Duration
	minDays   float64

	output        string
	formats       string
	mongoURI      string
	mongoDatabase string
	print         bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Getenv: os.Getenv,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself produces the report.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName + " <repo_owner> <repo_name>",
		Short: "Save GitHub release download numbers to a CSV file",
		Long: `Fetches the releases of a GitHub repository and saves per-release download
numbers to ./<repo_name>-downloads.csv for further analysis.

API responses are cached in /tmp and expire after one day.
A GitHub token must be provided in the GH_TOKEN environment variable.`,
		Example:       "  " + appName + " LiskHQ lisk-hub",
		Version:       buildinfo.Version,
		Args:          usageArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.opts.verbose {
				c.SetLogLevel(LogDebug)
			}
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			logger := c.Logger.With("run", newRunID())
			cmd.SetContext(withLogger(cmd.Context(), logger))
			installHooks(logger)
			return nil
		},
		RunE: c.runReport,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/"+appName+"/config.toml)")
	pf.BoolVarP(&c.opts.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&c.opts.apiURL, "api-url", github.DefaultBaseURL, "GitHub API base URL")
	pf.StringVar(&c.opts.userAgent, "user-agent", "", "User-Agent sent to GitHub (default "+appName+")")
	pf.StringVar(&c.opts.cacheDir, "cache-dir", cache.DefaultDir, "directory holding cached release pages")
	pf.DurationVar(&c.opts.cacheTTL, "cache-ttl", cache.DefaultTTL, "how long cached pages stay fresh")
	pf.BoolVar(&c.opts.noCache, "no-cache", false, "always fetch from the API")
	pf.StringVar(&c.opts.redisURL, "redis-url", "", "cache pages in redis instead of files (redis://host:6379/0)")
	pf.DurationVar(&c.opts.timeout, "timeout", 0, "per-request timeout (0 = none)")
	pf.Float64Var(&c.opts.minDays, "min-days", 0, "smallest day count used for per-day rates (0 = none)")

	f := root.Flags()
	f.StringVarP(&c.opts.output, "output", "o", "", "output file (default ./<repo>-downloads.<ext>)")
	f.StringVar(&c.opts.formats, "format", pipeline.DefaultFormat, "output formats, comma-separated (csv,json,table)")
	f.StringVar(&c.opts.mongoURI, "mongo-uri", "", "also upsert records into MongoDB")
	f.StringVar(&c.opts.mongoDatabase, "mongo-database", "", "MongoDB database name")
	f.BoolVar(&c.opts.print, "print", false, "print the report as a table")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// usageArgs requires at least n positional arguments and prints usage
// otherwise. Extra arguments are ignored.
func usageArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) >= n {
			return nil
		}
		_ = cmd.Usage()
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"requires %d arguments, received %d", n, len(args))
	}
}

// =============================================================================
// Token
// =============================================================================

const missingTokenHelp = `Please set up a GitHub token in the environment:
export GH_TOKEN=<YOUR-GITHUB-TOKEN>

If needed, you can generate a new token here:
https://github.com/settings/tokens`

// token returns the GitHub token or a missing-token error.
func (c *CLI) token() (string, error) {
	getenv := c.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	tok := getenv(tokenEnv)
	if tok == "" {
		return "", apperrors.New(apperrors.ErrCodeMissingToken, "%s", missingTokenHelp)
	}
	return tok, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newStore opens the configured page cache.
func (c *CLI) newStore(ctx context.Context) (cache.Store, error) {
	switch {
	case c.opts.noCache:
		return cache.NewNullStore(), nil
	case c.opts.redisURL != "":
		return cache.NewRedisStore(ctx, c.opts.redisURL, c.opts.cacheTTL)
	default:
		return cache.NewFileStore(c.opts.cacheDir, c.opts.cacheTTL)
	}
}

// newClient creates a GitHub client backed by the configured cache.
// The returned store must be closed by the caller.
func (c *CLI) newClient(ctx context.Context, token string) (*github.Client, cache.Store, error) {
	store, err := c.newStore(ctx)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrCodeFilesystem, err, "open cache")
	}
	client, err := github.NewClient(github.Options{
		Token:     token,
		BaseURL:   c.opts.apiURL,
		UserAgent: c.opts.userAgent,
		Store:     store,
		Timeout:   c.opts.timeout,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return client, store, nil
}

// newRunner creates a pipeline runner for one command invocation.
func (c *CLI) newRunner(ctx context.Context, sinks ...pipeline.Sink) (*pipeline.Runner, func(), error) {
	token, err := c.token()
	if err != nil {
		return nil, nil, err
	}
	client, store, err := c.newClient(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	runner := pipeline.NewRunner(client, loggerFromContext(ctx), sinks...)
	return runner, func() { _ = store.Close() }, nil
}
