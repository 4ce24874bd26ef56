package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vitalsgrid/pkg/buildinfo"
	"github.com/matzehuels/vitalsgrid/pkg/cache"
	"github.com/matzehuels/vitalsgrid/pkg/config"
	"github.com/matzehuels/vitalsgrid/pkg/feed"
	"github.com/matzehuels/vitalsgrid/pkg/integrations/coingecko"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "vitalsgrid"

	// defaultFetchTimeout bounds one data fetch from the CLI.
	defaultFetchTimeout = 30 * time.Second
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

	// configPath is set by --config; empty means the default location.
	configPath string
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
		Use:   appName,
		Short: "vitalsgrid is a grid dashboard for Core Web Vitals",
		Long: `vitalsgrid lays out chart tiles on a fixed-column grid, lets you move and
resize them without overlaps, and keeps their data current from a record
source and a real-time feed.

Run it as an interactive terminal dashboard or serve the same board over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(c.attachLogger(cmd.Context()))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/vitalsgrid/config.toml)")

	root.AddCommand(c.dashboardCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.vitalsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the settings file once per process.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.cfg = &cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "source", cfg.Data.Source, "columns", cfg.Grid.Columns)
	return cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// openCache opens the configured cache, or a null cache when disabled.
// A cache that fails to open is logged and replaced by a null cache.
func (c *CLI) openCache(ctx context.Context, cfg config.Config, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	backend, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "backend", cfg.Cache.Backend, "error", err)
		return cache.NewNullCache()
	}
	return backend
}

// source bundles what a data source provides to commands.
type source struct {
	fetcher vitals.Fetcher
	// service is nil for sources without raw records.
	service *vitals.Service
	close   func()
}

// newSource builds the configured data source over backend.
func (c *CLI) newSource(ctx context.Context, cfg config.Config, backend cache.Cache) (*source, error) {
	ttl := cfg.Cache.TTL.Duration
	switch cfg.Data.Source {
	case config.SourceCoinGecko:
		return &source{fetcher: coingecko.NewClient(backend, ttl), close: func() {}}, nil

	case config.SourceMongo:
		mongo, err := vitals.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		svc := c.newService(mongo, backend, ttl)
		return &source{fetcher: svc, service: svc, close: func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongo.Close(closeCtx); err != nil {
				c.Logger.Warn("close mongo", "error", err)
			}
		}}, nil

	case config.SourceMemory:
		svc := c.newService(vitals.NewMemorySource(cfg.MemoryOptions()), backend, ttl)
		return &source{fetcher: svc, service: svc, close: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
}

func (c *CLI) newService(src vitals.RecordSource, backend cache.Cache, ttl time.Duration) *vitals.Service {
	svc := vitals.NewService(src)
	svc.Cache = backend
	svc.TTL = ttl
	svc.Location = time.Local
	return svc
}

// newFeed builds the configured real-time feed.
func newFeed(cfg config.Config) feed.Feed {
	if cfg.Feed.Kind == config.FeedWebSocket {
		return feed.NewWebSocket(cfg.Feed.URL)
	}
	sim := feed.NewSimulator(cfg.Feed.Interval.Duration, nil)
	if cfg.Data.AppName != "" {
		sim.AppName = cfg.Data.AppName
	}
	return sim
}
