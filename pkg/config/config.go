// Package config loads vitalsgrid settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/vitalsgrid/config.toml (falling back to
// ~/.config/vitalsgrid/config.toml). Every key is optional; missing keys keep
// the values from [Default], which reproduce the stock five-tile board on a
// six-column grid fed by generated data.
//
//	[grid]
//	columns = 6
//	visible_rows = 20
//
//	[data]
//	source = "memory"     # memory, mongo or coingecko
//	range = "ALL"
//
//	[feed]
//	kind = "simulator"    # simulator or websocket
//	interval = "2s"
//
//	[cache]
//	backend = "file"      # file, redis or none
//	ttl = "1m"
//
//	[[tiles]]
//	id = "chart-1"
//	kind = "bar"
//	col = 0
//	row = 0
//	width = 2
//	height = 2
//
// Command-line flags override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/vitalsgrid/pkg/cache"
	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/feed"
	"github.com/matzehuels/vitalsgrid/pkg/grid"
	"github.com/matzehuels/vitalsgrid/pkg/layout"
	"github.com/matzehuels/vitalsgrid/pkg/tile"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

// appName names the config directory.
const appName = "vitalsgrid"

// Data sources.
const (
	SourceMemory    = "memory"
	SourceMongo     = "mongo"
	SourceCoinGecko = "coingecko"
)

// Feed kinds.
const (
	FeedSimulator = "simulator"
	FeedWebSocket = "websocket"
)

// Duration is a time.Duration written as a string ("2s", "300ms").
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Config is the full settings file.
type Config struct {
	Grid   GridConfig   `toml:"grid"`
	Data   DataConfig   `toml:"data"`
	Feed   FeedConfig   `toml:"feed"`
	Cache  CacheConfig  `toml:"cache"`
	Mongo  MongoConfig  `toml:"mongo"`
	Server ServerConfig `toml:"server"`
	Tiles  []TileSpec   `toml:"tiles"`
}

type GridConfig struct {
	Columns     int `toml:"columns"`
	VisibleRows int `toml:"visible_rows"`
}

type DataConfig struct {
	Source  string   `toml:"source"`
	Range   string   `toml:"range"`
	AppName string   `toml:"app_name"`
	Records int      `toml:"records"`
	Days    int      `toml:"days"`
	Latency Duration `toml:"latency"`
	Seed    uint64   `toml:"seed"`
}

type FeedConfig struct {
	Kind     string   `toml:"kind"`
	Interval Duration `toml:"interval"`
	URL      string   `toml:"url"`
}

type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
	Prefix    string   `toml:"prefix"`
}

type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// TileSpec is one seed tile. Chart fields apply by kind: data_key for bar,
// data_keys and colors for line and area, x/y/z keys for scatter. Omitted
// chart fields take the kind's defaults.
type TileSpec struct {
	ID      string `toml:"id"`
	Kind    string `toml:"kind"`
	Title   string `toml:"title"`
	Col     int    `toml:"col"`
	Row     int    `toml:"row"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Dataset string `toml:"dataset"`

	DataKey  string   `toml:"data_key"`
	DataKeys []string `toml:"data_keys"`
	Colors   []string `toml:"colors"`
	Color    string   `toml:"color"`
	XKey     string   `toml:"x_key"`
	YKey     string   `toml:"y_key"`
	ZKey     string   `toml:"z_key"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Grid: GridConfig{Columns: grid.DefaultColumns, VisibleRows: grid.DefaultVisibleRows},
		Data: DataConfig{
			Source:  SourceMemory,
			Range:   string(vitals.RangeAll),
			AppName: vitals.DefaultAppName,
			Records: vitals.DefaultRecords,
			Days:    vitals.DefaultDays,
			Latency: Duration{vitals.DefaultLatency},
		},
		Feed:   FeedConfig{Kind: FeedSimulator, Interval: Duration{feed.DefaultInterval}},
		Cache:  CacheConfig{Backend: cache.BackendFile, TTL: Duration{time.Minute}},
		Mongo:  MongoConfig{URI: "mongodb://localhost:27017", Database: appName},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// DefaultPath returns the config file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path over [Default]. An empty path reads [DefaultPath] and
// tolerates it being absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML into cfg and validates the result. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidInput, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks value ranges and enum fields.
func (c Config) Validate() error {
	if c.Grid.Columns < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "grid.columns must be at least 1")
	}
	if c.Grid.VisibleRows < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "grid.visible_rows must be at least 1")
	}
	switch c.Data.Source {
	case SourceMemory, SourceMongo, SourceCoinGecko:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "data.source must be memory, mongo or coingecko, got %q", c.Data.Source)
	}
	if _, err := vitals.ParseTimeRange(c.Data.Range); err != nil {
		return err
	}
	switch c.Feed.Kind {
	case FeedSimulator:
	case FeedWebSocket:
		if err := errors.ValidateURL(c.Feed.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "feed.url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "feed.kind must be simulator or websocket, got %q", c.Feed.Kind)
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	return nil
}

// TimeRange returns the configured initial range.
func (c Config) TimeRange() vitals.TimeRange {
	tr, err := vitals.ParseTimeRange(c.Data.Range)
	if err != nil {
		return vitals.RangeAll
	}
	return tr
}

// CacheOptions converts the cache section for [cache.Open].
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:   c.Cache.Backend,
		Dir:       c.Cache.Dir,
		RedisAddr: c.Cache.RedisAddr,
		Prefix:    c.Cache.Prefix,
	}
}

// MemoryOptions converts the data section for [vitals.NewMemorySource].
func (c Config) MemoryOptions() vitals.MemoryOptions {
	return vitals.MemoryOptions{
		AppName: c.Data.AppName,
		Records: c.Data.Records,
		Days:    c.Data.Days,
		Latency: c.Data.Latency.Duration,
		Seed:    c.Data.Seed,
	}
}

// Layout builds the seed layout: the configured tiles or, when none are
// configured, a built-in board. The market board serves the coingecko source
// and grids too narrow for the web vitals board.
func (c Config) Layout() (*layout.Store, error) {
	if len(c.Tiles) == 0 {
		if c.Data.Source == SourceCoinGecko || c.Grid.Columns < layout.VitalsColumns {
			return layout.Crypto(c.Grid.Columns)
		}
		return layout.Default(c.Grid.Columns)
	}
	tiles := make([]tile.Tile, 0, len(c.Tiles))
	for i, spec := range c.Tiles {
		t, err := spec.Tile()
		if err != nil {
			return nil, fmt.Errorf("tiles[%d]: %w", i, err)
		}
		tiles = append(tiles, t)
	}
	return layout.New(grid.New(c.Grid.Columns), tiles...)
}

// Tile converts the entry. Zero width or height means 1.
func (s TileSpec) Tile() (tile.Tile, error) {
	kind, err := tile.ParseKind(s.Kind)
	if err != nil {
		return tile.Tile{}, err
	}
	cfg := tile.DefaultConfig(kind)
	switch c := cfg.(type) {
	case tile.BarConfig:
		c.DataKey = or(s.DataKey, c.DataKey)
		c.Color = or(s.Color, c.Color)
		cfg = c
	case tile.SeriesConfig:
		if len(s.DataKeys) > 0 {
			c.DataKeys = s.DataKeys
		}
		if len(s.Colors) > 0 {
			c.Colors = s.Colors
		}
		cfg = c
	case tile.ScatterConfig:
		c.XKey = or(s.XKey, c.XKey)
		c.YKey = or(s.YKey, c.YKey)
		c.ZKey = or(s.ZKey, c.ZKey)
		c.Color = or(s.Color, c.Color)
		cfg = c
	}
	t := tile.Tile{
		ID:       s.ID,
		Kind:     kind,
		Title:    s.Title,
		Position: grid.Cell{Col: s.Col, Row: s.Row},
		Size:     grid.Size{Width: max(s.Width, 1), Height: max(s.Height, 1)},
		Dataset:  s.Dataset,
		Data:     []tile.Row{},
		Config:   cfg,
	}
	return t, t.Validate()
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
