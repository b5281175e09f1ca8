// Package config loads kirchhoff's user configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/kirchhoff/config.toml
// (falling back to ~/.config/kirchhoff/config.toml). Every key is optional;
// a missing file yields [Default].
//
//	precision = 4
//
//	[cache]
//	dir       = "/tmp/kirchhoff-cache"
//	redis_url = "redis://localhost:6379/0"
//	ttl       = "24h"
//
//	[render]
//	format   = "png"
//	detailed = true
//
//	[simulate]
//	duration = 5.0
//	samples  = 101
//
//	[server]
//	addr           = ":9090"
//	mongo_uri      = "mongodb://localhost:27017"
//	mongo_database = "kirchhoff"
//
// Command-line flags take precedence over file values.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kirchhoff/pkg/errors"
	"github.com/matzehuels/kirchhoff/pkg/render"
	"github.com/matzehuels/kirchhoff/pkg/simulate"
)

// AppName names the per-user config and cache directories.
const AppName = "kirchhoff"

// DefaultPrecision is the number of decimal places currents are rounded to.
const DefaultPrecision = 3

// Config is the parsed configuration file.
type Config struct {
	Precision int            `toml:"precision"`
	Cache     CacheConfig    `toml:"cache"`
	Render    RenderConfig   `toml:"render"`
	Simulate  SimulateConfig `toml:"simulate"`
	Server    ServerConfig   `toml:"server"`
}

// CacheConfig selects the report cache backend.
type CacheConfig struct {
	Dir      string   `toml:"dir"`       // File cache directory
	Disabled bool     `toml:"disabled"`  // Turn caching off entirely
	RedisURL string   `toml:"redis_url"` // Use redis instead of files when set
	TTL      Duration `toml:"ttl"`       // Report lifetime; zero keeps the backend default
}

type RenderConfig struct {
	Format   string `toml:"format"`
	Detailed bool   `toml:"detailed"`
}

type SimulateConfig struct {
	Duration float64 `toml:"duration"`
	Samples  int     `toml:"samples"`
}

type ServerConfig struct {
	Addr          string `toml:"addr"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Duration is a time.Duration that reads and writes as a Go duration
// string ("90s", "24h").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Precision: DefaultPrecision,
		Render:    RenderConfig{Format: string(render.FormatSVG)},
		Simulate: SimulateConfig{
			Duration: simulate.DefaultDuration,
			Samples:  simulate.DefaultSamples,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			MongoDatabase: AppName,
		},
	}
}

// Load reads the configuration at path. An empty path means [Path]; in that
// case a missing file is not an error. An explicitly named file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			if explicit {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
			}
			return Default(), nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}

	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	return cfg, nil
}

// Decode parses TOML from r on top of [Default] and validates the result.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate rejects values no command can use.
func (c *Config) Validate() error {
	if err := errors.ValidatePrecision(c.Precision); err != nil {
		return err
	}
	if _, err := render.ParseFormat(c.Render.Format); err != nil {
		return err
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	opts := simulate.Options{Duration: c.Simulate.Duration, Samples: c.Simulate.Samples}
	return opts.ValidateAndSetDefaults()
}

// SimulateOptions returns the configured simulation grid.
func (c *Config) SimulateOptions() simulate.Options {
	return simulate.Options{Duration: c.Simulate.Duration, Samples: c.Simulate.Samples}
}

// Path returns the default configuration file location.
func Path() (string, error) {
	dir, err := dirFrom("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the cache directory: the configured one if set, else
// $XDG_CACHE_HOME/kirchhoff or ~/.cache/kirchhoff.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return dirFrom("XDG_CACHE_HOME", ".cache")
}

func dirFrom(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
