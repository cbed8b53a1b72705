// Package config loads mosaic's TOML configuration file. Every field has a
// usable default, so a missing file is not an error; flags override config
// values at the CLI layer.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	apperrors "github.com/mosaiclabs/mosaic/pkg/errors"
)

// Config holds renderer defaults and backend endpoints.
type Config struct {
	// Width and Height are the default canvas dimensions.
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`

	// Padding is the default cell inset.
	Padding float64 `toml:"padding"`

	// Style is the default named style (plain, tinted).
	Style string `toml:"style"`

	// Cache selects the render cache backend: file, redis, or none.
	Cache     string `toml:"cache"`
	CacheDir  string `toml:"cache_dir"`
	RedisAddr string `toml:"redis_addr"`

	Server ServerConfig `toml:"server"`
}

// ServerConfig holds `mosaic serve` settings.
type ServerConfig struct {
	Addr     string `toml:"addr"`
	Store    string `toml:"store"` // memory or mongo
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Width:   800,
		Height:  600,
		Padding: 2,
		Style:   "plain",
		Cache:   "file",
		Server: ServerConfig{
			Addr:     ":8080",
			Store:    "memory",
			Database: "mosaic",
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mosaic", "config.toml"), nil
}

// Load reads the config at path, layered over the defaults. An empty path
// uses DefaultPath; a missing file returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return cfg, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"width and height must be positive, got %vx%v", c.Width, c.Height)
	}
	switch c.Cache {
	case "file", "redis", "none":
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"cache must be 'file', 'redis', or 'none', got %q", c.Cache)
	}
	switch c.Server.Store {
	case "memory", "mongo":
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"server store must be 'memory' or 'mongo', got %q", c.Server.Store)
	}
	return nil
}
