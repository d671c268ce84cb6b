// Package config loads tool configuration with viper, falling back to
// sensible defaults when no config file exists.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/viper"
)

const workDir = ".vv"

type Config struct {
	Store struct {
		Root      string `mapstructure:"root"`
		CacheSize int    `mapstructure:"cache_size"`
	} `mapstructure:"store"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	Watch struct {
		Ignore []string `mapstructure:"ignore"`
	} `mapstructure:"watch"`

	Diff struct {
		SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	} `mapstructure:"diff"`

	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Store.Root = filepath.Join(workDir, "objects")
	cfg.Store.CacheSize = 2000
	cfg.Database.Path = filepath.Join(workDir, "db")
	cfg.Diff.SimilarityThreshold = 0.6
	cfg.LogLevel = "info"
	return &cfg
}

// Load reads the configuration from path, or searches the working
// directory and .vv/ for config.yaml when path is empty. A missing file
// yields the defaults; a malformed one is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("store.root", filepath.Join(workDir, "objects"))
	v.SetDefault("store.cache_size", 2000)
	v.SetDefault("database.path", filepath.Join(workDir, "db"))
	v.SetDefault("diff.similarity_threshold", 0.6)
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(workDir)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Store.CacheSize <= 0 {
		return fmt.Errorf("store.cache_size must be positive, got %d", c.Store.CacheSize)
	}
	if c.Diff.SimilarityThreshold < 0 || c.Diff.SimilarityThreshold > 1 {
		return fmt.Errorf("diff.similarity_threshold must be in [0,1], got %v", c.Diff.SimilarityThreshold)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
