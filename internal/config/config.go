// Package config loads the wick configuration: a YAML file, then .env and
// WICK_* environment overrides, then validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gowick"
)

// LogConfig controls the process logger.
type LogConfig struct {
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	JSON    bool   `yaml:"json"`
	Service string `yaml:"service"`
}

// EngineConfig mirrors the WickTheorem toggles. MaxCumulant 0 keeps the
// engine default.
type EngineConfig struct {
	MaxCumulant       int  `yaml:"max_cumulant" validate:"gte=0,lte=6"`
	SingleThreaded    bool `yaml:"single_threaded"`
	Workers           int  `yaml:"workers" validate:"gte=0,lte=1024"`
	CanonicalizeGraph bool `yaml:"canonicalize_graph"`
	InterGeneral      bool `yaml:"inter_general"`
	CacheSize         int  `yaml:"cache_size" validate:"gte=0"`
}

// ServerConfig configures cmd/mcp-server.
type ServerConfig struct {
	Port              int `yaml:"port" validate:"gte=1,lte=65535"`
	MaxBodyBytes      int `yaml:"max_body_bytes" validate:"gte=1024"`
	ReadTimeoutSecs   int `yaml:"read_timeout_secs" validate:"gte=1"`
	WriteTimeoutSecs  int `yaml:"write_timeout_secs" validate:"gte=1"`
	RequestTimeoutSec int `yaml:"request_timeout_secs" validate:"gte=1"`
}

// Config is the root configuration structure.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Engine EngineConfig `yaml:"engine"`
	Server ServerConfig `yaml:"server"`
}

func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Service: "wick"},
		Engine: EngineConfig{CacheSize: gowick.DefaultCacheSize},
		Server: ServerConfig{
			Port:              8080,
			MaxBodyBytes:      1 << 20,
			ReadTimeoutSecs:   15,
			WriteTimeoutSecs:  120,
			RequestTimeoutSec: 110,
		},
	}
}

// Load reads path over the defaults. A missing file, or an empty path,
// yields the defaults. Environment overrides and validation apply either
// way.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read the config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse the config file %s: %w", path, err)
			}
		}
	}
	_ = godotenv.Load()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

var validate = validator.New()

func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyEnv overrides fields from WICK_* variables.
func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}
	boolean := func(key string, dst *bool) error {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
		return nil
	}

	str("WICK_LOG_LEVEL", &cfg.Log.Level)
	str("WICK_LOG_SERVICE", &cfg.Log.Service)
	for _, f := range []func() error{
		func() error { return boolean("WICK_LOG_JSON", &cfg.Log.JSON) },
		func() error { return integer("WICK_MAX_CUMULANT", &cfg.Engine.MaxCumulant) },
		func() error { return boolean("WICK_SINGLE_THREADED", &cfg.Engine.SingleThreaded) },
		func() error { return integer("WICK_WORKERS", &cfg.Engine.Workers) },
		func() error { return boolean("WICK_CANONICALIZE_GRAPH", &cfg.Engine.CanonicalizeGraph) },
		func() error { return boolean("WICK_INTER_GENERAL", &cfg.Engine.InterGeneral) },
		func() error { return integer("WICK_CACHE_SIZE", &cfg.Engine.CacheSize) },
		func() error { return integer("WICK_PORT", &cfg.Server.Port) },
	} {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

// EngineOptions translates the engine section into WickTheorem options.
func (c *Config) EngineOptions() []gowick.Option {
	opts := []gowick.Option{
		gowick.WithSingleThreaded(c.Engine.SingleThreaded),
		gowick.WithCanonicalizeGraph(c.Engine.CanonicalizeGraph),
		gowick.WithInterGeneral(c.Engine.InterGeneral),
		gowick.WithCacheSize(c.Engine.CacheSize),
	}
	if c.Engine.Workers > 0 {
		opts = append(opts, gowick.WithWorkers(c.Engine.Workers))
	}
	if c.Engine.MaxCumulant > 0 {
		opts = append(opts, gowick.WithMaxCumulant(c.Engine.MaxCumulant))
	}
	return opts
}
