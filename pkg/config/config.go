// Package config loads application configuration from YAML files with
// environment-variable overrides, providing typed sections for the server,
// the engine, the document source, logging and metrics.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Search  SearchConfig  `yaml:"search"`
	Source  SourceConfig  `yaml:"source"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// EngineConfig bounds the engine's resident memory: how many full document
// bodies the cache keeps and how many recent search timings the monitor
// retains.
type EngineConfig struct {
	CacheCapacity int `yaml:"cacheCapacity"`
	MonitorWindow int `yaml:"monitorWindow"`
}

// SearchConfig carries the default result cap and context window handed to
// searches that do not specify their own.
type SearchConfig struct {
	MaxResults    int `yaml:"maxResults"`
	ContextLength int `yaml:"contextLength"`
}

// SourceConfig controls how documents are discovered on disk.
type SourceConfig struct {
	Root        string   `yaml:"root"`
	Extensions  []string `yaml:"extensions"`
	Ignore      []string `yaml:"ignore"`
	MaxFileSize int64    `yaml:"maxFileSize"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics listener.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment
// variable overrides. It returns a Config populated with defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Engine: EngineConfig{
			CacheCapacity: 50,
			MonitorWindow: 20,
		},
		Search: SearchConfig{
			MaxResults:    100,
			ContextLength: 50,
		},
		Source: SourceConfig{
			Root:        ".",
			Extensions:  []string{".md", ".markdown"},
			Ignore:      []string{".git", "node_modules", "vendor"},
			MaxFileSize: 1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads MDSEARCH_* environment variables and overrides
// the corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MDSEARCH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MDSEARCH_ENGINE_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.CacheCapacity = n
		}
	}
	if v := os.Getenv("MDSEARCH_ENGINE_MONITOR_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.MonitorWindow = n
		}
	}
	if v := os.Getenv("MDSEARCH_SEARCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxResults = n
		}
	}
	if v := os.Getenv("MDSEARCH_SEARCH_CONTEXT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.ContextLength = n
		}
	}
	if v := os.Getenv("MDSEARCH_SOURCE_ROOT"); v != "" {
		cfg.Source.Root = v
	}
	if v := os.Getenv("MDSEARCH_SOURCE_EXTENSIONS"); v != "" {
		cfg.Source.Extensions = strings.Split(v, ",")
	}
	if v := os.Getenv("MDSEARCH_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MDSEARCH_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("MDSEARCH_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("MDSEARCH_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
