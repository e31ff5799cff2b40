package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sternrassler/neis-client/pkg/cache"
	"github.com/Sternrassler/neis-client/pkg/client"
	"github.com/Sternrassler/neis-client/pkg/logging"
	"github.com/Sternrassler/neis-client/pkg/pagination"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the CLI configuration: neis.yaml, NEIS_* environment variables
// and flags, in increasing precedence.
type Config struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	MaxPageSize int           `mapstructure:"max_page_size"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Output      string        `mapstructure:"output"`

	Fetch   FetchConfig   `mapstructure:"fetch"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Quota   QuotaConfig   `mapstructure:"quota"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
}

type FetchConfig struct {
	Mode        string        `mapstructure:"mode"`
	Concurrency int           `mapstructure:"concurrency"`
	PageTimeout time.Duration `mapstructure:"page_timeout"`
}

type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// CacheConfig selects the page cache. Backend is none, memory or redis.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	Size    int           `mapstructure:"size"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// QuotaConfig enables the daily quota guard. It shares state through Redis
// when redis.addr is set.
type QuotaConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// flagKeys binds persistent flags to configuration keys.
var flagKeys = map[string]string{
	"api-key":     "api_key",
	"base-url":    "base_url",
	"output":      "output",
	"mode":        "fetch.mode",
	"concurrency": "fetch.concurrency",
	"cache":       "cache.backend",
	"redis-addr":  "redis.addr",
	"log-level":   "logging.level",
}

func setDefaults(v *viper.Viper) {
	defaults := client.DefaultConfig("")
	fetch := pagination.DefaultConfig()

	v.SetDefault("api_key", "")
	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("max_page_size", 0)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("output", "table")

	v.SetDefault("fetch.mode", string(fetch.Mode))
	v.SetDefault("fetch.concurrency", fetch.MaxConcurrency)
	v.SetDefault("fetch.page_timeout", fetch.Timeout)

	v.SetDefault("retry.max_attempts", defaults.Retry.MaxAttempts)
	v.SetDefault("retry.initial_backoff", defaults.Retry.InitialBackoff)
	v.SetDefault("retry.max_backoff", defaults.Retry.MaxBackoff)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.size", 64)
	v.SetDefault("cache.ttl", cache.DefaultTTL)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("quota.enabled", true)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.pretty", true)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.fetch_timeout", 60*time.Second)
}

// loadConfig reads configuration from file, environment and the flags of cmd.
// A missing default config file is not an error; a missing explicit one is.
func loadConfig(configPath string, cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NEIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("neis")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".neis"))
		}
		v.AddConfigPath("/etc/neis/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	if cmd != nil {
		for name, key := range flagKeys {
			if flag := cmd.Flags().Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if _, err := pagination.ParseMode(cfg.Fetch.Mode); err != nil {
		return err
	}
	if cfg.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch.concurrency must be >= 1 (got %d)", cfg.Fetch.Concurrency)
	}

	switch cfg.Output {
	case "table", "json":
	default:
		return fmt.Errorf("invalid output format: %s", cfg.Output)
	}

	switch cfg.Cache.Backend {
	case "none", "memory":
	case "redis":
		if cfg.Redis.Addr == "" {
			return errors.New("cache.backend redis requires redis.addr")
		}
	default:
		return fmt.Errorf("invalid cache backend: %s", cfg.Cache.Backend)
	}

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return err
	}

	return nil
}

// clientConfig builds the session configuration. Cache and quota are
// attached separately since they own external resources.
func (c *Config) clientConfig() client.Config {
	cfg := client.DefaultConfig(c.APIKey)
	cfg.BaseURL = c.BaseURL
	cfg.MaxPageSize = c.MaxPageSize
	cfg.Timeout = c.Timeout
	cfg.CacheTTL = c.Cache.TTL
	cfg.Retry.MaxAttempts = c.Retry.MaxAttempts
	cfg.Retry.InitialBackoff = c.Retry.InitialBackoff
	cfg.Retry.MaxBackoff = c.Retry.MaxBackoff
	return cfg
}

func (c *Config) fetchConfig() pagination.Config {
	mode, _ := pagination.ParseMode(c.Fetch.Mode)
	return pagination.Config{
		Mode:           mode,
		MaxConcurrency: c.Fetch.Concurrency,
		Timeout:        c.Fetch.PageTimeout,
	}
}
