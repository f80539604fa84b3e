// Package config loads runtime settings from defaults, an optional YAML file
// and TODOFLOW_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"
)

const EnvPrefix = "TODOFLOW"

var (
	ErrMissingToken  = errors.New("config: token is required (set TODOFLOW_TOKEN)")
	ErrMissingBase   = errors.New("config: base id is required (set TODOFLOW_BASE_ID)")
	ErrMissingTable  = errors.New("config: table is required (set TODOFLOW_TABLE)")
	ErrInvalidLevel  = errors.New("config: unknown log level")
	ErrInvalidPaging = errors.New("config: page size must be positive")
)

type RuntimeConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	BaseID         string        `mapstructure:"base_id"`
	Table          string        `mapstructure:"table"`
	Token          string        `mapstructure:"token"`
	Debounce       time.Duration `mapstructure:"debounce"`
	DebounceBuffer int           `mapstructure:"debounce_buffer"`
	PageSize       int           `mapstructure:"page_size"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFile        string        `mapstructure:"log_file"`
	ListenAddr     string        `mapstructure:"listen_addr"`
	DBPath         string        `mapstructure:"db_path"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		BaseURL:        "https://api.airtable.com",
		Table:          "Todos",
		Debounce:       500 * time.Millisecond,
		DebounceBuffer: 8,
		PageSize:       15,
		RequestTimeout: 5 * time.Second,
		LogLevel:       "info",
		ListenAddr:     "localhost:8080",
		DBPath:         "todoflow.db",
	}
}

// Load reads path (skipped when empty) and the environment over the defaults.
func Load(path string) (RuntimeConfig, error) {
	defaults := DefaultRuntimeConfig()
	v := viper.New()
	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("base_id", defaults.BaseID)
	v.SetDefault("table", defaults.Table)
	v.SetDefault("token", defaults.Token)
	v.SetDefault("debounce", defaults.Debounce)
	v.SetDefault("debounce_buffer", defaults.DebounceBuffer)
	v.SetDefault("page_size", defaults.PageSize)
	v.SetDefault("request_timeout", defaults.RequestTimeout)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("listen_addr", defaults.ListenAddr)
	v.SetDefault("db_path", defaults.DBPath)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return RuntimeConfig{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg RuntimeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.BaseID = strings.TrimSpace(cfg.BaseID)
	cfg.Table = strings.TrimSpace(cfg.Table)
	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.DebounceBuffer <= 0 {
		cfg.DebounceBuffer = defaults.DebounceBuffer
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	return cfg, nil
}

// Validate reports every setting that prevents talking to the record store.
func (c RuntimeConfig) Validate() error {
	var errs []error
	if c.Token == "" {
		errs = append(errs, ErrMissingToken)
	}
	if c.BaseID == "" {
		errs = append(errs, ErrMissingBase)
	}
	if c.Table == "" {
		errs = append(errs, ErrMissingTable)
	}
	errs = append(errs, c.validateLocal()...)
	return errors.Join(errs...)
}

// ValidateServer checks only the settings the local record store needs.
func (c RuntimeConfig) ValidateServer() error {
	return errors.Join(c.validateLocal()...)
}

func (c RuntimeConfig) validateLocal() []error {
	var errs []error
	if c.PageSize <= 0 {
		errs = append(errs, ErrInvalidPaging)
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLevel, c.LogLevel))
	}
	return errs
}

// Redacted returns a copy safe to print.
func (c RuntimeConfig) Redacted() RuntimeConfig {
	out := c
	if out.Token != "" {
		out.Token = "****"
	}
	return out
}
