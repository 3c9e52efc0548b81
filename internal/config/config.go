// Package config provides configuration management.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"isp-billing/core/types"
	"isp-billing/internal/errors"
	"isp-billing/internal/logging"
)

// EnvPrefix is the prefix for environment overrides, e.g. ISPBILL_CATALOG_DSN.
const EnvPrefix = "ISPBILL"

// Config is the main application configuration
type Config struct {
	// Logging contains logging configuration
	Logging logging.Config `mapstructure:"logging" yaml:"logging"`

	// Catalog selects the plan catalog provider
	Catalog SourceConfig `mapstructure:"catalog" yaml:"catalog"`

	// Snapshots selects the connection snapshot provider
	Snapshots SourceConfig `mapstructure:"snapshots" yaml:"snapshots"`

	// Billing contains selection policy defaults
	Billing BillingConfig `mapstructure:"billing" yaml:"billing"`

	// Output contains output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Server contains HTTP server configuration
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// Provider source kinds
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// SourceConfig points a provider at a file or a PostgreSQL database.
type SourceConfig struct {
	// Source is "file" or "postgres"; empty disables the provider
	Source string `mapstructure:"source" yaml:"source"`

	// Path is the file path when Source is "file"
	Path string `mapstructure:"path" yaml:"path,omitempty"`

	// DSN is the connection string when Source is "postgres"
	DSN string `mapstructure:"dsn" yaml:"dsn,omitempty"`
}

// BillingConfig contains selection policy defaults
type BillingConfig struct {
	// ExcludeFreeTier is applied when a request does not set the flag itself
	ExcludeFreeTier bool `mapstructure:"exclude_free_tier" yaml:"exclude_free_tier"`

	// Currency labels amounts; the engine itself is currency-agnostic
	Currency types.Currency `mapstructure:"currency" yaml:"currency"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `mapstructure:"default_format" yaml:"default_format"`

	// CurrencySymbol is prefixed to amounts in text and markdown output
	CurrencySymbol string `mapstructure:"currency_symbol" yaml:"currency_symbol"`

	// NoColor disables terminal styling
	NoColor bool `mapstructure:"no_color" yaml:"no_color"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Logging: logging.DefaultConfig(),
		Catalog: SourceConfig{
			Source: "file",
			Path:   "plans.yaml",
		},
		Snapshots: SourceConfig{},
		Billing: BillingConfig{
			ExcludeFreeTier: false,
			Currency:        types.CurrencyUSD,
		},
		Output: OutputConfig{
			DefaultFormat:  "text",
			CurrencySymbol: "$",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.development", d.Logging.Development)

	v.SetDefault("catalog.source", d.Catalog.Source)
	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.dsn", "")
	v.SetDefault("snapshots.source", "")
	v.SetDefault("snapshots.path", "")
	v.SetDefault("snapshots.dsn", "")

	v.SetDefault("billing.exclude_free_tier", d.Billing.ExcludeFreeTier)
	v.SetDefault("billing.currency", string(d.Billing.Currency))

	v.SetDefault("output.default_format", d.Output.DefaultFormat)
	v.SetDefault("output.currency_symbol", d.Output.CurrencySymbol)
	v.SetDefault("output.no_color", d.Output.NoColor)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
}

// Load reads configuration from path (YAML or JSON, by extension) layered
// over the defaults and ISPBILL_* environment variables. An empty path or
// a missing file yields defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrapf(errors.TypeConfig, err, "read config %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.TypeConfig, err, "stat config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "unmarshal config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks provider selections are complete
func (c *Config) Validate() error {
	for name, src := range map[string]SourceConfig{"catalog": c.Catalog, "snapshots": c.Snapshots} {
		switch src.Source {
		case "":
		case SourceFile:
			if src.Path == "" {
				return errors.Newf(errors.TypeConfig, "%s.path is required for file source", name)
			}
		case SourcePostgres:
			if src.DSN == "" {
				return errors.Newf(errors.TypeConfig, "%s.dsn is required for postgres source", name)
			}
		default:
			return errors.Newf(errors.TypeConfig, "%s.source must be file or postgres, got %q", name, src.Source)
		}
	}
	return nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

var (
	globalConfig   = Default()
	globalConfigMu sync.RWMutex
)

// Get returns the global configuration
func Get() *Config {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = config
}
