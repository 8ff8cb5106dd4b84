// Package config loads server configuration from environment variables and
// an optional YAML file.
//
// Sources in order of precedence: environment variables (prefix DEEPSOURCE),
// then deepsource-mcp.yaml in the working directory, then defaults. The API
// key has no default and is required.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete server configuration.
type Config struct {
	// APIKey is the DeepSource personal access token
	// (DEEPSOURCE_API_KEY).
	APIKey string `mapstructure:"api_key"`

	// Endpoint is the GraphQL endpoint URL.
	Endpoint string `mapstructure:"endpoint"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `mapstructure:"timeout"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// DefaultEndpoint is the public DeepSource GraphQL API.
const DefaultEndpoint = "https://api.deepsource.io/graphql/"

// Load reads configuration from defaults, the optional config file, and
// environment variables, then validates the result.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("endpoint", DefaultEndpoint)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvPrefix("DEEPSOURCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("deepsource-mcp")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
	}

	// AutomaticEnv only resolves keys it has seen; bind the flat ones
	// explicitly so a bare environment works without a config file.
	v.BindEnv("api_key", "DEEPSOURCE_API_KEY")
	v.BindEnv("endpoint", "DEEPSOURCE_ENDPOINT")
	v.BindEnv("timeout", "DEEPSOURCE_TIMEOUT")
	v.BindEnv("log.level", "DEEPSOURCE_LOG_LEVEL")
	v.BindEnv("log.pretty", "DEEPSOURCE_LOG_PRETTY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for hard errors.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("config: DEEPSOURCE_API_KEY is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: invalid endpoint %q", c.Endpoint)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
