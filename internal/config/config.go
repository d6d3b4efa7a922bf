// Package config loads connection and wait settings for the Danswer harness.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv and Load.
const (
	EnvAPIServerURL = "DANSWER_API_SERVER_URL"
	EnvAPIKey       = "DANSWER_API_KEY"
)

// Config holds everything needed to talk to an API server and wait on it
type Config struct {
	APIServerURL string     `yaml:"api_server_url"`
	APIKey       string     `yaml:"api_key"`
	HTTPTimeout  Duration   `yaml:"http_timeout"`
	Wait         WaitConfig `yaml:"wait"`
}

// WaitConfig controls polling cadence and the default wait timeout
type WaitConfig struct {
	Timeout          Duration `yaml:"timeout"`           // Max delay before a wait gives up (default: 30s)
	Interval         Duration `yaml:"interval"`          // Indexing, prune and sync waits (default: 5s)
	DeletionInterval Duration `yaml:"deletion_interval"` // Deletion waits (default: 2s)
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns a Config with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// FromEnv returns the defaults overridden by environment variables
func FromEnv() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// Load reads and parses the configuration file. Environment variables
// override values from the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no wait could work with
func (c *Config) Validate() error {
	if c.APIServerURL == "" {
		return fmt.Errorf("api_server_url must be set")
	}
	if c.Wait.Timeout < 0 {
		return fmt.Errorf("wait.timeout must not be negative")
	}
	if c.Wait.Interval <= 0 || c.Wait.DeletionInterval <= 0 {
		return fmt.Errorf("wait intervals must be positive")
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIServerURL); v != "" {
		c.APIServerURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.APIServerURL == "" {
		c.APIServerURL = "http://localhost:8080"
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = Duration(30 * time.Second)
	}
	if c.Wait.Timeout == 0 {
		c.Wait.Timeout = Duration(30 * time.Second)
	}
	if c.Wait.Interval == 0 {
		c.Wait.Interval = Duration(5 * time.Second)
	}
	if c.Wait.DeletionInterval == 0 {
		c.Wait.DeletionInterval = Duration(2 * time.Second)
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} with the value of VAR
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
