// Package config loads the client settings from defaults, an optional YAML
// file and the environment, in increasing order of precedence. Command-line
// overrides are applied by the caller before Validate.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL         = "https://vapi2.netactuate.com/api"
	DefaultMaxConcurrency = 8
	DefaultMaxRetries     = 3
	DefaultRequestTimeout = 30 * time.Second
)

// Environment variables read by Load. API_KEY and API_ADDRESS keep the names
// used by the provider's own tooling.
const (
	EnvAPIKey            = "API_KEY"
	EnvAPIURL            = "API_ADDRESS"
	EnvConfigFile        = "NACTL_CONFIG"
	EnvMaxConcurrency    = "NACTL_MAX_CONCURRENCY"
	EnvMaxRetries        = "NACTL_MAX_RETRIES"
	EnvRequestTimeout    = "NACTL_REQUEST_TIMEOUT"
	EnvRequestsPerSecond = "NACTL_RPS"
)

// Config holds the settings handed to the client and governor.
type Config struct {
	APIKey            string        `yaml:"api_key"`
	APIURL            string        `yaml:"api_url"`
	MaxConcurrency    int           `yaml:"max_concurrency"`
	MaxRetries        int           `yaml:"max_retries"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

// Error is a missing or invalid setting. It is raised before any fetch.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "config: " + e.Err.Error()
	}
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsConfigError reports whether err is, or wraps, a *Error.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// Default returns a Config with every optional field set.
func Default() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		MaxConcurrency: DefaultMaxConcurrency,
		MaxRetries:     DefaultMaxRetries,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if path == "" {
		path, _ = lookup(EnvConfigFile)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.mergeEnv(lookup); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return &Error{Field: "file", Err: err}
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return &Error{Field: "file", Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	return nil
}

func (c *Config) mergeEnv(lookup LookupFunc) error {
	if v, ok := lookup(EnvAPIKey); ok && v != "" {
		c.APIKey = v
	}
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.APIURL = v
	}
	if v, ok := lookup(EnvMaxConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Field: "max_concurrency", Err: err}
		}
		c.MaxConcurrency = n
	}
	if v, ok := lookup(EnvMaxRetries); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Field: "max_retries", Err: err}
		}
		c.MaxRetries = n
	}
	if v, ok := lookup(EnvRequestTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &Error{Field: "request_timeout", Err: err}
		}
		c.RequestTimeout = d
	}
	if v, ok := lookup(EnvRequestsPerSecond); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return &Error{Field: "requests_per_second", Err: err}
		}
		c.RequestsPerSecond = f
	}
	return nil
}

// Validate checks that the credentials are present and the limits usable.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return &Error{Field: "api_key", Err: fmt.Errorf("missing (set %s or api_key)", EnvAPIKey)}
	}
	if c.APIURL == "" {
		return &Error{Field: "api_url", Err: errors.New("missing")}
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return &Error{Field: "api_url", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &Error{Field: "api_url", Err: fmt.Errorf("unsupported scheme %q (must be http or https)", u.Scheme)}
	}
	if u.Hostname() == "" {
		return &Error{Field: "api_url", Err: errors.New("host is required")}
	}
	if c.MaxConcurrency <= 0 {
		return &Error{Field: "max_concurrency", Err: fmt.Errorf("must be positive, got %d", c.MaxConcurrency)}
	}
	if c.MaxRetries < 0 {
		return &Error{Field: "max_retries", Err: fmt.Errorf("must not be negative, got %d", c.MaxRetries)}
	}
	if c.RequestTimeout <= 0 {
		return &Error{Field: "request_timeout", Err: fmt.Errorf("must be positive, got %v", c.RequestTimeout)}
	}
	if c.RequestsPerSecond < 0 {
		return &Error{Field: "requests_per_second", Err: fmt.Errorf("must not be negative, got %v", c.RequestsPerSecond)}
	}
	return nil
}
