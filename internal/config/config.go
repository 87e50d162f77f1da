// Package config assembles the gateway configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Environment variable names.
const (
	EnvKMSKeyARN        = "KMS_KEY_ARN"
	EnvQueueURL         = "SQS_QUEUE_URL"
	EnvGatewayURL       = "ARWEAVE_GATEWAY_URL"
	EnvAPIKeySecretRef  = "API_KEY_SECRET_ARN"
	EnvDryRun           = "DRY_RUN"
	EnvRateLimitPerHour = "RATE_LIMIT_PER_HOUR"
	EnvRateLimitTable   = "RATE_LIMIT_TABLE"
)

// DefaultGatewayURL is used when ARWEAVE_GATEWAY_URL is not set.
const DefaultGatewayURL = "https://arweave.net"

var (
	// ErrMissingRequired is wrapped by MissingError.
	ErrMissingRequired = errors.New("missing required environment variable")
	// ErrInvalidValue is returned when a variable is set but cannot be parsed.
	ErrInvalidValue = errors.New("invalid environment variable")
)

// MissingError names the required variable that was not set.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequired, e.Name)
}

func (e *MissingError) Unwrap() error {
	return ErrMissingRequired
}

// LookupFunc reads a single variable, reporting whether it was set.
type LookupFunc func(name string) (string, bool)

// Config is built once per process; accessors never touch the environment again.
type Config struct {
	kmsKeyARN        string
	queueURL         string
	gatewayURL       string
	apiKeySecretRef  string
	dryRun           bool
	rateLimitPerHour int64
	rateLimitTable   string
}

// FromEnv loads the configuration from the process environment.
func FromEnv() (*Config, error) {
	return Load(os.LookupEnv)
}

// Load builds a Config, failing on the first missing required or malformed variable.
func Load(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	var err error

	if cfg.kmsKeyARN, err = required(lookup, EnvKMSKeyARN); err != nil {
		return nil, err
	}

	if cfg.queueURL, err = required(lookup, EnvQueueURL); err != nil {
		return nil, err
	}

	cfg.gatewayURL = DefaultGatewayURL
	if v := optional(lookup, EnvGatewayURL); v != "" {
		cfg.gatewayURL = v
	}

	cfg.apiKeySecretRef = optional(lookup, EnvAPIKeySecretRef)
	cfg.dryRun = optional(lookup, EnvDryRun) == "true"
	cfg.rateLimitTable = optional(lookup, EnvRateLimitTable)

	if v := optional(lookup, EnvRateLimitPerHour); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("%w: %s=%q must be a non-negative integer", ErrInvalidValue, EnvRateLimitPerHour, v)
		}

		cfg.rateLimitPerHour = limit
	}

	return cfg, nil
}

func required(lookup LookupFunc, name string) (string, error) {
	v := optional(lookup, name)
	if v == "" {
		return "", &MissingError{Name: name}
	}

	return v, nil
}

func optional(lookup LookupFunc, name string) string {
	v, _ := lookup(name)

	return v
}

// KMSKeyARN identifies the signing key.
func (c *Config) KMSKeyARN() string { return c.kmsKeyARN }

// QueueURL identifies the submission queue.
func (c *Config) QueueURL() string { return c.queueURL }

// GatewayURL is the upstream content gateway.
func (c *Config) GatewayURL() string { return c.gatewayURL }

// APIKeySecretRef locates the API key in the secret store. Empty disables the API key.
func (c *Config) APIKeySecretRef() string { return c.apiKeySecretRef }

// DryRun reports whether downstream processing is a no-op.
func (c *Config) DryRun() bool { return c.dryRun }

// RateLimitPerHour is the hourly ceiling; zero means disabled.
func (c *Config) RateLimitPerHour() int64 { return c.rateLimitPerHour }

// RateLimitTable names the shared counter table; empty means disabled.
func (c *Config) RateLimitTable() string { return c.rateLimitTable }
