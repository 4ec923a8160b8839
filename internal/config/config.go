package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/tapestryml/tapestry/pkg/api"
)

// Config holds settings for the step composer command line and the bundle
// uploader
type Config struct {
	// Pipeline session
	DefaultBucket string
	Region        string

	// Bundle uploads
	BundleBucketURL string
	BundlePrefix    string

	// Default retry behavior applied when a request carries none
	RetryMaxAttempts     int
	RetryIntervalSeconds int64
	RetryBackoffRate     float64

	LogLevel string
}

const (
	DefaultBundleBucketURL = "file:///tmp/tapestry-bundles"
	DefaultBundlePrefix    = "code"

	DefaultRetryMaxAttempts = 5
	MaxRetryAttempts        = 100
	MaxRetryInterval        = 24 * 60 * 60 // 1 day in seconds
)

var (
	ErrInvalidBundleBucketURL = errors.New("bundle bucket URL empty")
	ErrInvalidRetryAttempts   = errors.New(
		"retry max attempts out of range",
	)
	ErrInvalidRetryInterval = errors.New(
		"retry interval must be positive",
	)
	ErrInvalidBackoffRate = errors.New("retry backoff rate must be >= 1")
	ErrInvalidLogLevel    = errors.New("invalid log level")
)

// NewDefaultConfig creates a configuration with sensible defaults for bundle
// uploads and retry behavior
func NewDefaultConfig() *Config {
	return &Config{
		BundleBucketURL:      DefaultBundleBucketURL,
		BundlePrefix:         DefaultBundlePrefix,
		RetryMaxAttempts:     DefaultRetryMaxAttempts,
		RetryIntervalSeconds: api.DefaultIntervalSeconds,
		RetryBackoffRate:     api.DefaultBackoffRate,
		LogLevel:             "info",
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	if bucket := os.Getenv("DEFAULT_BUCKET"); bucket != "" {
		c.DefaultBucket = bucket
	}
	if region := os.Getenv("REGION"); region != "" {
		c.Region = region
	}
	if bucketURL := os.Getenv("BUNDLE_BUCKET_URL"); bucketURL != "" {
		c.BundleBucketURL = bucketURL
	}
	if prefix := os.Getenv("BUNDLE_PREFIX"); prefix != "" {
		c.BundlePrefix = prefix
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}

	if err := loadEnvInt(
		"RETRY_MAX_ATTEMPTS", &c.RetryMaxAttempts, 0, MaxRetryAttempts,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"RETRY_INTERVAL_SECONDS", &c.RetryIntervalSeconds, 0,
		MaxRetryInterval,
	); err != nil {
		return err
	}

	if s := os.Getenv("RETRY_BACKOFF_RATE"); s != "" {
		rate, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid RETRY_BACKOFF_RATE: %q", s)
		}
		c.RetryBackoffRate = rate
	}

	return nil
}

// RetryPolicy materializes the configured default retry behavior as a policy
// covering throttling and service faults
func (c *Config) RetryPolicy() *api.RetryPolicy {
	return &api.RetryPolicy{
		ExceptionTypes: []api.ExceptionType{
			api.StepThrottling,
			api.StepServiceFault,
		},
		MaxAttempts:     c.RetryMaxAttempts,
		IntervalSeconds: c.RetryIntervalSeconds,
		BackoffRate:     c.RetryBackoffRate,
	}
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.BundleBucketURL == "" {
		return ErrInvalidBundleBucketURL
	}

	if c.RetryMaxAttempts <= 0 || c.RetryMaxAttempts > MaxRetryAttempts {
		return fmt.Errorf("%w: %d", ErrInvalidRetryAttempts,
			c.RetryMaxAttempts)
	}
	if c.RetryIntervalSeconds <= 0 {
		return ErrInvalidRetryInterval
	}
	if c.RetryBackoffRate < 1 {
		return ErrInvalidBackoffRate
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max). Returns an error if
// the value cannot be parsed or falls outside the valid range.
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}
