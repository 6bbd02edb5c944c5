// -----------------------------------------------------------------------
// Worker Configuration - Environment-first config with optional TOML file
// -----------------------------------------------------------------------

package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/aestimo/internal/models"
)

const (
	// DefaultPollInterval is how often the worker polls for a claim.
	DefaultPollInterval = 5000 * time.Millisecond

	// DefaultIdleTimeout is how long the worker waits without work before
	// shutting itself down for autoscale drain.
	DefaultIdleTimeout = 600000 * time.Millisecond
)

// WorkerConfig is the immutable startup configuration. Values come from an
// optional TOML file overridden by environment variables; the environment
// always wins.
type WorkerConfig struct {
	APIEndpoint string `toml:"api_endpoint" validate:"required,url"`
	Username    string `toml:"username" validate:"required"`
	Password    string `toml:"password" validate:"required"`

	// JobTypesRaw is the comma-separated tag list as configured; JobTypes is
	// the parsed set the worker polls for.
	JobTypesRaw string           `toml:"job_types"`
	JobTypes    []models.JobType `toml:"-" validate:"required,min=1"`

	DataPath  string `toml:"data_path" validate:"required"`
	CachePath string `toml:"cache_path" validate:"required"`

	AWSRegion   string `toml:"aws_region" validate:"required"`
	S3Endpoint  string `toml:"s3_endpoint"`
	S3AccessKey string `toml:"s3_access_key"`
	S3SecretKey string `toml:"s3_secret_key"`

	PollInterval time.Duration `toml:"-"`
	IdleTimeout  time.Duration `toml:"-"`

	// Millisecond forms as configured (toml or env); converted after load.
	PollIntervalMs int `toml:"poll_interval_ms"`
	IdleTimeoutMs  int `toml:"idle_timeout_ms"`

	SentryDSN string `toml:"sentry_dsn"`
	LogLevel  string `toml:"log_level"`
}

// requiredEnv maps config fields to the environment variable that supplies
// them, so missing-field diagnostics name the variable the operator must set.
var requiredEnv = []struct {
	name string
	get  func(*WorkerConfig) string
}{
	{"API_ENDPOINT", func(c *WorkerConfig) string { return c.APIEndpoint }},
	{"WORKER_USERNAME", func(c *WorkerConfig) string { return c.Username }},
	{"WORKER_PASSWORD", func(c *WorkerConfig) string { return c.Password }},
	{"JOB_TYPES", func(c *WorkerConfig) string { return c.JobTypesRaw }},
	{"DATA_PATH", func(c *WorkerConfig) string { return c.DataPath }},
	{"CACHE_PATH", func(c *WorkerConfig) string { return c.CachePath }},
	{"AWS_REGION", func(c *WorkerConfig) string { return c.AWSRegion }},
}

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *WorkerConfig {
	return &WorkerConfig{
		PollIntervalMs: int(DefaultPollInterval / time.Millisecond),
		IdleTimeoutMs:  int(DefaultIdleTimeout / time.Millisecond),
		LogLevel:       "info",
	}
}

// LoadConfig builds the worker configuration: defaults, then optional TOML
// files in order (later files override earlier ones), then environment
// variables. Fails fast with a diagnostic naming the missing variable.
func LoadConfig(paths ...string) (*WorkerConfig, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, models.NewJobError(models.ErrKindConfig, fmt.Sprintf("failed to read config file %s", path), err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, models.NewJobError(models.ErrKindConfig, fmt.Sprintf("failed to parse config file %s", path), err)
		}
	}

	applyEnvOverrides(config)

	for _, req := range requiredEnv {
		if req.get(config) == "" {
			return nil, models.Errorf(models.ErrKindConfig, "missing required configuration: set %s", req.name)
		}
	}

	types, err := models.ParseJobTypes(config.JobTypesRaw)
	if err != nil {
		return nil, models.NewJobError(models.ErrKindConfig, "invalid JOB_TYPES", err)
	}
	config.JobTypes = types

	if config.PollIntervalMs <= 0 {
		return nil, models.Errorf(models.ErrKindConfig, "POLL_INTERVAL_MS must be positive, got %d", config.PollIntervalMs)
	}
	if config.IdleTimeoutMs <= 0 {
		return nil, models.Errorf(models.ErrKindConfig, "IDLE_TIMEOUT_MS must be positive, got %d", config.IdleTimeoutMs)
	}
	config.PollInterval = time.Duration(config.PollIntervalMs) * time.Millisecond
	config.IdleTimeout = time.Duration(config.IdleTimeoutMs) * time.Millisecond

	if err := validator.New().Struct(config); err != nil {
		return nil, models.NewJobError(models.ErrKindConfig, "invalid configuration", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *WorkerConfig) {
	if v := os.Getenv("API_ENDPOINT"); v != "" {
		config.APIEndpoint = v
	}
	if v := os.Getenv("WORKER_USERNAME"); v != "" {
		config.Username = v
	}
	if v := os.Getenv("WORKER_PASSWORD"); v != "" {
		config.Password = v
	}
	if v := os.Getenv("JOB_TYPES"); v != "" {
		config.JobTypesRaw = v
	}
	if v := os.Getenv("DATA_PATH"); v != "" {
		config.DataPath = v
	}
	if v := os.Getenv("CACHE_PATH"); v != "" {
		config.CachePath = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		config.AWSRegion = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		config.S3Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		config.S3AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		config.S3SecretKey = v
	}
	if v := os.Getenv("POLL_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			config.PollIntervalMs = ms
		}
	}
	if v := os.Getenv("IDLE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			config.IdleTimeoutMs = ms
		}
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		config.SentryDSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
}

// NeedsRegionalData reports whether any configured job type touches the
// regional dataset, so TEST-only workers skip the expensive warmup.
func (c *WorkerConfig) NeedsRegionalData() bool {
	for _, t := range c.JobTypes {
		switch t {
		case models.JobTypeRegionalAssessment, models.JobTypeSuitabilityAssessment, models.JobTypeDataSpecificationUpdate:
			return true
		}
	}
	return false
}
