// Package config assembles runtime configuration in three stages:
// DefaultConfig, then an optional JSON file overlay, then environment
// variable overrides — in that order, so env vars always win.
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

// StoreConfig selects and configures the FunctionStore backend.
type StoreConfig struct {
	Backend  string `json:"backend"`   // "json" (default) or "postgres"
	JSONPath string `json:"json_path"` // path to the declarations file
	PostgresDSN string `json:"postgres_dsn"`
}

// ToolchainConfig configures where interpreter archives are installed from.
type ToolchainConfig struct {
	InstallDir   string `json:"install_dir"`   // root dir for per-environment toolchain installs
	DenoVersion  string `json:"deno_version"`  // pinned interpreter release
	ArchiveSource string `json:"archive_source"` // "http" (default) or "s3"
	S3Bucket     string `json:"s3_bucket"`
	S3Prefix     string `json:"s3_prefix"`
}

// ExecutorConfig bounds how long a single invocation is allowed to run.
type ExecutorConfig struct {
	DefaultTimeout time.Duration `json:"default_timeout"`
}

// SchedulerConfig tunes the timer trigger's tick granularity.
type SchedulerConfig struct {
	TickInterval time.Duration `json:"tick_interval"`
}

// DaemonConfig holds the external HTTP front-end's settings.
type DaemonConfig struct {
	HTTPAddr string `json:"http_addr"`
	LogLevel string `json:"log_level"`
}

// TracingConfig holds OpenTelemetry tracing settings.
type TracingConfig struct {
	Enabled     bool    `json:"enabled"`
	Exporter    string  `json:"exporter"`
	Endpoint    string  `json:"endpoint"`
	ServiceName string  `json:"service_name"`
	SampleRate  float64 `json:"sample_rate"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled          bool      `json:"enabled"`
	Namespace        string    `json:"namespace"`
	HistogramBuckets []float64 `json:"histogram_buckets"`
}

// LiveTailConfig configures the optional Redis-backed log fan-out.
type LiveTailConfig struct {
	Enabled  bool   `json:"enabled"`
	RedisAddr string `json:"redis_addr"`
}

// Config is the root configuration struct.
type Config struct {
	Store     StoreConfig     `json:"store"`
	Toolchain ToolchainConfig `json:"toolchain"`
	Executor  ExecutorConfig  `json:"executor"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Daemon    DaemonConfig    `json:"daemon"`
	Tracing   TracingConfig   `json:"tracing"`
	Metrics   MetricsConfig   `json:"metrics"`
	LiveTail  LiveTailConfig  `json:"live_tail"`
}

// DefaultConfig returns a Config with sensible defaults for running on a
// single host against the local filesystem.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:  "json",
			JSONPath: "/var/lib/minifaas/functions.json",
		},
		Toolchain: ToolchainConfig{
			InstallDir:    "/var/lib/minifaas/environments",
			DenoVersion:   "1.7.4",
			ArchiveSource: "http",
		},
		Executor: ExecutorConfig{
			DefaultTimeout: 30 * time.Second,
		},
		Scheduler: SchedulerConfig{
			TickInterval: time.Second,
		},
		Daemon: DaemonConfig{
			HTTPAddr: ":8080",
			LogLevel: "info",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    "otlp-http",
			Endpoint:    "localhost:4318",
			ServiceName: "minifaas",
			SampleRate:  1.0,
		},
		Metrics: MetricsConfig{
			Enabled:          true,
			Namespace:        "minifaas",
			HistogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		LiveTail: LiveTailConfig{
			Enabled:   false,
			RedisAddr: "localhost:6379",
		},
	}
}

// LoadFromFile overlays a JSON config file onto the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv applies MINIFAAS_-prefixed environment variable overrides.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("MINIFAAS_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("MINIFAAS_STORE_JSON_PATH"); v != "" {
		cfg.Store.JSONPath = v
	}
	if v := os.Getenv("MINIFAAS_STORE_POSTGRES_DSN"); v != "" {
		cfg.Store.PostgresDSN = v
	}
	if v := os.Getenv("MINIFAAS_TOOLCHAIN_INSTALL_DIR"); v != "" {
		cfg.Toolchain.InstallDir = v
	}
	if v := os.Getenv("MINIFAAS_TOOLCHAIN_DENO_VERSION"); v != "" {
		cfg.Toolchain.DenoVersion = v
	}
	if v := os.Getenv("MINIFAAS_TOOLCHAIN_ARCHIVE_SOURCE"); v != "" {
		cfg.Toolchain.ArchiveSource = v
	}
	if v := os.Getenv("MINIFAAS_TOOLCHAIN_S3_BUCKET"); v != "" {
		cfg.Toolchain.S3Bucket = v
	}
	if v := os.Getenv("MINIFAAS_TOOLCHAIN_S3_PREFIX"); v != "" {
		cfg.Toolchain.S3Prefix = v
	}
	if v := os.Getenv("MINIFAAS_EXECUTOR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Executor.DefaultTimeout = d
		}
	}
	if v := os.Getenv("MINIFAAS_SCHEDULER_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Scheduler.TickInterval = d
		}
	}
	if v := os.Getenv("MINIFAAS_HTTP_ADDR"); v != "" {
		cfg.Daemon.HTTPAddr = v
	}
	if v := os.Getenv("MINIFAAS_LOG_LEVEL"); v != "" {
		cfg.Daemon.LogLevel = v
	}
	if v := os.Getenv("MINIFAAS_TRACING_ENABLED"); v != "" {
		cfg.Tracing.Enabled = parseBool(v)
	}
	if v := os.Getenv("MINIFAAS_TRACING_ENDPOINT"); v != "" {
		cfg.Tracing.Endpoint = v
	}
	if v := os.Getenv("MINIFAAS_TRACING_SAMPLE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Tracing.SampleRate = f
		}
	}
	if v := os.Getenv("MINIFAAS_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("MINIFAAS_METRICS_NAMESPACE"); v != "" {
		cfg.Metrics.Namespace = v
	}
	if v := os.Getenv("MINIFAAS_LIVETAIL_ENABLED"); v != "" {
		cfg.LiveTail.Enabled = parseBool(v)
	}
	if v := os.Getenv("MINIFAAS_LIVETAIL_REDIS_ADDR"); v != "" {
		cfg.LiveTail.RedisAddr = v
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes"
}
