// Package config defines all configuration structures for kcfgraph.  No I/O
// or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// ParserConfig holds the default parser switches.  Every post-pass runs
// unless switched off.
type ParserConfig struct {
	NoStereo            bool `mapstructure:"no_stereo"`
	NoImplicitHydrogens bool `mapstructure:"no_implicit_hydrogens"`
	// MaxRecordBytes bounds a single record accepted over the network.
	MaxRecordBytes int64 `mapstructure:"max_record_bytes"`
}

// BatchConfig holds batch parsing parameters.
type BatchConfig struct {
	Concurrency int  `mapstructure:"concurrency"`
	FailFast    bool `mapstructure:"fail_fast"`
	// FilePattern selects record files in a directory batch.
	FilePattern string `mapstructure:"file_pattern"`
}

// ModelConfig holds the graph-model builder defaults.
type ModelConfig struct {
	Conv           string `mapstructure:"conv"`
	Width          int    `mapstructure:"width"`
	Depth          int    `mapstructure:"depth"`
	FeatureCount   int    `mapstructure:"feature_count"`
	LibraryVersion string `mapstructure:"library_version"`
}

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
	Path      string `mapstructure:"path"`
}

// RedisConfig holds Redis connection parameters for the graph cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters.
type MinIOConfig struct {
	// Enabled turns on the record source and the model store.
	Enabled      bool   `mapstructure:"enabled"`
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UseSSL       bool   `mapstructure:"use_ssl"`
	Region       string `mapstructure:"region"`
	RecordBucket string `mapstructure:"record_bucket"`
	ModelBucket  string `mapstructure:"model_bucket"`
}

// KafkaConfig holds the stream worker's broker parameters.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	GroupID      string        `mapstructure:"group_id"`
	InputTopic   string        `mapstructure:"input_topic"`
	OutputTopic  string        `mapstructure:"output_topic"`
	DLQTopic     string        `mapstructure:"dlq_topic"`
	StartOffset  string        `mapstructure:"start_offset"` // "earliest" | "latest"
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	Concurrency  int           `mapstructure:"concurrency"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Every component reads its
// settings from the relevant sub-struct.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Parser  ParserConfig  `mapstructure:"parser"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Model   ModelConfig   `mapstructure:"model"`
	Server  ServerConfig  `mapstructure:"server"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Redis   RedisConfig   `mapstructure:"redis"`
	MinIO   MinIOConfig   `mapstructure:"minio"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered.  Sections of optional backends
// (Redis, MinIO, Kafka) are checked only for values that are always used.
func (c *Config) Validate() error {
	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Parser
	if c.Parser.MaxRecordBytes < 1 {
		return fmt.Errorf("config: parser.max_record_bytes must be ≥ 1, got %d", c.Parser.MaxRecordBytes)
	}

	// Batch
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("config: batch.concurrency must be ≥ 1, got %d", c.Batch.Concurrency)
	}

	// Model
	switch c.Model.Conv {
	case "cheb", "cheb10k", "cheb15k":
	default:
		return fmt.Errorf("config: model.conv %q is invalid; expected cheb|cheb10k|cheb15k", c.Model.Conv)
	}
	if c.Model.Width < 1 {
		return fmt.Errorf("config: model.width must be ≥ 1, got %d", c.Model.Width)
	}
	if c.Model.Depth < 0 {
		return fmt.Errorf("config: model.depth must be ≥ 0, got %d", c.Model.Depth)
	}
	if c.Model.FeatureCount < 1 {
		return fmt.Errorf("config: model.feature_count must be ≥ 1, got %d", c.Model.FeatureCount)
	}

	// Server
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr is required")
	}

	// Redis
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// MinIO
	if c.MinIO.RecordBucket == "" || c.MinIO.ModelBucket == "" {
		return fmt.Errorf("config: minio.record_bucket and minio.model_bucket are required")
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}
	switch c.Kafka.StartOffset {
	case "earliest", "latest":
	default:
		return fmt.Errorf("config: kafka.start_offset %q is invalid; expected earliest|latest", c.Kafka.StartOffset)
	}
	if c.Kafka.InputTopic == c.Kafka.OutputTopic || c.Kafka.InputTopic == c.Kafka.DLQTopic {
		return fmt.Errorf("config: kafka input topic %q must differ from the output and dead-letter topics", c.Kafka.InputTopic)
	}

	return nil
}

//Personal.AI order the ending
