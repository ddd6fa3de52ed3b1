// Package config provides configuration loading, defaults, and validation for
// kcfgraph.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMaxRecordBytes = 4 << 20

	DefaultBatchConcurrency = 8
	DefaultBatchFilePattern = "*.kcf"

	DefaultModelConv           = "cheb"
	DefaultModelWidth          = 64
	DefaultModelDepth          = 3
	DefaultModelFeatureCount   = 32
	DefaultModelLibraryVersion = "2.0.4"

	DefaultServerAddr            = ":8080"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 30 * time.Second
	DefaultServerShutdownTimeout = 10 * time.Second

	DefaultMetricsNamespace = "kcfgraph"
	DefaultMetricsPath      = "/metrics"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisTTL       = 24 * time.Hour
	DefaultRedisKeyPrefix = "kcfgraph:"

	DefaultMinIOEndpoint     = "localhost:9000"
	DefaultMinIORecordBucket = "kcf-records"
	DefaultMinIOModelBucket  = "kcf-models"

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaGroupID      = "kcfgraph-worker"
	DefaultKafkaInputTopic   = "kcf.records"
	DefaultKafkaOutputTopic  = "kcf.graphs"
	DefaultKafkaDLQTopic     = "kcf.records.dlq"
	DefaultKafkaStartOffset  = "earliest"
	DefaultKafkaMaxRetries   = 3
	DefaultKafkaRetryBackoff = 200 * time.Millisecond
)

// defaultValues is the flat key/value view of the defaults used to seed
// viper, so that environment-only loading sees every key.
func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"log.level":                    DefaultLogLevel,
		"log.format":                   DefaultLogFormat,
		"log.output_paths":             []string{"stderr"},
		"log.error_output_paths":       []string{"stderr"},
		"parser.no_stereo":             false,
		"parser.no_implicit_hydrogens": false,
		"parser.max_record_bytes":      DefaultMaxRecordBytes,
		"batch.concurrency":            DefaultBatchConcurrency,
		"batch.fail_fast":              false,
		"batch.file_pattern":           DefaultBatchFilePattern,
		"model.conv":                   DefaultModelConv,
		"model.width":                  DefaultModelWidth,
		"model.depth":                  DefaultModelDepth,
		"model.feature_count":          DefaultModelFeatureCount,
		"model.library_version":        DefaultModelLibraryVersion,
		"server.addr":                  DefaultServerAddr,
		"server.read_timeout":          DefaultServerReadTimeout,
		"server.write_timeout":         DefaultServerWriteTimeout,
		"server.shutdown_timeout":      DefaultServerShutdownTimeout,
		"metrics.enabled":              true,
		"metrics.namespace":            DefaultMetricsNamespace,
		"metrics.subsystem":            "",
		"metrics.path":                 DefaultMetricsPath,
		"redis.enabled":                false,
		"redis.addr":                   DefaultRedisAddr,
		"redis.password":               "",
		"redis.db":                     0,
		"redis.pool_size":              DefaultRedisPoolSize,
		"redis.dial_timeout":           5 * time.Second,
		"redis.read_timeout":           3 * time.Second,
		"redis.write_timeout":          3 * time.Second,
		"redis.default_ttl":            DefaultRedisTTL,
		"redis.key_prefix":             DefaultRedisKeyPrefix,
		"minio.enabled":                false,
		"minio.endpoint":               DefaultMinIOEndpoint,
		"minio.access_key":             "",
		"minio.secret_key":             "",
		"minio.use_ssl":                false,
		"minio.region":                 "",
		"minio.record_bucket":          DefaultMinIORecordBucket,
		"minio.model_bucket":           DefaultMinIOModelBucket,
		"kafka.brokers":                []string{DefaultKafkaBroker},
		"kafka.group_id":               DefaultKafkaGroupID,
		"kafka.input_topic":            DefaultKafkaInputTopic,
		"kafka.output_topic":           DefaultKafkaOutputTopic,
		"kafka.dlq_topic":              DefaultKafkaDLQTopic,
		"kafka.start_offset":           DefaultKafkaStartOffset,
		"kafka.max_retries":            DefaultKafkaMaxRetries,
		"kafka.retry_backoff":          DefaultKafkaRetryBackoff,
		"kafka.concurrency":            1,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg with the default.  Fields
// that have already been set (non-zero values) are left unchanged so that
// explicit configuration always wins.  Booleans are left alone: their zero
// value cannot be told apart from an explicit false.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stderr"}
	}
	if len(cfg.Log.ErrorOutputPaths) == 0 {
		cfg.Log.ErrorOutputPaths = []string{"stderr"}
	}

	// ── Parser / Batch ────────────────────────────────────────────────────────
	if cfg.Parser.MaxRecordBytes == 0 {
		cfg.Parser.MaxRecordBytes = DefaultMaxRecordBytes
	}
	if cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = DefaultBatchConcurrency
	}
	if cfg.Batch.FilePattern == "" {
		cfg.Batch.FilePattern = DefaultBatchFilePattern
	}

	// ── Model ─────────────────────────────────────────────────────────────────
	if cfg.Model.Conv == "" {
		cfg.Model.Conv = DefaultModelConv
	}
	if cfg.Model.Width == 0 {
		cfg.Model.Width = DefaultModelWidth
	}
	// Depth 0 is a valid single-projection model; it is defaulted only
	// through viper.
	if cfg.Model.FeatureCount == 0 {
		cfg.Model.FeatureCount = DefaultModelFeatureCount
	}
	if cfg.Model.LibraryVersion == "" {
		cfg.Model.LibraryVersion = DefaultModelLibraryVersion
	}

	// ── Server / Metrics ──────────────────────────────────────────────────────
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.RecordBucket == "" {
		cfg.MinIO.RecordBucket = DefaultMinIORecordBucket
	}
	if cfg.MinIO.ModelBucket == "" {
		cfg.MinIO.ModelBucket = DefaultMinIOModelBucket
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.InputTopic == "" {
		cfg.Kafka.InputTopic = DefaultKafkaInputTopic
	}
	if cfg.Kafka.OutputTopic == "" {
		cfg.Kafka.OutputTopic = DefaultKafkaOutputTopic
	}
	if cfg.Kafka.DLQTopic == "" {
		cfg.Kafka.DLQTopic = DefaultKafkaDLQTopic
	}
	if cfg.Kafka.StartOffset == "" {
		cfg.Kafka.StartOffset = DefaultKafkaStartOffset
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = DefaultKafkaMaxRetries
	}
	if cfg.Kafka.RetryBackoff == 0 {
		cfg.Kafka.RetryBackoff = DefaultKafkaRetryBackoff
	}
	if cfg.Kafka.Concurrency == 0 {
		cfg.Kafka.Concurrency = 1
	}
}

//Personal.AI order the ending
