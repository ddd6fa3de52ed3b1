package cli

import (
	appkcf "github.com/turtacn/kcfgraph/internal/application/kcf"
	"github.com/turtacn/kcfgraph/internal/config"
	"github.com/turtacn/kcfgraph/internal/infrastructure/database/redis"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/kcfgraph/internal/infrastructure/storage/minio"
	"github.com/turtacn/kcfgraph/internal/interfaces/http/handlers"
	"github.com/turtacn/kcfgraph/pkg/errors"
)

// backends holds the optional infrastructure a command runs with. Every
// field may be nil when the matching config section is disabled.
type backends struct {
	redis     *redis.Client
	cache     *redis.GraphCache
	minio     *minio.MinIOClient
	records   *minio.RecordStore
	models    *minio.ModelStore
	collector prometheus.MetricsCollector
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
}

// openBackends connects whatever cfg enables. Redis and MinIO failures are
// fatal: a configured backend that is down is an operator error.
func openBackends(cfg *config.Config, logger logging.Logger, withMetrics bool) (*backends, error) {
	b := &backends{logger: logger}

	if withMetrics && cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			Subsystem:            cfg.Metrics.Subsystem,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "metrics initialization failed")
		}
		b.collector = collector
		b.metrics = prometheus.NewAppMetrics(collector)
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.redis = client
		rc := redis.NewRedisCache(client, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
		b.cache = redis.NewGraphCache(rc, cfg.Redis.DefaultTTL, logger)
	}

	if cfg.MinIO.Enabled {
		client, err := minio.NewMinIOClient(cfg.MinIO, logger)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.minio = client
		repo := minio.NewMinIORepository(client, logger)
		b.records = minio.NewRecordStore(repo, client.RecordBucket(), cfg.Parser.MaxRecordBytes)
		b.models = minio.NewModelStore(repo, client.ModelBucket())
	}
	return b, nil
}

// service builds the parse service over the connected backends.
func (b *backends) service(cfg *config.Config) appkcf.Service {
	var opts []appkcf.Option
	if b.cache != nil {
		opts = append(opts, appkcf.WithGraphCache(b.cache))
	}
	if b.records != nil {
		opts = append(opts, appkcf.WithRecordSource(b.records))
	}
	if b.metrics != nil {
		opts = append(opts, appkcf.WithMetrics(b.metrics))
	}
	return appkcf.NewService(cfg.Parser, cfg.Batch, b.logger, opts...)
}

// healthCheckers lists a readiness probe per connected backend.
func (b *backends) healthCheckers() []handlers.HealthChecker {
	var checkers []handlers.HealthChecker
	if b.redis != nil {
		checkers = append(checkers, handlers.CheckerFunc("redis", b.redis.Ping))
	}
	if b.minio != nil {
		checkers = append(checkers, handlers.CheckerFunc("minio", b.minio.HealthCheck))
	}
	return checkers
}

// Close releases every connected backend.
func (b *backends) Close() {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			b.logger.Warn("closing redis client", logging.Err(err))
		}
	}
	if b.minio != nil {
		if err := b.minio.Close(); err != nil {
			b.logger.Warn("closing minio client", logging.Err(err))
		}
	}
}

// modelStore returns the model store, or an error when MinIO is off.
func (b *backends) modelStore() (*minio.ModelStore, error) {
	if b.models == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "model object store not configured").
			WithDetail("set minio.enabled to use minio:// paths")
	}
	return b.models, nil
}

//Personal.AI order the ending
