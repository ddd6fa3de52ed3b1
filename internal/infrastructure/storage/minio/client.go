package minio

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/kcfgraph/internal/config"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/pkg/errors"
)

// connectTimeout bounds the bucket checks done by NewMinIOClient.
const connectTimeout = 10 * time.Second

// MinIOAPI is the subset of the object store used here. GetObject returns a
// plain reader so that fakes need not build a *minio.Object.
type MinIOAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// sdkAdapter narrows *minio.Client to MinIOAPI.
type sdkAdapter struct {
	*minio.Client
}

func (a sdkAdapter) GetObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	obj, err := a.Client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat surfaces NoSuchKey before the first Read.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, err
	}
	return obj, nil
}

var ErrMinIOClientClosed = errors.New(errors.ErrCodeInternal, "minio client is closed")

// MinIOClient owns the connection and the two buckets the service uses.
type MinIOClient struct {
	client MinIOAPI
	config config.MinIOConfig
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewMinIOClient connects to cfg.Endpoint and creates missing buckets.
func NewMinIOClient(cfg config.MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	sdk, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create minio client")
	}

	c := NewMinIOClientWithAPI(sdkAdapter{Client: sdk}, cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := c.EnsureBuckets(ctx); err != nil {
		return nil, err
	}

	c.logger.Info("MinIO client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

// NewMinIOClientWithAPI wraps an existing API implementation without any
// network round trip.
func NewMinIOClientWithAPI(api MinIOAPI, cfg config.MinIOConfig, log logging.Logger) *MinIOClient {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MinIOClient{client: api, config: cfg, logger: log.Named("minio")}
}

func (c *MinIOClient) buckets() []string {
	if c.config.RecordBucket == c.config.ModelBucket {
		return []string{c.config.RecordBucket}
	}
	return []string{c.config.RecordBucket, c.config.ModelBucket}
}

func (c *MinIOClient) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range c.buckets() {
		exists, err := c.client.BucketExists(ctx, bucket)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageError, "failed to check bucket existence").
				WithDetail(bucket)
		}
		if exists {
			continue
		}
		if err := c.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageError, "failed to create bucket").
				WithDetail(bucket)
		}
		c.logger.Info("Created bucket", logging.String("bucket", bucket))
	}
	return nil
}

func (c *MinIOClient) GetClient() MinIOAPI {
	return c.client
}

func (c *MinIOClient) RecordBucket() string { return c.config.RecordBucket }
func (c *MinIOClient) ModelBucket() string  { return c.config.ModelBucket }

func (c *MinIOClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *MinIOClient) api() (MinIOAPI, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrMinIOClientClosed
	}
	return c.client, nil
}

// HealthCheck reports whether every configured bucket is reachable.
func (c *MinIOClient) HealthCheck(ctx context.Context) error {
	api, err := c.api()
	if err != nil {
		return err
	}
	for _, bucket := range c.buckets() {
		exists, err := api.BucketExists(ctx, bucket)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "minio unreachable")
		}
		if !exists {
			return errors.New(errors.ErrCodeServiceUnavailable, "bucket missing").WithDetail(bucket)
		}
	}
	return nil
}

// isNoSuchKey reports whether err is the object store's not-found response.
func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}

//Personal.AI order the ending
