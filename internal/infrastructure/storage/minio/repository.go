package minio

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeObjectNotFound, "object not found")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "bucket and object key are required")
	ErrObjectTooLarge = errors.New(errors.ErrCodeValidation, "object exceeds size limit")
)

// ObjectStorageRepository is byte-level access to one object store.
type ObjectStorageRepository interface {
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)
	Download(ctx context.Context, bucket, objectKey string, maxBytes int64) ([]byte, error)
	Exists(ctx context.Context, bucket, objectKey string) (bool, error)
	List(ctx context.Context, bucket, prefix string) ([]ObjectMetadata, error)
	Delete(ctx context.Context, bucket, objectKey string) error
}

type UploadRequest struct {
	Bucket      string
	ObjectKey   string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	UploadedAt time.Time
}

type ObjectMetadata struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

type minioRepository struct {
	client *MinIOClient
	logger logging.Logger
}

func NewMinIORepository(client *MinIOClient, log logging.Logger) ObjectStorageRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &minioRepository{client: client, logger: log}
}

func (r *minioRepository) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if req == nil || req.Bucket == "" || req.ObjectKey == "" {
		return nil, ErrInvalidRequest
	}
	api, err := r.client.api()
	if err != nil {
		return nil, err
	}
	opts := minio.PutObjectOptions{
		ContentType:  req.ContentType,
		UserMetadata: req.Metadata,
	}
	info, err := api.PutObject(ctx, req.Bucket, req.ObjectKey, bytes.NewReader(req.Data), int64(len(req.Data)), opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "upload failed").WithDetail(req.ObjectKey)
	}
	r.logger.Debug("uploaded object",
		logging.String("bucket", req.Bucket),
		logging.String("key", req.ObjectKey),
		logging.Int64("size", info.Size))
	return &UploadResult{
		Bucket:     req.Bucket,
		ObjectKey:  req.ObjectKey,
		ETag:       info.ETag,
		Size:       info.Size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Download reads a whole object. A positive maxBytes rejects larger objects
// without buffering past the limit.
func (r *minioRepository) Download(ctx context.Context, bucket, objectKey string, maxBytes int64) ([]byte, error) {
	if bucket == "" || objectKey == "" {
		return nil, ErrInvalidRequest
	}
	api, err := r.client.api()
	if err != nil {
		return nil, err
	}
	obj, err := api.GetObject(ctx, bucket, objectKey)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrObjectNotFound.WithDetail(objectKey)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "download failed").WithDetail(objectKey)
	}
	defer obj.Close()

	var src io.Reader = obj
	if maxBytes > 0 {
		src = io.LimitReader(obj, maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "download failed").WithDetail(objectKey)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrObjectTooLarge.WithDetailf("%s is larger than %d bytes", objectKey, maxBytes)
	}
	return data, nil
}

func (r *minioRepository) Exists(ctx context.Context, bucket, objectKey string) (bool, error) {
	api, err := r.client.api()
	if err != nil {
		return false, err
	}
	if _, err := api.StatObject(ctx, bucket, objectKey, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeStorageError, "stat failed").WithDetail(objectKey)
	}
	return true, nil
}

// List returns every object under prefix, sorted by key as the store
// returns them. Directory markers are skipped.
func (r *minioRepository) List(ctx context.Context, bucket, prefix string) ([]ObjectMetadata, error) {
	api, err := r.client.api()
	if err != nil {
		return nil, err
	}
	var out []ObjectMetadata
	for obj := range api.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeStorageError, "list failed").WithDetail(prefix)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		out = append(out, ObjectMetadata{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}
	return out, nil
}

func (r *minioRepository) Delete(ctx context.Context, bucket, objectKey string) error {
	api, err := r.client.api()
	if err != nil {
		return err
	}
	if err := api.RemoveObject(ctx, bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "delete failed").WithDetail(objectKey)
	}
	return nil
}

//Personal.AI order the ending
