package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/kcfgraph/internal/config"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/kcfgraph/pkg/errors"
)

// memoryAPI is an in-memory MinIOAPI.
type memoryAPI struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
}

func newMemoryAPI(buckets ...string) *memoryAPI {
	m := &memoryAPI{buckets: map[string]map[string][]byte{}}
	for _, b := range buckets {
		m.buckets[b] = map[string][]byte{}
	}
	return m
}

var errNoSuchKey = minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404, Message: "The specified key does not exist."}

func (m *memoryAPI) BucketExists(_ context.Context, bucket string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.buckets[bucket]
	return ok, nil
}

func (m *memoryAPI) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets[bucket] = map[string][]byte{}
	return nil
}

func (m *memoryAPI) ListObjects(_ context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	m.mu.Lock()
	var keys []string
	for k := range m.buckets[bucket] {
		if strings.HasPrefix(k, opts.Prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	infos := make([]minio.ObjectInfo, len(keys))
	for i, k := range keys {
		infos[i] = minio.ObjectInfo{Key: k, Size: int64(len(m.buckets[bucket][k]))}
	}
	m.mu.Unlock()

	ch := make(chan minio.ObjectInfo, len(infos))
	for _, info := range infos {
		ch <- info
	}
	close(ch)
	return ch
}

func (m *memoryAPI) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return minio.UploadInfo{}, minio.ErrorResponse{Code: "NoSuchBucket", StatusCode: 404}
	}
	b[key] = data
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: int64(len(data)), ETag: "etag"}, nil
}

func (m *memoryAPI) GetObject(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.buckets[bucket][key]
	if !ok {
		return nil, errNoSuchKey
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryAPI) StatObject(_ context.Context, bucket, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.buckets[bucket][key]
	if !ok {
		return minio.ObjectInfo{}, errNoSuchKey
	}
	return minio.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (m *memoryAPI) RemoveObject(_ context.Context, bucket, key string, _ minio.RemoveObjectOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buckets[bucket], key)
	return nil
}

// mockAPI is a testify mock for error paths.
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *mockAPI) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucket, opts).Error(0)
}

func (m *mockAPI) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return m.Called(ctx, bucket, opts).Get(0).(<-chan minio.ObjectInfo)
}

func (m *mockAPI) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucket, key, r, size, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *mockAPI) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *mockAPI) StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *mockAPI) RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error {
	return m.Called(ctx, bucket, key, opts).Error(0)
}

func testMinIOConfig() config.MinIOConfig {
	return config.MinIOConfig{
		Endpoint:     "localhost:9000",
		Region:       "us-east-1",
		RecordBucket: "kcf-records",
		ModelBucket:  "kcf-models",
	}
}

type ClientTestSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *ClientTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *ClientTestSuite) TestEnsureBuckets_CreatesMissing() {
	api := newMemoryAPI("kcf-records")
	c := NewMinIOClientWithAPI(api, testMinIOConfig(), logging.NewNopLogger())

	s.Require().NoError(c.EnsureBuckets(s.ctx))
	exists, _ := api.BucketExists(s.ctx, "kcf-models")
	s.True(exists)
	s.NoError(c.HealthCheck(s.ctx))
}

func (s *ClientTestSuite) TestEnsureBuckets_SharedBucket() {
	cfg := testMinIOConfig()
	cfg.ModelBucket = cfg.RecordBucket
	api := &mockAPI{}
	api.On("BucketExists", mock.Anything, "kcf-records").Return(true, nil).Once()

	c := NewMinIOClientWithAPI(api, cfg, nil)
	s.NoError(c.EnsureBuckets(s.ctx))
	api.AssertExpectations(s.T())
}

func (s *ClientTestSuite) TestEnsureBuckets_BackendError() {
	api := &mockAPI{}
	api.On("BucketExists", mock.Anything, "kcf-records").Return(false, errors.New("dial tcp: refused"))

	c := NewMinIOClientWithAPI(api, testMinIOConfig(), nil)
	err := c.EnsureBuckets(s.ctx)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeStorageError))
}

func (s *ClientTestSuite) TestHealthCheck_MissingBucket() {
	c := NewMinIOClientWithAPI(newMemoryAPI("kcf-records"), testMinIOConfig(), nil)
	err := c.HealthCheck(s.ctx)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeServiceUnavailable))
}

func (s *ClientTestSuite) TestClose_RejectsCalls() {
	c := NewMinIOClientWithAPI(newMemoryAPI("kcf-records", "kcf-models"), testMinIOConfig(), nil)
	s.NoError(c.Close())
	s.Equal(ErrMinIOClientClosed, c.HealthCheck(s.ctx))

	repo := NewMinIORepository(c, nil)
	_, err := repo.Download(s.ctx, "kcf-records", "C00001.kcf", 0)
	s.Equal(ErrMinIOClientClosed, err)
}

func (s *ClientTestSuite) TestBucketAccessors() {
	c := NewMinIOClientWithAPI(newMemoryAPI(), testMinIOConfig(), nil)
	s.Equal("kcf-records", c.RecordBucket())
	s.Equal("kcf-models", c.ModelBucket())
	s.NotNil(c.GetClient())
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestIsNoSuchKey(t *testing.T) {
	assert.True(t, isNoSuchKey(errNoSuchKey))
	assert.False(t, isNoSuchKey(errors.New("boom")))
	assert.False(t, isNoSuchKey(minio.ErrorResponse{Code: "AccessDenied"}))
}

//Personal.AI order the ending
