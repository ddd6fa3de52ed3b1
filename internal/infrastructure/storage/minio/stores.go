package minio

import (
	"bytes"
	"context"

	"github.com/turtacn/kcfgraph/internal/intelligence/gnnsom"
)

const (
	kcfContentType   = "chemical/x-kcf"
	stateContentType = "application/msgpack"
)

// RecordStore holds raw KCF records in the record bucket.
type RecordStore struct {
	repo     ObjectStorageRepository
	bucket   string
	maxBytes int64
}

func NewRecordStore(repo ObjectStorageRepository, bucket string, maxBytes int64) *RecordStore {
	return &RecordStore{repo: repo, bucket: bucket, maxBytes: maxBytes}
}

func (s *RecordStore) Bucket() string { return s.bucket }

// GetRecord returns the record text stored under key.
func (s *RecordStore) GetRecord(ctx context.Context, key string) ([]byte, error) {
	return s.repo.Download(ctx, s.bucket, key, s.maxBytes)
}

func (s *RecordStore) PutRecord(ctx context.Context, key string, record []byte) error {
	_, err := s.repo.Upload(ctx, &UploadRequest{
		Bucket:      s.bucket,
		ObjectKey:   key,
		Data:        record,
		ContentType: kcfContentType,
	})
	return err
}

// ListRecords returns the keys under prefix.
func (s *RecordStore) ListRecords(ctx context.Context, prefix string) ([]string, error) {
	objs, err := s.repo.List(ctx, s.bucket, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(objs))
	for i, o := range objs {
		keys[i] = o.Key
	}
	return keys, nil
}

// ModelStore holds msgpack model state files in the model bucket.
type ModelStore struct {
	repo   ObjectStorageRepository
	bucket string
}

func NewModelStore(repo ObjectStorageRepository, bucket string) *ModelStore {
	return &ModelStore{repo: repo, bucket: bucket}
}

func (s *ModelStore) GetState(ctx context.Context, key string) (*gnnsom.StateFile, error) {
	data, err := s.repo.Download(ctx, s.bucket, key, 0)
	if err != nil {
		return nil, err
	}
	return gnnsom.DecodeState(bytes.NewReader(data))
}

func (s *ModelStore) PutState(ctx context.Context, key string, f *gnnsom.StateFile) error {
	var buf bytes.Buffer
	if err := gnnsom.EncodeState(&buf, f); err != nil {
		return err
	}
	_, err := s.repo.Upload(ctx, &UploadRequest{
		Bucket:      s.bucket,
		ObjectKey:   key,
		Data:        buf.Bytes(),
		ContentType: stateContentType,
		Metadata:    map[string]string{"format": f.Format},
	})
	return err
}

//Personal.AI order the ending
