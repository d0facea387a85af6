// Package minio stores documents as objects in an S3-compatible bucket.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/msomdec/cms/internal/domain"
)

// objectStore is the slice of the MinIO client the repository calls.
// Tests substitute an in-memory bucket.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// clientStore is a *minio.Client whose GetObject returns the plain reader
// objectStore expects. Every other method is promoted unchanged.
type clientStore struct {
	*minio.Client
}

func (c clientStore) GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := c.Client.GetObject(ctx, bucket, key, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

var _ domain.DocumentRepository = (*DocumentRepository)(nil)

// DocumentRepository keeps each document as one object named after it.
type DocumentRepository struct {
	api    objectStore
	bucket string
}

// NewDocumentRepository stores documents in bucket, creating it when missing.
func NewDocumentRepository(ctx context.Context, client *minio.Client, bucket string) (*DocumentRepository, error) {
	return newDocumentRepository(ctx, clientStore{Client: client}, bucket)
}

func newDocumentRepository(ctx context.Context, api objectStore, bucket string) (*DocumentRepository, error) {
	r := &DocumentRepository{api: api, bucket: bucket}
	if err := r.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return r, nil
}

func (r *DocumentRepository) ensureBucketExists(ctx context.Context) error {
	exists, err := r.api.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("stat bucket %s: %w", r.bucket, err)
	}
	if !exists {
		if err := r.api.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("make bucket %s: %w", r.bucket, err)
		}
	}
	return nil
}

// List returns top-level object names in the bucket's listing order.
func (r *DocumentRepository) List(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range r.api.ListObjects(ctx, r.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("%w: list objects: %w", domain.ErrStoreUnavailable, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

func (r *DocumentRepository) Exists(ctx context.Context, name string) (bool, error) {
	if err := domain.CheckName(name); err != nil {
		return false, err
	}
	_, err := r.api.StatObject(ctx, r.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat object: %w", domain.ErrStoreUnavailable, err)
	}
	return true, nil
}

func (r *DocumentRepository) Read(ctx context.Context, name string) ([]byte, error) {
	if err := domain.CheckName(name); err != nil {
		return nil, err
	}
	obj, err := r.api.GetObject(ctx, r.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get object: %w", domain.ErrStoreUnavailable, err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing key surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: read object: %w", domain.ErrStoreUnavailable, err)
	}
	return data, nil
}

func (r *DocumentRepository) Write(ctx context.Context, name string, data []byte) error {
	if err := domain.CheckName(name); err != nil {
		return err
	}
	_, err := r.api.PutObject(ctx, r.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("%w: put object %s: %w", domain.ErrWrite, name, err)
	}
	return nil
}

// Delete removes the object. RemoveObject succeeds for missing keys, so
// existence is checked first to report ErrNotFound.
func (r *DocumentRepository) Delete(ctx context.Context, name string) error {
	ok, err := r.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	if err := r.api.RemoveObject(ctx, r.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: remove object %s: %w", domain.ErrWrite, name, err)
	}
	return nil
}

// Object keys are flat: no prefixes, so a document never lands in a "folder".

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
