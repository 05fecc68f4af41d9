package storage

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions holds connection settings for an S3-compatible endpoint.
type MinioOptions struct {
	Host      string
	Port      int
	UseSSL    bool
	AccessKey string
	SecretKey string
}

// Endpoint returns the host:port pair the client dials.
func (o MinioOptions) Endpoint() string {
	if o.Port == 0 {
		return o.Host
	}
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// MinioStore implements ObjectStore using a MinIO (or any S3-compatible) backend.
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore creates a MinIO client. No network call is made until the first operation.
func NewMinioStore(opts MinioOptions) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		// Presigned paths are rewritten to "/{bucket}/{key}?..." so the bucket
		// must live in the path rather than the host.
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioStore{client: client}, nil
}

// BucketExists reports whether bucket exists on the server.
func (s *MinioStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, fmt.Errorf("check bucket %q: %w", bucket, err)
	}
	return exists, nil
}

// MakeBucket creates bucket in the default region.
func (s *MinioStore) MakeBucket(ctx context.Context, bucket string) error {
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %q: %w", bucket, err)
	}
	return nil
}

// PutObject streams reader to MinIO under key. size must be the exact byte count
// (pass -1 only if the size is genuinely unknown, MinIO will buffer it).
func (s *MinioStore) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// ObjectExists stats key. Only a NoSuchKey / 404 answer counts as absent;
// network and auth failures are returned to the caller.
func (s *MinioStore) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("stat object %q: %w", key, err)
}

// PresignedGetURL asks the client to sign a GET request for key.
func (s *MinioStore) PresignedGetURL(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("presign object %q: %w", key, err)
	}
	return u, nil
}

// RemoveObject removes the object at key from bucket.
func (s *MinioStore) RemoveObject(ctx context.Context, bucket, key string) error {
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}
