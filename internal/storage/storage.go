// Package storage defines the interface for the backing object store.
// The MinIO implementation works with any S3-compatible provider; the in-memory
// implementation backs tests and local runs without a store.
package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"time"
)

// ErrBucketNotFound is returned when an operation targets a bucket that was never created.
var ErrBucketNotFound = errors.New("bucket not found")

// ObjectStore is the set of bucket/object operations the file gateway relies on.
// Implementations must be safe for concurrent use.
type ObjectStore interface {
	// BucketExists reports whether bucket has been created.
	BucketExists(ctx context.Context, bucket string) (bool, error)
	// MakeBucket creates bucket.
	MakeBucket(ctx context.Context, bucket string) error
	// PutObject streams reader into bucket under key. size is the exact byte count.
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error
	// ObjectExists probes key without reading it. A missing key is (false, nil).
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
	// PresignedGetURL returns a signed GET URL for key valid for expiry.
	PresignedGetURL(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error)
	// RemoveObject deletes key. Removing a missing key is not an error.
	RemoveObject(ctx context.Context, bucket, key string) error
}
