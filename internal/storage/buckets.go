package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// EnsureBuckets creates every bucket in buckets that does not exist yet.
// It runs sequentially and stops at the first failing check or create.
func EnsureBuckets(ctx context.Context, store ObjectStore, buckets []string, log *zap.Logger) error {
	for _, bucket := range buckets {
		if err := EnsureBucket(ctx, store, bucket, log); err != nil {
			return err
		}
	}
	return nil
}

// EnsureBucket creates bucket if it is absent. Calling it for an existing bucket is a no-op.
func EnsureBucket(ctx context.Context, store ObjectStore, bucket string, log *zap.Logger) error {
	exists, err := store.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("ensure bucket %q: %w", bucket, err)
	}
	if exists {
		log.Debug("bucket already exists", zap.String("bucket", bucket))
		return nil
	}

	if err := store.MakeBucket(ctx, bucket); err != nil {
		return fmt.Errorf("ensure bucket %q: %w", bucket, err)
	}
	log.Info("bucket created", zap.String("bucket", bucket))
	return nil
}
