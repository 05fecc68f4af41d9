package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore is an in-memory ObjectStore. Presigned URLs look like the ones an
// S3 server hands out but are not verified by anything.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	buckets map[string]map[string]memoryObject
}

// NewMemoryStore returns an empty store whose presigned URLs start with baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		buckets: make(map[string]map[string]memoryObject),
	}
}

// BucketExists reports whether bucket has been made.
func (s *MemoryStore) BucketExists(_ context.Context, bucket string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.buckets[bucket]
	return ok, nil
}

// MakeBucket creates an empty bucket. Creating an existing bucket fails.
func (s *MemoryStore) MakeBucket(_ context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[bucket]; ok {
		return fmt.Errorf("create bucket %q: already exists", bucket)
	}
	s.buckets[bucket] = make(map[string]memoryObject)
	return nil
}

// PutObject reads reader fully and stores a copy under key.
func (s *MemoryStore) PutObject(_ context.Context, bucket, key string, reader io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	objects, ok := s.buckets[bucket]
	if !ok {
		return fmt.Errorf("put object %q: %w", key, ErrBucketNotFound)
	}
	objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

// ObjectExists reports whether key is stored in bucket.
func (s *MemoryStore) ObjectExists(_ context.Context, bucket, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, ok := s.buckets[bucket]
	if !ok {
		return false, nil
	}
	_, ok = objects[key]
	return ok, nil
}

// PresignedGetURL builds an S3-looking URL carrying X-Amz-Expires and a fake signature.
func (s *MemoryStore) PresignedGetURL(_ context.Context, bucket, key string, expiry time.Duration) (*url.URL, error) {
	sum := sha256.Sum256([]byte(bucket + "/" + key + "/" + expiry.String()))
	q := url.Values{}
	q.Set("X-Amz-Expires", strconv.FormatInt(int64(expiry/time.Second), 10))
	q.Set("X-Amz-Signature", hex.EncodeToString(sum[:]))

	u, err := url.Parse(s.baseURL + "/" + bucket + "/" + url.PathEscape(key))
	if err != nil {
		return nil, fmt.Errorf("presign object %q: %w", key, err)
	}
	u.RawQuery = q.Encode()
	return u, nil
}

// RemoveObject deletes key. Missing keys and buckets are ignored.
func (s *MemoryStore) RemoveObject(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if objects, ok := s.buckets[bucket]; ok {
		delete(objects, key)
	}
	return nil
}

// Object returns a copy of the stored bytes and content type. Used by tests.
func (s *MemoryStore) Object(bucket, key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.buckets[bucket][key]
	if !ok {
		return nil, "", false
	}
	return bytes.Clone(obj.data), obj.contentType, true
}

// Len returns the number of objects in bucket.
func (s *MemoryStore) Len(bucket string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets[bucket])
}
