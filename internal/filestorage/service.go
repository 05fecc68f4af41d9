// Package filestorage stores uploaded images per category and hands out
// expiring download paths for them.
package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/itsoft/storage-service/internal/storage"
)

// ExpiredTimeInDays is how long a download descriptor stays valid.
const ExpiredTimeInDays = 3

// ValidityWindow is ExpiredTimeInDays as a duration (259 200 seconds).
const ValidityWindow = ExpiredTimeInDays * 24 * time.Hour

// DefaultPathRoot prefixes every pathToFile handed out by Get.
const DefaultPathRoot = "s3/"

// DeletedMessage is returned by every successful Delete.
const DeletedMessage = "File deleted successfully"

// ErrInvalidExtension is returned when an upload name does not end in .png, .jpg or .jpeg.
var ErrInvalidExtension = errors.New("invalid file extension")

// ErrNotFound is returned when the requested file does not exist in the bucket.
var ErrNotFound = errors.New("file not found")

// Category binds a URL prefix to a bucket and the name used when an upload carries none.
type Category struct {
	Name            string
	Bucket          string
	DefaultFileName string
}

// Categories returns the three image categories served by the service.
func Categories() []Category {
	return []Category{
		{Name: "company-logos", Bucket: "company-logos", DefaultFileName: "company-logo.png"},
		{Name: "vacancy-logos", Bucket: "vacancy-logos", DefaultFileName: "vacancy-logo.png"},
		{Name: "user-avatars", Bucket: "user-avatars", DefaultFileName: "user-avatar.png"},
	}
}

// Options are shared by every category.
type Options struct {
	// PathRoot replaces scheme and host of presigned URLs. Defaults to DefaultPathRoot.
	PathRoot    string
	KeyStrategy KeyStrategy
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// UploadResult is returned by Upload.
type UploadResult struct {
	FileName string
}

// Descriptor is a freshly minted, read-only view of a stored file.
type Descriptor struct {
	FileName   string
	PathToFile string
	// ExpiredDate is computed from the local clock, not read back from the signature.
	ExpiredDate time.Time
}

// DeleteResult is returned by Delete.
type DeleteResult struct {
	Message string
}

// Service performs uploads, lookups and deletions for a single category.
type Service struct {
	store    storage.ObjectStore
	category Category
	pathRoot string
	keys     KeyStrategy
	now      func() time.Time
	log      *zap.Logger
}

// NewService creates a Service for category backed by store.
func NewService(store storage.ObjectStore, category Category, opts Options, log *zap.Logger) *Service {
	if opts.PathRoot == "" {
		opts.PathRoot = DefaultPathRoot
	}
	if opts.KeyStrategy == "" {
		opts.KeyStrategy = KeyTimestamp
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:    store,
		category: category,
		pathRoot: opts.PathRoot,
		keys:     opts.KeyStrategy,
		now:      opts.Now,
		log:      log.With(zap.String("category", category.Name), zap.String("bucket", category.Bucket)),
	}
}

// Category returns the category this service was built for.
func (s *Service) Category() Category {
	return s.category
}

// Upload stores the content of r under a name derived from fileName.
// An empty fileName falls back to the category default.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader, size int64) (*UploadResult, error) {
	if fileName == "" {
		fileName = s.category.DefaultFileName
	}

	base, ext, ok := splitName(fileName)
	if !ok {
		s.observe("upload", ErrInvalidExtension)
		return nil, ErrInvalidExtension
	}

	key := s.keys.storedKey(base, ext, s.now())
	if err := s.store.PutObject(ctx, s.category.Bucket, key, r, size, contentTypeFor(ext)); err != nil {
		s.observe("upload", err)
		s.log.Error("upload failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("upload %q: %w", fileName, err)
	}

	s.observe("upload", nil)
	return &UploadResult{FileName: key}, nil
}

// Get checks that fileName exists and returns a descriptor with a presigned
// download path valid for ValidityWindow.
func (s *Service) Get(ctx context.Context, fileName string) (*Descriptor, error) {
	expiredDate := s.now().Add(ValidityWindow)

	exists, err := s.store.ObjectExists(ctx, s.category.Bucket, fileName)
	if err != nil {
		s.observe("get", err)
		s.log.Error("existence check failed", zap.String("key", fileName), zap.Error(err))
		return nil, fmt.Errorf("get %q: %w", fileName, err)
	}
	if !exists {
		s.observe("get", ErrNotFound)
		return nil, ErrNotFound
	}

	u, err := s.store.PresignedGetURL(ctx, s.category.Bucket, fileName, ValidityWindow)
	if err != nil {
		s.observe("get", err)
		s.log.Error("presign failed", zap.String("key", fileName), zap.Error(err))
		return nil, fmt.Errorf("get %q: %w", fileName, err)
	}

	s.observe("get", nil)
	return &Descriptor{
		FileName:    fileName,
		PathToFile:  s.relativePath(u),
		ExpiredDate: expiredDate,
	}, nil
}

// Delete removes fileName without checking that it exists.
func (s *Service) Delete(ctx context.Context, fileName string) (*DeleteResult, error) {
	if err := s.store.RemoveObject(ctx, s.category.Bucket, fileName); err != nil {
		s.observe("delete", err)
		s.log.Error("delete failed", zap.String("key", fileName), zap.Error(err))
		return nil, fmt.Errorf("delete %q: %w", fileName, err)
	}
	s.observe("delete", nil)
	return &DeleteResult{Message: DeletedMessage}, nil
}

// IsNotFound returns true when err means the file does not exist.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidExtension returns true when err means the upload name was rejected.
func (s *Service) IsInvalidExtension(err error) bool {
	return errors.Is(err, ErrInvalidExtension)
}

// relativePath drops scheme and host: http://minio:9000/b/k?sig -> s3/b/k?sig.
func (s *Service) relativePath(u *url.URL) string {
	p := s.pathRoot + strings.TrimPrefix(u.EscapedPath(), "/")
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}

func (s *Service) observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidExtension):
		result = "invalid"
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	operationsTotal.WithLabelValues(s.category.Name, op, result).Inc()
}
