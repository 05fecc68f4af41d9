package filestorage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/itsoft/storage-service/internal/storage"
)

var companyLogos = Category{Name: "company-logos", Bucket: "company-logos", DefaultFileName: "company-logo.png"}

func newTestService(t *testing.T, opts Options) (*Service, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore("http://localhost:9000")
	for _, c := range Categories() {
		require.NoError(t, store.MakeBucket(context.Background(), c.Bucket))
	}
	return NewService(store, companyLogos, opts, zap.NewNop()), store
}

func TestUploadNaming(t *testing.T) {
	svc, store := newTestService(t, Options{})
	ctx := context.Background()

	for _, name := range []string{"apple-logo.png", "apple-logo.jpg", "apple-logo.jpeg", "a.b.c.jpg", "photo.png.jpg"} {
		t.Run(name, func(t *testing.T) {
			base, ext, ok := splitName(name)
			require.True(t, ok)

			res, err := svc.Upload(ctx, name, strings.NewReader("img"), 3)
			require.NoError(t, err)

			pattern := "^" + regexp.QuoteMeta(base) + `-\d+\.` + ext + "$"
			assert.Regexp(t, pattern, res.FileName)

			_, _, stored := store.Object("company-logos", res.FileName)
			assert.True(t, stored)
		})
	}
}

func TestUploadUsesClockMillis(t *testing.T) {
	now := time.UnixMilli(1718000000123)
	svc, store := newTestService(t, Options{Now: func() time.Time { return now }})

	res, err := svc.Upload(context.Background(), "apple-logo.jpg", strings.NewReader("jpeg"), 4)
	require.NoError(t, err)
	assert.Equal(t, "apple-logo-1718000000123.jpg", res.FileName)

	data, ct, ok := store.Object("company-logos", res.FileName)
	require.True(t, ok)
	assert.Equal(t, "jpeg", string(data))
	assert.Equal(t, "image/jpeg", ct)
}

func TestUploadRejectsExtension(t *testing.T) {
	svc, store := newTestService(t, Options{})
	ctx := context.Background()

	for _, name := range []string{"doc.pdf", "logo.PNG", "logo.gif", "logo.png.exe", "logo", "png", "logo.jpg "} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Upload(ctx, name, strings.NewReader("x"), 1)
			assert.ErrorIs(t, err, ErrInvalidExtension)
			assert.True(t, svc.IsInvalidExtension(err))
		})
	}
	assert.Equal(t, 0, store.Len("company-logos"))

	_, err := svc.Get(ctx, "doc-1.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadDefaultName(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	res, err := svc.Upload(context.Background(), "", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.Regexp(t, `^company-logo-\d+\.png$`, res.FileName)
}

func TestUploadUUIDStrategy(t *testing.T) {
	svc, _ := newTestService(t, Options{KeyStrategy: KeyUUID})

	res, err := svc.Upload(context.Background(), "apple-logo.png", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.Regexp(t, `^apple-logo-[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\.png$`, res.FileName)
}

func TestGetRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	res, err := svc.Upload(ctx, "apple-logo.jpg", strings.NewReader("jpeg"), 4)
	require.NoError(t, err)

	d, err := svc.Get(ctx, res.FileName)
	require.NoError(t, err)
	assert.Equal(t, res.FileName, d.FileName)
	assert.True(t, strings.HasPrefix(d.PathToFile, "s3/company-logos/"+res.FileName+"?"), d.PathToFile)
	assert.NotContains(t, d.PathToFile, "localhost")
	assert.WithinDuration(t, time.Now().Add(72*time.Hour), d.ExpiredDate, 5*time.Second)

	q, err := url.ParseQuery(d.PathToFile[strings.Index(d.PathToFile, "?")+1:])
	require.NoError(t, err)
	assert.Equal(t, "259200", q.Get("X-Amz-Expires"))
}

func TestGetEachCallMintsNewExpiry(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, Options{Now: func() time.Time { return now }})
	ctx := context.Background()

	res, err := svc.Upload(ctx, "apple-logo.png", strings.NewReader("x"), 1)
	require.NoError(t, err)

	first, err := svc.Get(ctx, res.FileName)
	require.NoError(t, err)
	now = now.Add(time.Hour)
	second, err := svc.Get(ctx, res.FileName)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC), first.ExpiredDate)
	assert.Equal(t, first.ExpiredDate.Add(time.Hour), second.ExpiredDate)
}

func TestGetMissing(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	_, err := svc.Get(context.Background(), "non-existent-file.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, svc.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	res, err := svc.Upload(ctx, "apple-logo.jpg", strings.NewReader("x"), 1)
	require.NoError(t, err)

	del, err := svc.Delete(ctx, res.FileName)
	require.NoError(t, err)
	assert.Equal(t, "File deleted successfully", del.Message)

	_, err = svc.Get(ctx, res.FileName)
	assert.ErrorIs(t, err, ErrNotFound)

	del, err = svc.Delete(ctx, "never-uploaded.jpg")
	require.NoError(t, err)
	assert.Equal(t, DeletedMessage, del.Message)
}

func TestCustomPathRoot(t *testing.T) {
	svc, _ := newTestService(t, Options{PathRoot: "files/"})
	ctx := context.Background()

	res, err := svc.Upload(ctx, "a.png", strings.NewReader("x"), 1)
	require.NoError(t, err)
	d, err := svc.Get(ctx, res.FileName)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(d.PathToFile, "files/company-logos/"))
}

// failingStore fails every object operation with errBoom.
type failingStore struct {
	*storage.MemoryStore
	failExists  bool
	failPresign bool
}

var errBoom = errors.New("boom")

func (f *failingStore) PutObject(context.Context, string, string, io.Reader, int64, string) error {
	return errBoom
}

func (f *failingStore) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	if f.failExists {
		return false, errBoom
	}
	return true, nil
}

func (f *failingStore) PresignedGetURL(ctx context.Context, bucket, key string, expiry time.Duration) (*url.URL, error) {
	if f.failPresign {
		return nil, errBoom
	}
	return f.MemoryStore.PresignedGetURL(ctx, bucket, key, expiry)
}

func (f *failingStore) RemoveObject(context.Context, string, string) error {
	return errBoom
}

func TestStoreFailuresPropagate(t *testing.T) {
	ctx := context.Background()

	store := &failingStore{MemoryStore: storage.NewMemoryStore("http://localhost:9000"), failExists: true}
	svc := NewService(store, companyLogos, Options{}, zap.NewNop())

	_, err := svc.Upload(ctx, "a.png", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, errBoom)

	_, err = svc.Get(ctx, "a.png")
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, svc.IsNotFound(err))

	_, err = svc.Delete(ctx, "a.png")
	assert.ErrorIs(t, err, errBoom)

	store.failExists = false
	store.failPresign = true
	_, err = svc.Get(ctx, "a.png")
	assert.ErrorIs(t, err, errBoom)
}

func TestParseKeyStrategy(t *testing.T) {
	k, err := ParseKeyStrategy("")
	require.NoError(t, err)
	assert.Equal(t, KeyTimestamp, k)

	k, err = ParseKeyStrategy("uuid")
	require.NoError(t, err)
	assert.Equal(t, KeyUUID, k)

	_, err = ParseKeyStrategy("random")
	assert.Error(t, err)
}

func TestOperationsCounter(t *testing.T) {
	cat := Category{Name: "metrics-test", Bucket: "company-logos", DefaultFileName: "x.png"}
	store := storage.NewMemoryStore("http://localhost:9000")
	require.NoError(t, store.MakeBucket(context.Background(), cat.Bucket))
	svc := NewService(store, cat, Options{}, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Upload(ctx, "a.png", strings.NewReader("x"), 1)
	require.NoError(t, err)
	_, _ = svc.Upload(ctx, "a.gif", strings.NewReader("x"), 1)
	_, _ = svc.Get(ctx, "missing.png")

	assert.Equal(t, 1.0, testutil.ToFloat64(operationsTotal.WithLabelValues("metrics-test", "upload", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(operationsTotal.WithLabelValues("metrics-test", "upload", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(operationsTotal.WithLabelValues("metrics-test", "get", "not_found")))
}
