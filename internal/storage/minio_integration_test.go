//go:build integration

package storage_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/itsoft/storage-service/internal/storage"
)

func startMinio(t *testing.T) storage.MinioOptions {
	t.Helper()
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "9000")
	require.NoError(t, err)

	return storage.MinioOptions{
		Host:      host,
		Port:      port.Int(),
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}
}

func TestMinioStoreIntegration(t *testing.T) {
	opts := startMinio(t)
	store, err := storage.NewMinioStore(opts)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, storage.EnsureBuckets(ctx, store, []string{"company-logos"}, zap.NewNop()))
	require.NoError(t, storage.EnsureBuckets(ctx, store, []string{"company-logos"}, zap.NewNop()))

	payload := []byte("\x89PNG fake image")
	require.NoError(t, store.PutObject(ctx, "company-logos", "apple-logo-1.png", bytes.NewReader(payload), int64(len(payload)), "image/png"))

	ok, err := store.ObjectExists(ctx, "company-logos", "apple-logo-1.png")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ObjectExists(ctx, "company-logos", "missing.png")
	require.NoError(t, err)
	assert.False(t, ok)

	u, err := store.PresignedGetURL(ctx, "company-logos", "apple-logo-1.png", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "/company-logos/apple-logo-1.png", u.Path)

	resp, err := http.Get(u.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, body)

	require.NoError(t, store.RemoveObject(ctx, "company-logos", "apple-logo-1.png"))
	require.NoError(t, store.RemoveObject(ctx, "company-logos", "apple-logo-1.png"))

	ok, err = store.ObjectExists(ctx, "company-logos", "apple-logo-1.png")
	require.NoError(t, err)
	assert.False(t, ok)
}
