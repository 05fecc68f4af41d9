//	@title			Job Board Storage API
//	@version		1.0
//	@description	Stores company logos, vacancy logos and user avatars and issues expiring download paths.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token issued by the job-board backend. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/itsoft/storage-service/internal/config"
	"github.com/itsoft/storage-service/internal/filestorage"
	"github.com/itsoft/storage-service/internal/logger"
	"github.com/itsoft/storage-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	categories := filestorage.Categories()
	required := make([]string, 0, len(categories))
	for _, c := range categories {
		required = append(required, c.Bucket)
	}
	if err := cfg.Validate(required); err != nil {
		log.Fatalf("config: %v", err)
	}

	keys, err := filestorage.ParseKeyStrategy(cfg.KeyStrategy)
	if err != nil {
		log.Fatalf("config: KEY_STRATEGY: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	store, err := newStore(cfg)
	if err != nil {
		zl.Fatal("object storage init failed", zap.Error(err))
	}

	// Buckets are provisioned once, before the server accepts traffic.
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	err = storage.EnsureBuckets(initCtx, store, cfg.Buckets, zl)
	cancelInit()
	if err != nil {
		zl.Fatal("bucket provisioning failed", zap.Error(err))
	}

	// Wire dependencies: store → service → handler, one per category
	opts := filestorage.Options{PathRoot: cfg.StoragePathRoot, KeyStrategy: keys}
	handlers := make([]*filestorage.Handler, 0, len(categories))
	for _, c := range categories {
		svc := filestorage.NewService(store, c, opts, zl)
		handlers = append(handlers, filestorage.NewHandler(svc, cfg.MaxUploadBytes))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, zl, handlers),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zl.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("driver", cfg.StorageDriver),
			zap.Bool("auth", cfg.AuthEnabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zl.Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
		return
	}

	zl.Info("server stopped")
}

func newStore(cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.StorageDriver == config.DriverMemory {
		return storage.NewMemoryStore("http://" + storage.MinioOptions{Host: cfg.MinioEndpoint, Port: cfg.MinioPort}.Endpoint()), nil
	}
	return storage.NewMinioStore(storage.MinioOptions{
		Host:      cfg.MinioEndpoint,
		Port:      cfg.MinioPort,
		UseSSL:    cfg.MinioUseSSL,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
	})
}
