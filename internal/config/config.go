// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverMinio  = "minio"
	DriverMemory = "memory"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	// Object storage (S3-compatible: MinIO locally and in production)
	StorageDriver  string
	MinioEndpoint  string
	MinioPort      int
	MinioUseSSL    bool
	MinioAccessKey string
	MinioSecretKey string
	Buckets        []string

	StoragePathRoot string // replaces scheme+host of presigned links, e.g. "s3/"
	KeyStrategy     string // "timestamp" or "uuid"
	MaxUploadBytes  int64

	JWTSecret          string // empty disables auth on upload/delete
	CORSAllowedOrigins []string
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	minioPort, err := strconv.Atoi(getEnv("MINIO_PORT", "9000"))
	if err != nil {
		return nil, fmt.Errorf("MINIO_PORT: %w", err)
	}
	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
	}

	cfg := &Config{
		Port:     getEnv("SERVER_PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StorageDriver:  getEnv("STORAGE_DRIVER", DriverMinio),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost"),
		MinioPort:      minioPort,
		MinioUseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		Buckets:        splitList(getEnv("MINIO_BUCKETS", "company-logos,vacancy-logos,user-avatars")),

		StoragePathRoot: getEnv("STORAGE_PATH_ROOT", "s3/"),
		KeyStrategy:     getEnv("KEY_STRATEGY", "timestamp"),
		MaxUploadBytes:  maxUpload,

		JWTSecret:          os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
	return cfg, nil
}

// Validate checks values that Load cannot reject on its own. required lists
// the buckets the service will write to; each must be provisioned.
func (c *Config) Validate(required []string) error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("SERVER_PORT: %q is not a port", c.Port)
	}
	switch c.StorageDriver {
	case DriverMinio, DriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER: unknown driver %q", c.StorageDriver)
	}
	for _, b := range required {
		if !c.HasBucket(b) {
			return fmt.Errorf("MINIO_BUCKETS: bucket %q is not provisioned", b)
		}
	}
	return nil
}

// HasBucket reports whether bucket is in the provisioning list.
func (c *Config) HasBucket(bucket string) bool {
	for _, b := range c.Buckets {
		if b == bucket {
			return true
		}
	}
	return false
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AuthEnabled returns true when upload and delete require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
