package storage

import (
	"context"
	"strings"

	appconfig "github.com/fedutinova/mediastore/internal/config"
)

type Backend string

const (
	BackendS3    Backend = "s3"
	BackendLocal Backend = "local"
)

// SelectBackend picks the cloud backend only when every credential is present.
// Partial credentials select local storage.
func SelectBackend(cfg appconfig.Config) Backend {
	if cfg.CloudEnabled() {
		return BackendS3
	}
	return BackendLocal
}

func NewStorage(ctx context.Context, cfg appconfig.Config) (Storage, error) {
	switch SelectBackend(cfg) {
	case BackendS3:
		return NewS3Storage(ctx, cfg)
	default:
		return NewLocalStorage(cfg.PublicDir)
	}
}

func GetStorageType(cfg appconfig.Config) string {
	switch SelectBackend(cfg) {
	case BackendS3:
		if isLocalStack(cfg.S3Endpoint) {
			return "LocalStack S3"
		}
		if cfg.S3Endpoint != "" {
			return "S3-compatible (" + cfg.S3Endpoint + ")"
		}
		return "AWS S3"
	default:
		return "Local Filesystem"
	}
}

func isLocalStack(endpoint string) bool {
	return endpoint != "" && (strings.Contains(endpoint, "localstack") || strings.Contains(endpoint, "4566"))
}
