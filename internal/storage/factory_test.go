package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/fedutinova/mediastore/internal/config"
)

func TestSelectBackend(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		cfg := appconfig.Config{}
		if mask&1 != 0 {
			cfg.AWSAccessKey = "key"
		}
		if mask&2 != 0 {
			cfg.AWSSecretKey = "secret"
		}
		if mask&4 != 0 {
			cfg.S3Bucket = "bucket"
		}

		want := BackendLocal
		if mask == 7 {
			want = BackendS3
		}
		assert.Equal(t, want, SelectBackend(cfg), "credentials mask %03b", mask)
	}
}

func TestNewStorage_EmptyCredentialsSelectLocal(t *testing.T) {
	cfg := appconfig.Config{PublicDir: t.TempDir()}

	s, err := NewStorage(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)
	assert.Equal(t, BackendLocal, s.Kind())
	assert.Equal(t, "Local Filesystem", GetStorageType(cfg))
}

func TestNewStorage_FullCredentialsSelectS3(t *testing.T) {
	cfg := appconfig.Config{
		AWSAccessKey: "AKIATEST",
		AWSSecretKey: "secret",
		S3Bucket:     "media",
		S3Region:     "eu-west-1",
		PublicDir:    t.TempDir(),
	}

	s, err := NewStorage(context.Background(), cfg)
	require.NoError(t, err)
	require.IsType(t, &S3Storage{}, s)
	assert.Equal(t, BackendS3, s.Kind())
	assert.Equal(t, "AWS S3", GetStorageType(cfg))

	cfg.S3Endpoint = "http://localhost:4566"
	assert.Equal(t, "LocalStack S3", GetStorageType(cfg))
}
