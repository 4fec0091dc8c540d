package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr         string
	JWTSecret        string
	JWTIssuer        string
	AWSAccessKey     string `validate:"required_with=AWSSecretKey S3Bucket"`
	AWSSecretKey     string `validate:"required_with=AWSAccessKey S3Bucket"`
	S3Bucket         string `validate:"required_with=AWSAccessKey AWSSecretKey"`
	S3Region         string
	S3Endpoint       string
	S3ForcePathStyle bool
	PublicDir        string `validate:"required"`
	RedisURL         string
	UploadIndexTTL   time.Duration
	UploadRateLimit  int `validate:"gte=0"`
	StorageStrict    bool
}

// CloudEnabled reports whether all three cloud credentials are present.
func (c Config) CloudEnabled() bool {
	return c.AWSAccessKey != "" && c.AWSSecretKey != "" && c.S3Bucket != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
		slog.Warn("bad int env, using default", "key", key, "value", v)
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "true" || v == "1" {
			return true
		}
		if v == "false" || v == "0" {
			return false
		}
		slog.Warn("bad bool env, using default", "key", key, "value", v)
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
		slog.Warn("bad duration env, using default", "key", key, "value", v)
	}
	return def
}

func loadEnvFiles() {
	envFiles := []string{
		".env.local",
		".env",
	}

	currentDir, err := os.Getwd()
	if err != nil {
		slog.Debug("failed to get current directory", "error", err)
		return
	}

	// look in current directory and up to 3 parent directories
	searchDirs := []string{currentDir}
	for i := 0; i < 3; i++ {
		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			break
		}
		searchDirs = append(searchDirs, parent)
		currentDir = parent
	}

	loadedAny := false
	for _, dir := range searchDirs {
		for _, envFile := range envFiles {
			envPath := filepath.Join(dir, envFile)
			if _, err := os.Stat(envPath); err == nil {
				if err := godotenv.Load(envPath); err == nil {
					slog.Debug("loaded environment file", "path", envPath)
					loadedAny = true
				} else {
					slog.Debug("failed to load environment file", "path", envPath, "error", err)
				}
			}
		}
		if loadedAny {
			break
		}
	}

	if !loadedAny {
		slog.Debug("no .env files found, using system environment variables only")
	}
}

// Load reads .env files and the process environment once. Cloud credentials
// have no defaults: leaving any of them unset selects local disk storage.
func Load() Config {
	loadEnvFiles()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env files.
func FromEnv() Config {
	return Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		JWTSecret:        getenv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:        getenv("JWT_ISSUER", "mediastore"),
		AWSAccessKey:     os.Getenv("AWS_IAM_USER_KEY"),
		AWSSecretKey:     os.Getenv("AWS_IAM_USER_SECRET"),
		S3Bucket:         os.Getenv("AWS_BUCKET_NAME"),
		S3Region:         getenv("S3_REGION", "us-east-1"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3ForcePathStyle: getBool("S3_FORCE_PATH_STYLE", false),
		PublicDir:        getenv("PUBLIC_DIR", "./public"),
		RedisURL:         os.Getenv("REDIS_URL"),
		UploadIndexTTL:   mustDuration("UPLOAD_INDEX_TTL", 90*24*time.Hour),
		UploadRateLimit:  mustInt("UPLOAD_RATE_LIMIT", 30),
		StorageStrict:    getBool("STORAGE_STRICT", false),
	}
}
