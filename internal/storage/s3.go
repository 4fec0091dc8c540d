package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/fedutinova/mediastore/internal/common"
	appconfig "github.com/fedutinova/mediastore/internal/config"
)

// objectAPI is the subset of *s3.Client used by S3Storage.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type S3Storage struct {
	client   objectAPI
	bucket   string
	endpoint string
	region   string
}

func NewS3Storage(ctx context.Context, cfg appconfig.Config) (*S3Storage, error) {
	slog.Info("initializing S3 storage",
		"endpoint", cfg.S3Endpoint,
		"bucket", cfg.S3Bucket,
		"region", cfg.S3Region,
		"force_path_style", cfg.S3ForcePathStyle)

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKey,
			cfg.AWSSecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3ForcePathStyle || isLocalStack(cfg.S3Endpoint)
	})

	return newS3Storage(client, cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint), nil
}

func newS3Storage(client objectAPI, bucket, region, endpoint string) *S3Storage {
	return &S3Storage{
		client:   client,
		bucket:   bucket,
		endpoint: strings.TrimRight(endpoint, "/"),
		region:   region,
	}
}

func (s *S3Storage) Kind() Backend { return BackendS3 }

// Put stores content under "{category}/{filename}" with a public-read ACL.
func (s *S3Storage) Put(ctx context.Context, obj Object, content io.Reader) (*UploadResult, error) {
	key := obj.Category + "/" + obj.Filename

	input := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Body:     content,
		ACL:      types.ObjectCannedACLPublicRead,
		Metadata: map[string]string{"fieldName": obj.FieldName, "category": obj.Category},
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if obj.Size >= 0 {
		input.ContentLength = aws.Int64(obj.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, common.WrapStorage("upload file to S3", err)
	}

	url := s.objectURL(key)
	slog.Info("file uploaded to S3", "key", key, "bucket", s.bucket, "size", obj.Size)

	return &UploadResult{
		Key: key,
		URL: url,
	}, nil
}

// Delete removes the object addressed by the last two path segments of location.
// It does not check that the object exists.
func (s *S3Storage) Delete(ctx context.Context, location string) error {
	key := KeyFromLocation(location)

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return common.WrapStorage("delete file from S3", err)
	}

	slog.Info("file deleted from S3", "key", key, "bucket", s.bucket)
	return nil
}

func (s *S3Storage) Check(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return common.WrapStorage("head bucket", err)
	}
	return nil
}

func (s *S3Storage) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// KeyFromLocation joins the last two "/"-separated segments of location,
// i.e. "{category}/{filename}" for any URL produced by Put.
func KeyFromLocation(location string) string {
	parts := strings.Split(location, "/")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return strings.Join(parts, "/")
}
