package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fedutinova/mediastore/internal/common"
)

const defaultPrefix = "mediastore"

// Service indexes stored uploads by owner so deletes can be authorized.
type Service struct {
	client *redis.Client
	prefix string
}

func New(redisURL string) (*Service, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, defaultPrefix), nil
}

func NewWithClient(client *redis.Client, prefix string) *Service {
	return &Service{client: client, prefix: prefix}
}

func (s *Service) Close() error {
	return s.client.Close()
}

func (s *Service) ownerKey(location string) string {
	return fmt.Sprintf("%s:upload_owner:%s", s.prefix, location)
}

func (s *Service) userKey(userID string) string {
	return fmt.Sprintf("%s:user_uploads:%s", s.prefix, userID)
}

func (s *Service) RecordUpload(ctx context.Context, userID, location string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.ownerKey(location), userID, ttl)
		pipe.SAdd(ctx, s.userKey(userID), location)
		if ttl > 0 {
			pipe.Expire(ctx, s.userKey(userID), ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}

func (s *Service) UploadOwner(ctx context.Context, location string) (string, error) {
	owner, err := s.client.Get(ctx, s.ownerKey(location)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("upload owner: %w", common.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get upload owner: %w", err)
	}
	return owner, nil
}

func (s *Service) ForgetUpload(ctx context.Context, location string) error {
	owner, err := s.UploadOwner(ctx, location)
	if common.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.ownerKey(location))
		pipe.SRem(ctx, s.userKey(owner), location)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to forget upload: %w", err)
	}
	return nil
}

func (s *Service) UserUploads(ctx context.Context, userID string) ([]string, error) {
	locations, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return locations, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
