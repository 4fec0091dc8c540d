package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedutinova/mediastore/internal/common"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []*s3.DeleteObjectInput
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.HeadBucketOutput{}, nil
}

func TestS3Storage_PutPublicRead(t *testing.T) {
	client := &fakeS3{}
	s := newS3Storage(client, "media", "eu-west-1", "")

	content := []byte("\x89PNG\r\n\x1a\nfake")
	res, err := s.Put(context.Background(), Object{
		Category:    CategoryProfiles,
		FieldName:   "avatar",
		Filename:    "avatar_1700000000000-42.png",
		ContentType: "image/png",
		Size:        int64(len(content)),
	}, bytes.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "profiles/avatar_1700000000000-42.png", res.Key)
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/profiles/avatar_1700000000000-42.png", res.URL)

	require.Len(t, client.puts, 1)
	in := client.puts[0]
	assert.Equal(t, "media", aws.ToString(in.Bucket))
	assert.Equal(t, res.Key, aws.ToString(in.Key))
	assert.Equal(t, types.ObjectCannedACLPublicRead, in.ACL)
	assert.Equal(t, "image/png", aws.ToString(in.ContentType))
	assert.Equal(t, int64(len(content)), aws.ToInt64(in.ContentLength))
	assert.Equal(t, content, client.bodies[0])
	assert.Equal(t, map[string]string{"fieldName": "avatar", "category": CategoryProfiles}, in.Metadata)
}

func TestS3Storage_PutCustomEndpointURL(t *testing.T) {
	s := newS3Storage(&fakeS3{}, "media", "us-east-1", "http://localhost:4566/")

	res, err := s.Put(context.Background(), Object{Category: CategoryPosts, Filename: "post_1-2.jpg", Size: 3}, strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4566/media/posts/post_1-2.jpg", res.URL)
}

func TestS3Storage_PutError(t *testing.T) {
	s := newS3Storage(&fakeS3{err: errors.New("access denied")}, "media", "us-east-1", "")

	_, err := s.Put(context.Background(), Object{Category: CategoryPosts, Filename: "x.jpg", Size: 1}, strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, common.IsStorage(err))
}

func TestS3Storage_DeleteUsesLastTwoSegments(t *testing.T) {
	client := &fakeS3{}
	s := newS3Storage(client, "media", "us-east-1", "")

	err := s.Delete(context.Background(), "https://media.s3.us-east-1.amazonaws.com/posts/post_1-2.jpg")
	require.NoError(t, err)

	require.Len(t, client.deletes, 1)
	assert.Equal(t, "media", aws.ToString(client.deletes[0].Bucket))
	assert.Equal(t, "posts/post_1-2.jpg", aws.ToString(client.deletes[0].Key))
}

func TestS3Storage_DeletePropagatesError(t *testing.T) {
	s := newS3Storage(&fakeS3{err: errors.New("network down")}, "media", "us-east-1", "")

	err := s.Delete(context.Background(), "https://media.s3.us-east-1.amazonaws.com/posts/post_1-2.jpg")
	require.Error(t, err)
	assert.True(t, common.IsStorage(err))
	assert.Contains(t, err.Error(), "network down")
}

func TestKeyFromLocation(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"https://b.s3.us-east-1.amazonaws.com/profiles/a.png", "profiles/a.png"},
		{"http://localhost:4566/b/posts/p.jpg", "posts/p.jpg"},
		{"posts/p.jpg", "posts/p.jpg"},
		{"p.jpg", "p.jpg"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KeyFromLocation(tt.location), tt.location)
	}
}
