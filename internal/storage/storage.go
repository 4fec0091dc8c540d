package storage

import (
	"context"
	"io"
)

// Categories of stored files. Each one maps to a key prefix in the bucket
// and a subdirectory of the public dir.
const (
	CategoryProfiles = "profiles"
	CategoryPosts    = "posts"
)

type Storage interface {
	Put(ctx context.Context, obj Object, content io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, location string) error
	Check(ctx context.Context) error
	Kind() Backend
}

// Object describes a file about to be stored.
type Object struct {
	Category    string
	FieldName   string
	Filename    string
	ContentType string
	Size        int64
	// Origin is "{proto}://{host}" of the inbound request. Only local storage uses it.
	Origin string
}

type UploadResult struct {
	Key string
	URL string
}
