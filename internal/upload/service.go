package upload

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fedutinova/mediastore/internal/common"
	"github.com/fedutinova/mediastore/internal/storage"
)

// Service bundles the avatar and post uploaders with the delete operation of
// the same storage backend.
type Service struct {
	Avatar *Uploader
	Posts  *Uploader

	store storage.Storage
}

type options struct {
	maxSize int64
	namer   *Namer
	onError ErrorHandler
}

type Option func(*options)

func WithMaxFileSize(n int64) Option {
	return func(o *options) { o.maxSize = n }
}

func WithNamer(n *Namer) Option {
	return func(o *options) { o.namer = n }
}

func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) { o.onError = h }
}

func NewService(store storage.Storage, opts ...Option) *Service {
	o := options{
		maxSize: MaxFileSize,
		namer:   NewNamer(),
		onError: WriteError,
	}
	for _, opt := range opts {
		opt(&o)
	}

	newUploader := func(category string) *Uploader {
		return &Uploader{
			category: category,
			backend:  store,
			maxSize:  o.maxSize,
			namer:    o.namer,
			onError:  o.onError,
		}
	}

	return &Service{
		Avatar: newUploader(storage.CategoryProfiles),
		Posts:  newUploader(storage.CategoryPosts),
		store:  store,
	}
}

// Delete removes the file at location. Backend errors are returned as-is; the
// caller decides whether to surface or log them.
func (s *Service) Delete(ctx context.Context, location string) error {
	return s.store.Delete(ctx, location)
}

func (s *Service) Backend() storage.Backend {
	return s.store.Kind()
}

func (s *Service) Check(ctx context.Context) error {
	return s.store.Check(ctx)
}

// StatusFor maps upload errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case common.IsTooLarge(err):
		return http.StatusRequestEntityTooLarge
	case common.IsBadRequest(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError is the default ErrorHandler. Internal details are logged, not returned.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("upload failed", "path", r.URL.Path, "error", err)
		msg = "upload failed"
	} else {
		slog.Warn("upload rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
