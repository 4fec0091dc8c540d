package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	neturl "net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fedutinova/mediastore/internal/common"
)

// PublicPrefix is the URL path under which the public dir is served.
const PublicPrefix = "/public/"

type LocalStorage struct {
	publicDir string
}

func NewLocalStorage(publicDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(publicDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create public directory: %w", err)
	}

	return &LocalStorage{publicDir: publicDir}, nil
}

func (s *LocalStorage) Kind() Backend { return BackendLocal }

// Put writes content to {publicDir}/uploads/{category}/{filename}, creating the
// category directory on demand. The URL is built from obj.Origin.
func (s *LocalStorage) Put(ctx context.Context, obj Object, content io.Reader) (*UploadResult, error) {
	dir := filepath.Join(s.publicDir, "uploads", obj.Category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory structure: %w", err)
	}

	filePath := filepath.Join(dir, obj.Filename)
	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filePath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	key := path.Join("uploads", obj.Category, obj.Filename)
	url := strings.TrimRight(obj.Origin, "/") + PublicPrefix +
		path.Join("uploads", obj.Category, neturl.PathEscape(obj.Filename))

	slog.Info("file uploaded to local storage", "key", key, "path", filePath, "size", n)

	return &UploadResult{
		Key: key,
		URL: url,
	}, nil
}

// Delete removes the file a location points at. Locations without a /public/
// segment and files that are already gone are treated as success.
func (s *LocalStorage) Delete(ctx context.Context, location string) error {
	filePath, ok := s.resolve(location)
	if !ok {
		slog.Debug("location outside public dir, nothing to delete", "location", location)
		return nil
	}

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return common.WrapStorage("delete local file", err)
	}

	slog.Info("file deleted from local storage", "location", location, "path", filePath)
	return nil
}

func (s *LocalStorage) Check(ctx context.Context) error {
	info, err := os.Stat(s.publicDir)
	if err != nil {
		return common.WrapStorage("stat public dir", err)
	}
	if !info.IsDir() {
		return common.WrapStorage("stat public dir", fmt.Errorf("%s is not a directory", s.publicDir))
	}
	return nil
}

func (s *LocalStorage) resolve(location string) (string, bool) {
	idx := strings.Index(location, PublicPrefix)
	if idx == -1 {
		return "", false
	}
	rel := location[idx+len(PublicPrefix):]
	if i := strings.IndexAny(rel, "?#"); i != -1 {
		rel = rel[:i]
	}
	// locations built by Put escape the filename
	if unescaped, err := neturl.PathUnescape(rel); err == nil {
		rel = unescaped
	}

	// rooting before Clean keeps ".." from escaping the public dir
	cleaned := path.Clean("/" + rel)
	if cleaned == "/" {
		return "", false
	}
	return filepath.Join(s.publicDir, filepath.FromSlash(cleaned)), true
}
