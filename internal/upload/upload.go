// Package upload turns multipart requests into stored files. A Service owns one
// Uploader per category (avatars and post attachments) bound to whichever
// storage backend was selected at startup.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fedutinova/mediastore/internal/common"
	"github.com/fedutinova/mediastore/internal/storage"
	"github.com/fedutinova/mediastore/internal/validation"
)

const (
	MaxFileSize = validation.MaxFileSize

	maxFieldSize    = 64 << 10
	maxFormOverhead = 1 << 20
	octetStreamMIME = "application/octet-stream"
)

// File is the metadata of a stored upload.
type File struct {
	FieldName    string `json:"field_name"`
	OriginalName string `json:"original_name"`
	Filename     string `json:"filename"`
	Key          string `json:"key"`
	Category     string `json:"category"`
	Ext          string `json:"ext"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	Location     string `json:"location"`
}

// Result is what a single-file upload produced. File is nil when the request
// carried no file under the expected field.
type Result struct {
	File   *File
	Values url.Values
}

type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type Uploader struct {
	category string
	backend  storage.Storage
	maxSize  int64
	namer    *Namer
	onError  ErrorHandler
}

type ctxKey string

const ctxKeyResult ctxKey = "upload"

func FromContext(ctx context.Context) (*File, bool) {
	res, ok := ResultFromContext(ctx)
	if !ok || res.File == nil {
		return nil, false
	}
	return res.File, true
}

func ResultFromContext(ctx context.Context) (*Result, bool) {
	res, ok := ctx.Value(ctxKeyResult).(*Result)
	return res, ok
}

// Single returns middleware that accepts at most one file under field, stores it
// and exposes the result to next through the request context.
func (u *Uploader) Single(field string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, u.maxSize+maxFormOverhead)

			res, err := u.Accept(r, field)
			if err != nil {
				u.onError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyResult, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Accept reads the multipart body of r. The file is buffered and stored only
// after the whole body parsed cleanly, so a failed request persists nothing.
func (u *Uploader) Accept(r *http.Request, field string) (*Result, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNotMultipart, err)
	}

	res := &Result{Values: url.Values{}}
	var (
		data     []byte
		original string
		declared string
		found    bool
	)

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, u.readError("read multipart", err)
		}

		name := part.FormName()
		if part.FileName() == "" {
			value, err := readLimited(part, maxFieldSize)
			part.Close()
			if err != nil {
				return nil, u.readError("read field "+name, err)
			}
			if value == nil {
				return nil, fmt.Errorf("%w: field %q exceeds %d bytes", common.ErrBadRequest, name, maxFieldSize)
			}
			res.Values.Add(name, string(value))
			continue
		}

		if name != field || found {
			part.Close()
			return nil, fmt.Errorf("%w %q", common.ErrUnexpectedField, name)
		}

		data, err = readLimited(part, u.maxSize)
		part.Close()
		if err != nil {
			return nil, u.readError("read file", err)
		}
		if data == nil {
			return nil, fmt.Errorf("%w: limit is %d bytes", common.ErrFileTooLarge, u.maxSize)
		}
		original = part.FileName()
		declared = part.Header.Get("Content-Type")
		found = true
	}

	if !found {
		return res, nil
	}

	file, err := u.store(r, field, original, declared, data)
	if err != nil {
		return nil, err
	}
	res.File = file
	return res, nil
}

func (u *Uploader) store(r *http.Request, field, original, declared string, data []byte) (*File, error) {
	filename := u.namer.Name(field, original)
	contentType := detectContentType(data, declared)

	obj := storage.Object{
		Category:    u.category,
		FieldName:   field,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Origin:      RequestOrigin(r),
	}

	result, err := u.backend.Put(r.Context(), obj, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store %s upload: %w", u.category, err)
	}

	slog.Info("upload stored",
		"category", u.category,
		"field", field,
		"original_name", original,
		"key", result.Key,
		"size", len(data))

	return &File{
		FieldName:    field,
		OriginalName: original,
		Filename:     filename,
		Key:          result.Key,
		Category:     u.category,
		Ext:          Ext(original),
		ContentType:  contentType,
		Size:         int64(len(data)),
		Location:     result.URL,
	}, nil
}

func (u *Uploader) readError(op string, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: request body exceeds %d bytes", common.ErrFileTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%s: %w", op, errors.Join(common.ErrBadRequest, err))
}

// readLimited returns nil data and nil error when r holds more than limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, nil
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func detectContentType(data []byte, declared string) string {
	detected := mimetype.Detect(data)
	if detected.Is(octetStreamMIME) && declared != "" {
		return declared
	}
	return detected.String()
}

// RequestOrigin returns "{proto}://{host}" as seen by the client.
func RequestOrigin(r *http.Request) string {
	proto := "http"
	if r.TLS != nil {
		proto = "https"
	}
	if xf := r.Header.Get("X-Forwarded-Proto"); xf != "" {
		proto = strings.TrimSpace(strings.Split(xf, ",")[0])
	}
	return proto + "://" + r.Host
}
