package common

import (
	"errors"
	"fmt"
)

// Domain errors - use errors.Is() to check
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")

	// Upload errors
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnexpectedField = errors.New("unexpected field")
	ErrNotMultipart    = errors.New("request is not multipart")

	// Storage errors
	ErrStorage       = errors.New("storage backend error")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// WrapStorage wraps a backend failure with the operation that caused it
func WrapStorage(operation string, err error) error {
	return fmt.Errorf("%s: %w", operation, errors.Join(ErrStorage, err))
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTooLarge checks if an upload exceeded the size limit
func IsTooLarge(err error) bool {
	return errors.Is(err, ErrFileTooLarge)
}

// IsBadRequest checks if an error was caused by a malformed client request
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest) || errors.Is(err, ErrUnexpectedField) || errors.Is(err, ErrNotMultipart)
}

func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
