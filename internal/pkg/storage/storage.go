package storage

import (
	"context"
	"errors"
	"io"
)

var ErrFileNotFound = errors.New("file not found")

// FileStorage keeps raw scan logs: the scanner inbox and the archive of
// imported files. Paths are slash separated and relative to the store root.
type FileStorage interface {
	// Upload writes a file and returns its cleaned path
	Upload(ctx context.Context, file io.Reader, path string) (string, error)

	// Download retrieves a file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// List returns the files directly under prefix, sorted by name
	List(ctx context.Context, prefix string) ([]string, error)

	// Move renames src to dst, creating dst's directory
	Move(ctx context.Context, src, dst string) error
}
