package storage

import (
	"context"
	"io"
	"strings"
)

// FileStorage defines contract for file storage providers.
type FileStorage interface {
	// Save stores the content of r as folder/fileName and returns its location.
	Save(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// Locate resolves a location to something servable: a local path, or the
	// location itself when it is a remote URL. Missing local files yield
	// apperror.ErrFileNotFound.
	Locate(location string) (string, error)
	// Delete removes the file at location.
	Delete(ctx context.Context, location string) error
}

// IsRemote reports whether location is an absolute http(s) URL.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
