package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"anoa.com/educonnect/pkg/apperror"
)

type localStorage struct {
	baseDir string
}

// NewLocalStorage stores files on disk below baseDir. Locations returned by
// Save are relative to baseDir.
func NewLocalStorage(baseDir string) (FileStorage, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("invalid upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &localStorage{baseDir: abs}, nil
}

func (s *localStorage) Save(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	location := filepath.ToSlash(filepath.Join(folder, fileName))
	dst, err := s.resolve(location)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", folder, err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return location, nil
}

func (s *localStorage) Locate(location string) (string, error) {
	if IsRemote(location) {
		return location, nil
	}

	p, err := s.resolve(location)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", apperror.ErrFileNotFound
	}
	return p, nil
}

func (s *localStorage) Delete(ctx context.Context, location string) error {
	if IsRemote(location) {
		return nil
	}

	p, err := s.resolve(location)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// resolve maps a location to an absolute path, refusing anything that would
// escape baseDir.
func (s *localStorage) resolve(location string) (string, error) {
	p := filepath.Join(s.baseDir, filepath.FromSlash(location))
	if p != s.baseDir && !strings.HasPrefix(p, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("location %q escapes upload dir: %w", location, apperror.ErrBadRequest)
	}
	return p, nil
}
