package store

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DiskStorage writes files below a base directory and serves them at a
// root-relative public path, mirroring a static file server rooted at that
// directory.
type DiskStorage struct {
	baseDir string
}

// NewDiskStorage constructs a filesystem-backed FileStorage.
func NewDiskStorage(baseDir string) (*DiskStorage, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory must be provided")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &DiskStorage{baseDir: baseDir}, nil
}

// Save writes data under the given relative path and returns the public
// path the file is retrievable at.
func (s *DiskStorage) Save(ctx context.Context, relPath string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	relPath = filepath.ToSlash(filepath.Clean(relPath))
	if strings.HasPrefix(relPath, "..") {
		return "", fmt.Errorf("relative path %q escapes storage root", relPath)
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create storage subdirectory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write file %s: %w", relPath, err)
	}

	return path.Join("/", relPath), nil
}
