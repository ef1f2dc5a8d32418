// Package storage keeps rendered exports on the local filesystem so a copy of
// every file that left the system can be produced later.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage handles file storage on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save writes data under subDir/YYYY/MM and returns the path relative to the
// storage root. The original filename is kept as a suffix so archived exports
// stay recognisable.
func (s *LocalStorage) Save(data []byte, filename, subDir string, at time.Time) (string, error) {
	dir := filepath.Join(s.basePath, subDir, at.Format("2006/01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(filename))
	filePath := filepath.Join(dir, name)
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	relPath, err := filepath.Rel(s.basePath, filePath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(relPath), nil
}

// Read returns the content stored at relativePath
func (s *LocalStorage) Read(relativePath string) ([]byte, error) {
	full, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	full, err := s.resolve(relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// resolve keeps lookups inside the storage root
func (s *LocalStorage) resolve(relativePath string) (string, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(relativePath))
	rel, err := filepath.Rel(s.basePath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes storage root", relativePath)
	}
	return full, nil
}
