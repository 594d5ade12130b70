// Package storage persists uploaded tweet images on local disk. Stored
// paths are relative to the base directory so rows stay valid when the
// directory moves.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImagePrefix is the namespace under the base directory where tweet
// images live.
const ImagePrefix = "images"

// LocalStorage writes files under a single base directory.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the base directory when missing.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(basePath, ImagePrefix), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// BasePath returns the root directory of the store.
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// SaveImage writes content under the images/ namespace using a generated
// name that keeps the original extension. Returns the relative path to
// record on the tweet row.
func (s *LocalStorage) SaveImage(originalName string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String() + ext
	rel := filepath.ToSlash(filepath.Join(ImagePrefix, name))

	full := filepath.Join(s.basePath, ImagePrefix, name)
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return rel, nil
}

// Remove deletes a previously stored file by its relative path. A missing
// file is not an error.
func (s *LocalStorage) Remove(rel string) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve maps a stored relative path to an absolute one, rejecting
// anything that escapes the base directory.
func (s *LocalStorage) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage path %q", rel)
	}
	return filepath.Join(s.basePath, clean), nil
}
