package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage stores blobs on the local filesystem under a base directory.
// References are paths relative to that directory.
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

func (s *LocalStorage) Read(ctx context.Context, reference string) ([]byte, error) {
	path, err := s.resolve(reference)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (s *LocalStorage) Write(ctx context.Context, data []byte, filename string) (string, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return filename, nil
}

func (s *LocalStorage) Delete(ctx context.Context, reference string) error {
	path, err := s.resolve(reference)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// resolve keeps references inside the base directory.
func (s *LocalStorage) resolve(reference string) (string, error) {
	cleaned := filepath.Clean(reference)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage reference: %s", reference)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}
