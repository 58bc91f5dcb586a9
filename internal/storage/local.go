package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalBackend stores files in a directory tree on the local filesystem
type LocalBackend struct {
	baseDir  string
	modelDir string
}

// NewLocalBackend creates the base directory and its model subdirectory if
// they do not exist yet.
func NewLocalBackend(baseDir, modelDir string) (*LocalBackend, error) {
	if modelDir == "" {
		modelDir = DefaultModelDir
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}

	b := &LocalBackend{baseDir: abs, modelDir: modelDir}
	if err := b.ensureDirs(); err != nil {
		return nil, err
	}
	return b, nil
}

// BaseDir returns the absolute storage directory
func (b *LocalBackend) BaseDir() string {
	return b.baseDir
}

func (b *LocalBackend) ensureDirs() error {
	if err := os.MkdirAll(filepath.Join(b.baseDir, b.modelDir), 0o755); err != nil {
		return fmt.Errorf("failed to create storage directories: %w", err)
	}
	return nil
}

// Put writes body to baseDir/key. The content lands in a temp file first and
// is renamed over the destination, so an existing file with the same name is
// replaced whole.
func (b *LocalBackend) Put(ctx context.Context, key string, body io.Reader, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// The directories may have been removed since startup.
	if err := b.ensureDirs(); err != nil {
		return "", err
	}

	dest := filepath.Join(b.baseDir, filepath.FromSlash(key))
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.Create(filepath.Join(dir, ".upload-"+uuid.NewString()))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	return dest, nil
}
