// Package storage writes uploaded swatch images to a storage backend.
//
// Files are named after the caller supplied swatch code plus the original
// file extension. Uploading the same code twice replaces the earlier file:
// storage is last-write-wins and keeps no history.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// DefaultModelDir is the subdirectory that holds model images
const DefaultModelDir = "model image"

var (
	ErrStorage     = errors.New("storage error")
	ErrInvalidCode = errors.New("invalid swatch code")
)

// Backend persists a single object under a slash separated key and returns
// the location it was written to.
type Backend interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// File is an uploaded file as received from the client
type File struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Intake names uploaded swatch files and hands them to a backend
type Intake struct {
	backend  Backend
	modelDir string
}

// NewIntake creates a new intake. An empty modelDir selects DefaultModelDir.
func NewIntake(backend Backend, modelDir string) *Intake {
	if modelDir == "" {
		modelDir = DefaultModelDir
	}
	return &Intake{backend: backend, modelDir: modelDir}
}

// Store writes the primary image and, when present, the model image.
// modelPath is nil when no model image was supplied.
func (i *Intake) Store(ctx context.Context, code string, primary File, model *File) (primaryPath string, modelPath *string, err error) {
	if err := ValidateCode(code); err != nil {
		return "", nil, err
	}

	primaryPath, err = i.put(ctx, FileName(code, primary.Filename), primary)
	if err != nil {
		return "", nil, err
	}

	if model != nil {
		key := path.Join(i.modelDir, FileName(code, model.Filename))
		p, err := i.put(ctx, key, *model)
		if err != nil {
			return "", nil, err
		}
		modelPath = &p
	}

	return primaryPath, modelPath, nil
}

func (i *Intake) put(ctx context.Context, key string, f File) (string, error) {
	location, err := i.backend.Put(ctx, key, f.Body, f.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrStorage, key, err)
	}
	return location, nil
}

// FileName builds the stored name for an upload: the code followed by the
// extension of the client's file name.
func FileName(code, original string) string {
	return code + filepath.Ext(original)
}

// ValidateCode rejects codes that would escape the storage directory
func ValidateCode(code string) error {
	switch {
	case strings.TrimSpace(code) == "":
		return fmt.Errorf("%w: empty", ErrInvalidCode)
	case code == "." || code == "..":
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	case strings.ContainsAny(code, `/\`+"\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidCode, code)
	}
	return nil
}
