package services

import (
	"context"
	"fmt"

	"swatch-backend/internal/models"
	"swatch-backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// SwatchStore persists swatch records
type SwatchStore interface {
	Create(ctx context.Context, record *models.SwatchRecord) (*models.SwatchRecord, error)
	Count(ctx context.Context) (int64, error)
	ListAll(ctx context.Context) ([]*models.SwatchRecord, error)
}

// FileStore writes uploaded swatch images
type FileStore interface {
	Store(ctx context.Context, code string, primary storage.File, model *storage.File) (string, *string, error)
}

// Publisher receives newly created swatch records
type Publisher interface {
	PublishSwatch(record *models.SwatchRecord)
}

// SwatchService handles swatch uploads and listings
type SwatchService struct {
	swatches  SwatchStore
	files     FileStore
	publisher Publisher
}

// NewSwatchService creates a new swatch service. publisher may be nil.
func NewSwatchService(swatches SwatchStore, files FileStore, publisher Publisher) *SwatchService {
	return &SwatchService{
		swatches:  swatches,
		files:     files,
		publisher: publisher,
	}
}

// Upload writes the images and then records them. The file write is not
// rolled back if the insert fails.
func (s *SwatchService) Upload(ctx context.Context, code string, primary storage.File, model *storage.File) (*models.SwatchRecord, error) {
	swatchPath, modelPath, err := s.files.Store(ctx, code, primary, model)
	if err != nil {
		return nil, fmt.Errorf("failed to store swatch files: %w", err)
	}

	record, err := s.swatches.Create(ctx, &models.SwatchRecord{
		SwachCode:  code,
		SwatchPath: swatchPath,
		ModelPath:  modelPath,
		Status:     models.StatusPending,
	})
	if err != nil {
		log.Warn().
			Str("swach_code", code).
			Str("swatch_path", swatchPath).
			Msg("Swatch file written without a record")
		return nil, fmt.Errorf("failed to record swatch: %w", err)
	}

	if s.publisher != nil {
		s.publisher.PublishSwatch(record)
	}

	return record, nil
}

// Count returns the number of recorded swatches
func (s *SwatchService) Count(ctx context.Context) (int64, error) {
	return s.swatches.Count(ctx)
}

// ListAll returns every swatch record, newest first
func (s *SwatchService) ListAll(ctx context.Context) ([]*models.SwatchRecord, error) {
	return s.swatches.ListAll(ctx)
}
