package repository

import (
	"context"
	"fmt"
	"time"

	"swatch-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SwatchRepository handles database operations for swatch records
type SwatchRepository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewSwatchRepository creates a new swatch repository
func NewSwatchRepository(db *pgxpool.Pool) *SwatchRepository {
	return &SwatchRepository{db: db, now: time.Now}
}

// Create inserts a swatch record and fills in its serial number and creation time
func (r *SwatchRepository) Create(ctx context.Context, record *models.SwatchRecord) (*models.SwatchRecord, error) {
	if record.Status == "" {
		record.Status = models.StatusPending
	}
	record.CreatedAt = r.now().Format(time.RFC3339Nano)

	query := `
		INSERT INTO total_list (created_at, swach_code, swatch_path, model_path, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING s_no
	`
	err := r.db.QueryRow(ctx, query,
		record.CreatedAt, record.SwachCode, record.SwatchPath, record.ModelPath, record.Status,
	).Scan(&record.SNo)
	if err != nil {
		return nil, fmt.Errorf("failed to create swatch record: %w", err)
	}
	return record, nil
}

// Count returns the number of swatch records
func (r *SwatchRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM total_list`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count swatch records: %w", err)
	}
	return total, nil
}

// ListAll returns every swatch record, newest first
func (r *SwatchRepository) ListAll(ctx context.Context) ([]*models.SwatchRecord, error) {
	query := `
		SELECT s_no, created_at, swach_code, swatch_path, model_path, status, final_image
		FROM total_list
		ORDER BY s_no DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list swatch records: %w", err)
	}
	defer rows.Close()

	records := make([]*models.SwatchRecord, 0)
	for rows.Next() {
		var record models.SwatchRecord
		err := rows.Scan(
			&record.SNo, &record.CreatedAt, &record.SwachCode, &record.SwatchPath,
			&record.ModelPath, &record.Status, &record.FinalImage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan swatch record: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating swatch records: %w", err)
	}

	return records, nil
}
