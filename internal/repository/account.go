package repository

import (
	"context"
	"errors"
	"fmt"

	"swatch-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository handles database operations for registered accounts
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new inactive account and fills in its ID
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO registered_account (username, phone_number, hashed_password, is_active)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, is_active
	`
	err := r.db.QueryRow(ctx, query, account.Username, account.PhoneNumber, account.HashedPassword).
		Scan(&account.ID, &account.IsActive)
	if err != nil {
		switch {
		case constraintViolated(err, "registered_account_username_key"):
			return nil, ErrDuplicateUsername
		case constraintViolated(err, "registered_account_phone_number_key"):
			return nil, ErrDuplicatePhone
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT id, username, phone_number, hashed_password, is_active
		FROM registered_account
		WHERE username = $1
	`
	var account models.Account
	err := r.db.QueryRow(ctx, query, username).Scan(
		&account.ID, &account.Username, &account.PhoneNumber, &account.HashedPassword, &account.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// Activate marks an account as active. Activating an active account is a no-op.
func (r *AccountRepository) Activate(ctx context.Context, id int64) error {
	query := `UPDATE registered_account SET is_active = TRUE WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to activate account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	return nil
}
