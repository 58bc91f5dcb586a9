package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"swatch-backend/internal/models"
	"swatch-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	usernameMinLength = 3
	usernameMaxLength = 50
	passwordMinLength = 8
	phoneNumberLength = 10
)

// AccountStore persists registered accounts
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	Activate(ctx context.Context, id int64) error
}

// AccountService handles registration and login
type AccountService struct {
	accounts AccountStore
	hasher   *PasswordHasher
	tokens   *TokenService
}

// NewAccountService creates a new account service
func NewAccountService(accounts AccountStore, hasher *PasswordHasher, tokens *TokenService) *AccountService {
	return &AccountService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// RegisterRequest represents a registration attempt
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
}

// Validate checks field lengths and the phone number format
func (r RegisterRequest) Validate() error {
	var verr ValidationError

	switch n := utf8.RuneCountInString(r.Username); {
	case n == 0:
		verr.add("username", "field required")
	case n < usernameMinLength:
		verr.add("username", fmt.Sprintf("must be at least %d characters", usernameMinLength))
	case n > usernameMaxLength:
		verr.add("username", fmt.Sprintf("must be at most %d characters", usernameMaxLength))
	}

	switch n := utf8.RuneCountInString(r.Password); {
	case n == 0:
		verr.add("password", "field required")
	case n < passwordMinLength:
		verr.add("password", fmt.Sprintf("must be at least %d characters", passwordMinLength))
	}

	if r.PhoneNumber == "" {
		verr.add("phone_number", "field required")
	} else if len(r.PhoneNumber) != phoneNumberLength || !allDigits(r.PhoneNumber) {
		verr.add("phone_number", fmt.Sprintf("must be exactly %d digits", phoneNumberLength))
	}

	return verr.orNil()
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks that both fields are present
func (r LoginRequest) Validate() error {
	var verr ValidationError
	if r.Username == "" {
		verr.add("username", "field required")
	}
	if r.Password == "" {
		verr.add("password", "field required")
	}
	return verr.orNil()
}

// LoginResult is returned after a successful login
type LoginResult struct {
	Message     string `json:"message"`
	UserID      int64  `json:"user_id"`
	IsActive    bool   `json:"is_active"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates a new inactive account
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.accounts.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrDuplicateUsername
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account, err := s.accounts.Create(ctx, &models.Account{
		Username:       req.Username,
		PhoneNumber:    req.PhoneNumber,
		HashedPassword: hashed,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// Login checks credentials, activates the account and issues an access token
func (s *AccountService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !s.hasher.Verify(req.Password, account.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	if !account.IsActive {
		if err := s.accounts.Activate(ctx, account.ID); err != nil {
			return nil, fmt.Errorf("failed to activate account: %w", err)
		}
		account.IsActive = true
		log.Info().Str("username", account.Username).Msg("Account activated")
	}

	token, err := s.tokens.Issue(account.Username, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResult{
		Message:     "Login successful",
		UserID:      account.ID,
		IsActive:    account.IsActive,
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
