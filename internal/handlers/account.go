package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"swatch-backend/internal/repository"
	"swatch-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AccountHandler handles registration and login requests
type AccountHandler struct {
	accountService *services.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// Register handles POST /register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, map[string]string{"body": "invalid JSON"})
		return
	}

	log.Info().Str("username", req.Username).Msg("Registration attempt")

	_, err := h.accountService.Register(ctx, req)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			respondValidation(w, verr.Fields)
		case errors.Is(err, repository.ErrDuplicateUsername):
			log.Info().Str("username", req.Username).Msg("Registration failed: username already exists")
			respondError(w, "Username already registered", http.StatusBadRequest)
		default:
			log.Error().Err(err).Str("username", req.Username).Msg("Registration database error")
			respondError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	log.Info().Str("username", req.Username).Msg("Registration successful")
	respondJSON(w, http.StatusOK, MessageResponse{Message: "registered"})
}

// Login handles POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, map[string]string{"body": "invalid JSON"})
		return
	}

	result, err := h.accountService.Login(ctx, req)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			respondValidation(w, verr.Fields)
		case errors.Is(err, services.ErrInvalidCredentials):
			log.Info().Str("username", req.Username).Msg("Login failed: invalid credentials")
			respondError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			log.Error().Err(err).Str("username", req.Username).Msg("Login failed")
			respondError(w, "Login failed", http.StatusInternalServerError)
		}
		return
	}

	log.Info().
		Str("username", req.Username).
		Int64("user_id", result.UserID).
		Msg("Login successful")

	respondJSON(w, http.StatusOK, result)
}
