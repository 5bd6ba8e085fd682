package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/internal/security/auth"
)

// RegisterRequest represents a new account signup
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse contains the JWT token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
}

// AuthHandler handles account registration and login against the mirror
type AuthHandler struct {
	accounts     domain.AccountRepository
	tokenManager *auth.TokenManager
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts domain.AccountRepository, tm *auth.TokenManager, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{accounts: accounts, tokenManager: tm, logger: logger}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode register request", slog.String("error", err.Error()))
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"name, email and password required"}`, http.StatusBadRequest)
		return
	}

	if _, err := h.accounts.GetByEmail(req.Email); err == nil {
		http.Error(w, `{"error":"email already registered"}`, http.StatusConflict)
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		h.logger.Error("account lookup failed", slog.String("error", err.Error()))
		http.Error(w, `{"error":"registration failed"}`, http.StatusInternalServerError)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", slog.String("error", err.Error()))
		http.Error(w, `{"error":"registration failed"}`, http.StatusInternalServerError)
		return
	}

	account := domain.Account{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := h.accounts.Create(&account); err != nil {
		h.logger.Error("failed to create account", slog.String("error", err.Error()))
		http.Error(w, `{"error":"registration failed"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("account registered",
		slog.String("user_id", account.ID),
		slog.String("email", account.Email),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"success": true, "id": account.ID})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode login request", slog.String("error", err.Error()))
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"email and password required"}`, http.StatusBadRequest)
		return
	}

	account, err := h.accounts.GetByEmail(req.Email)
	if err != nil {
		h.logger.Warn("login failed", slog.String("email", req.Email))
		// Generic error to prevent user enumeration
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.Warn("login failed", slog.String("email", req.Email))
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	expiresIn := 24 * time.Hour
	token, err := h.tokenManager.GenerateToken(account.ID, account.Name, account.Email, expiresIn)
	if err != nil {
		h.logger.Error("failed to generate token",
			slog.String("user_id", account.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"token generation failed"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("user logged in",
		slog.String("user_id", account.ID),
		slog.String("email", account.Email),
	)

	response := LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(expiresIn),
		UserID:    account.ID,
		Name:      account.Name,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
