package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"rubrica/internal/auth"
	"rubrica/internal/middleware"
	"rubrica/internal/models"
	"rubrica/internal/repository"
	"rubrica/pkg/validator"
)

// AuthHandler handles registration, login and identity requests
type AuthHandler struct {
	userRepo    *repository.UserRepository
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userRepo *repository.UserRepository, authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		userRepo:    userRepo,
		authService: authService,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	University string `json:"university" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// sessionResponse is the envelope returned by register and login
type sessionResponse struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// Register handles user registration
// @Summary Register a new user
// @Description Create an account and return its first session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} handlers.sessionResponse "Account created"
// @Failure 400 {object} map[string]string "Missing or invalid fields"
// @Failure 409 {object} map[string]string "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        validator.SanitizeEmail(req.Email),
		University:   req.University,
		PasswordHash: passwordHash,
	}

	if err := h.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			respondWithError(w, http.StatusConflict, "Email already registered")
			return
		}
		slog.Error("Registration failed", "email", user.Email, "error", err)
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("User registered", "user_id", user.ID, "email", user.Email)

	respondWithJSON(w, http.StatusCreated, sessionResponse{
		User:  user.Public(),
		Token: token,
	})
}

// Login handles user login
// @Summary User login
// @Description Authenticate and return a fresh session token. The new token
// @Description replaces the previous one, ending any older session.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} handlers.sessionResponse "Login successful"
// @Failure 400 {object} map[string]string "Missing fields"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userRepo.GetByEmail(validator.SanitizeEmail(req.Email))
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := h.authService.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		slog.Warn("Login failed", "email", req.Email)
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("User logged in", "user_id", user.ID, "email", user.Email)

	respondWithJSON(w, http.StatusOK, sessionResponse{
		User:  user.Public(),
		Token: token,
	})
}

// Me returns the authenticated user's identity
// @Summary Current user
// @Description Return the identity behind the presented token
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.PublicUser "Authenticated identity"
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// issueToken mints a session token and stores it on the user row,
// superseding any previous token
func (h *AuthHandler) issueToken(user *models.User) (string, error) {
	token, err := h.authService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", err
	}

	if err := h.userRepo.UpdateToken(user.ID, token); err != nil {
		return "", err
	}

	return token, nil
}
