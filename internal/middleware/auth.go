package middleware

import (
	"context"
	"net/http"
	"strings"

	"rubrica/internal/models"
	"rubrica/internal/repository"
)

type contextKey string

const userKey contextKey = "user"

// AuthMiddleware resolves bearer tokens to users. Resolution is a single
// equality lookup on the stored token column: there is no expiry, and a token
// stops working the moment a newer login replaces it.
type AuthMiddleware struct {
	userRepo *repository.UserRepository
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(userRepo *repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{userRepo: userRepo}
}

// Authenticate validates the bearer token and adds the user's public
// identity to the request context. A missing token and an unknown token are
// reported with distinct messages but the same 401 status.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "No token provided")
			return
		}

		user, err := m.userRepo.GetByToken(token)
		if err != nil {
			unauthorized(w, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user.Public())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUser retrieves the authenticated user's identity from the request context
func GetUser(r *http.Request) (models.PublicUser, bool) {
	user, ok := r.Context().Value(userKey).(models.PublicUser)
	return user, ok
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Any other form counts as no token at all.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"` + message + `"}`))
}
