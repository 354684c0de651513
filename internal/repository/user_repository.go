package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"rubrica/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// uniqueViolation is the Postgres error code for a unique constraint breach
const uniqueViolation = "23505"

// UserRepository handles user database operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. A duplicate email yields ErrEmailTaken.
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (name, email, university, password_hash, token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		user.Name,
		user.Email,
		user.University,
		user.PasswordHash,
		user.Token,
		now,
	).Scan(&user.ID)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.CreatedAt = now
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	return r.getOne(`WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getOne(`WHERE email = $1`, email)
}

// GetByToken resolves a session token to its user. This single-row equality
// lookup is the entire session model: no expiry, no cache.
func (r *UserRepository) GetByToken(token string) (*models.User, error) {
	return r.getOne(`WHERE token = $1`, token)
}

func (r *UserRepository) getOne(where string, arg interface{}) (*models.User, error) {
	query := `
		SELECT id, name, email, university, password_hash, token, created_at
		FROM users
	` + where

	user := &models.User{}
	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.University,
		&user.PasswordHash,
		&user.Token,
		&user.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateToken replaces the user's stored session token. The previous token
// stops resolving immediately, which is what invalidates older sessions.
func (r *UserRepository) UpdateToken(userID uint, token string) error {
	query := `UPDATE users SET token = $1 WHERE id = $2`

	_, err := r.db.Exec(query, token, userID)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}

	return nil
}
