package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rubrica/internal/models"
)

var ErrListNotFound = errors.New("list not found")

// ListRepository handles list database operations
type ListRepository struct {
	db *sql.DB
}

// NewListRepository creates a new list repository
func NewListRepository(db *sql.DB) *ListRepository {
	return &ListRepository{db: db}
}

// ListByUser retrieves all lists owned by a user
func (r *ListRepository) ListByUser(userID uint) ([]models.List, error) {
	query := `
		SELECT id, name, user_id, created_at
		FROM lists
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	var lists []models.List
	for rows.Next() {
		var list models.List
		if err := rows.Scan(&list.ID, &list.Name, &list.UserID, &list.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}

	return lists, rows.Err()
}

// GetByID retrieves a list by id regardless of owner. Callers that need an
// ownership decision (404 vs 403) compare UserID themselves.
func (r *ListRepository) GetByID(id uint) (*models.List, error) {
	query := `SELECT id, name, user_id, created_at FROM lists WHERE id = $1`

	list := &models.List{}
	err := r.db.QueryRow(query, id).Scan(&list.ID, &list.Name, &list.UserID, &list.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	return list, nil
}

// Create creates a new list
func (r *ListRepository) Create(list *models.List) error {
	query := `
		INSERT INTO lists (name, user_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	now := time.Now()
	if err := r.db.QueryRow(query, list.Name, list.UserID, now).Scan(&list.ID); err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}

	list.CreatedAt = now
	return nil
}

// UpdateForUser renames a list, requiring ownership
func (r *ListRepository) UpdateForUser(id, userID uint, name string) error {
	result, err := r.db.Exec(`UPDATE lists SET name = $1 WHERE id = $2 AND user_id = $3`, name, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrListNotFound
	}

	return nil
}

// Delete removes a list. Member reports are kept: the list_id foreign key is
// declared ON DELETE SET NULL, so the store clears their association.
func (r *ListRepository) Delete(id uint) error {
	result, err := r.db.Exec(`DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrListNotFound
	}

	return nil
}
