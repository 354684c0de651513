package testutil

import (
	"database/sql"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"rubrica/internal/models"
)

// FixturePassword is the plaintext behind every fixture user's password hash
const FixturePassword = "password123"

// Fixtures holds seeded test data
type Fixtures struct {
	DB           *sql.DB
	Teacher      *models.User
	OtherTeacher *models.User
}

// SetupFixtures seeds two users so ownership checks can be exercised
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	return &Fixtures{
		DB:           db,
		Teacher:      CreateUser(t, db, "ana@uni.edu", "Ana Torres"),
		OtherTeacher: CreateUser(t, db, "luis@uni.edu", "Luis Vega"),
	}
}

// CreateUser inserts a user with the fixture password
func CreateUser(t *testing.T, db *sql.DB, email, name string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	var user models.User
	err = db.QueryRow(`
		INSERT INTO users (name, email, university, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, university, password_hash, created_at
	`, name, email, "Test University", string(hashed)).Scan(
		&user.ID, &user.Name, &user.Email, &user.University,
		&user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}

	return &user
}

// SetToken stores a session token on a user row
func SetToken(t *testing.T, db *sql.DB, userID uint, token string) {
	t.Helper()

	if _, err := db.Exec(`UPDATE users SET token = $1 WHERE id = $2`, token, userID); err != nil {
		t.Fatalf("Failed to set token for user %d: %v", userID, err)
	}
}

// CreateList inserts a list owned by the given user
func CreateList(t *testing.T, db *sql.DB, userID uint, name string) *models.List {
	t.Helper()

	var list models.List
	err := db.QueryRow(`
		INSERT INTO lists (name, user_id)
		VALUES ($1, $2)
		RETURNING id, name, user_id, created_at
	`, name, userID).Scan(&list.ID, &list.Name, &list.UserID, &list.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create list %s: %v", name, err)
	}

	return &list
}

// CreateReport inserts a report with the given general info and empty shapes
// for the remaining sub-documents
func CreateReport(t *testing.T, db *sql.DB, id string, userID uint, infoGeneral string) *models.Report {
	t.Helper()

	report := &models.Report{ID: id, UserID: userID}
	err := db.QueryRow(`
		INSERT INTO reports (id, user_id, info_general, configuracion, niveles_desempeno, criterios, feedback, resultados)
		VALUES ($1, $2, $3, '{}', '[]', '[]', '{}', '{}')
		RETURNING created_at, updated_at
	`, id, userID, infoGeneral).Scan(&report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create report %s: %v", id, err)
	}

	return report
}
