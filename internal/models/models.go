package models

import (
	"encoding/json"
	"time"
)

// User represents an account in the system
type User struct {
	ID           uint      `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	University   string    `json:"university" db:"university"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Token        *string   `json:"-" db:"token"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PublicUser is the identity shape exposed over the API
type PublicUser struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	University string `json:"university"`
}

// Public strips credentials from a User
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		University: u.University,
	}
}

// List is a named grouping of reports owned by one user
type List struct {
	ID        uint      `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	UserID    uint      `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Report is an evaluation document. The six sub-documents are kept as raw
// JSON: the service never interprets their contents beyond the two search
// fields, and passing them through untouched keeps historical rows readable.
type Report struct {
	ID               string          `json:"id" db:"id"`
	UserID           uint            `json:"userId" db:"user_id"`
	ListID           *uint           `json:"listaId" db:"list_id"`
	InfoGeneral      json.RawMessage `json:"infoGeneral" db:"info_general"`
	Configuracion    json.RawMessage `json:"configuracion" db:"configuracion"`
	NivelesDesempeno json.RawMessage `json:"nivelesDesempeno" db:"niveles_desempeno"`
	Criterios        json.RawMessage `json:"criterios" db:"criterios"`
	Feedback         json.RawMessage `json:"feedback" db:"feedback"`
	Resultados       json.RawMessage `json:"resultados" db:"resultados"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}
