package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rubrica/internal/codec"
	"rubrica/internal/models"
)

var ErrReportNotFound = errors.New("report not found")

// ReportRepository handles report database operations. Every read and write
// filters by the owning user id so one tenant can never touch another's rows.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, user_id, list_id, info_general, configuracion, niveles_desempeno, criterios, feedback, resultados, created_at, updated_at`

// ListByUser retrieves all reports owned by a user, sub-documents decoded
func (r *ReportRepository) ListByUser(userID uint) ([]models.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		report, err := scanReport(rows.Scan)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}

	return reports, rows.Err()
}

// GetByIDForUser retrieves one report, requiring ownership. A report that
// exists but belongs to someone else is indistinguishable from a missing one.
func (r *ReportRepository) GetByIDForUser(id string, userID uint) (*models.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE id = $1 AND user_id = $2
	`

	report, err := scanReport(r.db.QueryRow(query, id, userID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}

	return report, nil
}

// Create inserts a report with its caller-chosen id
func (r *ReportRepository) Create(report *models.Report) error {
	query := `
		INSERT INTO reports (id, user_id, list_id, info_general, configuracion, niveles_desempeno, criterios, feedback, resultados, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	stored := codec.Encode(report)
	now := time.Now()
	_, err := r.db.Exec(
		query,
		report.ID,
		report.UserID,
		report.ListID,
		stored[0], stored[1], stored[2], stored[3], stored[4], stored[5],
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	report.CreatedAt = now
	report.UpdatedAt = now
	return nil
}

// UpdateForUser replaces all six sub-documents and the list association.
// Zero affected rows means the report does not exist for this user.
func (r *ReportRepository) UpdateForUser(report *models.Report) error {
	query := `
		UPDATE reports
		SET list_id = $1, info_general = $2, configuracion = $3, niveles_desempeno = $4,
		    criterios = $5, feedback = $6, resultados = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10
	`

	stored := codec.Encode(report)
	report.UpdatedAt = time.Now()
	result, err := r.db.Exec(
		query,
		report.ListID,
		stored[0], stored[1], stored[2], stored[3], stored[4], stored[5],
		report.UpdatedAt,
		report.ID,
		report.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrReportNotFound
	}

	return nil
}

// DeleteForUser deletes a report, requiring ownership
func (r *ReportRepository) DeleteForUser(id string, userID uint) error {
	result, err := r.db.Exec(`DELETE FROM reports WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrReportNotFound
	}

	return nil
}

// SearchByUser finds the user's reports whose general-info sub-document
// matches both fields exactly
func (r *ReportRepository) SearchByUser(userID uint, title, student string) ([]models.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE user_id = $1
		  AND NULLIF(info_general, '')::jsonb ->> 'title' = $2
		  AND NULLIF(info_general, '')::jsonb ->> 'student' = $3
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID, title, student)
	if err != nil {
		return nil, fmt.Errorf("failed to search reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		report, err := scanReport(rows.Scan)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}

	return reports, rows.Err()
}

// scanReport reads one report row and decodes its stored sub-documents
func scanReport(scan func(dest ...interface{}) error) (*models.Report, error) {
	report := &models.Report{}
	var stored codec.Subdocs

	err := scan(
		&report.ID,
		&report.UserID,
		&report.ListID,
		&stored[0], &stored[1], &stored[2], &stored[3], &stored[4], &stored[5],
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	codec.Decode(report, stored)
	return report, nil
}
