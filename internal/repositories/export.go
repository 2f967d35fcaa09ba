package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/shared"
)

var _ models.Repository[*models.ExportRecord] = (*ExportRepository)(nil)

// ExportRepository implements models.Repository[*models.ExportRecord] for export history.
type ExportRepository struct {
	db *sql.DB
}

// NewExportRepository creates a new ExportRepository with the given database connection
func NewExportRepository(db *sql.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

const exportColumns = "id, sequence, deck, path, size_bytes, content_type, created_at, updated_at, deleted_at"

// Create inserts rec with a generated ID and sequence
func (r *ExportRepository) Create(rec *models.ExportRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "exports")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO exports (id, sequence, deck, path, size_bytes, content_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		rec.Deck(),
		rec.Path(),
		rec.SizeBytes(),
		rec.ContentType(),
		rec.CreatedAt(),
		rec.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}

	rec.SetID(id)
	rec.SetSequence(sequence)
	return nil
}

// Get retrieves an export by ID, excluding soft-deleted rows
func (r *ExportRepository) Get(id string) (*models.ExportRecord, error) {
	query := "SELECT " + exportColumns + " FROM exports WHERE id = ? AND deleted_at IS NULL"

	rec, err := scanExport(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("export not found: %s", id)
	}
	return rec, err
}

// Update rewrites the path of an export, e.g. after the file was moved
func (r *ExportRepository) Update(rec *models.ExportRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()

	result, err := r.db.Exec(`
		UPDATE exports
		SET path = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, rec.Path(), now, rec.ID())
	if err != nil {
		return fmt.Errorf("failed to update export: %w", err)
	}

	if err := requireRow(result, rec.ID()); err != nil {
		return err
	}
	rec.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes an export by ID
func (r *ExportRepository) Delete(id string) error {
	result, err := r.db.Exec(`
		UPDATE exports
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	return requireRow(result, id)
}

// List returns exports newest first.
//
// Supported criteria: "deck" (string) filters by deck name, "limit" (int) caps the result.
func (r *ExportRepository) List(criteria map[string]any) ([]*models.ExportRecord, error) {
	query := "SELECT " + exportColumns + " FROM exports WHERE deleted_at IS NULL"
	args := []any{}

	if deck, ok := criteria["deck"].(string); ok && deck != "" {
		query += " AND deck = ?"
		args = append(args, deck)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	records := []*models.ExportRecord{}
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// scanner is satisfied by [sql.Row] and [sql.Rows]
type scanner interface {
	Scan(dest ...any) error
}

func scanExport(s scanner) (*models.ExportRecord, error) {
	var (
		id          string
		sequence    int
		deck        string
		path        string
		sizeBytes   int64
		contentType string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := s.Scan(&id, &sequence, &deck, &path, &sizeBytes, &contentType, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan export: %w", err)
	}

	rec := models.NewExportRecord(deck, path, sizeBytes, contentType)
	rec.SetID(id)
	rec.SetSequence(sequence)
	rec.SetCreatedAt(createdAt)
	rec.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		rec.SetDeletedAt(&deletedAt.Time)
	}

	return rec, nil
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("export not found or already deleted: %s", id)
	}
	return nil
}
