package models

import (
	"errors"
	"time"
)

var _ Model = (*ExportRecord)(nil)

// ExportRecord is a history entry for a deck package written to disk.
type ExportRecord struct {
	id          string
	sequence    int
	deck        string
	path        string
	sizeBytes   int64
	contentType string
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewExportRecord creates an unsaved record; the repository assigns id and sequence.
func NewExportRecord(deck, path string, sizeBytes int64, contentType string) *ExportRecord {
	now := time.Now().UTC()
	return &ExportRecord{
		deck:        deck,
		path:        path,
		sizeBytes:   sizeBytes,
		contentType: contentType,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (r *ExportRecord) ID() string                { return r.id }
func (r *ExportRecord) Sequence() int             { return r.sequence }
func (r *ExportRecord) Deck() string              { return r.deck }
func (r *ExportRecord) Path() string              { return r.path }
func (r *ExportRecord) SizeBytes() int64          { return r.sizeBytes }
func (r *ExportRecord) ContentType() string       { return r.contentType }
func (r *ExportRecord) CreatedAt() time.Time      { return r.createdAt }
func (r *ExportRecord) UpdatedAt() time.Time      { return r.updatedAt }
func (r *ExportRecord) DeletedAt() *time.Time     { return r.deletedAt }
func (r *ExportRecord) SetID(id string)           { r.id = id }
func (r *ExportRecord) SetSequence(seq int)       { r.sequence = seq }
func (r *ExportRecord) SetPath(p string)          { r.path = p }
func (r *ExportRecord) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *ExportRecord) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *ExportRecord) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// Validate checks required fields.
func (r *ExportRecord) Validate() error {
	switch {
	case r.deck == "":
		return errors.New("deck is required")
	case r.path == "":
		return errors.New("path is required")
	case r.sizeBytes <= 0:
		return errors.New("size must be positive")
	}
	return nil
}
