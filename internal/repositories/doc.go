// Package repositories implements SQLite persistence for export history.
//
// [ExportRepository] records every deck package written to disk. Rows are soft-deleted via a
// deleted_at timestamp and excluded from queries by default.
//
// Sequence numbers give a stable, human-readable ordering independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table counters kept in dedicated sequence tables.
package repositories
