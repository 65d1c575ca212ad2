package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ymelamed/heblex/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the upsert
// helpers can run standalone or inside a per-entry transaction.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// UpsertBase inserts a base value if absent and returns its id.
// Inserting an existing value is a no-op that returns the stored id.
func (db *DB) UpsertBase(value string) (int64, error) {
	return upsertBase(db.DB, value)
}

func upsertBase(q querier, value string) (int64, error) {
	var existingID int64
	err := q.QueryRow("SELECT base_id FROM bases WHERE value = ?", value).Scan(&existingID)
	if err == nil {
		return existingID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to check existing base: %w", err)
	}

	result, err := q.Exec("INSERT INTO bases (value) VALUES (?)", value)
	if err != nil {
		return 0, fmt.Errorf("failed to insert base: %w", err)
	}

	baseID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get base ID: %w", err)
	}
	return baseID, nil
}

// UpsertSurface inserts a surface value if absent and returns its id.
// First-write-wins: if the surface already exists, its base and notes
// are NOT updated even when the caller passes different ones. The
// existing id is returned silently. This mirrors the ingestion policy
// that the first extraction of a surface form is authoritative.
func (db *DB) UpsertSurface(value string, baseID int64, notes string) (int64, error) {
	return upsertSurface(db.DB, value, baseID, notes)
}

func upsertSurface(q querier, value string, baseID int64, notes string) (int64, error) {
	var existingID int64
	err := q.QueryRow("SELECT surface_id FROM surfaces WHERE value = ?", value).Scan(&existingID)
	if err == nil {
		return existingID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to check existing surface: %w", err)
	}

	result, err := q.Exec(
		"INSERT INTO surfaces (value, base_id, notes) VALUES (?, ?, ?)",
		value, baseID, NewNullString(notes))
	if err != nil {
		return 0, fmt.Errorf("failed to insert surface: %w", err)
	}

	surfaceID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get surface ID: %w", err)
	}
	return surfaceID, nil
}

// UpsertVariant inserts a variant value if absent and returns its id.
func (db *DB) UpsertVariant(value string) (int64, error) {
	return upsertVariant(db.DB, value)
}

func upsertVariant(q querier, value string) (int64, error) {
	var existingID int64
	err := q.QueryRow("SELECT variant_id FROM variants WHERE value = ?", value).Scan(&existingID)
	if err == nil {
		return existingID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to check existing variant: %w", err)
	}

	result, err := q.Exec("INSERT INTO variants (value) VALUES (?)", value)
	if err != nil {
		return 0, fmt.Errorf("failed to insert variant: %w", err)
	}

	variantID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get variant ID: %w", err)
	}
	return variantID, nil
}

// LinkSurfaceVariant inserts a surface/variant join row. Inserting an
// existing pair is a no-op.
func (db *DB) LinkSurfaceVariant(surfaceID, variantID int64) error {
	return linkSurfaceVariant(db.DB, surfaceID, variantID)
}

func linkSurfaceVariant(q querier, surfaceID, variantID int64) error {
	_, err := q.Exec(
		"INSERT OR IGNORE INTO surface_variants (surface_id, variant_id) VALUES (?, ?)",
		surfaceID, variantID)
	if err != nil {
		return fmt.Errorf("failed to link surface %d to variant %d: %w", surfaceID, variantID, err)
	}
	return nil
}

// InsertEntry commits one extracted entry (base, surface, variants and
// their links) as a single transaction. Entries with an empty surface
// or base are rejected.
func (db *DB) InsertEntry(entry models.Entry) error {
	if entry.Surface == "" || entry.Base == "" {
		return fmt.Errorf("entry missing surface or base")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	baseID, err := upsertBase(tx, entry.Base)
	if err != nil {
		return err
	}

	surfaceID, err := upsertSurface(tx, entry.Surface, baseID, entry.Notes)
	if err != nil {
		return err
	}

	for _, variant := range entry.Variants {
		if variant == "" {
			continue
		}
		variantID, err := upsertVariant(tx, variant)
		if err != nil {
			return err
		}
		if err := linkSurfaceVariant(tx, surfaceID, variantID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry: %w", err)
	}
	return nil
}

// IsLineProcessed reports whether a (book, line) pair already has a
// processed marker.
func (db *DB) IsLineProcessed(bookID, lineID int64) (bool, error) {
	var one int
	err := db.QueryRow(
		"SELECT 1 FROM processed_lines WHERE book_id = ? AND line_id = ?",
		bookID, lineID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check processed line: %w", err)
	}
	return true, nil
}

// MarkLineProcessed records that a line's extraction has been
// committed. Re-marking an already marked line is a no-op.
func (db *DB) MarkLineProcessed(bookID, lineID int64, ts time.Time) error {
	_, err := db.Exec(
		"INSERT OR IGNORE INTO processed_lines (book_id, line_id, processed_at) VALUES (?, ?, ?)",
		bookID, lineID, ts.UTC())
	if err != nil {
		return fmt.Errorf("failed to mark line processed: %w", err)
	}
	return nil
}

// CountProcessedLines returns how many lines of a book carry markers.
func (db *DB) CountProcessedLines(bookID int64) (int, error) {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM processed_lines WHERE book_id = ?", bookID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count processed lines: %w", err)
	}
	return count, nil
}

// NewNullString creates a sql.NullString from a string value.
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
