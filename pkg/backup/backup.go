// Package backup writes per-book JSON backups of extracted entries and
// restores them into an index store by replaying the same idempotent
// upserts the ingestion path uses.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/ymelamed/heblex/models"
	"github.com/ymelamed/heblex/pkg/db"
)

// Writer accumulates a book's entries and rewrites its backup file
// after every successful batch, so a crash mid-book loses at most the
// in-flight batch (which was never marked processed anyway). A book's
// first Append seeds the accumulator from any backup file already on
// disk, so a resumed run extends the earlier run's backup instead of
// truncating it.
//
// Writer is not safe for concurrent use; the scheduler calls it inside
// its write-serialization section.
type Writer struct {
	dir     string
	entries map[int64][]models.Entry
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, entries: make(map[int64][]models.Entry)}
}

// BookFile returns the backup path for a book.
func (w *Writer) BookFile(bookID int64) string {
	return filepath.Join(w.dir, fmt.Sprintf("book_%d.json", bookID))
}

// Append adds a committed batch's entries to the book's backup and
// rewrites the file as one array-of-entries document.
func (w *Writer) Append(bookID int64, entries []models.Entry) error {
	if _, seen := w.entries[bookID]; !seen {
		existing, err := w.loadExisting(bookID)
		if err != nil {
			return err
		}
		w.entries[bookID] = existing
	}
	w.entries[bookID] = append(w.entries[bookID], entries...)

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create backup dir: %w", err)
	}

	data, err := json.MarshalIndent(w.entries[bookID], "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup: %w", err)
	}

	if err := os.WriteFile(w.BookFile(bookID), data, 0644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// loadExisting reads a book's backup left behind by an earlier run. A
// missing file means a fresh book.
func (w *Writer) loadExisting(bookID int64) ([]models.Entry, error) {
	data, err := os.ReadFile(w.BookFile(bookID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read existing backup: %w", err)
	}

	var entries []models.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse existing backup: %w", err)
	}
	return entries, nil
}

// Restore replays every entry of the given backup files into the
// store. Files are processed in the order given; entries that fail to
// insert are logged and skipped.
func Restore(store *db.DB, logger *slog.Logger, files ...string) (int, error) {
	restored := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return restored, fmt.Errorf("failed to read backup %s: %w", file, err)
		}

		var entries []models.Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return restored, fmt.Errorf("failed to parse backup %s: %w", file, err)
		}

		for _, entry := range entries {
			if err := store.InsertEntry(entry); err != nil {
				logger.Warn("skipping entry during restore", "file", file, "surface", entry.Surface, "error", err)
				continue
			}
			restored++
		}
		logger.Info("restored backup file", "file", file, "entries", len(entries))
	}
	return restored, nil
}

// RestoreDir merges every *.json file in dir into the store, in
// filename order.
func RestoreDir(store *db.DB, logger *slog.Logger, dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("failed to scan backup dir: %w", err)
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no backup files found in %s", dir)
	}
	sort.Strings(files)
	return Restore(store, logger, files...)
}
