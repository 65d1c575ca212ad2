// Package corpus reads the source text corpus: a SQLite database of
// books and their lines, produced upstream of the indexer.
package corpus

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// Book is one processing unit of the corpus.
type Book struct {
	ID         int64
	Title      string
	TotalLines int
}

// Line is one source text line. Content may carry HTML markup.
type Line struct {
	ID      int64
	Content string
}

// Repository provides read-only access to a corpus database.
type Repository struct {
	db   *sql.DB
	path string
}

// Open opens the corpus database at path. The corpus is never written
// to; a missing or empty database simply yields no books.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus database: %w", err)
	}
	return &Repository{db: db, path: path}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// GetBook returns the book with the given id, or nil when absent.
func (r *Repository) GetBook(id int64) (*Book, error) {
	book := &Book{ID: id}
	err := r.db.QueryRow("SELECT title FROM books WHERE id = ?", id).Scan(&book.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}

	err = r.db.QueryRow("SELECT COUNT(*) FROM lines WHERE book_id = ?", id).Scan(&book.TotalLines)
	if err != nil {
		return nil, fmt.Errorf("failed to count lines of book %d: %w", id, err)
	}
	return book, nil
}

// GetLines returns up to limit lines of a book starting at offset,
// ordered by their position in the text.
func (r *Repository) GetLines(bookID int64, offset, limit int) ([]Line, error) {
	rows, err := r.db.Query(`
		SELECT id, content FROM lines
		WHERE book_id = ?
		ORDER BY line_index ASC
		LIMIT ? OFFSET ?
	`, bookID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get lines of book %d: %w", bookID, err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.Content); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// ListBookIDs returns every book id in the corpus in ascending order.
func (r *Repository) ListBookIDs() ([]int64, error) {
	rows, err := r.db.Query("SELECT id FROM books ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan book id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
