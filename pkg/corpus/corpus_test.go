package corpus

import (
	"database/sql"
	"testing"
)

const testSchema = `
CREATE TABLE books (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL
);
CREATE TABLE lines (
    id INTEGER PRIMARY KEY,
    book_id INTEGER NOT NULL,
    line_index INTEGER NOT NULL,
    content TEXT NOT NULL
);
`

func setupTestCorpus(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open corpus: %v", err)
	}
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("failed to create corpus schema: %v", err)
	}

	repo := &Repository{db: db, path: ":memory:"}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func (r *Repository) mustExec(t *testing.T, query string, args ...any) {
	t.Helper()
	if _, err := r.db.Exec(query, args...); err != nil {
		t.Fatalf("exec failed: %v", err)
	}
}

func TestGetBook(t *testing.T) {
	repo := setupTestCorpus(t)
	repo.mustExec(t, "INSERT INTO books (id, title) VALUES (1, 'בראשית')")
	repo.mustExec(t, "INSERT INTO lines (id, book_id, line_index, content) VALUES (10, 1, 0, 'a'), (11, 1, 1, 'b')")

	book, err := repo.GetBook(1)
	if err != nil {
		t.Fatalf("GetBook() error = %v", err)
	}
	if book == nil {
		t.Fatal("GetBook() = nil for existing book")
	}
	if book.Title != "בראשית" || book.TotalLines != 2 {
		t.Errorf("GetBook() = %+v, want title בראשית with 2 lines", book)
	}
}

func TestGetBook_Absent(t *testing.T) {
	repo := setupTestCorpus(t)

	book, err := repo.GetBook(99)
	if err != nil {
		t.Fatalf("GetBook() error = %v", err)
	}
	if book != nil {
		t.Errorf("GetBook(absent) = %+v, want nil", book)
	}
}

func TestGetLines_Pagination(t *testing.T) {
	repo := setupTestCorpus(t)
	repo.mustExec(t, "INSERT INTO books (id, title) VALUES (1, 'x')")
	for i := 0; i < 5; i++ {
		repo.mustExec(t, "INSERT INTO lines (id, book_id, line_index, content) VALUES (?, 1, ?, ?)",
			100+i, i, string(rune('a'+i)))
	}

	lines, err := repo.GetLines(1, 2, 2)
	if err != nil {
		t.Fatalf("GetLines() error = %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("GetLines() returned %d lines, want 2", len(lines))
	}
	if lines[0].ID != 102 || lines[1].ID != 103 {
		t.Errorf("GetLines() ids = [%d %d], want [102 103]", lines[0].ID, lines[1].ID)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "שלום עולם", "שלום עולם"},
		{"whitespace trimmed", "  שלום  ", "שלום"},
		{"bold markup", "<b>בְּרֵאשִׁית</b> בָּרָא", "בְּרֵאשִׁית בָּרָא"},
		{"nested tags", "<div><span>א</span> <i>ב</i></div>", "א ב"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
