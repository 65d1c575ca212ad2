package backup

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ymelamed/heblex/models"
	"github.com/ymelamed/heblex/pkg/db"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStore(t *testing.T) *db.DB {
	t.Helper()
	store, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestWriter_AppendAccumulates(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	first := []models.Entry{{Surface: "א", Base: "א", Variants: []string{"אא"}}}
	second := []models.Entry{{Surface: "ב", Base: "ב", Variants: nil}}

	if err := w.Append(1, first); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := w.Append(1, second); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	data, err := os.ReadFile(w.BookFile(1))
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	var entries []models.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("backup is not valid JSON: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("backup holds %d entries, want 2", len(entries))
	}
	if entries[0].Surface != "א" || entries[1].Surface != "ב" {
		t.Errorf("backup order wrong: %+v", entries)
	}
}

func TestWriter_ResumeExtendsExistingBackup(t *testing.T) {
	dir := t.TempDir()

	// First run commits one batch, then the process dies
	first := NewWriter(dir)
	if err := first.Append(1, []models.Entry{{Surface: "א", Base: "א"}}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	// Resumed run gets a fresh Writer against the same directory
	second := NewWriter(dir)
	if err := second.Append(1, []models.Entry{{Surface: "ב", Base: "ב"}}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	data, err := os.ReadFile(second.BookFile(1))
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	var entries []models.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("backup is not valid JSON: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("backup after resume holds %d entries, want 2: %+v", len(entries), entries)
	}
	if entries[0].Surface != "א" || entries[1].Surface != "ב" {
		t.Errorf("backup order wrong after resume: %+v", entries)
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	entries := []models.Entry{
		{Surface: "בּרֵאשִׁית", Base: "ראשית", Variants: []string{"ראשית"}},
		{Surface: "בָּרָא", Base: "ברא", Variants: []string{"ברא"}, Notes: "verb"},
	}
	if err := w.Append(3, entries); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	store := openTestStore(t)
	restored, err := Restore(store, discardLogger(), w.BookFile(3))
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored != 2 {
		t.Errorf("Restore() = %d entries, want 2", restored)
	}

	var surfaces, bases int
	store.QueryRow("SELECT COUNT(*) FROM surfaces").Scan(&surfaces)
	store.QueryRow("SELECT COUNT(*) FROM bases").Scan(&bases)
	if surfaces != 2 || bases != 2 {
		t.Errorf("surfaces/bases = %d/%d, want 2/2", surfaces, bases)
	}

	// Restoring again is a no-op thanks to idempotent upserts
	if _, err := Restore(store, discardLogger(), w.BookFile(3)); err != nil {
		t.Fatalf("second Restore() error = %v", err)
	}
	store.QueryRow("SELECT COUNT(*) FROM surfaces").Scan(&surfaces)
	if surfaces != 2 {
		t.Errorf("surface count after re-restore = %d, want 2", surfaces)
	}
}

func TestRestore_SkipsBadEntries(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "mixed.json")
	payload := `[{"surface":"ok","base":"ok","variants":[]},{"surface":"","base":"broken","variants":[]}]`
	if err := os.WriteFile(file, []byte(payload), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	store := openTestStore(t)
	restored, err := Restore(store, discardLogger(), file)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored != 1 {
		t.Errorf("Restore() = %d, want 1 (bad entry skipped)", restored)
	}
}

func TestRestoreDir_FilenameOrder(t *testing.T) {
	dir := t.TempDir()
	// b.json holds a conflicting re-definition of the same surface;
	// filename order means a.json wins (first-write-wins upsert).
	os.WriteFile(filepath.Join(dir, "a.json"),
		[]byte(`[{"surface":"מלה","base":"ראשון","variants":[]}]`), 0644)
	os.WriteFile(filepath.Join(dir, "b.json"),
		[]byte(`[{"surface":"מלה","base":"שני","variants":[]}]`), 0644)

	store := openTestStore(t)
	if _, err := RestoreDir(store, discardLogger(), dir); err != nil {
		t.Fatalf("RestoreDir() error = %v", err)
	}

	var baseValue string
	err := store.QueryRow(`
		SELECT b.value FROM surfaces s JOIN bases b ON b.base_id = s.base_id
		WHERE s.value = ?
	`, "מלה").Scan(&baseValue)
	if err != nil {
		t.Fatalf("failed to query surface: %v", err)
	}
	if baseValue != "ראשון" {
		t.Errorf("surface base = %q, want %q (a.json first)", baseValue, "ראשון")
	}
}

func TestRestoreDir_EmptyDir(t *testing.T) {
	store := openTestStore(t)
	if _, err := RestoreDir(store, discardLogger(), t.TempDir()); err == nil {
		t.Error("RestoreDir() on empty dir should fail")
	}
}
