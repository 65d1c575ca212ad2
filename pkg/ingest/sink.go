package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Sink archives raw unparseable model responses so a failed batch
// loses no data. Writes are best effort: an unwritable sink never
// fails a run.
type Sink struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

func NewSink(dir string, logger *slog.Logger) *Sink {
	return &Sink{dir: dir, logger: logger, now: time.Now}
}

// Save writes the raw response to the sink directory, named by book
// id, batch position and timestamp. Returns the written path, or ""
// when the write failed.
func (s *Sink) Save(bookID int64, batchIndex int, raw string) string {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		s.logger.Error("failed to create invalid-response dir", "dir", s.dir, "error", err)
		return ""
	}

	// Nanosecond precision so a batch failing identically in two runs
	// never overwrites the earlier artifact
	name := fmt.Sprintf("book%d_batch%d_%s.txt", bookID, batchIndex, s.now().UTC().Format("20060102T150405.000000000"))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		s.logger.Error("failed to archive invalid response", "path", path, "error", err)
		return ""
	}
	return path
}
