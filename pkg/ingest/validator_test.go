package ingest

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidator_Parse(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantOK      bool
		wantEntries int
	}{
		{
			name:        "valid single entry",
			raw:         `{"entries":[{"surface":"בּרֵאשִׁית","base":"ראשית","variants":["ראשית"]}]}`,
			wantOK:      true,
			wantEntries: 1,
		},
		{
			name:        "valid with notes",
			raw:         `{"entries":[{"surface":"א","base":"ב","variants":[],"notes":"rare"}]}`,
			wantOK:      true,
			wantEntries: 1,
		},
		{
			name:        "valid empty entries",
			raw:         `{"entries":[]}`,
			wantOK:      true,
			wantEntries: 0,
		},
		{
			name:   "truncated JSON",
			raw:    `{"entries": [{"surface":"x"`,
			wantOK: false,
		},
		{
			name:   "unknown field",
			raw:    `{"entries":[],"extra":true}`,
			wantOK: false,
		},
		{
			name:   "entry missing base",
			raw:    `{"entries":[{"surface":"x","variants":[]}]}`,
			wantOK: false,
		},
		{
			name:   "trailing garbage",
			raw:    `{"entries":[]} trailing`,
			wantOK: false,
		},
		{
			name:   "plain prose",
			raw:    `I could not extract anything.`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			v := NewValidator(NewSink(dir, discardLogger()), discardLogger())

			resp, ok := v.Parse(tt.raw, 1, 0)
			if ok != tt.wantOK {
				t.Fatalf("Parse() ok = %v, want %v", ok, tt.wantOK)
			}

			if tt.wantOK {
				if len(resp.Entries) != tt.wantEntries {
					t.Errorf("entries = %d, want %d", len(resp.Entries), tt.wantEntries)
				}
				return
			}

			// Invalid responses must be archived verbatim
			files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
			if err != nil || len(files) != 1 {
				t.Fatalf("expected exactly one archived response, got %v (err %v)", files, err)
			}
			data, err := os.ReadFile(files[0])
			if err != nil {
				t.Fatalf("failed to read archived response: %v", err)
			}
			if string(data) != tt.raw {
				t.Errorf("archived response = %q, want %q", data, tt.raw)
			}
		})
	}
}

func TestSink_Naming(t *testing.T) {
	dir := t.TempDir()
	s := NewSink(dir, discardLogger())

	path := s.Save(12, 3, "raw text")
	if path == "" {
		t.Fatal("Save() returned empty path")
	}

	name := filepath.Base(path)
	if got, want := name[:14], "book12_batch3_"; got != want {
		t.Errorf("sink file name = %q, want prefix %q", name, want)
	}
}

func TestSink_SameSecondSavesDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	s := NewSink(dir, discardLogger())

	// Two failures of the same batch within one wall-clock second
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(50 * time.Millisecond)}
	s.now = func() time.Time {
		next := times[0]
		times = times[1:]
		return next
	}

	first := s.Save(5, 0, "first failure")
	second := s.Save(5, 0, "second failure")
	if first == "" || second == "" {
		t.Fatalf("Save() returned empty path: %q, %q", first, second)
	}
	if first == second {
		t.Fatalf("same-second saves collided on %q", first)
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("failed to read first artifact: %v", err)
	}
	if string(data) != "first failure" {
		t.Errorf("first artifact = %q, want %q (overwritten?)", data, "first failure")
	}
}
