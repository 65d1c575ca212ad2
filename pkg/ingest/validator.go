package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ymelamed/heblex/models"
)

// Validator strictly decodes model output into the entries schema.
// Anything that fails to decode is preserved through the sink for
// offline triage instead of being lost.
type Validator struct {
	sink   *Sink
	logger *slog.Logger
}

func NewValidator(sink *Sink, logger *slog.Logger) *Validator {
	return &Validator{sink: sink, logger: logger}
}

// Parse decodes raw model output. On any schema violation it archives
// the raw text (named by book, batch position and timestamp) and
// returns ok=false; callers must then skip the batch without marking
// its lines processed.
func (v *Validator) Parse(raw string, bookID int64, batchIndex int) (*models.EntriesResponse, bool) {
	resp, err := decodeEntries(raw)
	if err != nil {
		path := v.sink.Save(bookID, batchIndex, raw)
		v.logger.Warn("invalid model response",
			"book_id", bookID, "batch", batchIndex, "archived", path, "error", err)
		return nil, false
	}
	return resp, true
}

// decodeEntries performs the strict decode: unknown fields rejected,
// trailing garbage rejected, every entry must carry a surface and a
// base.
func decodeEntries(raw string) (*models.EntriesResponse, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var resp models.EntriesResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after entries document")
	}

	for i, entry := range resp.Entries {
		if entry.Surface == "" || entry.Base == "" {
			return nil, fmt.Errorf("entry %d missing surface or base", i)
		}
	}
	return &resp, nil
}
