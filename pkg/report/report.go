// Package report writes the YAML run summary: per-book ingestion
// counts and, for postprocessing runs, the merge statistics.
package report

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ymelamed/heblex/pkg/ingest"
	"github.com/ymelamed/heblex/pkg/merge"
)

type RunReport struct {
	StartedAt  time.Time            `yaml:"started_at"`
	FinishedAt time.Time            `yaml:"finished_at"`
	Books      []ingest.BookSummary `yaml:"books,omitempty"`
	Merge      *merge.Report        `yaml:"merge,omitempty"`
}

// Write marshals the report to path.
func Write(path string, r *RunReport) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}
	return nil
}
