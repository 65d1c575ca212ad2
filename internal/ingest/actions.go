package ingest

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ymelamed/heblex/internal/common"
	"github.com/ymelamed/heblex/models"
	"github.com/ymelamed/heblex/pkg/backup"
	"github.com/ymelamed/heblex/pkg/corpus"
	"github.com/ymelamed/heblex/pkg/db"
	ingestpkg "github.com/ymelamed/heblex/pkg/ingest"
	"github.com/ymelamed/heblex/pkg/llm"
	"github.com/ymelamed/heblex/pkg/report"
)

// IngestAction runs the default batch ingestion over the corpus.
func IngestAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))
	startTime := time.Now()

	cfg, err := models.LoadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Flags override the environment
	if c.IsSet("batch-size") {
		cfg.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("concurrency") {
		cfg.Concurrency = c.Int("concurrency")
		if cfg.Concurrency < 1 || cfg.Concurrency > models.MaxConcurrency {
			return fmt.Errorf("concurrency must be in [1, %d], got %d", models.MaxConcurrency, cfg.Concurrency)
		}
	}
	if c.IsSet("timeout") {
		cfg.TimeoutSeconds = c.Int("timeout")
	}

	source, err := corpus.Open(cfg.CorpusDBPath)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer source.Close()

	store, err := db.Open(cfg.IndexDBPath)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer store.Close()

	client, err := llm.NewClient(c.Context, cfg.APIKey, cfg.Model, logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	bookIDs := c.Int64Slice("books")
	if len(bookIDs) == 0 {
		bookIDs, err = source.ListBookIDs()
		if err != nil {
			return fmt.Errorf("failed to list corpus books: %w", err)
		}
	}
	if len(bookIDs) == 0 {
		fmt.Println("Corpus contains no books, nothing to do")
		return nil
	}

	validator := ingestpkg.NewValidator(ingestpkg.NewSink(cfg.InvalidDir, logger), logger)
	scheduler := ingestpkg.NewScheduler(store, source, client, validator,
		backup.NewWriter(cfg.BackupDir), logger, ingestpkg.Options{
			BatchSize:   cfg.BatchSize,
			Concurrency: cfg.Concurrency,
			Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		})

	summaries, err := scheduler.IngestBooks(c.Context, bookIDs)

	// Report whatever completed even when the run was cut short
	reportPath := c.String("report")
	if reportPath == "" {
		reportPath = "run-summary.yaml"
	}
	runReport := &report.RunReport{StartedAt: startTime, FinishedAt: time.Now(), Books: summaries}
	if reportErr := report.Write(reportPath, runReport); reportErr != nil {
		logger.Error("failed to write run report", "error", reportErr)
	}

	printIngestSummary(summaries)
	return err
}

func printIngestSummary(summaries []ingestpkg.BookSummary) {
	var processed, skipped, entries, failed int
	for _, s := range summaries {
		processed += s.ProcessedLines
		skipped += s.AlreadyProcessed + s.BlankSkipped
		entries += s.EntriesCommitted
		failed += s.BatchesSkipped
	}

	fmt.Printf("\nIngestion finished: %d books\n", len(summaries))
	fmt.Printf("  Lines processed:  %d\n", processed)
	fmt.Printf("  Lines skipped:    %d\n", skipped)
	fmt.Printf("  Entries committed: %d\n", entries)
	if failed > 0 {
		fmt.Printf("  Batches skipped:  %d (their lines remain eligible for retry)\n", failed)
	}
}
