// Package ingest drives the incremental extraction pipeline: it walks
// a book's unprocessed lines, batches them, calls the model under a
// bounded admission gate, validates the output and commits entries
// plus processed markers through a single-writer critical section.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ymelamed/heblex/pkg/backup"
	"github.com/ymelamed/heblex/pkg/corpus"
	"github.com/ymelamed/heblex/pkg/db"
)

// linePageSize is how many lines are pulled from the corpus per query
// while scanning a book.
const linePageSize = 200

// Corpus is the read side of the source text store.
type Corpus interface {
	GetBook(id int64) (*corpus.Book, error)
	GetLines(bookID int64, offset, limit int) ([]corpus.Line, error)
}

// Generator is the model client: text in, raw response out, empty
// string on any failure.
type Generator interface {
	GenerateResponse(ctx context.Context, input string, timeout time.Duration) string
}

// Options tunes a scheduler.
type Options struct {
	BatchSize   int           // lines per model call
	Concurrency int           // max in-flight model calls
	Timeout     time.Duration // per-batch model timeout
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.Timeout <= 0 {
		o.Timeout = 90 * time.Second
	}
	return o
}

// BookSummary reports what one book's ingestion pass did.
type BookSummary struct {
	BookID           int64  `yaml:"book_id"`
	Title            string `yaml:"title"`
	TotalLines       int    `yaml:"total_lines"`
	AlreadyProcessed int    `yaml:"already_processed"`
	BlankSkipped     int    `yaml:"blank_skipped"`
	BatchesCommitted int    `yaml:"batches_committed"`
	BatchesSkipped   int    `yaml:"batches_skipped"`
	EntriesCommitted int    `yaml:"entries_committed"`
	EntriesFailed    int    `yaml:"entries_failed"`
	ProcessedLines   int    `yaml:"processed_lines"`
}

// Scheduler coordinates batch extraction for one index store. The
// model client is shared freely across batch tasks; every store
// mutation (entry upserts, markers, backup rewrite) happens inside mu.
type Scheduler struct {
	store     *db.DB
	corpus    Corpus
	gen       Generator
	validator *Validator
	backups   *backup.Writer
	logger    *slog.Logger
	opts      Options

	gate *semaphore.Weighted
	mu   sync.Mutex
}

func NewScheduler(store *db.DB, source Corpus, gen Generator, validator *Validator, backups *backup.Writer, logger *slog.Logger, opts Options) *Scheduler {
	opts = opts.withDefaults()
	return &Scheduler{
		store:     store,
		corpus:    source,
		gen:       gen,
		validator: validator,
		backups:   backups,
		logger:    logger,
		opts:      opts,
		gate:      semaphore.NewWeighted(int64(opts.Concurrency)),
	}
}

// IngestBooks processes each book in order, waiting for all of a
// book's batches before moving on. A missing book is skipped. The
// returned summaries cover only books that exist.
func (s *Scheduler) IngestBooks(ctx context.Context, bookIDs []int64) ([]BookSummary, error) {
	var summaries []BookSummary
	for _, bookID := range bookIDs {
		summary, err := s.IngestBook(ctx, bookID)
		if err != nil {
			return summaries, err
		}
		if summary != nil {
			summaries = append(summaries, *summary)
		}
	}
	return summaries, nil
}

// IngestBook runs the full pipeline over one book and returns its
// summary, or (nil, nil) when the book does not exist in the corpus.
// All batch tasks are joined before it returns, so every write has
// landed by the time the summary is reported.
func (s *Scheduler) IngestBook(ctx context.Context, bookID int64) (*BookSummary, error) {
	book, err := s.corpus.GetBook(bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load book %d: %w", bookID, err)
	}
	if book == nil {
		s.logger.Warn("book not found in corpus, skipping", "book_id", bookID)
		return nil, nil
	}

	s.logger.Info("ingesting book", "book_id", bookID, "title", book.Title, "total_lines", book.TotalLines)

	var (
		committed, skipped       atomic.Int64
		entriesOK, entriesFailed atomic.Int64
	)
	summary := &BookSummary{BookID: bookID, Title: book.Title, TotalLines: book.TotalLines}

	g, gctx := errgroup.WithContext(ctx)
	batchIndex := 0

	dispatch := func(lines []corpus.Line) {
		index := batchIndex
		batchIndex++
		g.Go(func() error {
			if err := s.gate.Acquire(gctx, 1); err != nil {
				return err
			}
			defer s.gate.Release(1)

			result := s.processBatch(gctx, bookID, index, lines)
			if result.Status == BatchCommitted {
				committed.Add(1)
			} else {
				skipped.Add(1)
			}
			entriesOK.Add(int64(result.EntriesCommitted))
			entriesFailed.Add(int64(result.EntriesFailed))
			s.logger.Info("batch finished",
				"book_id", bookID, "batch", index, "status", result.Status,
				"lines", result.Lines, "entries", result.EntriesCommitted)
			return nil
		})
	}

	// Scan the book, forming fixed-size batches of contiguous
	// unprocessed, non-blank lines. Processed status is checked here,
	// at batch-forming time, so resumed runs never re-enqueue lines.
	var batch []corpus.Line
	for offset := 0; ; offset += linePageSize {
		lines, err := s.corpus.GetLines(bookID, offset, linePageSize)
		if err != nil {
			_ = g.Wait()
			return nil, fmt.Errorf("failed to read lines of book %d: %w", bookID, err)
		}
		if len(lines) == 0 {
			break
		}

		for _, line := range lines {
			content := corpus.StripHTML(line.Content)
			if content == "" {
				summary.BlankSkipped++
				continue
			}

			processed, err := s.isLineProcessed(bookID, line.ID)
			if err != nil {
				_ = g.Wait()
				return nil, err
			}
			if processed {
				summary.AlreadyProcessed++
				continue
			}

			batch = append(batch, corpus.Line{ID: line.ID, Content: content})
			if len(batch) == s.opts.BatchSize {
				dispatch(batch)
				batch = nil
			}
		}
	}
	if len(batch) > 0 {
		dispatch(batch)
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingestion of book %d interrupted: %w", bookID, err)
	}

	summary.BatchesCommitted = int(committed.Load())
	summary.BatchesSkipped = int(skipped.Load())
	summary.EntriesCommitted = int(entriesOK.Load())
	summary.EntriesFailed = int(entriesFailed.Load())

	processedCount, err := s.store.CountProcessedLines(bookID)
	if err != nil {
		return nil, err
	}
	summary.ProcessedLines = processedCount

	s.logger.Info("book done",
		"book_id", bookID, "processed_lines", summary.ProcessedLines,
		"batches_committed", summary.BatchesCommitted, "batches_skipped", summary.BatchesSkipped)
	return summary, nil
}

// isLineProcessed reads a marker. Reads share the store connection
// with concurrent batch commits, so they take the same lock.
func (s *Scheduler) isLineProcessed(bookID, lineID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.IsLineProcessed(bookID, lineID)
}

// processBatch runs one batch end to end and returns its explicit
// outcome. A skip of any flavor leaves the batch's lines unmarked;
// they stay eligible for the next run. There is no in-process retry.
func (s *Scheduler) processBatch(ctx context.Context, bookID int64, batchIndex int, lines []corpus.Line) BatchResult {
	result := BatchResult{Lines: len(lines)}

	raw := s.gen.GenerateResponse(ctx, buildPrompt(lines), s.opts.Timeout)
	if raw == "" {
		s.logger.Warn("model returned no text, batch skipped", "book_id", bookID, "batch", batchIndex)
		result.Status = BatchSkippedLLM
		return result
	}

	resp, ok := s.validator.Parse(raw, bookID, batchIndex)
	if !ok {
		result.Status = BatchSkippedInvalid
		return result
	}

	// Entries, markers and the backup rewrite commit as one serialized
	// unit under the store's write lock.
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range resp.Entries {
		if err := s.store.InsertEntry(entry); err != nil {
			s.logger.Warn("failed to insert entry",
				"book_id", bookID, "batch", batchIndex, "surface", entry.Surface, "error", err)
			result.EntriesFailed++
			continue
		}
		result.EntriesCommitted++
	}

	now := time.Now()
	for _, line := range lines {
		if err := s.store.MarkLineProcessed(bookID, line.ID, now); err != nil {
			// Unmarked lines are simply reprocessed next run; the
			// upserts above are idempotent.
			s.logger.Error("failed to mark line processed",
				"book_id", bookID, "line_id", line.ID, "error", err)
		}
	}

	if len(resp.Entries) > 0 {
		if err := s.backups.Append(bookID, resp.Entries); err != nil {
			s.logger.Error("failed to write backup", "book_id", bookID, "error", err)
		}
	}

	result.Status = BatchCommitted
	return result
}

// buildPrompt numbers the batch's lines for the model.
func buildPrompt(lines []corpus.Line) string {
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line.Content)
	}
	return b.String()
}
