package postprocess

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ymelamed/heblex/internal/common"
	"github.com/ymelamed/heblex/models"
	"github.com/ymelamed/heblex/pkg/db"
	"github.com/ymelamed/heblex/pkg/merge"
	"github.com/ymelamed/heblex/pkg/report"
)

// PostprocessAction strips diacritics from stored records and merges
// the collisions that creates. Kinds can be excluded with the --no-*
// flags.
func PostprocessAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))
	startTime := time.Now()

	cfg := models.LoadStoreConfig()
	dbPath := cfg.IndexDBPath
	if c.NArg() > 0 {
		dbPath = c.Args().First()
	}

	store, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer store.Close()

	opts := merge.Options{
		Bases:    !c.Bool("no-bases"),
		Surfaces: !c.Bool("no-surfaces"),
		Variants: !c.Bool("no-variants"),
	}
	if !opts.Bases && !opts.Surfaces && !opts.Variants {
		return fmt.Errorf("all record kinds excluded, nothing to do")
	}

	logger.Info("starting diacritics postprocessing",
		"db", dbPath, "bases", opts.Bases, "surfaces", opts.Surfaces, "variants", opts.Variants)

	result := merge.NewEngine(store, logger).Run(opts)

	runReport := &report.RunReport{StartedAt: startTime, FinishedAt: time.Now(), Merge: &result}
	if err := report.Write(c.String("report"), runReport); err != nil {
		logger.Error("failed to write run report", "error", err)
	}

	printMergeSummary(result)
	return nil
}

func printMergeSummary(r merge.Report) {
	fmt.Println("Diacritics postprocessing finished")
	fmt.Printf("%-10s %-10s %-10s %-10s\n", "Kind", "Processed", "Modified", "Merged")
	for _, row := range []struct {
		kind  string
		stats merge.Stats
	}{
		{"bases", r.Bases},
		{"surfaces", r.Surfaces},
		{"variants", r.Variants},
	} {
		fmt.Printf("%-10s %-10d %-10d %-10d\n", row.kind, row.stats.Processed, row.stats.Modified, row.stats.Merged)
	}
}
