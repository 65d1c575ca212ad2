package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ymelamed/heblex/internal/download"
	"github.com/ymelamed/heblex/internal/ingest"
	"github.com/ymelamed/heblex/internal/postprocess"
	"github.com/ymelamed/heblex/internal/restore"
	"github.com/ymelamed/heblex/models"
	"github.com/ymelamed/heblex/pkg/release"
)

func main() {
	app := &cli.App{
		Name:  "heblex",
		Usage: "build a Hebrew lexical normalization index from a text corpus",
		Description: "Reads corpus lines, extracts surface/base/variant entries via " +
			"Gemini, and persists them incrementally into a SQLite index. " +
			"Interrupted runs resume where they left off.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
		},
		// Running heblex with no subcommand starts an ingestion run
		Action: ingest.IngestAction,
		Commands: []*cli.Command{
			{
				Name:  "ingest",
				Usage: "run batch ingestion over the corpus (the default)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}},
					&cli.IntFlag{Name: "batch-size", Value: models.DefaultBatchSize, Usage: "lines per LLM call"},
					&cli.IntFlag{Name: "concurrency", Usage: fmt.Sprintf("max in-flight LLM calls (1-%d)", models.MaxConcurrency)},
					&cli.IntFlag{Name: "timeout", Value: models.DefaultTimeoutSeconds, Usage: "per-batch LLM timeout in seconds"},
					&cli.Int64SliceFlag{Name: "books", Usage: "restrict the run to these book ids"},
					&cli.StringFlag{Name: "report", Value: "run-summary.yaml", Usage: "run summary output path"},
				},
				Action: ingest.IngestAction,
			},
			{
				Name:      "restore",
				Usage:     "replay JSON backups into a target index database",
				ArgsUsage: "<files...> <target-db>  |  --dir <dir> <target-db>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}},
					&cli.StringFlag{Name: "dir", Usage: "restore every *.json in this directory, in filename order"},
				},
				Action: restore.RestoreAction,
			},
			{
				Name:      "postprocess",
				Usage:     "strip diacritics from stored records and merge collisions",
				ArgsUsage: "[index-db]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}},
					&cli.BoolFlag{Name: "no-bases", Usage: "leave base records untouched"},
					&cli.BoolFlag{Name: "no-surfaces", Usage: "leave surface records untouched"},
					&cli.BoolFlag{Name: "no-variants", Usage: "leave variant records untouched"},
					&cli.StringFlag{Name: "report", Value: "postprocess-summary.yaml", Usage: "run summary output path"},
				},
				Action: postprocess.PostprocessAction,
			},
			{
				Name:  "download",
				Usage: "fetch a prebuilt index instead of running ingestion",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Value: release.DefaultAssetURL, Usage: "release asset URL"},
					&cli.StringFlag{Name: "out", Usage: "destination path (defaults to INDEX_DB_PATH)"},
				},
				Action: download.DownloadAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
