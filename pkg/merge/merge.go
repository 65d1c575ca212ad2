// Package merge deduplicates index records whose values collide once
// Hebrew diacritics are stripped, preserving every relation edge.
package merge

import (
	"log/slog"

	"github.com/ymelamed/heblex/pkg/db"
	"github.com/ymelamed/heblex/pkg/hebrew"
)

// Stats reports what one cleaning pass did to one record kind.
type Stats struct {
	Processed int `yaml:"processed"`
	Modified  int `yaml:"modified"`
	Merged    int `yaml:"merged"`
}

// Report aggregates per-kind stats for a full pass.
type Report struct {
	Bases    Stats `yaml:"bases"`
	Surfaces Stats `yaml:"surfaces"`
	Variants Stats `yaml:"variants"`
}

// Options selects which record kinds a pass cleans.
type Options struct {
	Bases    bool
	Surfaces bool
	Variants bool
}

// Engine runs diacritics cleanup against a store. Errors on individual
// records are logged and skipped; a pass never aborts, the stats just
// undercount.
type Engine struct {
	store  *db.DB
	logger *slog.Logger
}

func NewEngine(store *db.DB, logger *slog.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// kindOps abstracts the store operations that differ per record kind:
// listing, value rewrite, relation repointing and row deletion.
type kindOps struct {
	list    func() ([]db.Record, error)
	rename  func(id int64, value string) error
	repoint func(fromID, toID int64) error
	remove  func(id int64) error
}

// Run executes a cleaning pass over the selected kinds and returns the
// per-kind stats.
func (e *Engine) Run(opts Options) Report {
	var report Report

	if opts.Bases {
		report.Bases = e.cleanKind("base", kindOps{
			list:    e.store.ListBases,
			rename:  e.store.RenameBase,
			repoint: e.store.RepointSurfacesToBase,
			remove:  e.store.DeleteBase,
		})
	}
	if opts.Surfaces {
		report.Surfaces = e.cleanKind("surface", kindOps{
			list:    e.store.ListSurfaces,
			rename:  e.store.RenameSurface,
			repoint: e.store.RepointSurfaceLinks,
			remove:  e.store.DeleteSurface,
		})
	}
	if opts.Variants {
		report.Variants = e.cleanKind("variant", kindOps{
			list:    e.store.ListVariants,
			rename:  e.store.RenameVariant,
			repoint: e.store.RepointVariantLinks,
			remove:  e.store.DeleteVariant,
		})
	}

	return report
}

// cleanKind groups all records of one kind by their stripped value,
// merges each collision group into its lowest-id member, and rewrites
// keeper values that still carry diacritics. Groups of size one needing
// stripping are rewritten directly.
func (e *Engine) cleanKind(kind string, ops kindOps) Stats {
	var stats Stats

	records, err := ops.list()
	if err != nil {
		e.logger.Error("failed to load records", "kind", kind, "error", err)
		return stats
	}

	// Records arrive ordered by id ascending, so the first member of
	// every group is the lowest-id record: the keeper.
	groups := make(map[string][]db.Record)
	var order []string
	for _, r := range records {
		stats.Processed++
		key := hebrew.Strip(r.Value)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	for _, key := range order {
		group := groups[key]
		keeper := group[0]

		for _, dup := range group[1:] {
			if err := ops.repoint(dup.ID, keeper.ID); err != nil {
				e.logger.Error("failed to repoint relations", "kind", kind, "from", dup.ID, "to", keeper.ID, "error", err)
				continue
			}
			if err := ops.remove(dup.ID); err != nil {
				e.logger.Error("failed to delete duplicate", "kind", kind, "id", dup.ID, "error", err)
				continue
			}
			stats.Merged++
		}

		if keeper.Value != key {
			if err := ops.rename(keeper.ID, key); err != nil {
				e.logger.Error("failed to rewrite value", "kind", kind, "id", keeper.ID, "error", err)
				continue
			}
			stats.Modified++
		}
	}

	return stats
}
