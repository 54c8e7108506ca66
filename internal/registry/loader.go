package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/spachava753/jumpstart/internal/config"
	"github.com/spachava753/jumpstart/internal/models"
	"github.com/spachava753/jumpstart/internal/schema"
)

// Partition is one provenance group of the registry store.
type Partition struct {
	Dir  string
	Core bool
}

// Partitions are visited in this order; earlier entries win duplicates.
var Partitions = []Partition{
	{Dir: "core", Core: true},
	{Dir: "community", Core: false},
}

// LoadOptions controls how invalid entries are handled.
type LoadOptions struct {
	// Strict fails the whole load on the first invalid or duplicate entry
	// instead of skipping it.
	Strict bool
	// Concurrency bounds parallel file decoding. Zero means GOMAXPROCS.
	Concurrency int
}

// Skipped describes one entry excluded from the catalog.
type Skipped struct {
	// File is relative to the registry root and includes the partition.
	File      string
	Partition string
	Err       error
}

// Report summarizes a registry load.
type Report struct {
	Loaded  int
	Skipped []Skipped
}

// OK reports whether every entry file was loaded.
func (r Report) OK() bool {
	return len(r.Skipped) == 0
}

// DuplicateError reports an entry whose logical_id or id was already taken
// by an earlier entry.
type DuplicateError struct {
	Field string
	Value string
	First string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s %q (already defined by %s)", e.Field, e.Value, e.First)
}

type decoded struct {
	file      string
	partition Partition
	entry     models.Jumpstart
	err       error
}

// Load reads every entry under root's partitions, validates it, and returns
// the catalog of valid entries together with a report of what was skipped.
// A missing or unreadable root is a *models.ConfigLoadError. Individual bad
// entries are skipped unless opts.Strict is set.
func Load(ctx context.Context, root string, opts LoadOptions) (*Catalog, Report, error) {
	var report Report

	info, err := os.Stat(root)
	if err != nil {
		return nil, report, &models.ConfigLoadError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, report, &models.ConfigLoadError{Path: root, Err: errors.New("not a directory")}
	}

	fsys := os.DirFS(root)
	files, err := listEntryFiles(fsys)
	if err != nil {
		return nil, report, &models.ConfigLoadError{Path: root, Err: err}
	}

	slog.Debug("loading registry", "root", root, "files", len(files))

	results, err := decodeAll(ctx, fsys, files, opts.Concurrency)
	if err != nil {
		return nil, report, &models.ConfigLoadError{Path: root, Err: err}
	}

	var (
		entries   []models.Jumpstart
		byLogical = map[string]string{}
		byID      = map[int]string{}
	)
	for _, res := range results {
		entryErr := res.err
		var entry models.Jumpstart
		if entryErr == nil {
			entry, entryErr = schema.Validate(res.entry)
		}
		if entryErr == nil {
			if first, ok := byLogical[entry.LogicalID]; ok {
				entryErr = &DuplicateError{Field: "logical_id", Value: entry.LogicalID, First: first}
			} else if first, ok := byID[entry.ID]; ok {
				entryErr = &DuplicateError{Field: "id", Value: entry.NumericID(), First: first}
			}
		}

		if entryErr != nil {
			if opts.Strict {
				return nil, report, &models.ConfigLoadError{Path: path.Join(root, res.file), Err: entryErr}
			}
			slog.Warn("skipping registry entry", "file", res.file, "partition", res.partition.Dir, "error", entryErr)
			report.Skipped = append(report.Skipped, Skipped{File: res.file, Partition: res.partition.Dir, Err: entryErr})
			continue
		}

		entry.Core = res.partition.Core
		byLogical[entry.LogicalID] = res.file
		byID[entry.ID] = res.file
		entries = append(entries, entry)
	}

	report.Loaded = len(entries)
	slog.Debug("registry loaded", "entries", report.Loaded, "skipped", len(report.Skipped))
	return NewCatalog(entries), report, nil
}

type entryFile struct {
	name      string
	partition Partition
}

// listEntryFiles returns entry files in partition order, lexically sorted
// within each partition. Missing partitions are ignored.
func listEntryFiles(fsys fs.FS) ([]entryFile, error) {
	var files []entryFile
	for _, p := range Partitions {
		dirEntries, err := fs.ReadDir(fsys, p.Dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading partition %s: %w", p.Dir, err)
		}
		for _, de := range dirEntries {
			if de.IsDir() || !config.IsEntryFile(de.Name()) {
				continue
			}
			files = append(files, entryFile{name: path.Join(p.Dir, de.Name()), partition: p})
		}
	}
	return files, nil
}

// decodeAll parses every file in parallel. Per-file errors are recorded on
// the result; only cancellation aborts the whole run.
func decodeAll(ctx context.Context, fsys fs.FS, files []entryFile, limit int) ([]decoded, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]decoded, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, err := config.LoadEntry(fsys, f.name)
			results[i] = decoded{file: f.name, partition: f.partition, entry: entry, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
