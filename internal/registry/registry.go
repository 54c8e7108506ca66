package registry

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Registry caches the catalog loaded from a registry root. The first call
// to Catalog loads it; concurrent first callers share that load. The cache
// lives until Invalidate is called.
type Registry struct {
	root string
	opts LoadOptions

	group singleflight.Group

	mu      sync.RWMutex
	catalog *Catalog
	report  Report
}

// New creates a Registry for root. Nothing is read until Catalog is called.
func New(root string, opts LoadOptions) *Registry {
	return &Registry{root: root, opts: opts}
}

// Root returns the registry root directory.
func (r *Registry) Root() string {
	return r.root
}

// Catalog returns the cached catalog, loading it on first use.
func (r *Registry) Catalog(ctx context.Context) (*Catalog, error) {
	r.mu.RLock()
	cat := r.catalog
	r.mu.RUnlock()
	if cat != nil {
		return cat, nil
	}

	v, err, shared := r.group.Do("load", func() (any, error) {
		cat, report, err := Load(ctx, r.root, r.opts)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.catalog = cat
		r.report = report
		r.mu.Unlock()
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("registry catalog ready", "root", r.root, "shared", shared)
	return v.(*Catalog), nil
}

// Report returns the report from the most recent successful load.
func (r *Registry) Report() Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.report
}

// Invalidate drops the cached catalog so the next call reloads from disk.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.catalog = nil
	r.report = Report{}
	r.mu.Unlock()
	r.group.Forget("load")
}
