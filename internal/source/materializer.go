package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spachava753/jumpstart/internal/models"
)

// Workdir is a materialized copy of one jumpstart's content. It is owned by
// a single install attempt and must be closed when the attempt ends.
type Workdir struct {
	// Root is the top of the materialized tree.
	Root string
	// ItemsDir is Root joined with the jumpstart's workspace_path.
	ItemsDir string

	logger *slog.Logger
	once   sync.Once
	err    error
}

// Close removes the working directory. It is safe to call more than once.
func (w *Workdir) Close() error {
	w.once.Do(func() {
		logger := w.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Debug("removing working directory", "path", w.Root)
		w.err = os.RemoveAll(w.Root)
	})
	return w.err
}

// Materializer produces isolated working directories for installs.
type Materializer struct {
	// BundlesDir holds local bundles, one directory per logical_id.
	BundlesDir string
	// TempDir is the parent for working directories. Empty means os.TempDir.
	TempDir string
	Cloner  Cloner
	// CloneTimeout bounds a remote fetch. Zero means no limit.
	CloneTimeout time.Duration
}

// Materialize fetches j's content into a fresh directory named with j's
// system prefix. On failure the partial directory is removed and a
// *models.SourceFetchError is returned. A nil logger uses slog.Default.
func (m *Materializer) Materialize(ctx context.Context, j models.Jumpstart, logger *slog.Logger) (*Workdir, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, err := os.MkdirTemp(m.TempDir, j.SystemPrefix())
	if err != nil {
		return nil, &models.SourceFetchError{Source: j.LogicalID, Err: fmt.Errorf("creating working directory: %w", err)}
	}
	wd := &Workdir{Root: root, logger: logger}

	if err := m.fetch(ctx, logger, j, root); err != nil {
		if rmErr := wd.Close(); rmErr != nil {
			logger.Warn("removing partial working directory", "path", root, "error", rmErr)
		}
		return nil, err
	}

	itemsDir, err := ContainedPath(root, j.Source.WorkspacePath)
	if err != nil {
		wd.Close()
		return nil, &models.SourceFetchError{Source: j.LogicalID, Err: err}
	}
	if info, err := os.Stat(itemsDir); err != nil || !info.IsDir() {
		wd.Close()
		return nil, &models.SourceFetchError{
			Source: j.LogicalID,
			Err:    fmt.Errorf("workspace path %q not found in materialized source", j.Source.WorkspacePath),
		}
	}
	wd.ItemsDir = itemsDir

	logger.Debug("materialized source", "jumpstart", j.LogicalID, "root", root, "items_dir", itemsDir)
	return wd, nil
}

func (m *Materializer) fetch(ctx context.Context, logger *slog.Logger, j models.Jumpstart, root string) error {
	if j.Source.IsRemote() {
		if m.Cloner == nil {
			return &models.SourceFetchError{Source: j.Source.RepoURL, Ref: j.Source.RepoRef, Err: errors.New("no cloner configured")}
		}
		if m.CloneTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, m.CloneTimeout)
			defer cancel()
		}
		// git refuses to clone into a non-empty directory, so clone into a
		// child and treat that as the tree root.
		dest := filepath.Join(root, "repo")
		if err := m.Cloner.Clone(ctx, logger, j.Source.RepoURL, j.Source.RepoRef, dest); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = fmt.Errorf("%w: %v", ctxErr, err)
			}
			return &models.SourceFetchError{Source: j.Source.RepoURL, Ref: j.Source.RepoRef, Err: err}
		}
		return hoist(dest, root)
	}

	bundle := filepath.Join(m.BundlesDir, j.LogicalID)
	logger.Debug("copying local bundle", "jumpstart", j.LogicalID, "bundle", bundle)
	if err := CopyTree(bundle, root); err != nil {
		return &models.SourceFetchError{Source: bundle, Err: err}
	}
	return nil
}

// hoist moves every entry of dir up into parent and removes dir.
func hoist(dir, parent string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading clone: %w", err)
	}
	for _, e := range entries {
		if err := os.Rename(filepath.Join(dir, e.Name()), filepath.Join(parent, e.Name())); err != nil {
			return fmt.Errorf("moving %s: %w", e.Name(), err)
		}
	}
	return os.Remove(dir)
}

// ContainedPath joins rel onto root after stripping leading separators and
// rejects results that escape root.
func ContainedPath(root, rel string) (string, error) {
	rel = strings.TrimLeft(filepath.FromSlash(rel), string(filepath.Separator))
	joined := filepath.Join(root, rel)
	r, err := filepath.Rel(root, joined)
	if err != nil {
		return "", fmt.Errorf("resolving workspace path: %w", err)
	}
	if r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("workspace path %q escapes the source root", rel)
	}
	return joined, nil
}

// CopyTree copies the regular files and directories under src into dst,
// which must already exist. Symlinks are skipped.
func CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("reading bundle: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("bundle %s is not a directory", src)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			if rel == "." {
				return nil
			}
			return os.MkdirAll(target, 0755)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			slog.Debug("skipping non-regular file", "path", path)
			return nil
		}
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
