// Package workspace builds the existing and planned item sets compared for
// conflicts, renames item trees on disk, and drives deployment.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spachava753/jumpstart/internal/deployer"
	"github.com/spachava753/jumpstart/internal/models"
)

// Inventory queries and deploys to a workspace through a Deployer.
type Inventory struct {
	Deployer deployer.Deployer
	// ListTimeout bounds the whole paginated listing. Zero means no limit.
	ListTimeout time.Duration
	// DeployTimeout bounds one publish. Zero means no limit.
	DeployTimeout time.Duration
	// Logger receives progress records. Nil means slog.Default.
	Logger *slog.Logger
}

// WithLogger returns a copy of inv that logs to logger.
func (inv *Inventory) WithLogger(logger *slog.Logger) *Inventory {
	next := *inv
	next.Logger = logger
	return &next
}

func (inv *Inventory) logger() *slog.Logger {
	if inv.Logger == nil {
		return slog.Default()
	}
	return inv.Logger
}

// ExistingItems enumerates every item in the workspace, following
// continuations until exhausted. Failures are *models.WorkspaceQueryError.
func (inv *Inventory) ExistingItems(ctx context.Context, workspaceID string) ([]models.Item, error) {
	if inv.ListTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.ListTimeout)
		defer cancel()
	}

	var (
		items []models.Item
		next  deployer.Continuation
		seen  = map[deployer.Continuation]bool{}
		pages int
	)
	for {
		page, err := inv.Deployer.ListItems(ctx, workspaceID, next)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = fmt.Errorf("%w: %v", ctxErr, err)
			}
			return nil, &models.WorkspaceQueryError{WorkspaceID: workspaceID, Err: err}
		}
		pages++
		for _, it := range page.Items {
			if it.DisplayName == "" || it.Type == "" {
				continue
			}
			items = append(items, models.Item{Name: it.DisplayName, Type: it.Type})
		}

		if page.Next.Done() {
			break
		}
		if seen[page.Next] {
			return nil, &models.WorkspaceQueryError{
				WorkspaceID: workspaceID,
				Err:         fmt.Errorf("listing repeated continuation after %d pages", pages),
			}
		}
		seen[page.Next] = true
		next = page.Next
	}

	inv.logger().Debug("found existing items", "workspace_id", workspaceID, "count", len(items), "pages", pages)
	return items, nil
}

// PlannedItems scans dir recursively for <base>.<type> item directories.
// With a non-empty scope only types in scope (compared case-insensitively)
// are kept; otherwise any known item type is kept. Item directories are not
// descended into, nor are hidden directories. The result is deduplicated
// and sorted.
func (inv *Inventory) PlannedItems(dir string, scope []string) ([]models.Item, error) {
	paths, err := itemDirs(dir, scope)
	if err != nil {
		return nil, err
	}

	seen := map[models.Item]bool{}
	items := make([]models.Item, 0, len(paths))
	for _, p := range paths {
		item, _ := models.ParseItem(filepath.Base(p))
		if !seen[item] {
			seen[item] = true
			items = append(items, item)
		}
	}
	models.SortItems(items)
	inv.logger().Debug("collected planned items", "dir", dir, "count", len(items))
	return items, nil
}

// ApplyPrefix returns a sorted copy of items with prefix prepended to each
// name. Types are untouched and items is not modified.
func ApplyPrefix(items []models.Item, prefix string) []models.Item {
	out := make([]models.Item, len(items))
	for i, it := range items {
		out[i] = it.WithPrefix(prefix)
	}
	models.SortItems(out)
	return out
}

// DetectConflicts returns the sorted intersection of planned and existing.
func DetectConflicts(planned, existing []models.Item) []models.Item {
	have := make(map[models.Item]bool, len(existing))
	for _, it := range existing {
		have[it] = true
	}
	var conflicts []models.Item
	added := map[models.Item]bool{}
	for _, it := range planned {
		if have[it] && !added[it] {
			conflicts = append(conflicts, it)
			added[it] = true
		}
	}
	models.SortItems(conflicts)
	return conflicts
}

// Deploy publishes the finalized item tree. Feature flags travel with the
// request.
func (inv *Inventory) Deploy(ctx context.Context, req deployer.PublishRequest) (deployer.Handle, error) {
	if inv.DeployTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.DeployTimeout)
		defer cancel()
	}

	inv.logger().Debug("deploying items", "source", req.SourceDir, "workspace_id", req.WorkspaceID, "feature_flags", req.FeatureFlags)
	h, err := inv.Deployer.Publish(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return h, &models.DeployError{WorkspaceID: req.WorkspaceID, Err: err}
	}
	inv.logger().Debug("deployed all items", "workspace_id", req.WorkspaceID)
	return h, nil
}
