// Package conflict decides how an install proceeds when planned items
// collide with items already in the target workspace.
package conflict

import (
	"log/slog"
	"strings"

	"github.com/spachava753/jumpstart/internal/models"
	"github.com/spachava753/jumpstart/internal/workspace"
)

// Policy is the caller's chosen resolution strategy.
type Policy struct {
	// UserPrefix is prepended to every item name when set.
	UserPrefix string
	// AutoPrefix retries with SystemPrefix+UserPrefix on conflict.
	AutoPrefix bool
	// UpdateExisting accepts conflicts and overwrites in place.
	UpdateExisting bool
	// SystemPrefix is the jumpstart's deterministic prefix.
	SystemPrefix string
}

// Resolution is the outcome of one pass of the engine.
type Resolution struct {
	Outcome models.ConflictOutcome
	// FinalPrefix is applied to item names before deployment.
	FinalPrefix string
	// Detected are the conflicts of the plan with only the user prefix.
	Detected []models.Item
	// AutoPrefixConflicts are the conflicts that remained after the
	// auto-prefix retry, when one was attempted and failed.
	AutoPrefixConflicts []models.Item
	// SystemPrefixPresent reports that the workspace already holds items
	// carrying the system prefix, likely from an earlier auto-prefixed
	// install of the same jumpstart.
	SystemPrefixPresent bool
}

// Blocked reports whether the install must stop.
func (r Resolution) Blocked() bool {
	return r.Outcome == models.Unresolved
}

// Resolve runs the conflict state machine once. base are the planned items
// with no prefix applied; existing are the workspace's current items.
//
// Conflicts are first computed with the user prefix. If any remain, auto
// prefixing is tried before overwrite, and overwrite before giving up.
// A nil logger means slog.Default.
func Resolve(logger *slog.Logger, base, existing []models.Item, p Policy) Resolution {
	if logger == nil {
		logger = slog.Default()
	}
	res := Resolution{
		FinalPrefix:         p.UserPrefix,
		SystemPrefixPresent: hasPrefixed(existing, p.SystemPrefix),
	}

	planned := workspace.ApplyPrefix(base, p.UserPrefix)
	res.Detected = workspace.DetectConflicts(planned, existing)

	if len(res.Detected) == 0 {
		res.Outcome = models.NoConflict
		if p.UserPrefix != "" && len(workspace.DetectConflicts(base, existing)) > 0 {
			res.Outcome = models.ResolvedByUserPrefix
		}
		return res
	}

	logger.Debug("conflicting items detected", "conflicts", models.ItemStrings(res.Detected))

	if p.AutoPrefix && p.SystemPrefix != "" {
		combined := p.SystemPrefix + p.UserPrefix
		remaining := workspace.DetectConflicts(workspace.ApplyPrefix(base, combined), existing)
		if len(remaining) == 0 {
			logger.Debug("conflicts resolved via auto-prefix", "prefix", combined)
			res.Outcome = models.ResolvedByAutoPrefix
			res.FinalPrefix = combined
			return res
		}
		logger.Debug("auto-prefix did not resolve conflicts", "prefix", combined, "remaining", models.ItemStrings(remaining))
		res.AutoPrefixConflicts = remaining
	}

	if p.UpdateExisting {
		logger.Debug("conflicts accepted for overwrite", "conflicts", models.ItemStrings(res.Detected))
		res.Outcome = models.ResolvedByOverwrite
		return res
	}

	res.Outcome = models.Unresolved
	return res
}

func hasPrefixed(items []models.Item, prefix string) bool {
	if prefix == "" {
		return false
	}
	for _, it := range items {
		if strings.HasPrefix(it.Name, prefix) {
			return true
		}
	}
	return false
}
