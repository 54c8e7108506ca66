package workspace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spachava753/jumpstart/internal/models"
)

// platformFile holds an item's metadata, including its display name.
const platformFile = ".platform"

// maxRewriteSize bounds the files scanned for references.
const maxRewriteSize = 8 << 20

// ApplyPrefixToFiles renames every in-scope item directory under dir to
// carry prefix, updates each item's .platform display name, and rewrites
// quoted occurrences of refs (item base names such as the entry point's)
// in the text files of the tree. An empty prefix is a no-op.
func (inv *Inventory) ApplyPrefixToFiles(dir, prefix string, scope, refs []string) ([]models.Rename, error) {
	if prefix == "" {
		return nil, nil
	}

	paths, err := itemDirs(dir, scope)
	if err != nil {
		return nil, err
	}

	var renames []models.Rename
	for _, p := range paths {
		item, _ := models.ParseItem(filepath.Base(p))
		renamed := item.WithPrefix(prefix)
		target := filepath.Join(filepath.Dir(p), renamed.String())

		if _, err := os.Stat(target); err == nil {
			return renames, fmt.Errorf("renaming %s: %s already exists", item, renamed)
		}
		if err := os.Rename(p, target); err != nil {
			return renames, fmt.Errorf("renaming %s: %w", item, err)
		}
		if err := setDisplayName(filepath.Join(target, platformFile), renamed.Name); err != nil {
			return renames, fmt.Errorf("updating %s metadata: %w", renamed, err)
		}
		renames = append(renames, models.Rename{From: item.String(), To: renamed.String()})
	}

	if len(refs) > 0 {
		if err := rewriteRefs(inv.logger(), dir, prefix, refs); err != nil {
			return renames, err
		}
	}

	slices.SortFunc(renames, func(a, b models.Rename) int { return strings.Compare(a.From, b.From) })
	inv.logger().Debug("applied item prefix", "dir", dir, "prefix", prefix, "renamed", len(renames))
	return renames, nil
}

// itemDirs returns the paths of in-scope item directories, using the same
// rules as PlannedItems.
func itemDirs(dir string, scope []string) ([]string, error) {
	inScope := func(t string) bool { return models.IsKnownItemType(t) }
	if len(scope) > 0 {
		inScope = func(t string) bool {
			return slices.ContainsFunc(scope, func(s string) bool { return strings.EqualFold(s, t) })
		}
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == dir {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		item, err := models.ParseItem(d.Name())
		if err == nil && inScope(item.Type) {
			paths = append(paths, path)
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return paths, nil
}

// setDisplayName updates metadata.displayName in a .platform file. A
// missing file is not an error.
func setDisplayName(path, name string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", platformFile, err)
	}
	meta, ok := doc["metadata"].(map[string]any)
	if !ok {
		meta = map[string]any{}
		doc["metadata"] = meta
	}
	meta["displayName"] = name

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(out, '\n'), 0644)
}

// rewriteRefs replaces "ref" and 'ref' with the prefixed name in every text
// file under dir.
func rewriteRefs(logger *slog.Logger, dir, prefix string, refs []string) error {
	var pairs []string
	for _, ref := range refs {
		if ref == "" || strings.HasPrefix(ref, prefix) {
			continue
		}
		for _, q := range []string{`"`, `'`} {
			pairs = append(pairs, q+ref+q, q+prefix+ref+q)
		}
	}
	if len(pairs) == 0 {
		return nil
	}
	replacer := strings.NewReplacer(pairs...)

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxRewriteSize {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if bytes.IndexByte(data, 0) >= 0 {
			return nil
		}
		updated := replacer.Replace(string(data))
		if updated == string(data) {
			return nil
		}
		logger.Debug("rewrote item references", "file", path)
		return os.WriteFile(path, []byte(updated), info.Mode().Perm())
	})
}
