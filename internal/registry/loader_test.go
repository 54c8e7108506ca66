package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spachava753/jumpstart/internal/models"
)

func entryYAML(id int, logicalID, extra string) string {
	return fmt.Sprintf(`id: %d
logical_id: %s
name: Entry %d
description: Sample content for registry tests.
date_added: 01/15/2025
owner_email: owner@example.com
workload_tags: [Data Engineering]
scenario_tags: [Streaming]
source:
  workspace_path: /src
entry_point: Notebook1.Notebook
%s`, id, logicalID, id, extra)
}

func writeEntry(t *testing.T, root, partition, name, content string) {
	t.Helper()
	dir := filepath.Join(root, partition)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating partition: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing entry: %v", err)
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeEntry(t, root, "core", "a.yml", entryYAML(1, "demo-a", ""))
	writeEntry(t, root, "community", "b.yaml", entryYAML(2, "demo-b", "include_in_listing: false\n"))
	writeEntry(t, root, "community", "bad.yml", entryYAML(3, "Bad_Slug", ""))
	writeEntry(t, root, "community", "notes.txt", "ignored")

	cat, report, err := Load(context.Background(), root, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cat.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", cat.Len())
	}
	if report.Loaded != 2 || len(report.Skipped) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Skipped[0].Partition != "community" {
		t.Errorf("expected skipped entry from community, got %q", report.Skipped[0].Partition)
	}
	if report.Skipped[0].File != "community/bad.yml" {
		t.Errorf("skipped file = %q, want community/bad.yml", report.Skipped[0].File)
	}
	var verr *models.SchemaValidationError
	if !errors.As(report.Skipped[0].Err, &verr) {
		t.Errorf("expected schema error, got %v", report.Skipped[0].Err)
	}

	a, err := cat.GetByID("demo-a")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !a.Core {
		t.Error("core partition entry should have core=true")
	}
	b, err := cat.GetByID("2")
	if err != nil {
		t.Fatalf("GetByID by numeric id: %v", err)
	}
	if b.Core {
		t.Error("community entry should have core=false")
	}

	if got := len(cat.ListAll(false)); got != 1 {
		t.Errorf("expected 1 listed entry, got %d", got)
	}
	if got := len(cat.ListAll(true)); got != 2 {
		t.Errorf("expected 2 entries with unlisted, got %d", got)
	}
}

func TestLoad_DuplicateLogicalID(t *testing.T) {
	root := t.TempDir()
	writeEntry(t, root, "core", "a.yml", entryYAML(1, "demo-a", ""))
	writeEntry(t, root, "community", "a-copy.yml", entryYAML(9, "demo-a", ""))
	writeEntry(t, root, "community", "c.yml", entryYAML(1, "demo-c", ""))

	cat, report, err := Load(context.Background(), root, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("expected only the first entry to survive, got %d", cat.Len())
	}
	j, _ := cat.GetByID("demo-a")
	if j.ID != 1 {
		t.Errorf("expected first occurrence to win, got id %d", j.ID)
	}
	if len(report.Skipped) != 2 {
		t.Fatalf("expected 2 skipped duplicates, got %+v", report.Skipped)
	}
	for _, s := range report.Skipped {
		var dup *DuplicateError
		if !errors.As(s.Err, &dup) {
			t.Errorf("expected DuplicateError for %s, got %v", s.File, s.Err)
		}
	}
}

func TestLoad_Strict(t *testing.T) {
	root := t.TempDir()
	writeEntry(t, root, "core", "a.yml", entryYAML(1, "demo-a", ""))
	writeEntry(t, root, "community", "bad.yml", "id: [unclosed")

	_, _, err := Load(context.Background(), root, LoadOptions{Strict: true})
	var cerr *models.ConfigLoadError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigLoadError in strict mode, got %v", err)
	}
}

func TestLoad_MissingRoot(t *testing.T) {
	_, _, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope"), LoadOptions{})
	var cerr *models.ConfigLoadError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigLoadError, got %v", err)
	}
}

func TestLoad_MissingPartitions(t *testing.T) {
	cat, report, err := Load(context.Background(), t.TempDir(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 0 || !report.OK() {
		t.Errorf("expected empty catalog and clean report, got %d entries, %+v", cat.Len(), report)
	}
}

func TestLoad_Invariants(t *testing.T) {
	root := t.TempDir()
	for i := 1; i <= 12; i++ {
		partition := "core"
		if i%2 == 0 {
			partition = "community"
		}
		// every third entry reuses an earlier logical id
		logical := fmt.Sprintf("entry-%d", i)
		if i%3 == 0 {
			logical = fmt.Sprintf("entry-%d", i-1)
		}
		writeEntry(t, root, partition, fmt.Sprintf("e%02d.yml", i), entryYAML(i, logical, ""))
	}

	cat, _, err := Load(context.Background(), root, LoadOptions{Concurrency: 3})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	slug := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	logicalIDs := map[string]bool{}
	ids := map[int]bool{}
	for _, j := range cat.ListAll(true) {
		if logicalIDs[j.LogicalID] {
			t.Errorf("duplicate logical_id %q", j.LogicalID)
		}
		if ids[j.ID] || j.ID <= 0 {
			t.Errorf("duplicate or non-positive id %d", j.ID)
		}
		if !slug.MatchString(j.LogicalID) {
			t.Errorf("logical_id %q is not a slug", j.LogicalID)
		}
		logicalIDs[j.LogicalID] = true
		ids[j.ID] = true
	}
}

func TestLoad_TOML(t *testing.T) {
	root := t.TempDir()
	writeEntry(t, root, "core", "t.toml", `id = 5
logical_id = "toml-entry"
name = "TOML Entry"
description = "Authored in TOML."
date_added = "2025-03-01"
owner_email = "owner@example.com"
workload_tags = ["Data Science"]
scenario_tags = ["Modeling"]
entry_point = "Model.MLModel"

[source]
workspace_path = "src"
`)

	cat, report, err := Load(context.Background(), root, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !report.OK() {
		t.Fatalf("unexpected skipped entries: %+v", report.Skipped)
	}
	j, err := cat.GetByID("toml-entry")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if j.Type != models.TypeAccelerator {
		t.Errorf("expected default type, got %q", j.Type)
	}
}
