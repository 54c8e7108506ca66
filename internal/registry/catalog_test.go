package registry

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/spachava753/jumpstart/internal/models"
)

func sampleEntries() []models.Jumpstart {
	off := false
	return []models.Jumpstart{
		{ID: 3, LogicalID: "gamma", DateAdded: "01/01/2020", WorkloadTags: []string{"Data Science"}, ScenarioTags: []string{"Modeling"}, Type: models.TypeDemo},
		{ID: 1, LogicalID: "alpha", DateAdded: "2025-06-01", WorkloadTags: []string{"Data Engineering", "Data Factory"}, ScenarioTags: []string{"Streaming", "Data Integration"}, Type: models.TypeAccelerator},
		{ID: 2, LogicalID: "beta", DateAdded: "not a date", WorkloadTags: []string{"Data Engineering"}, Type: models.TypeTutorial, IncludeInListing: &off},
		{ID: 4, LogicalID: "delta", DateAdded: "05/20/2025", ScenarioTags: []string{"Streaming"}},
	}
}

func TestGetByID(t *testing.T) {
	cat := NewCatalog(sampleEntries())

	tests := []struct {
		id   string
		want string
	}{
		{"alpha", "alpha"},
		{"3", "gamma"},
		{" beta ", "beta"},
	}
	for _, tt := range tests {
		got, err := cat.GetByID(tt.id)
		if err != nil {
			t.Errorf("GetByID(%q): %v", tt.id, err)
			continue
		}
		if got.LogicalID != tt.want {
			t.Errorf("GetByID(%q) = %s, want %s", tt.id, got.LogicalID, tt.want)
		}
	}

	_, err := cat.GetByID("missing")
	var nf *models.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestFilters(t *testing.T) {
	all := NewCatalog(sampleEntries()).ListAll(true)

	if got := FilterByWorkload(all, "data engineering"); len(got) != 2 {
		t.Errorf("FilterByWorkload: expected 2, got %d", len(got))
	}
	if got := FilterByScenario(all, "Streaming"); len(got) != 2 {
		t.Errorf("FilterByScenario: expected 2, got %d", len(got))
	}
	if got := FilterByType(all, "demo"); len(got) != 1 || got[0].LogicalID != "gamma" {
		t.Errorf("FilterByType: unexpected %v", got)
	}
}

func TestMarkNewAndSort(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	listings := MarkNew(NewCatalog(sampleEntries()).ListAll(true), 60, now)
	SortListings(listings)

	var order []string
	for _, l := range listings {
		order = append(order, l.LogicalID)
	}
	want := []string{"alpha", "delta", "beta", "gamma"}
	if !slices.Equal(order, want) {
		t.Errorf("sort order = %v, want %v", order, want)
	}
	for _, l := range listings {
		if l.LogicalID == "beta" && l.IsNew {
			t.Error("unparseable date must not be new")
		}
	}
}

func TestGroupBy(t *testing.T) {
	listings := MarkNew(NewCatalog(sampleEntries()).ListAll(true), 60, time.Now())

	byScenario := GroupByScenario(listings)
	if len(byScenario["Streaming"]) != 2 {
		t.Errorf("expected 2 streaming entries, got %d", len(byScenario["Streaming"]))
	}
	if len(byScenario[Uncategorized]) != 1 || byScenario[Uncategorized][0].LogicalID != "beta" {
		t.Errorf("expected beta uncategorized, got %v", byScenario[Uncategorized])
	}

	byWorkload := GroupByWorkload(listings)
	if len(byWorkload["Data Factory"]) != 1 || len(byWorkload["Data Engineering"]) != 2 {
		t.Errorf("unexpected workload groups: %v", GroupKeys(byWorkload))
	}

	byType := GroupByType(listings)
	if len(byType[Unspecified]) != 1 {
		t.Errorf("expected one type-less entry, got %d", len(byType[Unspecified]))
	}

	keys := GroupKeys(byScenario)
	if keys[len(keys)-1] != Uncategorized {
		t.Errorf("expected Uncategorized last, got %v", keys)
	}
}
