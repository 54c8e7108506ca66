package registry

import (
	"slices"
	"strings"
	"time"

	"github.com/spachava753/jumpstart/internal/models"
	"github.com/spachava753/jumpstart/internal/util"
)

const (
	// Uncategorized holds entries with no tag of the grouped kind.
	Uncategorized = "Uncategorized"
	// Unspecified holds entries with no type when grouping by type.
	Unspecified = "Unspecified"
)

// Catalog is an immutable, validated set of jumpstarts.
type Catalog struct {
	entries []models.Jumpstart
}

// NewCatalog wraps entries in load order.
func NewCatalog(entries []models.Jumpstart) *Catalog {
	return &Catalog{entries: slices.Clone(entries)}
}

// Len returns the number of entries, listed or not.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// GetByID finds a jumpstart by logical_id or by its numeric id in string
// form. The first matching entry in load order wins.
func (c *Catalog) GetByID(id string) (models.Jumpstart, error) {
	id = strings.TrimSpace(id)
	for _, j := range c.entries {
		if j.LogicalID == id || j.NumericID() == id {
			return j, nil
		}
	}
	return models.Jumpstart{}, &models.NotFoundError{ID: id}
}

// ListAll returns entries in load order. Entries with include_in_listing
// set to false are omitted unless includeUnlisted is true.
func (c *Catalog) ListAll(includeUnlisted bool) []models.Jumpstart {
	out := make([]models.Jumpstart, 0, len(c.entries))
	for _, j := range c.entries {
		if includeUnlisted || j.Listed() {
			out = append(out, j)
		}
	}
	return out
}

// FilterByWorkload keeps entries tagged with workload, ignoring case.
func FilterByWorkload(list []models.Jumpstart, workload string) []models.Jumpstart {
	return filter(list, func(j models.Jumpstart) bool { return hasTag(j.WorkloadTags, workload) })
}

// FilterByScenario keeps entries tagged with scenario, ignoring case.
func FilterByScenario(list []models.Jumpstart, scenario string) []models.Jumpstart {
	return filter(list, func(j models.Jumpstart) bool { return hasTag(j.ScenarioTags, scenario) })
}

// FilterByType keeps entries of the given type, ignoring case.
func FilterByType(list []models.Jumpstart, typ string) []models.Jumpstart {
	return filter(list, func(j models.Jumpstart) bool { return strings.EqualFold(string(j.Type), typ) })
}

func filter(list []models.Jumpstart, keep func(models.Jumpstart) bool) []models.Jumpstart {
	var out []models.Jumpstart
	for _, j := range list {
		if keep(j) {
			out = append(out, j)
		}
	}
	return out
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Listing is a catalog entry decorated for display.
type Listing struct {
	models.Jumpstart
	IsNew bool
}

// MarkNew flags entries added within the trailing window of days before
// now. Unparseable dates are never new.
func MarkNew(list []models.Jumpstart, days int, now time.Time) []Listing {
	out := make([]Listing, len(list))
	for i, j := range list {
		out[i] = Listing{Jumpstart: j, IsNew: util.AddedWithin(j.DateAdded, days, now)}
	}
	return out
}

// SortListings orders new entries first, then by ascending id, then by
// logical_id.
func SortListings(list []Listing) {
	slices.SortStableFunc(list, func(a, b Listing) int {
		if a.IsNew != b.IsNew {
			if a.IsNew {
				return -1
			}
			return 1
		}
		if a.ID != b.ID {
			return a.ID - b.ID
		}
		return strings.Compare(a.LogicalID, b.LogicalID)
	})
}

// GroupByScenario buckets listings by scenario tag. An entry with N tags
// appears in N groups.
func GroupByScenario(list []Listing) map[string][]Listing {
	return groupBy(list, Uncategorized, func(l Listing) []string { return l.ScenarioTags })
}

// GroupByWorkload buckets listings by workload tag.
func GroupByWorkload(list []Listing) map[string][]Listing {
	return groupBy(list, Uncategorized, func(l Listing) []string { return l.WorkloadTags })
}

// GroupByType buckets listings by jumpstart type.
func GroupByType(list []Listing) map[string][]Listing {
	return groupBy(list, Unspecified, func(l Listing) []string {
		if l.Type == "" {
			return nil
		}
		return []string{string(l.Type)}
	})
}

func groupBy(list []Listing, fallback string, keys func(Listing) []string) map[string][]Listing {
	groups := map[string][]Listing{}
	for _, l := range list {
		ks := keys(l)
		if len(ks) == 0 {
			groups[fallback] = append(groups[fallback], l)
			continue
		}
		for _, k := range ks {
			groups[k] = append(groups[k], l)
		}
	}
	return groups
}

// GroupKeys returns group names sorted, with the fallback buckets last.
func GroupKeys(groups map[string][]Listing) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		af, bf := a == Uncategorized || a == Unspecified, b == Uncategorized || b == Unspecified
		if af != bf {
			if af {
				return 1
			}
			return -1
		}
		return strings.Compare(a, b)
	})
	return keys
}
