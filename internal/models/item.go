package models

import (
	"fmt"
	"slices"
	"strings"
)

// Item identifies a workspace item as "<display_name>.<item_type>".
// Both parts are case-sensitive and non-empty.
type Item struct {
	Name string
	Type string
}

// String returns the "<name>.<type>" identity form.
func (i Item) String() string {
	return i.Name + "." + i.Type
}

// WithPrefix returns the item with prefix prepended to the name only.
func (i Item) WithPrefix(prefix string) Item {
	return Item{Name: prefix + i.Name, Type: i.Type}
}

// ParseItem splits an identity at its last dot. Item types never contain
// dots, display names may.
func ParseItem(s string) (Item, error) {
	idx := strings.LastIndex(s, ".")
	if idx <= 0 || idx == len(s)-1 {
		return Item{}, fmt.Errorf("invalid item identity %q: want <name>.<type>", s)
	}
	return Item{Name: s[:idx], Type: s[idx+1:]}, nil
}

// SortItems sorts items by their identity string in place.
func SortItems(items []Item) {
	slices.SortFunc(items, func(a, b Item) int {
		return strings.Compare(a.String(), b.String())
	})
}

// ItemStrings renders items in identity form, preserving order.
func ItemStrings(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.String()
	}
	return out
}

// ItemRoutes maps item types to the URL path segment used to open a
// deployed item in the portal. Types missing from this map can be deployed
// but cannot be used to build an entry-point link.
var ItemRoutes = map[string]string{
	"Notebook":           "synapsenotebooks",
	"Lakehouse":          "lakehouses",
	"Warehouse":          "datawarehouses",
	"SemanticModel":      "datasets",
	"Report":             "reports",
	"DataPipeline":       "pipelines",
	"SparkJobDefinition": "sparkjobdefinitions",
	"Environment":        "sparkenvironments",
	"Eventhouse":         "eventhouses",
	"KQLDatabase":        "databases",
	"KQLQueryset":        "queryworkbenches",
	"Eventstream":        "eventstreams",
	"Reflex":             "reflexes",
	"MirroredDatabase":   "mirroreddatabases",
	"SQLDatabase":        "sqldatabases",
	"CopyJob":            "copyjobs",
	"MLModel":            "mlmodels",
	"MLExperiment":       "mlexperiments",
}

// unroutableItemTypes are deployable types with no portal route.
var unroutableItemTypes = []string{
	"KQLDashboard",
	"VariableLibrary",
	"GraphQLApi",
	"Dataflow",
	"UserDataFunction",
}

// IsKnownItemType reports whether t is a deployable item type.
func IsKnownItemType(t string) bool {
	if _, ok := ItemRoutes[t]; ok {
		return true
	}
	return slices.Contains(unroutableItemTypes, t)
}

// KnownItemTypes returns every deployable item type, sorted.
func KnownItemTypes() []string {
	types := make([]string, 0, len(ItemRoutes)+len(unroutableItemTypes))
	for t := range ItemRoutes {
		types = append(types, t)
	}
	types = append(types, unroutableItemTypes...)
	slices.Sort(types)
	return types
}
