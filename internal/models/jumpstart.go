package models

import (
	"fmt"
	"strconv"
	"strings"
)

// JumpstartType classifies a jumpstart for catalog browsing.
type JumpstartType string

const (
	TypeAccelerator JumpstartType = "Accelerator"
	TypeTutorial    JumpstartType = "Tutorial"
	TypeDemo        JumpstartType = "Demo"
)

// Source describes where a jumpstart's deployable content comes from.
type Source struct {
	WorkspacePath    string `yaml:"workspace_path" toml:"workspace_path" json:"workspace_path"`
	RepoURL          string `yaml:"repo_url,omitempty" toml:"repo_url,omitempty" json:"repo_url,omitempty"`
	RepoRef          string `yaml:"repo_ref,omitempty" toml:"repo_ref,omitempty" json:"repo_ref,omitempty"`
	PreviewImagePath string `yaml:"preview_image_path,omitempty" toml:"preview_image_path,omitempty" json:"preview_image_path,omitempty"`
}

// IsRemote reports whether the content is fetched from a git repository
// rather than the local bundle directory.
func (s Source) IsRemote() bool {
	return s.RepoURL != ""
}

// Jumpstart is one catalog entry as declared in a registry file.
type Jumpstart struct {
	ID          int    `yaml:"id" toml:"id" json:"id"`
	LogicalID   string `yaml:"logical_id" toml:"logical_id" json:"logical_id"`
	Name        string `yaml:"name" toml:"name" json:"name"`
	Description string `yaml:"description" toml:"description" json:"description"`
	DateAdded   string `yaml:"date_added" toml:"date_added" json:"date_added"`
	OwnerEmail  string `yaml:"owner_email" toml:"owner_email" json:"owner_email"`

	WorkloadTags []string      `yaml:"workload_tags" toml:"workload_tags" json:"workload_tags"`
	ScenarioTags []string      `yaml:"scenario_tags" toml:"scenario_tags" json:"scenario_tags"`
	Type         JumpstartType `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`

	// IncludeInListing is nil when the entry did not set it; see Listed.
	IncludeInListing *bool `yaml:"include_in_listing,omitempty" toml:"include_in_listing,omitempty" json:"include_in_listing,omitempty"`

	Source       Source   `yaml:"source" toml:"source" json:"source"`
	ItemsInScope []string `yaml:"items_in_scope,omitempty" toml:"items_in_scope,omitempty" json:"items_in_scope,omitempty"`
	FeatureFlags []string `yaml:"feature_flags,omitempty" toml:"feature_flags,omitempty" json:"feature_flags,omitempty"`
	EntryPoint   string   `yaml:"entry_point" toml:"entry_point" json:"entry_point"`

	MinutesToComplete *int `yaml:"minutes_to_complete_jumpstart,omitempty" toml:"minutes_to_complete_jumpstart,omitempty" json:"minutes_to_complete_jumpstart,omitempty"`
	MinutesToDeploy   *int `yaml:"minutes_to_deploy,omitempty" toml:"minutes_to_deploy,omitempty" json:"minutes_to_deploy,omitempty"`

	DocsURI   string `yaml:"jumpstart_docs_uri,omitempty" toml:"jumpstart_docs_uri,omitempty" json:"jumpstart_docs_uri,omitempty"`
	TestSuite string `yaml:"test_suite,omitempty" toml:"test_suite,omitempty" json:"test_suite,omitempty"`

	// Core is set by the registry from the partition the entry was loaded
	// from. It is never read from the entry itself.
	Core bool `yaml:"-" toml:"-" json:"core"`
}

// Listed reports whether the entry appears in catalog browsing.
func (j Jumpstart) Listed() bool {
	return j.IncludeInListing == nil || *j.IncludeInListing
}

// NumericID returns the numeric id in the string form used for lookups.
func (j Jumpstart) NumericID() string {
	return strconv.Itoa(j.ID)
}

// EntryPointIsURL reports whether the entry point is an absolute web URL
// rather than an item reference.
func (j Jumpstart) EntryPointIsURL() bool {
	return IsWebURL(j.EntryPoint)
}

// SystemPrefix derives the deterministic item-name prefix used for
// auto-prefixing and temp directory naming: "js<id>_<initials>__", where
// initials are the first character of each logical_id segment.
func (j Jumpstart) SystemPrefix() string {
	return SystemPrefix(j.ID, j.LogicalID)
}

// SystemPrefix is the pure form of Jumpstart.SystemPrefix.
func SystemPrefix(id int, logicalID string) string {
	var initials strings.Builder
	for _, part := range strings.Split(logicalID, "-") {
		if part == "" {
			continue
		}
		initials.WriteByte(part[0])
	}
	return fmt.Sprintf("js%d_%s__", id, initials.String())
}

// IsWebURL reports whether s starts with an http or https scheme.
func IsWebURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
