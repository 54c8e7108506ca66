// Package schema validates registry entries against the jumpstart field
// contract. Validation never stops at the first problem: every failing field
// is reported so authors can fix an entry in one pass.
package schema

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/spachava753/jumpstart/internal/models"
	"github.com/spachava753/jumpstart/internal/util"
)

var logicalIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// commitPattern matches refs that look like an abbreviated or full SHA.
var commitPattern = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// IsCommitRef reports whether ref looks like a commit SHA rather than a
// branch or tag name.
func IsCommitRef(ref string) bool {
	return commitPattern.MatchString(ref)
}

// IsLogicalID reports whether s is a well-formed kebab-case slug.
func IsLogicalID(s string) bool {
	return logicalIDPattern.MatchString(s)
}

// Validate checks j against the field contract and returns a normalized copy
// with defaults applied. The returned error is a *models.SchemaValidationError
// listing every failing field. Validate(Validate(j)) yields the same value.
func Validate(j models.Jumpstart) (models.Jumpstart, error) {
	v := &validator{}
	out := normalize(j)

	if out.ID <= 0 {
		v.fail("id", "must be a positive integer")
	}
	switch {
	case out.LogicalID == "":
		v.fail("logical_id", "is required")
	case !IsLogicalID(out.LogicalID):
		v.fail("logical_id", fmt.Sprintf("%q is not a kebab-case slug", out.LogicalID))
	}
	if strings.TrimSpace(out.Name) == "" {
		v.fail("name", "is required")
	}
	v.description(out.Name, out.Description)
	if out.DateAdded == "" {
		v.fail("date_added", "is required")
	} else if _, err := util.ParseDate(out.DateAdded); err != nil {
		v.fail("date_added", err.Error())
	}
	v.email(out.OwnerEmail)
	v.tags("workload_tags", out.WorkloadTags, WorkloadTags)
	v.tags("scenario_tags", out.ScenarioTags, ScenarioTags)
	if !slices.Contains(JumpstartTypes, out.Type) {
		v.fail("type", fmt.Sprintf("unknown type %q, allowed values: %s", out.Type, joinTypes()))
	}
	v.source(out.Source)
	for _, t := range out.ItemsInScope {
		if !models.IsKnownItemType(t) {
			v.fail("items_in_scope", fmt.Sprintf("unknown item type %q", t))
		}
	}
	v.entryPoint(out.EntryPoint)
	v.minutes("minutes_to_complete_jumpstart", out.MinutesToComplete)
	v.minutes("minutes_to_deploy", out.MinutesToDeploy)
	if out.DocsURI != "" && !isAbsoluteURL(out.DocsURI, "http", "https") {
		v.fail("jumpstart_docs_uri", "must be an absolute http(s) URL")
	}

	if len(v.errs) > 0 {
		return out, &models.SchemaValidationError{Entry: entryName(j), Fields: v.errs}
	}
	return out, nil
}

// normalize applies defaults without touching anything else.
func normalize(j models.Jumpstart) models.Jumpstart {
	if j.Type == "" {
		j.Type = models.TypeAccelerator
	}
	if j.IncludeInListing == nil {
		listed := true
		j.IncludeInListing = &listed
	}
	return j
}

func entryName(j models.Jumpstart) string {
	if j.LogicalID != "" {
		return j.LogicalID
	}
	if j.ID != 0 {
		return j.NumericID()
	}
	return "[unknown]"
}

type validator struct {
	errs []models.FieldError
}

func (v *validator) fail(field, msg string) {
	v.errs = append(v.errs, models.FieldError{Field: field, Message: msg})
}

func (v *validator) description(name, desc string) {
	if strings.TrimSpace(desc) == "" {
		v.fail("description", "is required")
		return
	}
	if n := utf8.RuneCountInString(desc); n > MaxDescriptionLength {
		v.fail("description", fmt.Sprintf("is %d characters, limit is %d", n, MaxDescriptionLength))
	}
	if name != "" && strings.HasPrefix(strings.ToLower(strings.TrimSpace(desc)), strings.ToLower(strings.TrimSpace(name))) {
		v.fail("description", "must not start with the jumpstart name")
	}
}

func (v *validator) email(addr string) {
	if addr == "" {
		v.fail("owner_email", "is required")
		return
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		v.fail("owner_email", fmt.Sprintf("%q is not a valid email address", addr))
	}
}

func (v *validator) tags(field string, tags, allowed []string) {
	if len(tags) == 0 {
		v.fail(field, "at least one value must be provided")
		return
	}
	var unknown []string
	for _, tag := range tags {
		if !slices.Contains(allowed, tag) {
			unknown = append(unknown, tag)
		}
	}
	if len(unknown) > 0 {
		v.fail(field, fmt.Sprintf("unknown values: %s. Allowed values: %s",
			strings.Join(unknown, ", "), strings.Join(allowed, ", ")))
	}
}

func (v *validator) source(s models.Source) {
	if strings.TrimSpace(s.WorkspacePath) == "" {
		v.fail("source.workspace_path", "is required")
	}
	if s.RepoURL == "" {
		if s.RepoRef != "" {
			v.fail("source.repo_ref", "is only valid together with source.repo_url")
		}
		return
	}
	if !isRepoURL(s.RepoURL) {
		v.fail("source.repo_url", fmt.Sprintf("%q is not a repository URL", s.RepoURL))
	}
	if s.RepoRef == "" {
		v.fail("source.repo_ref", "is required when source.repo_url is set")
	}
}

func (v *validator) entryPoint(ep string) {
	if ep == "" {
		v.fail("entry_point", "is required")
		return
	}
	if models.IsWebURL(ep) {
		if !isAbsoluteURL(ep, "http", "https") {
			v.fail("entry_point", fmt.Sprintf("%q is not a valid URL", ep))
		}
		return
	}
	item, err := models.ParseItem(ep)
	if err != nil {
		v.fail("entry_point", "must be an absolute URL or <item_name>.<item_type>")
		return
	}
	if !models.IsKnownItemType(item.Type) {
		v.fail("entry_point", fmt.Sprintf("unknown item type %q", item.Type))
	}
}

func (v *validator) minutes(field string, m *int) {
	if m != nil && *m < 0 {
		v.fail(field, "must be non-negative")
	}
}

func isAbsoluteURL(s string, schemes ...string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return slices.Contains(schemes, u.Scheme)
}

// isRepoURL accepts http(s), ssh and git URLs plus scp-style
// "git@host:org/repo" remotes.
func isRepoURL(s string) bool {
	if isAbsoluteURL(s, "http", "https", "ssh", "git", "file") {
		return true
	}
	if strings.HasPrefix(s, "file://") {
		return true
	}
	at := strings.Index(s, "@")
	colon := strings.Index(s, ":")
	return at > 0 && colon > at+1 && colon < len(s)-1 && !strings.Contains(s[:colon], "/")
}

func joinTypes() string {
	names := make([]string, len(JumpstartTypes))
	for i, t := range JumpstartTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
