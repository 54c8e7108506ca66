// Package render formats catalog listings and install results for the
// terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spachava753/jumpstart/internal/models"
	"github.com/spachava753/jumpstart/internal/registry"
	"github.com/spachava753/jumpstart/internal/util"
)

// Printer writes rendered output to a single writer. Alias is the command
// name shown in remediation snippets.
type Printer struct {
	out   io.Writer
	alias string
}

// New creates a Printer. An empty alias defaults to "jumpstart".
func New(out io.Writer, alias string) *Printer {
	if alias == "" {
		alias = "jumpstart"
	}
	return &Printer{out: out, alias: alias}
}

// ConflictCommands returns the three remediation invocations offered when
// an install stops on conflicts: overwrite, auto-prefix and a custom prefix.
func ConflictCommands(alias, logicalID, workspaceID string) []string {
	base := alias + " install " + logicalID
	if workspaceID != "" {
		base += " --workspace " + workspaceID
	}
	return []string{
		base + " --overwrite",
		base + " --auto-prefix",
		base + " --prefix <your_prefix>",
	}
}

// StatusLine writes the one-line unattended summary of an install.
func (p *Printer) StatusLine(s *models.InstallStatus) {
	switch s.Outcome {
	case models.OutcomeSuccess:
		fmt.Fprintf(p.out, "Installed '%s' to workspace '%s'\n", s.LogicalID, s.WorkspaceID)
	case models.OutcomeDeployedWithoutLink:
		fmt.Fprintf(p.out, "Installed '%s' to workspace '%s' without an entry link: %s\n", s.LogicalID, s.WorkspaceID, errorMessage(s))
	default:
		fmt.Fprintf(p.out, "Failed to install '%s': %s\n", s.LogicalID, errorMessage(s))
	}
}

// Status writes the interactive status card for an install, followed by
// remediation commands when the install stopped on conflicts.
func (p *Printer) Status(s *models.InstallStatus) {
	var (
		icon  string
		card  lipgloss.Style
		title = s.Name
	)
	if title == "" {
		title = s.LogicalID
	}

	switch s.Outcome {
	case models.OutcomeSuccess:
		icon, card = styleSuccess.Render(iconDone+" installed"), styleCardSuccess
	case models.OutcomeDeployedWithoutLink:
		icon, card = styleWarning.Render(iconWarning+" deployed without link"), styleCardConflict
	case models.OutcomeConflict:
		icon, card = styleWarning.Render(iconWarning+" name conflicts detected"), styleCardConflict
	default:
		icon, card = styleFailed.Render(iconFailed+" failed"), styleCardFailed
	}

	lines := []string{styleTitle.Render(title) + "  " + icon}
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, styleLabel.Render(label)+value)
		}
	}
	add("Type", strings.ToLower(string(s.Type)))
	add("Workspace", s.WorkspaceID)
	if s.Prefix != "" {
		add("Prefix", s.Prefix)
	}
	if s.EntryURL != "" {
		add("Open", s.EntryURL)
	} else {
		add("Entry point", s.EntryPoint)
	}
	if s.MinutesToDeploy != nil {
		add("Deploy", util.FormatMinutes(s.MinutesToDeploy))
	}
	if s.MinutesToComplete != nil {
		add("Complete", util.FormatMinutes(s.MinutesToComplete))
	}
	add("Docs", s.DocsURI)
	if s.Error != nil && s.Outcome != models.OutcomeConflict {
		add("Error", styleFailed.Render(s.Error.Message))
		if s.Error.Retryable {
			add("", styleMuted.Render("timed out; the install can be retried"))
		}
	}

	if s.Outcome == models.OutcomeConflict {
		lines = append(lines, "", "The following items already exist in the workspace:")
		for _, c := range s.Conflicts {
			lines = append(lines, "  • "+c)
		}
		lines = append(lines, "", "Resolve by re-running with one of:")
		for _, cmd := range ConflictCommands(p.alias, s.LogicalID, s.WorkspaceID) {
			lines = append(lines, styleCommand.Render(cmd))
		}
	}

	fmt.Fprintln(p.out, card.Render(strings.Join(lines, "\n")))
}

// Logs writes captured install log entries.
func (p *Printer) Logs(entries []models.LogEntry) {
	for _, e := range entries {
		level := fmt.Sprintf("%-5s", e.Level)
		switch e.Level {
		case "ERROR":
			level = styleFailed.Render(level)
		case "WARN":
			level = styleWarning.Render(level)
		default:
			level = styleMuted.Render(level)
		}
		fmt.Fprintf(p.out, "%s %s %s\n", styleMuted.Render(e.Time.Format("15:04:05")), level, e.Message)
	}
}

// Listings writes one row per listing under an optional heading.
func (p *Printer) Listings(heading string, list []registry.Listing) {
	if heading != "" {
		fmt.Fprintf(p.out, "%s %s\n", styleTitle.Render(heading), styleMuted.Render(fmt.Sprintf("(%d)", len(list))))
	}
	for _, l := range list {
		marker := " "
		if l.IsNew {
			marker = styleNew.Render(iconNew)
		}
		kind := ""
		if l.Type != "" {
			kind = styleMuted.Render(" [" + string(l.Type) + "]")
		}
		fmt.Fprintf(p.out, "%s %3d  %-28s %s%s\n", marker, l.ID, l.LogicalID, l.Name, kind)
	}
}

// Groups writes grouped listings with fallback buckets last.
func (p *Printer) Groups(groups map[string][]registry.Listing) {
	for i, key := range registry.GroupKeys(groups) {
		if i > 0 {
			fmt.Fprintln(p.out)
		}
		p.Listings(key, groups[key])
	}
}

// Detail writes every user-facing field of one jumpstart.
func (p *Printer) Detail(j models.Jumpstart) {
	lines := []string{styleTitle.Render(j.Name) + "  " + styleMuted.Render(fmt.Sprintf("#%d %s", j.ID, j.LogicalID))}
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, styleLabel.Render(label)+value)
		}
	}
	add("Type", string(j.Type))
	add("Added", j.DateAdded)
	add("Owner", j.OwnerEmail)
	add("Workloads", strings.Join(j.WorkloadTags, ", "))
	add("Scenarios", strings.Join(j.ScenarioTags, ", "))
	add("Items", strings.Join(j.ItemsInScope, ", "))
	add("Entry point", j.EntryPoint)
	add("Deploy", util.FormatMinutes(j.MinutesToDeploy))
	add("Complete", util.FormatMinutes(j.MinutesToComplete))
	if j.Source.IsRemote() {
		add("Source", j.Source.RepoURL+"@"+j.Source.RepoRef)
	} else {
		add("Source", "bundled")
	}
	add("Docs", j.DocsURI)
	if !j.Listed() {
		add("Listed", "no")
	}
	lines = append(lines, "", j.Description, "", styleCommand.Render(p.alias+" install "+j.LogicalID))

	fmt.Fprintln(p.out, styleCard.Render(strings.Join(lines, "\n")))
}

// Report writes the outcome of a registry load.
func (p *Printer) Report(r registry.Report) {
	for _, s := range r.Skipped {
		fmt.Fprintf(p.out, "%s %s: %v\n", styleFailed.Render(iconFailed), s.File, s.Err)
	}
	if r.OK() {
		fmt.Fprintf(p.out, "%s %d jumpstart(s), no errors\n", styleSuccess.Render(iconDone), r.Loaded)
		return
	}
	fmt.Fprintf(p.out, "%s %d loaded, %d skipped\n", styleWarning.Render(iconWarning), r.Loaded, len(r.Skipped))
}

func errorMessage(s *models.InstallStatus) string {
	if s.Error == nil {
		return string(s.Outcome)
	}
	return s.Error.Message
}
