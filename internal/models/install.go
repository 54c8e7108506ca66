package models

import "time"

// InstallOptions are the caller-recognized knobs for a single install.
type InstallOptions struct {
	// WorkspaceID overrides ambient workspace detection.
	WorkspaceID string `json:"workspace_id,omitempty"`
	// ItemPrefix is a user-chosen prefix applied to every deployed item name.
	ItemPrefix string `json:"item_prefix,omitempty"`
	// UpdateExisting accepts conflicts and overwrites items in place.
	UpdateExisting bool `json:"update_existing,omitempty"`
	// AutoPrefixOnConflict resolves conflicts with the jumpstart's system prefix.
	AutoPrefixOnConflict bool `json:"auto_prefix_on_conflict,omitempty"`
	// Unattended suppresses interactive rendering.
	Unattended bool `json:"unattended,omitempty"`
	// FeatureFlags are forwarded to the deployer in addition to the
	// jumpstart's own flags.
	FeatureFlags []string `json:"feature_flags,omitempty"`
	// Debug captures DEBUG records into the install log.
	Debug bool `json:"debug,omitempty"`
}

// ConflictOutcome is the terminal state of conflict resolution.
type ConflictOutcome string

const (
	NoConflict           ConflictOutcome = "no_conflict"
	ResolvedByOverwrite  ConflictOutcome = "resolved_by_overwrite"
	ResolvedByAutoPrefix ConflictOutcome = "resolved_by_auto_prefix"
	ResolvedByUserPrefix ConflictOutcome = "resolved_by_user_prefix"
	Unresolved           ConflictOutcome = "unresolved"
)

// InstallPhase names a step of the install state machine.
type InstallPhase string

const (
	PhaseValidating         InstallPhase = "validating"
	PhaseMaterializing      InstallPhase = "materializing"
	PhaseInventoryCheck     InstallPhase = "inventory_check"
	PhaseConflictResolution InstallPhase = "conflict_resolution"
	PhaseApplyingPrefix     InstallPhase = "applying_prefix"
	PhaseDeploying          InstallPhase = "deploying"
	PhaseEntryURL           InstallPhase = "entry_url"
	PhaseDone               InstallPhase = "done"
)

// InstallOutcome summarizes how an install ended.
type InstallOutcome string

const (
	OutcomeSuccess InstallOutcome = "success"
	// OutcomeDeployedWithoutLink means items were published but the entry
	// URL could not be computed.
	OutcomeDeployedWithoutLink InstallOutcome = "deployed_without_link"
	OutcomeConflict            InstallOutcome = "conflict"
	OutcomeFailed              InstallOutcome = "failed"
)

// LogEntry is one captured log line.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// InstallError is the user-facing failure record on a status.
type InstallError struct {
	Type      ErrorType    `json:"type"`
	Phase     InstallPhase `json:"phase"`
	Message   string       `json:"message"`
	Retryable bool         `json:"retryable"`
}

// PhaseTiming records when one phase ran.
type PhaseTiming struct {
	Phase     InstallPhase `json:"phase"`
	StartedAt time.Time    `json:"started_at"`
	EndedAt   time.Time    `json:"ended_at"`
}

// Seconds returns the phase duration.
func (p PhaseTiming) Seconds() float64 {
	return p.EndedAt.Sub(p.StartedAt).Seconds()
}

// InstallStatus is the terminal result of one install call.
type InstallStatus struct {
	LogicalID   string         `json:"logical_id"`
	Name        string         `json:"name"`
	Type        JumpstartType  `json:"type"`
	WorkspaceID string         `json:"workspace_id"`
	Outcome     InstallOutcome `json:"outcome"`
	Deployed    bool           `json:"deployed"`

	Resolution ConflictOutcome `json:"resolution,omitempty"`
	Prefix     string          `json:"prefix,omitempty"`
	Conflicts  []string        `json:"conflicts,omitempty"`
	Renamed    []Rename        `json:"renamed,omitempty"`

	// EntryPoint is the declared entry point; EntryURL is the resolved link.
	EntryPoint string `json:"entry_point,omitempty"`
	EntryURL   string `json:"entry_url,omitempty"`

	MinutesToComplete *int   `json:"minutes_to_complete_jumpstart,omitempty"`
	MinutesToDeploy   *int   `json:"minutes_to_deploy,omitempty"`
	DocsURI           string `json:"jumpstart_docs_uri,omitempty"`

	Error  *InstallError `json:"error,omitempty"`
	Logs   []LogEntry    `json:"logs"`
	Phases []PhaseTiming `json:"phases"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// Succeeded reports whether the install reached the end of the pipeline
// with a usable entry point.
func (s *InstallStatus) Succeeded() bool {
	return s.Outcome == OutcomeSuccess
}

// Rename records one on-disk item rename applied before deployment.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}
