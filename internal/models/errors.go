package models

import (
	"fmt"
	"strings"
)

// ErrorType identifies the category of error that occurred.
type ErrorType string

const (
	// Registry
	ErrConfigLoadFailed       ErrorType = "config_load_failed"
	ErrSchemaValidationFailed ErrorType = "schema_validation_failed"
	ErrJumpstartNotFound      ErrorType = "jumpstart_not_found"

	// Validating
	ErrMissingWorkspace ErrorType = "missing_workspace"

	// Materializing
	ErrSourceFetchFailed ErrorType = "source_fetch_failed"

	// Inventory and conflict resolution
	ErrWorkspaceQueryFailed ErrorType = "workspace_query_failed"
	ErrConflictUnresolved   ErrorType = "conflict_unresolved"

	// Deploying
	ErrDeployFailed ErrorType = "deploy_failed"

	// Entry URL
	ErrUnroutableEntryPoint ErrorType = "unroutable_entry_point"

	// Catch-all
	ErrInternalError ErrorType = "internal_error"
)

// ConfigLoadError reports that the registry root could not be read.
type ConfigLoadError struct {
	Path string
	Err  error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("loading registry from %s: %v", e.Path, e.Err)
}

func (e *ConfigLoadError) Unwrap() error { return e.Err }

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string
	Message string
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Message
}

// SchemaValidationError lists every field that failed validation for one
// registry entry.
type SchemaValidationError struct {
	Entry  string
	Fields []FieldError
}

func (e *SchemaValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("jumpstart %q failed validation: %s", e.Entry, strings.Join(parts, "; "))
}

// NotFoundError reports an unknown jumpstart identifier.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown jumpstart %q", e.ID)
}

// MissingWorkspaceError reports that no target workspace could be resolved.
type MissingWorkspaceError struct {
	// Reason is set when a workspace id was found but rejected.
	Reason string
}

func (e *MissingWorkspaceError) Error() string {
	if e.Reason != "" {
		return "invalid workspace id: " + e.Reason
	}
	return "workspace id must be provided when no ambient workspace is available"
}

// SourceFetchError reports a failed clone or local bundle copy.
type SourceFetchError struct {
	Source string
	Ref    string
	Err    error
}

func (e *SourceFetchError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("fetching %s at ref %q: %v", e.Source, e.Ref, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.Source, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// WorkspaceQueryError reports a failed workspace item enumeration.
type WorkspaceQueryError struct {
	WorkspaceID string
	Err         error
}

func (e *WorkspaceQueryError) Error() string {
	return fmt.Sprintf("listing items in workspace %s: %v", e.WorkspaceID, e.Err)
}

func (e *WorkspaceQueryError) Unwrap() error { return e.Err }

// ConflictUnresolvedError carries the planned identities that already exist
// in the target workspace.
type ConflictUnresolvedError struct {
	Conflicts []string
}

func (e *ConflictUnresolvedError) Error() string {
	return "conflicting items detected: " + strings.Join(e.Conflicts, ", ")
}

// UnroutableEntryPointError reports an entry point whose item type has no
// portal route. Deployment has already happened when this is returned.
type UnroutableEntryPointError struct {
	EntryPoint string
	ItemType   string
}

func (e *UnroutableEntryPointError) Error() string {
	return fmt.Sprintf("unsupported entry point item type %q (entry point %q)", e.ItemType, e.EntryPoint)
}

// DeployError wraps a failure raised by the deployer.
type DeployError struct {
	WorkspaceID string
	Err         error
}

func (e *DeployError) Error() string {
	return fmt.Sprintf("deploying to workspace %s: %v", e.WorkspaceID, e.Err)
}

func (e *DeployError) Unwrap() error { return e.Err }
