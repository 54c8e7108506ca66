package installer

import (
	"context"
	"errors"

	"github.com/spachava753/jumpstart/internal/models"
)

// newInstallError converts a phase error into the status error record.
func newInstallError(phase models.InstallPhase, err error) *models.InstallError {
	return &models.InstallError{
		Type:      classify(err),
		Phase:     phase,
		Message:   err.Error(),
		Retryable: errors.Is(err, context.DeadlineExceeded),
	}
}

func classify(err error) models.ErrorType {
	var (
		configErr   *models.ConfigLoadError
		schemaErr   *models.SchemaValidationError
		notFound    *models.NotFoundError
		missingWS   *models.MissingWorkspaceError
		fetchErr    *models.SourceFetchError
		queryErr    *models.WorkspaceQueryError
		conflictErr *models.ConflictUnresolvedError
		deployErr   *models.DeployError
		unroutable  *models.UnroutableEntryPointError
	)
	switch {
	case errors.As(err, &conflictErr):
		return models.ErrConflictUnresolved
	case errors.As(err, &unroutable):
		return models.ErrUnroutableEntryPoint
	case errors.As(err, &missingWS):
		return models.ErrMissingWorkspace
	case errors.As(err, &notFound):
		return models.ErrJumpstartNotFound
	case errors.As(err, &fetchErr):
		return models.ErrSourceFetchFailed
	case errors.As(err, &queryErr):
		return models.ErrWorkspaceQueryFailed
	case errors.As(err, &deployErr):
		return models.ErrDeployFailed
	case errors.As(err, &schemaErr):
		return models.ErrSchemaValidationFailed
	case errors.As(err, &configErr):
		return models.ErrConfigLoadFailed
	default:
		return models.ErrInternalError
	}
}
