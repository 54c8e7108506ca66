// Package installer sequences a jumpstart install: resolve the workspace,
// materialize the source, check for conflicts, rename, deploy, and compute
// the entry link. Each call produces one terminal status.
package installer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spachava753/jumpstart/internal/conflict"
	"github.com/spachava753/jumpstart/internal/deployer"
	"github.com/spachava753/jumpstart/internal/logcapture"
	"github.com/spachava753/jumpstart/internal/models"
	"github.com/spachava753/jumpstart/internal/source"
	"github.com/spachava753/jumpstart/internal/workspace"
)

// DefaultPortalURL is the base of entry-point links.
const DefaultPortalURL = "https://app.powerbi.com"

// Catalog looks up jumpstarts by logical or numeric id.
type Catalog interface {
	GetByID(id string) (models.Jumpstart, error)
}

// Materializer produces the working directory for one install.
type Materializer interface {
	Materialize(ctx context.Context, j models.Jumpstart, logger *slog.Logger) (*source.Workdir, error)
}

// Installer runs installs. It holds no per-install state and may be used
// concurrently; concurrent installs into the same workspace can still race
// on item names since the workspace is only inspected, never locked.
type Installer struct {
	catalog      Catalog
	materializer Materializer
	inventory    *workspace.Inventory
	portalURL    string
	ambient      string
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures an Installer.
type Option func(*Installer)

// WithPortalURL sets the base URL of entry-point links.
func WithPortalURL(u string) Option {
	return func(in *Installer) { in.portalURL = strings.TrimRight(u, "/") }
}

// WithAmbientWorkspace sets the workspace used when an install names none.
func WithAmbientWorkspace(id string) Option {
	return func(in *Installer) { in.ambient = strings.TrimSpace(id) }
}

// WithLogger sets the process logger that install logs are also sent to.
func WithLogger(l *slog.Logger) Option {
	return func(in *Installer) { in.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(in *Installer) { in.now = now }
}

// New creates an Installer.
func New(catalog Catalog, m Materializer, inv *workspace.Inventory, opts ...Option) *Installer {
	in := &Installer{
		catalog:      catalog,
		materializer: m,
		inventory:    inv,
		portalURL:    DefaultPortalURL,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Install installs the jumpstart named by name. The returned status is never
// nil and carries the outcome, phase timings and captured logs. The error is
// non-nil when the install did not fully succeed; it is one of the typed
// errors in models and can be inspected with errors.As.
func (in *Installer) Install(ctx context.Context, name string, opts models.InstallOptions) (*models.InstallStatus, error) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	buf := logcapture.NewBuffer(level)
	logger := slog.New(logcapture.Fanout(in.logger.Handler(), buf.Handler())).With("jumpstart", name)

	r := &run{
		in:     in,
		opts:   opts,
		logger: logger,
		inv:    in.inventory.WithLogger(logger),
		status: &models.InstallStatus{LogicalID: name, StartedAt: in.now()},
	}

	err := r.execute(ctx, name)

	r.status.EndedAt = in.now()
	r.status.Logs = buf.Entries()
	return r.status, err
}

// run is the state of one install call.
type run struct {
	in     *Installer
	opts   models.InstallOptions
	logger *slog.Logger
	inv    *workspace.Inventory
	status *models.InstallStatus

	jumpstart models.Jumpstart
	workdir   *source.Workdir
	base      []models.Item
	existing  []models.Item
	prefix    string
	handle    deployer.Handle
}

func (r *run) execute(ctx context.Context, name string) error {
	steps := []struct {
		phase models.InstallPhase
		fn    func(context.Context) error
	}{
		{models.PhaseValidating, func(context.Context) error { return r.validate(name) }},
		{models.PhaseMaterializing, r.materialize},
		{models.PhaseInventoryCheck, r.inventoryCheck},
		{models.PhaseConflictResolution, r.resolve},
		{models.PhaseApplyingPrefix, r.applyPrefix},
		{models.PhaseDeploying, r.deploy},
		{models.PhaseEntryURL, r.entryURL},
	}

	defer func() {
		if r.workdir != nil {
			if cerr := r.workdir.Close(); cerr != nil {
				r.logger.Warn("removing working directory", "path", r.workdir.Root, "error", cerr)
			}
		}
	}()

	for _, step := range steps {
		start := r.in.now()
		r.logger.Debug("phase started", "phase", step.phase)
		stepErr := step.fn(ctx)
		r.status.Phases = append(r.status.Phases, models.PhaseTiming{Phase: step.phase, StartedAt: start, EndedAt: r.in.now()})
		if stepErr != nil {
			r.fail(step.phase, stepErr)
			return stepErr
		}
	}

	r.status.Outcome = models.OutcomeSuccess
	r.logger.Info("install complete", "workspace_id", r.status.WorkspaceID, "entry_url", r.status.EntryURL)
	return nil
}

func (r *run) validate(name string) error {
	j, err := r.in.catalog.GetByID(name)
	if err != nil {
		return err
	}
	r.jumpstart = j
	r.status.LogicalID = j.LogicalID
	r.status.Name = j.Name
	r.status.Type = j.Type
	r.status.EntryPoint = j.EntryPoint
	r.status.MinutesToComplete = j.MinutesToComplete
	r.status.MinutesToDeploy = j.MinutesToDeploy
	r.status.DocsURI = j.DocsURI

	wsID, err := resolveWorkspace(r.opts.WorkspaceID, r.in.ambient)
	if err != nil {
		return err
	}
	r.status.WorkspaceID = wsID
	r.logger.Info("installing jumpstart", "logical_id", j.LogicalID, "workspace_id", wsID)
	return nil
}

// resolveWorkspace prefers the explicit id over the ambient one and
// requires a GUID.
func resolveWorkspace(explicit, ambient string) (string, error) {
	id := strings.TrimSpace(explicit)
	if id == "" {
		id = ambient
	}
	if id == "" {
		return "", &models.MissingWorkspaceError{}
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", &models.MissingWorkspaceError{Reason: fmt.Sprintf("%q is not a workspace GUID", id)}
	}
	return parsed.String(), nil
}

func (r *run) materialize(ctx context.Context) error {
	src := r.jumpstart.Source
	if src.IsRemote() {
		r.logger.Info("cloning source", "repo_url", src.RepoURL, "ref", src.RepoRef)
	} else {
		r.logger.Info("copying local bundle", "logical_id", r.jumpstart.LogicalID)
	}

	wd, err := r.in.materializer.Materialize(ctx, r.jumpstart, r.logger)
	if err != nil {
		return err
	}
	r.workdir = wd
	r.logger.Debug("workspace path", "path", wd.ItemsDir)
	return nil
}

func (r *run) inventoryCheck(ctx context.Context) error {
	existing, err := r.inv.ExistingItems(ctx, r.status.WorkspaceID)
	if err != nil {
		return err
	}
	base, err := r.inv.PlannedItems(r.workdir.ItemsDir, r.jumpstart.ItemsInScope)
	if err != nil {
		return err
	}
	r.existing = existing
	r.base = base
	r.logger.Info("inventory collected", "existing", len(existing), "planned", len(base))
	return nil
}

func (r *run) resolve(context.Context) error {
	res := conflict.Resolve(r.logger, r.base, r.existing, conflict.Policy{
		UserPrefix:     r.opts.ItemPrefix,
		AutoPrefix:     r.opts.AutoPrefixOnConflict,
		UpdateExisting: r.opts.UpdateExisting,
		SystemPrefix:   r.jumpstart.SystemPrefix(),
	})

	r.status.Resolution = res.Outcome
	r.status.Conflicts = models.ItemStrings(res.Detected)
	r.prefix = res.FinalPrefix
	r.status.Prefix = res.FinalPrefix

	if res.SystemPrefixPresent {
		r.logger.Warn("workspace already contains items with this jumpstart's prefix", "prefix", r.jumpstart.SystemPrefix())
	}

	switch res.Outcome {
	case models.NoConflict:
		r.logger.Info("no conflicting items")
	case models.ResolvedByUserPrefix:
		r.logger.Info("conflicts avoided by item prefix", "prefix", res.FinalPrefix)
	case models.ResolvedByAutoPrefix:
		r.logger.Info("conflicts resolved via auto-prefix", "prefix", res.FinalPrefix, "conflicts", r.status.Conflicts)
	case models.ResolvedByOverwrite:
		r.logger.Info("conflicting items will be overwritten", "conflicts", r.status.Conflicts)
	case models.Unresolved:
		return &models.ConflictUnresolvedError{Conflicts: r.status.Conflicts}
	}
	return nil
}

func (r *run) applyPrefix(context.Context) error {
	if r.prefix == "" {
		return nil
	}
	var refs []string
	if !r.jumpstart.EntryPointIsURL() {
		if ep, err := models.ParseItem(r.jumpstart.EntryPoint); err == nil {
			refs = append(refs, ep.Name)
		}
	}

	renames, err := r.inv.ApplyPrefixToFiles(r.workdir.ItemsDir, r.prefix, r.jumpstart.ItemsInScope, refs)
	if err != nil {
		return fmt.Errorf("applying item prefix: %w", err)
	}
	r.status.Renamed = renames
	r.logger.Info("item prefix applied", "prefix", r.prefix, "renamed", len(renames))
	return nil
}

func (r *run) deploy(ctx context.Context) error {
	out := logcapture.NewWriter(r.logger, slog.LevelInfo)
	defer out.Flush()

	h, err := r.inv.Deploy(ctx, deployer.PublishRequest{
		WorkspaceID:  r.status.WorkspaceID,
		SourceDir:    r.workdir.ItemsDir,
		ItemTypes:    r.jumpstart.ItemsInScope,
		FeatureFlags: mergeFlags(r.jumpstart.FeatureFlags, r.opts.FeatureFlags),
		Output:       out,
	})
	if err != nil {
		return err
	}
	r.handle = h
	r.status.Deployed = true
	return nil
}

func (r *run) entryURL(ctx context.Context) error {
	ep := r.jumpstart.EntryPoint
	if models.IsWebURL(ep) {
		r.status.EntryURL = ep
		return nil
	}

	item, err := models.ParseItem(ep)
	if err != nil {
		return &models.UnroutableEntryPointError{EntryPoint: ep}
	}
	item = item.WithPrefix(r.prefix)

	segment, ok := models.ItemRoutes[item.Type]
	if !ok {
		return &models.UnroutableEntryPointError{EntryPoint: item.String(), ItemType: item.Type}
	}

	lookupCtx := ctx
	if r.inv.ListTimeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, r.inv.ListTimeout)
		defer cancel()
	}
	id, err := r.inv.Deployer.ResolveItemID(lookupCtx, r.handle, item.Type, item.Name)
	if err != nil {
		if ctxErr := lookupCtx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return &models.WorkspaceQueryError{WorkspaceID: r.status.WorkspaceID, Err: fmt.Errorf("resolving entry point %s: %w", item, err)}
	}

	r.status.EntryURL = fmt.Sprintf("%s/groups/%s/%s/%s?experience=fabric-developer",
		r.in.portalURL, r.status.WorkspaceID, segment, id)
	return nil
}

// fail records err on the status. Deployment that already happened is
// still reported.
func (r *run) fail(phase models.InstallPhase, err error) {
	ie := newInstallError(phase, err)
	r.status.Error = ie

	switch {
	case ie.Type == models.ErrConflictUnresolved:
		r.status.Outcome = models.OutcomeConflict
	case r.status.Deployed:
		r.status.Outcome = models.OutcomeDeployedWithoutLink
	default:
		r.status.Outcome = models.OutcomeFailed
	}

	r.logger.Error("install failed", "phase", phase, "error_type", ie.Type, "error", err, "retryable", ie.Retryable)
}

// mergeFlags concatenates flag lists, dropping blanks and duplicates.
func mergeFlags(lists ...[]string) []string {
	var out []string
	seen := map[string]bool{}
	for _, list := range lists {
		for _, f := range list {
			f = strings.TrimSpace(f)
			if f == "" || seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
