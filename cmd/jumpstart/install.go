package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spachava753/jumpstart/internal/deployer/fabric"
	"github.com/spachava753/jumpstart/internal/installer"
	"github.com/spachava753/jumpstart/internal/models"
	"github.com/spachava753/jumpstart/internal/render"
	"github.com/spachava753/jumpstart/internal/source"
	"github.com/spachava753/jumpstart/internal/workspace"
)

var installCmd = &cobra.Command{
	Use:   "install <id>",
	Short: "Install a jumpstart into a workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstall,
}

func init() {
	f := installCmd.Flags()
	f.String("workspace", "", "target workspace id (defaults to workspace_id from config)")
	f.String("prefix", "", "prefix applied to every deployed item name")
	f.Bool("overwrite", false, "overwrite conflicting items in place")
	f.Bool("update-existing", false, "alias for --overwrite")
	f.Bool("auto-prefix", false, "resolve conflicts with the jumpstart's own prefix")
	f.StringArray("feature-flag", nil, "extra publisher feature flag (repeatable)")
	f.Bool("unattended", false, "print a single summary line instead of the status card")
	f.Bool("debug", false, "capture debug entries in the install log")
	f.Bool("logs", false, "print the captured install log")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	catalog, err := openRegistry(cmd)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	var opts models.InstallOptions
	opts.WorkspaceID, _ = f.GetString("workspace")
	opts.ItemPrefix, _ = f.GetString("prefix")
	overwrite, _ := f.GetBool("overwrite")
	updateExisting, _ := f.GetBool("update-existing")
	opts.UpdateExisting = overwrite || updateExisting
	opts.AutoPrefixOnConflict, _ = f.GetBool("auto-prefix")
	opts.FeatureFlags, _ = f.GetStringArray("feature-flag")
	opts.Unattended, _ = f.GetBool("unattended")
	opts.Debug, _ = f.GetBool("debug")
	showLogs, _ := f.GetBool("logs")

	var publishEnv []string
	if cfg.Fabric.Token != "" {
		publishEnv = append(publishEnv, "FABRIC_TOKEN="+cfg.Fabric.Token)
	}
	client := fabric.NewClient(cfg.Fabric.APIURL, cfg.Fabric.Token,
		fabric.WithPageSize(cfg.Fabric.PageSize),
		fabric.WithPublisher(&fabric.CommandPublisher{Argv: cfg.Fabric.PublishCommand, Env: publishEnv}),
	)

	inst := installer.New(
		catalog,
		&source.Materializer{
			BundlesDir:   cfg.BundlesDir,
			TempDir:      cfg.TempDir,
			Cloner:       &source.GitCloner{},
			CloneTimeout: cfg.Timeouts.Clone,
		},
		&workspace.Inventory{
			Deployer:      client,
			ListTimeout:   cfg.Timeouts.List,
			DeployTimeout: cfg.Timeouts.Deploy,
		},
		installer.WithPortalURL(cfg.Fabric.PortalURL),
		installer.WithAmbientWorkspace(cfg.WorkspaceID),
		installer.WithLogger(slog.Default()),
	)

	status, err := inst.Install(cmd.Context(), args[0], opts)

	printer := render.New(os.Stdout, cfg.DisplayAlias)
	if opts.Unattended {
		printer.StatusLine(status)
	} else {
		printer.Status(status)
	}
	if showLogs {
		printer.Logs(status.Logs)
	}
	return err
}
