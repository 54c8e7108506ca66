package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spachava753/jumpstart/internal/config"
	"github.com/spachava753/jumpstart/internal/models"
	"github.com/spachava753/jumpstart/internal/registry"
)

// cfg is populated before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:               "jumpstart",
	Short:             "Browse and install Fabric jumpstarts",
	Long:              "jumpstart lists the catalog of Fabric jumpstarts and installs them into a workspace, resolving item name conflicts on the way.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .jumpstart.yaml)")
	flags.BoolP("verbose", "v", false, "debug logging")
	flags.String("registry", "", "registry directory")
	flags.Bool("strict", false, "fail on the first invalid registry entry")

	_ = viper.BindPFlag("registry_dir", flags.Lookup("registry"))
	_ = viper.BindPFlag("strict_validation", flags.Lookup("strict"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".jumpstart")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}
	config.SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
			os.Exit(1)
		}
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := parseLevel(cfg.LogLevel)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// openRegistry loads the catalog configured for this process.
func openRegistry(cmd *cobra.Command) (*registry.Catalog, error) {
	reg := registry.New(cfg.RegistryDir, registry.LoadOptions{Strict: cfg.StrictValidation})
	catalog, err := reg.Catalog(cmd.Context())
	if err != nil {
		return nil, err
	}
	if report := reg.Report(); !report.OK() {
		slog.Warn("registry entries skipped", "count", len(report.Skipped), "registry_dir", cfg.RegistryDir)
	}
	return catalog, nil
}

// exitCode maps an error to the process exit status. Unresolved conflicts
// get their own code so scripts can retry with a resolution flag.
func exitCode(err error) int {
	fmt.Fprintln(os.Stderr, "error:", err)
	var conflictErr *models.ConflictUnresolvedError
	if errors.As(err, &conflictErr) {
		return 2
	}
	return 1
}
