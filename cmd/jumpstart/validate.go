package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spachava753/jumpstart/internal/registry"
	"github.com/spachava753/jumpstart/internal/render"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every registry entry against the schema",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	_, report, err := registry.Load(cmd.Context(), cfg.RegistryDir, registry.LoadOptions{Strict: cfg.StrictValidation})
	if err != nil {
		return err
	}

	render.New(os.Stderr, cfg.DisplayAlias).Report(report)
	if !report.OK() {
		return fmt.Errorf("%d registry entries failed validation", len(report.Skipped))
	}
	return nil
}
