package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spachava753/jumpstart/internal/render"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one jumpstart by logical or numeric id",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().Bool("yaml", false, "print the validated entry as YAML")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	catalog, err := openRegistry(cmd)
	if err != nil {
		return err
	}
	j, err := catalog.GetByID(args[0])
	if err != nil {
		return err
	}

	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(j)
	}

	render.New(os.Stdout, cfg.DisplayAlias).Detail(j)
	return nil
}
