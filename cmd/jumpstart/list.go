package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spachava753/jumpstart/internal/registry"
	"github.com/spachava753/jumpstart/internal/render"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available jumpstarts",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().Bool("unlisted", false, "include entries hidden from the listing")
	listCmd.Flags().String("workload", "", "only entries with this workload tag")
	listCmd.Flags().String("scenario", "", "only entries with this scenario tag")
	listCmd.Flags().String("type", "", "only entries of this type")
	listCmd.Flags().String("group-by", "", "group output by scenario, workload or type")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	catalog, err := openRegistry(cmd)
	if err != nil {
		return err
	}

	unlisted, _ := cmd.Flags().GetBool("unlisted")
	workload, _ := cmd.Flags().GetString("workload")
	scenario, _ := cmd.Flags().GetString("scenario")
	typ, _ := cmd.Flags().GetString("type")
	groupBy, _ := cmd.Flags().GetString("group-by")

	entries := catalog.ListAll(unlisted)
	if workload != "" {
		entries = registry.FilterByWorkload(entries, workload)
	}
	if scenario != "" {
		entries = registry.FilterByScenario(entries, scenario)
	}
	if typ != "" {
		entries = registry.FilterByType(entries, typ)
	}

	listings := registry.MarkNew(entries, cfg.NewThresholdDays, time.Now())
	registry.SortListings(listings)

	printer := render.New(os.Stdout, cfg.DisplayAlias)
	switch groupBy {
	case "":
		printer.Listings("", listings)
	case "scenario":
		printer.Groups(registry.GroupByScenario(listings))
	case "workload":
		printer.Groups(registry.GroupByWorkload(listings))
	case "type":
		printer.Groups(registry.GroupByType(listings))
	default:
		return fmt.Errorf("unknown --group-by %q: want scenario, workload or type", groupBy)
	}
	return nil
}
