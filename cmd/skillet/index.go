package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillet-cli/skillet/pkg/index"
	"github.com/skillet-cli/skillet/pkg/presenter"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the catalog index",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-scan discovery directories and rebuild the catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		skillDiscovery, pluginDiscovery, err := newDiscoveries()
		if err != nil {
			return err
		}

		entries, err := index.CollectEntries(cmd.Context(), skillDiscovery, pluginDiscovery)
		if err != nil {
			return err
		}

		store, err := index.OpenDefault(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.Rebuild(cmd.Context(), entries)
		if err != nil {
			return err
		}

		presenter.Success(fmt.Sprintf("Catalog rebuilt: %d entries in %s",
			run.EntryCount, run.CompletedAt.Sub(run.StartedAt)))
		return nil
	},
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog entry counts and staleness",
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := index.OpenDefault(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		status, err := store.Status(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(status)
		}

		presenter.Section("Catalog status")
		presenter.Info(fmt.Sprintf("Entries: %d (%d skills, %d commands, %d agents)",
			status.TotalCount,
			status.EntryCounts[index.EntryTypeSkill],
			status.EntryCounts[index.EntryTypeCommand],
			status.EntryCounts[index.EntryTypeAgent]))
		if status.StaleCount > 0 {
			presenter.Warning(fmt.Sprintf("%d entries changed on disk since last rebuild", status.StaleCount))
		}
		if status.LastRun != nil {
			presenter.Info(fmt.Sprintf("Last rebuild: %s", status.LastRun.CompletedAt.Local()))
		} else {
			presenter.Info("Catalog has never been rebuilt")
		}
		return nil
	},
}

func init() {
	indexStatusCmd.Flags().Bool("json", false, "Output JSON")

	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}
