package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillet-cli/skillet/pkg/presenter"
	"github.com/skillet-cli/skillet/pkg/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Long: `Show statistics across all discovered skills, commands, agents, and
installed plugins.

Examples:
  skillet stats
  skillet stats --json
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		skillDiscovery, pluginDiscovery, err := newDiscoveries()
		if err != nil {
			return err
		}

		report, err := stats.Collect(cmd.Context(), skillDiscovery, pluginDiscovery)
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(report)
		}

		presenter.Section("Corpus statistics")

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Skills\t%d\n", report.Skills)
		fmt.Fprintf(tw, "Commands\t%d\n", report.Commands)
		fmt.Fprintf(tw, "Agents\t%d\n", report.Agents)
		fmt.Fprintf(tw, "Plugins installed\t%d\n", report.PluginsInstalled)
		for _, source := range sortedKeys(report.BySource) {
			fmt.Fprintf(tw, "From %s\t%d\n", source, report.BySource[source])
		}
		if report.Skills > 0 {
			fmt.Fprintf(tw, "Body words (min/max/mean)\t%d / %d / %.0f\n",
				report.WordCounts.Min, report.WordCounts.Max, report.WordCounts.Mean)
		}
		for _, kind := range sortedKeys(report.ScriptsByKind) {
			fmt.Fprintf(tw, "Scripts (%s)\t%d\n", kind, report.ScriptsByKind[kind])
		}
		tw.Flush()

		if len(report.MissingTriggers) > 0 {
			presenter.Warning(fmt.Sprintf("Skills without triggers: %s",
				strings.Join(report.MissingTriggers, ", ")))
		}
		return nil
	},
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	statsCmd.Flags().Bool("json", false, "Output JSON")
	rootCmd.AddCommand(statsCmd)
}
