package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillet-cli/skillet/pkg/presenter"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search the catalog by keyword",
	Long: `Search names, descriptions, and triggers in the catalog,
case-insensitively.

Examples:
  skillet search commit
  skillet search "pull request" --json
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		keyword := strings.Join(args, " ")

		store, err := openFreshStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.Search(cmd.Context(), keyword)
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(entries)
		}

		if len(entries) == 0 {
			presenter.Info(fmt.Sprintf("No matches for %q", keyword))
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TYPE\tNAME\tDESCRIPTION")
		for _, entry := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.Type, entry.Name, truncate(entry.Description, 60))
		}
		return tw.Flush()
	},
}

func init() {
	searchCmd.Flags().Bool("json", false, "Output JSON")
	rootCmd.AddCommand(searchCmd)
}
