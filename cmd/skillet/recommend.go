package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillet-cli/skillet/pkg/presenter"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <task description>",
	Short: "Recommend skills for a task",
	Long: `Score catalog skills against a task description and return the best
matches. A skill scores one point per distinct task keyword found in its
name, description, or triggers.

Examples:
  skillet recommend "review this pull request for security issues"
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		task := strings.Join(args, " ")

		store, err := openFreshStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		recommendations, err := store.Recommend(cmd.Context(), task)
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(recommendations)
		}

		if len(recommendations) == 0 {
			presenter.Info("No skills match this task")
			return nil
		}

		presenter.Section("Recommended skills")
		for _, rec := range recommendations {
			fmt.Printf("%-40s %d keyword match(es)\n", rec.Entry.Name, rec.Score)
			if rec.Entry.Description != "" {
				fmt.Printf("  %s\n", truncate(rec.Entry.Description, 76))
			}
		}
		return nil
	},
}

func init() {
	recommendCmd.Flags().Bool("json", false, "Output JSON")
	rootCmd.AddCommand(recommendCmd)
}
