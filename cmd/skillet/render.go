package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillet-cli/skillet/pkg/commands"
	"github.com/skillet-cli/skillet/pkg/plugins"
	"github.com/skillet-cli/skillet/pkg/presenter"
)

var renderCmd = &cobra.Command{
	Use:   "render <command>",
	Short: "Render a command template",
	Long: `Render a command markdown template to stdout. Arguments supplied with
--arg are available as template variables; the bash template function embeds
command output.

Examples:
  skillet render standup
  skillet render release-notes --arg version=1.2.0
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		argPairs, _ := cmd.Flags().GetStringArray("arg")
		templateArgs, err := parseKeyValues(argPairs)
		if err != nil {
			return err
		}

		discovery, err := plugins.NewDiscovery()
		if err != nil {
			return err
		}

		rendered, err := commands.NewRenderer(discovery).Render(cmd.Context(), &commands.RenderConfig{
			CommandName: args[0],
			Arguments:   templateArgs,
		})
		if err != nil {
			return err
		}

		fmt.Print(rendered)
		return nil
	},
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List available command templates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		discovery, err := plugins.NewDiscovery()
		if err != nil {
			return err
		}

		items, err := commands.NewRenderer(discovery).List(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(items)
		}

		if len(items) == 0 {
			presenter.Info("No commands found")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSOURCE\tDESCRIPTION")
		for _, item := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", item.Name, item.Source, truncate(item.Description, 60))
		}
		return tw.Flush()
	},
}

func init() {
	renderCmd.Flags().StringArray("arg", nil, "Template argument as key=value (repeatable)")
	commandsCmd.Flags().Bool("json", false, "Output JSON")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(commandsCmd)
}
