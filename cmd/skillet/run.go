package main

import (
	"github.com/spf13/cobra"

	"github.com/skillet-cli/skillet/pkg/runner"
	"github.com/skillet-cli/skillet/pkg/skills"
)

var runCmd = &cobra.Command{
	Use:   "run <skill> [script] [args...]",
	Short: "Run a script bundled with a skill",
	Long: `Run a script from a skill's scripts/ directory. When the skill bundles a
single script the script argument may be omitted. Remaining arguments are
passed to the script, which runs with the skill directory as its working
directory and SKILLET_SKILL_DIR exported. The script's exit code becomes
skillet's exit code.

Examples:
  skillet run pdf-tools                      # Sole script
  skillet run pdf-tools extract report.pdf   # Named script with arguments
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		skillDiscovery, err := skills.NewDiscovery()
		if err != nil {
			return err
		}

		skill, err := skillDiscovery.GetSkill(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		scriptName := ""
		var scriptArgs []string
		if len(args) > 1 {
			scriptName = args[1]
			scriptArgs = args[2:]
		}

		code, err := runner.Run(cmd.Context(), skill, scriptName, scriptArgs)
		if err != nil {
			return err
		}
		if code != 0 {
			return exitCodeError{code: code}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
