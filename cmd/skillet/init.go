package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skillet-cli/skillet/pkg/presenter"
	"github.com/skillet-cli/skillet/pkg/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Scaffold a new skill bundle",
	Long: `Create a new skill bundle with a templated SKILL.md. The name must be
kebab-case. Existing directories are never overwritten.

Examples:
  skillet init pdf-tools
  skillet init pdf-tools --dir ~/.skillet/skills
  skillet init pdf-tools --scripts --references
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		withScripts, _ := cmd.Flags().GetBool("scripts")
		withReferences, _ := cmd.Flags().GetBool("references")
		withAssets, _ := cmd.Flags().GetBool("assets")

		skillDir, err := scaffold.Create(dir, args[0], scaffold.Options{
			Scripts:    withScripts,
			References: withReferences,
			Assets:     withAssets,
		})
		if err != nil {
			return err
		}

		presenter.Success(fmt.Sprintf("Created skill at %s", skillDir))
		presenter.Info("Edit SKILL.md to describe when the skill applies")
		return nil
	},
}

func init() {
	initCmd.Flags().String("dir", filepath.Join(".skillet", "skills"), "Parent directory for the new skill")
	initCmd.Flags().Bool("scripts", false, "Create a scripts/ skeleton with an example script")
	initCmd.Flags().Bool("references", false, "Create an empty references/ directory")
	initCmd.Flags().Bool("assets", false, "Create an empty assets/ directory")

	rootCmd.AddCommand(initCmd)
}
