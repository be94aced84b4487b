package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillet-cli/skillet/pkg/presenter"
	"github.com/skillet-cli/skillet/pkg/skills"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a skill with its resolved body and resources",
	Long: `Show the full content of a skill. {baseDir} placeholders in the body are
resolved to the bundle's absolute directory.

Examples:
  skillet show git-commit
  skillet show acme/toolkit/debugging
  skillet show git-commit --json
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		skillDiscovery, err := skills.NewDiscovery()
		if err != nil {
			return err
		}

		skill, err := skillDiscovery.GetSkill(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		resources, _ := skill.Resources()

		if asJSON {
			return printJSON(map[string]interface{}{
				"name":         skill.Name,
				"description":  skill.Description,
				"version":      skill.Version,
				"triggers":     skill.Triggers,
				"allowedTools": skill.AllowedTools,
				"source":       skill.Source,
				"directory":    skill.Directory,
				"content":      skill.ResolveBaseDir(),
				"resources":    resources,
			})
		}

		presenter.Section(skill.Name)
		fmt.Println(skill.Description)
		fmt.Println()
		fmt.Println("Source:    " + skill.Source)
		fmt.Println("Directory: " + skill.Directory)
		if skill.Version != "" {
			fmt.Println("Version:   " + skill.Version)
		}
		if len(skill.Triggers) > 0 {
			fmt.Println("Triggers:  " + strings.Join(skill.Triggers, ", "))
		}
		if len(skill.AllowedTools) > 0 {
			fmt.Println("Tools:     " + strings.Join(skill.AllowedTools, ", "))
		}

		if resources != nil {
			sections := []struct {
				label string
				files []string
			}{
				{"Scripts", resources.Scripts},
				{"References", resources.References},
				{"Assets", resources.Assets},
			}
			for _, section := range sections {
				if len(section.files) > 0 {
					fmt.Println(section.label + ":")
					for _, file := range section.files {
						fmt.Println("  " + file)
					}
				}
			}
		}

		presenter.Separator()
		fmt.Println(skill.ResolveBaseDir())
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("json", false, "Output JSON")
	rootCmd.AddCommand(showCmd)
}
