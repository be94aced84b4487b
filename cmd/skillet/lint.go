package main

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillet-cli/skillet/pkg/lint"
	"github.com/skillet-cli/skillet/pkg/presenter"
)

var lintCmd = &cobra.Command{
	Use:   "lint [dir]",
	Short: "Audit skill bundles",
	Long: `Audit skill bundles for frontmatter, naming, and resource problems.
Each bundle receives a 0-10 score. The exit code is 2 if any bundle has
errors, 1 if only warnings were found, and 0 when everything is clean.

Without an argument, ./.skillet/skills is audited.

Examples:
  skillet lint
  skillet lint path/to/skills
  skillet lint --json
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		root := filepath.Join(".skillet", "skills")
		if len(args) == 1 {
			root = args[0]
		}

		summary, err := lint.AuditTree(cmd.Context(), root)
		if err != nil {
			return err
		}

		if asJSON {
			if err := printJSON(summary); err != nil {
				return err
			}
			if code := summary.ExitCode(); code != 0 {
				return exitCodeError{code: code}
			}
			return nil
		}

		for _, report := range summary.Reports {
			if len(report.Issues) == 0 {
				presenter.Success(fmt.Sprintf("%s: %d/10", report.Name, report.Score))
				continue
			}

			presenter.Section(fmt.Sprintf("%s: %d/10", report.Name, report.Score))
			for _, issue := range report.Issues {
				switch issue.Severity {
				case lint.SeverityError:
					presenter.Error(errors.New(issue.Message), "")
				case lint.SeverityWarning:
					presenter.Warning(issue.Message)
				default:
					presenter.Info(issue.Message)
				}
			}
		}

		presenter.Separator()
		presenter.Info(fmt.Sprintf("%d bundle(s), %d error(s), %d warning(s)",
			len(summary.Reports), summary.Errors, summary.Warnings))

		if code := summary.ExitCode(); code != 0 {
			return exitCodeError{code: code}
		}
		return nil
	},
}

func init() {
	lintCmd.Flags().Bool("json", false, "Output JSON")
	rootCmd.AddCommand(lintCmd)
}
