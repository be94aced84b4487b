package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillet-cli/skillet/pkg/plugins"
	"github.com/skillet-cli/skillet/pkg/presenter"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Manage plugin bundles (skills, commands, and agents)",
	Long:  `Install, list, and remove plugin bundles from GitHub repositories.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var pluginAddCmd = &cobra.Command{
	Use:   "add <repo>[@ref]...",
	Short: "Install plugin bundles from GitHub repositories",
	Long: `Install plugin bundles from one or more GitHub repositories.

The repository should contain:
  - skills/<name>/SKILL.md for skills
  - commands/<name>.md for command templates
  - agents/<name>.md for agents

Examples:
  skillet plugin add user/repo              # Install everything from repo
  skillet plugin add user/repo1 user/repo2  # Install from multiple repos
  skillet plugin add user/repo@v1.0.0       # Install from a specific tag
  skillet plugin add user/repo -g           # Install globally
  skillet plugin add user/repo --force      # Overwrite an existing install
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")
		force, _ := cmd.Flags().GetBool("force")

		installer, err := plugins.NewInstaller(
			plugins.WithGlobal(global),
			plugins.WithForce(force),
		)
		if err != nil {
			return err
		}

		for _, arg := range args {
			repo, ref := parseRepoRef(arg)
			presenter.Info(fmt.Sprintf("Installing plugin from %s...", repo))

			result, err := installer.Install(cmd.Context(), repo, ref)
			if err != nil {
				return errors.Wrapf(err, "failed to install from %s", repo)
			}

			if len(result.Skills) > 0 {
				presenter.Success(fmt.Sprintf("Installed skills: %s", strings.Join(result.Skills, ", ")))
			}
			if len(result.Commands) > 0 {
				presenter.Success(fmt.Sprintf("Installed commands: %s", strings.Join(result.Commands, ", ")))
			}
			if len(result.Agents) > 0 {
				presenter.Success(fmt.Sprintf("Installed agents: %s", strings.Join(result.Agents, ", ")))
			}

			location := "local (.skillet/plugins/)"
			if global {
				location = "global (~/.skillet/plugins/)"
			}
			presenter.Info(fmt.Sprintf("Plugin '%s' installed to %s", result.PluginName, location))
		}

		return nil
	},
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all installed plugins",
	Long: `List all installed plugins with their skills, commands, and agents.

Shows both local (.skillet/plugins/) and global (~/.skillet/plugins/) plugins.
`,
	RunE: func(_ *cobra.Command, _ []string) error {
		discovery, err := plugins.NewDiscovery()
		if err != nil {
			return err
		}

		localPlugins, err := discovery.ListInstalledPlugins(false)
		if err != nil {
			return errors.Wrap(err, "failed to list local plugins")
		}

		globalPlugins, err := discovery.ListInstalledPlugins(true)
		if err != nil {
			return errors.Wrap(err, "failed to list global plugins")
		}

		if len(localPlugins) == 0 && len(globalPlugins) == 0 {
			presenter.Info("No plugins installed")
			return nil
		}

		type locatedPlugin struct {
			plugin   plugins.InstalledPlugin
			location string
		}

		var allPlugins []locatedPlugin
		for _, p := range localPlugins {
			allPlugins = append(allPlugins, locatedPlugin{p, "local"})
		}
		for _, p := range globalPlugins {
			allPlugins = append(allPlugins, locatedPlugin{p, "global"})
		}

		sort.Slice(allPlugins, func(i, j int) bool {
			return allPlugins[i].plugin.Name < allPlugins[j].plugin.Name
		})

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tLOCATION\tSKILLS\tCOMMANDS\tAGENTS")
		for _, entry := range allPlugins {
			p := entry.plugin
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				plugins.PluginNameToUserFacing(p.Name), entry.location,
				summarizeNames(p.Skills), summarizeNames(p.Commands), summarizeNames(p.Agents))
		}
		return tw.Flush()
	},
}

// summarizeNames shows short lists verbatim and long lists as a count
func summarizeNames(names []string) string {
	if len(names) == 0 {
		return "0"
	}
	if len(names) <= 3 {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%d", len(names))
}

var pluginRemoveCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Remove one or more plugins",
	Long: `Remove one or more installed plugins by name. Both org/repo and org@repo
forms are accepted.

Examples:
  skillet plugin remove acme/toolkit
  skillet plugin remove acme/toolkit -g
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")

		remover, err := plugins.NewRemover(plugins.WithGlobal(global))
		if err != nil {
			return err
		}

		var removed []string
		for _, name := range args {
			if err := remover.Remove(name); err != nil {
				return errors.Wrapf(err, "failed to remove %s", name)
			}
			removed = append(removed, name)
		}

		presenter.Success(fmt.Sprintf("Removed plugins: %s", strings.Join(removed, ", ")))
		return nil
	},
}

func parseRepoRef(arg string) (repo, ref string) {
	if idx := strings.LastIndex(arg, "@"); idx != -1 {
		return arg[:idx], arg[idx+1:]
	}
	return arg, ""
}

func init() {
	pluginAddCmd.Flags().BoolP("global", "g", false, "Install to global directory (~/.skillet/)")
	pluginAddCmd.Flags().Bool("force", false, "Overwrite existing plugins")

	pluginRemoveCmd.Flags().BoolP("global", "g", false, "Remove from global directory")

	pluginCmd.AddCommand(pluginAddCmd)
	pluginCmd.AddCommand(pluginListCmd)
	pluginCmd.AddCommand(pluginRemoveCmd)

	rootCmd.AddCommand(pluginCmd)
}
