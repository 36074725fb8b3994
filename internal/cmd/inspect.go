package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dosanma1/nodrama/internal/release"
	"github.com/dosanma1/nodrama/internal/ui"
)

var inspectBuild string

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive.zip>",
	Short: "List the entries of an archive",
	Long: `List the entries of a build or release archive.

With --build, entries absent from the build archive are marked as injected.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspectBuild, "build", "b", "", "Build archive to compare against")
}

func runInspect(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	names, err := release.Namelist(args[0])
	if err != nil {
		return err
	}

	var fromBuild map[string]bool
	if inspectBuild != "" {
		buildNames, err := release.Namelist(inspectBuild)
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}
		fromBuild = make(map[string]bool, len(buildNames))
		for _, n := range buildNames {
			fromBuild[n] = true
		}
	}

	fmt.Fprintf(out, "%s %s (%d entries)\n", ui.IconPackage, ui.TitleStyle.Render(args[0]), len(names))
	injected := 0
	for _, name := range names {
		if fromBuild != nil && !fromBuild[name] {
			injected++
			fmt.Fprintln(out, ui.InjectedStyle.Render("+ "+name))
			continue
		}
		fmt.Fprintln(out, ui.EntryStyle.Render(name))
	}

	if fromBuild != nil {
		fmt.Fprintln(out, ui.HelpStyle.Render(fmt.Sprintf("%d injected, %d from build", injected, len(names)-injected)))
	}
	return nil
}
