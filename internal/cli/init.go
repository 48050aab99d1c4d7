package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bio-labs/bio/internal/config"
)

var initSkipDeps bool

func init() {
	initCmd.Flags().BoolVar(&initSkipDeps, "skip-deps", false, "Do not run npm install in the installed scaffold")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [scaffoldName]",
	Short: "Initialize the project with a scaffold",
	Long: `Write the project configuration (.biorc) and install a scaffold into .bio/scaffolds/.

scaffoldName is a short name from the scaffold catalog (pure, vue, react, ...)
or a full package name. Without it the project's current scaffold is
reinstalled, or "pure" for a new project.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot()
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		skipDeps := initSkipDeps || config.GetBool(config.KeySkipDeps)
		cfg, inst, err := initProject(cmd.Context(), cmd, root, name, !skipDeps)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, inst.Dir)
		if err != nil {
			rel = inst.Dir
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s@%s into %s\n",
			okStyle.Render("Installed"), inst.Name, inst.Version, rel)
		fmt.Fprintf(cmd.OutOrStdout(), "Project configured in %s (registry %s)\n", newStore().Path(root), cfg.RegistryURL)
		if names := inst.Manifest.TaskNames(); len(names) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Tasks: %v\n", names)
		}
		return nil
	},
}
