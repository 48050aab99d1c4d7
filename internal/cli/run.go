package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bio-labs/bio/internal/tasks"
)

var runNoWatch bool

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Run a scaffold task",
	Long: `Run a task declared by the project's scaffold.

By default the task re-runs whenever watched files change, until interrupted.
Use --no-watch to run it once. A project without .biorc is initialized with
the default scaffold first.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runNoWatch, "no-watch", "n", false, "Run the task once instead of watching for changes")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	root, err := projectRoot()
	if err != nil {
		return err
	}
	cfg, err := loadProject(ctx, cmd, root)
	if err != nil {
		return err
	}
	inst, err := selectedScaffold(ctx, cmd, root, cfg)
	if err != nil {
		return err
	}

	out, err := newFacade(cmd, root).Run(ctx, inst, args[0], tasks.Options{Watch: !runNoWatch})
	if err != nil {
		return err
	}
	if out.Interrupted {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nStopped %s after %d run(s).\n", out.Task, out.Runs)
	}
	return nil
}
