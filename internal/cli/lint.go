package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bio-labs/bio/internal/lint"
)

var (
	lintType  string
	lintWatch bool
	lintFix   bool
	lintForce bool
)

func init() {
	lintCmd.Flags().BoolVarP(&lintWatch, "watch", "w", false, "Re-run on file changes")
	lintCmd.Flags().BoolVarP(&lintFix, "fix", "f", false, "Fix problems where possible")
	lintCmd.PersistentFlags().StringVarP(&lintType, "type", "t", "", "Configuration type for lint init: es6 or es5 (default es6)")
	lintInitCmd.Flags().BoolVar(&lintForce, "force", false, "Overwrite an existing configuration")
	lintCmd.AddCommand(lintInitCmd)
	rootCmd.AddCommand(lintCmd)
}

var lintCmd = &cobra.Command{
	Use:   "lint [target]",
	Short: "Lint the project with ESLint",
	Long: `Run ESLint (through npx) on target, the project root by default.
With --watch the lint re-runs whenever files change.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot()
		if err != nil {
			return err
		}
		opts := lint.Options{Fix: lintFix, Watch: lintWatch}
		if len(args) == 1 {
			opts.Target = args[0]
		}
		out, err := lint.NewRunner(root, processOptions(cmd), slog.Default()).Run(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if out.Interrupted {
			fmt.Fprintf(cmd.ErrOrStderr(), "\nStopped lint after %d run(s).\n", out.Runs)
		}
		return nil
	},
}

var lintInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an ESLint configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot()
		if err != nil {
			return err
		}
		typ, err := lint.ParseType(lintType)
		if err != nil {
			return err
		}
		written, err := lint.Init(root, lint.InitOptions{Type: typ, Force: lintForce})
		if err != nil {
			return err
		}
		for _, path := range written {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = path
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", okStyle.Render("Wrote"), rel, typ)
		}
		return nil
	},
}
