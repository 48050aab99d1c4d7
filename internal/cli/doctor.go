package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bio-labs/bio/internal/doctor"
	"github.com/bio-labs/bio/internal/manifest"
)

var (
	doctorFix     bool
	checkManifest string
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair what can be repaired locally")
	doctorCmd.Flags().StringVar(&checkManifest, "check-manifest", "", "Validate a scaffold.yaml at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the project and its toolchain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkManifest != "" {
			return runManifestCheck(cmd, checkManifest)
		}

		root, err := projectRoot()
		if err != nil {
			return err
		}
		c := &doctor.Checker{Root: root, Store: newStore(), Fix: doctorFix}
		if n := doctor.Report(cmd.OutOrStdout(), c.Run(cmd.Context())); n > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d issue(s) found.\n", n)
		}
		return nil
	},
}

func runManifestCheck(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Manifest validation: %s\n", path)

	result, err := manifest.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return fmt.Errorf("manifest validation failed: %w", err)
	}

	if result.Valid {
		m, err := manifest.ParseFile(path)
		if err != nil {
			fmt.Fprintf(out, "  [ OK ] Valid manifest\n")
			return nil
		}
		fmt.Fprintf(out, "  [ OK ] Valid %s scaffold: %s (%d tasks)\n", m.Runtime, m.Name, len(m.Tasks))
		return nil
	}

	fmt.Fprintf(out, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
	for _, issue := range result.Issues {
		if issue.Path != "" {
			fmt.Fprintf(out, "    - %s: %s\n", issue.Path, issue.Message)
		} else {
			fmt.Fprintf(out, "    - %s\n", issue.Message)
		}
	}
	return fmt.Errorf("manifest %s has %d validation issue(s)", path, len(result.Issues))
}
