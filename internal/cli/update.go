package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bio-labs/bio/internal/branding"
	"github.com/bio-labs/bio/internal/config"
	"github.com/bio-labs/bio/internal/updater"
)

var (
	updateCheck bool
	updateForce bool
)

func init() {
	updateCmd.Flags().BoolVar(&updateCheck, "check", false, "Only check for updates, don't install")
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "Reinstall even if already on the latest version")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"self-update"},
	Short:   "Update " + branding.CLIName() + " to the latest version",
	Long: `Install the latest published ` + branding.NPMPackage() + ` globally with npm.

  ` + branding.CLIName() + ` update            # update to latest
  ` + branding.CLIName() + ` update --check    # check only`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := updater.New(buildVersion, updaterOptions()...)
		return runUpdate(cmd, u)
	},
}

func runUpdate(cmd *cobra.Command, u *updater.Updater) error {
	fmt.Fprintln(cmd.ErrOrStderr(), "Checking for updates...")
	check, err := u.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}
	latest := check.Latest
	// A dev build cannot be compared, so it always takes the published one.
	available := check.UpdateAvailable() || buildVersion == "dev"

	if updateCheck {
		if available {
			fmt.Fprintf(cmd.OutOrStdout(), "Update available: %s -> %s\n", buildVersion, latest)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "You are on the latest version (%s)\n", buildVersion)
		}
		return nil
	}
	if !available && !updateForce {
		fmt.Fprintf(cmd.OutOrStdout(), "You are on the latest version (%s)\n", buildVersion)
		return nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Installing %s@%s...\n", branding.NPMPackage(), latest)
	if err := u.Update(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
		return err
	}

	// The next run is the new build; record the check against it so the
	// banner goes quiet.
	check.Current = latest
	_ = check.Save(config.Dir())

	fmt.Fprintf(cmd.OutOrStdout(), "Successfully updated to %s\n", latest)
	return nil
}
