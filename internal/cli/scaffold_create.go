package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bio-labs/bio/internal/catalog"
	"github.com/bio-labs/bio/internal/config"
	"github.com/bio-labs/bio/internal/project"
	"github.com/bio-labs/bio/internal/scaffold"
)

var createName string

func init() {
	scaffoldCreateCmd.Flags().StringVar(&createName, "name", "", "Name of the new scaffold (prompted for when omitted)")
	scaffoldCmd.AddCommand(scaffoldCreateCmd)
}

var scaffoldCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Start a new scaffold from the demo scaffold",
	Long: `Install the demo scaffold under a new name into .bio/scaffolds/ so it can
be edited and published as a scaffold of its own.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot()
		if err != nil {
			return err
		}

		name := createName
		if name == "" {
			// Piped input is read without echoing the prompt.
			var promptOut io.Writer = cmd.ErrOrStderr()
			if f, ok := cmd.InOrStdin().(*os.File); ok && !isTerminal(f) {
				promptOut = io.Discard
			}
			name, err = promptLine(cmd.InOrStdin(), promptOut, "Input scaffold name")
			if err != nil {
				return err
			}
		}

		store := newStore()
		cfg, err := store.Load(root)
		if errors.Is(err, project.ErrConfigNotFound) {
			cfg, err = store.Initialize(projectDefaults(""))
		}
		if err != nil {
			return err
		}
		table, err := cfg.Table()
		if err != nil {
			return err
		}
		demo, err := table.Resolve(catalog.DemoShortName)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "\nCreating scaffold %s from %s. You can modify scaffold information after the installation.\n", name, demo.FullName)
		in := newInstaller(cmd, cfg, !config.GetBool(config.KeySkipDeps))
		inst, err := scaffold.CreateFromPrompt(cmd.Context(), in, demo, root, name)
		if err != nil {
			return err
		}
		renderScaffold(cmd.OutOrStdout(), root, catalog.Descriptor{FullName: inst.Name, Version: inst.Version}, inst)
		return nil
	},
}
