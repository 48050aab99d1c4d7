package cli

import (
	"github.com/spf13/cobra"

	"github.com/bio-labs/bio/internal/tasks"
)

func init() {
	rootCmd.AddCommand(mockCmd)
}

var mockCmd = &cobra.Command{
	Use:   "mock [port]",
	Short: "Start the scaffold's local mock server",
	Long: `Run the "mock" task of the project's scaffold. The port (default 7000) is
passed to the task as BIO_MOCK_PORT.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		portArg := ""
		if len(args) == 1 {
			portArg = args[0]
		}
		port, err := tasks.ParsePort(portArg)
		if err != nil {
			return err
		}

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
		_, err = newFacade(cmd, root).Mock(ctx, inst, port)
		return err
	},
}
