package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bio-labs/bio/internal/branding"
	"github.com/bio-labs/bio/internal/config"
	"github.com/bio-labs/bio/internal/updater"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	verbose    bool
	projectDir string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` installs scaffold templates from an npm registry, runs their tasks
(optionally re-running them on file changes) and helps authoring new scaffolds.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		setupLogging(cmd.ErrOrStderr())

		// Skip banners for commands that manage their own state.
		switch cmd.Name() {
		case "update", "version", "help", "completion":
			return
		}
		if buildVersion == "dev" || os.Getenv(branding.EnvVar("NO_UPDATE_CHECK")) != "" {
			return
		}
		// Non-blocking banner from cached version check.
		u := updater.New(buildVersion, updaterOptions()...)
		u.CheckAndPrintBanner(cmd.ErrOrStderr(), config.Dir())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		printOverview(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", "", "Project root (default: current directory)")
}

// setupLogging installs the default slog logger. --verbose wins over the
// configured log_level.
func setupLogging(w io.Writer) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.Get(config.KeyLogLevel))); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// Execute runs the root command with build info injected via ldflags and
// returns the process exit status.
func Execute(version, commit, date string) int {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// run executes args against the command tree and converts the outcome into
// an exit status. Panics are reported like any other failure.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "Error: unexpected failure: %v\n", r)
			if verbose {
				stderr.Write(debug.Stack())
			}
			code = 1
		}
	}()

	if args == nil {
		// Cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if ctx.Err() != nil {
		// A user interrupt always exits cleanly.
		return 0
	}
	return reportError(err, stdout, stderr)
}
