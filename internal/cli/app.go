package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bio-labs/bio/internal/branding"
	"github.com/bio-labs/bio/internal/config"
	"github.com/bio-labs/bio/internal/project"
	"github.com/bio-labs/bio/internal/registry"
	"github.com/bio-labs/bio/internal/runtime"
	"github.com/bio-labs/bio/internal/scaffold"
	"github.com/bio-labs/bio/internal/tasks"
	"github.com/bio-labs/bio/internal/updater"
)

// projectRoot returns --dir or the working directory.
func projectRoot() (string, error) {
	if projectDir != "" {
		return filepath.Abs(projectDir)
	}
	return os.Getwd()
}

func newStore() *project.Store {
	return project.NewStore(branding.ConfigFile())
}

func userAgent() string {
	return branding.CLIName() + "/" + buildVersion
}

// projectDefaults layers the user configuration under an explicit scaffold
// choice.
func projectDefaults(scaffoldName string) project.Defaults {
	return project.Defaults{
		RegistryURL: config.Get(config.KeyRegistry),
		Scaffold:    scaffoldName,
	}
}

func newInstaller(cmd *cobra.Command, cfg *project.Config, installDeps bool) *scaffold.Installer {
	client := registry.New(cfg.RegistryURL,
		registry.WithUserAgent(userAgent()),
		registry.WithLogger(slog.Default()),
	)
	return &scaffold.Installer{
		Fetcher:     client,
		Hook:        scaffold.HookFromConfig(cfg.Scaffold.PreInstall, cmd.ErrOrStderr(), cmd.ErrOrStderr()),
		Logger:      slog.Default(),
		InstallDeps: installDeps,
		Stdout:      cmd.ErrOrStderr(),
	}
}

func processOptions(cmd *cobra.Command) runtime.Options {
	return runtime.Options{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
}

func newFacade(cmd *cobra.Command, root string) *tasks.Facade {
	return tasks.New(root, processOptions(cmd), slog.Default())
}

func updaterOptions() []updater.Option {
	var opts []updater.Option
	if mirror := config.Get(config.KeyMirror); mirror != "" {
		opts = append(opts, updater.WithMirror(mirror))
	}
	return opts
}

// initProject writes the project configuration for scaffoldName (or the
// previously selected scaffold) and installs that scaffold. An existing
// configuration keeps its registry, catalog and hook.
func initProject(ctx context.Context, cmd *cobra.Command, root, scaffoldName string, installDeps bool) (*project.Config, *scaffold.Installed, error) {
	store := newStore()
	defaults := projectDefaults(scaffoldName)

	existing, err := store.Load(root)
	switch {
	case err == nil:
		if defaults.RegistryURL == "" {
			defaults.RegistryURL = existing.RegistryURL
		}
		defaults.List = existing.Scaffold.List
		defaults.PreInstall = existing.Scaffold.PreInstall
		if scaffoldName == "" {
			defaults.Scaffold = existing.Scaffold.Name
			defaults.Version = existing.Scaffold.Version
		}
	case !errors.Is(err, project.ErrConfigNotFound):
		return nil, nil, err
	}

	cfg, err := store.Initialize(defaults)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Persist(root, cfg); err != nil {
		return nil, nil, err
	}
	if _, err := project.EnsureIgnored(root, project.GitignoreEntry()); err != nil {
		slog.Warn("could not update .gitignore", "err", err)
	}

	inst, err := installSelected(ctx, cmd, root, cfg, installDeps)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, inst, nil
}

func installSelected(ctx context.Context, cmd *cobra.Command, root string, cfg *project.Config, installDeps bool) (*scaffold.Installed, error) {
	desc, err := cfg.Selected()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Installing %s...\n", desc)
	return newInstaller(cmd, cfg, installDeps).Install(ctx, desc, scaffold.InstallDir(root, desc.FullName))
}

// loadProject returns the project configuration, running an implicit init
// first when the project has none.
func loadProject(ctx context.Context, cmd *cobra.Command, root string) (*project.Config, error) {
	cfg, err := newStore().Load(root)
	if errors.Is(err, project.ErrConfigNotFound) {
		fmt.Fprintf(cmd.ErrOrStderr(), "No %s found, initializing project with the default scaffold.\n", branding.ConfigFile())
		cfg, _, err = initProject(ctx, cmd, root, "", !config.GetBool(config.KeySkipDeps))
	}
	return cfg, err
}

// selectedScaffold locates the scaffold the project selects, installing it
// when it is missing.
func selectedScaffold(ctx context.Context, cmd *cobra.Command, root string, cfg *project.Config) (*scaffold.Installed, error) {
	desc, err := cfg.Selected()
	if err != nil {
		return nil, err
	}
	inst, err := scaffold.Locate(root, desc.FullName)
	if errors.Is(err, scaffold.ErrNotInstalled) {
		return installSelected(ctx, cmd, root, cfg, !config.GetBool(config.KeySkipDeps))
	}
	return inst, err
}
