package updater

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/bio-labs/bio/internal/branding"
	"github.com/bio-labs/bio/internal/registry"
)

const defaultRegistry = "https://registry.npmjs.org/"

// LatestResolver looks up the newest published version of a package.
// *registry.Client implements it.
type LatestResolver interface {
	Resolve(ctx context.Context, name, constraint string) (*registry.Resolved, error)
}

// CommandRunner runs an external command with output attached.
type CommandRunner func(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error

// Updater provides self-update functionality.
type Updater struct {
	currentVersion string
	packageName    string
	resolver       LatestResolver
	mirror         string
	registryURL    string
	run            CommandRunner
}

// Option configures an Updater.
type Option func(*Updater)

// WithResolver sets the registry used for version checks (useful for testing).
func WithResolver(r LatestResolver) Option {
	return func(u *Updater) {
		u.resolver = r
	}
}

// WithMirror installs from a registry mirror instead of the default registry.
func WithMirror(mirror string) Option {
	return func(u *Updater) {
		u.mirror = mirror
	}
}

// WithCommandRunner replaces the function that runs npm (useful for testing).
func WithCommandRunner(run CommandRunner) Option {
	return func(u *Updater) {
		u.run = run
	}
}

// New creates an Updater with the given current version and options.
func New(currentVersion string, opts ...Option) *Updater {
	u := &Updater{
		currentVersion: currentVersion,
		packageName:    branding.NPMPackage(),
		run:            runCommand,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.registryURL = u.mirror
	if u.registryURL == "" {
		u.registryURL = defaultRegistry
	}
	if u.resolver == nil {
		u.resolver = registry.New(u.registryURL, registry.WithUserAgent(branding.CLIName()+"/"+currentVersion))
	}
	return u
}

// Registry returns the registry the latest version is looked up in.
func (u *Updater) Registry() string {
	return u.registryURL
}

// CurrentVersion returns the version this updater was created with.
func (u *Updater) CurrentVersion() string {
	return u.currentVersion
}

// CheckLatestVersion returns the version behind the package's latest dist-tag.
func (u *Updater) CheckLatestVersion(ctx context.Context) (string, error) {
	r, err := u.resolver.Resolve(ctx, u.packageName, registry.DefaultTag)
	if err != nil {
		return "", fmt.Errorf("checking latest %s: %w", u.packageName, err)
	}
	return r.Version, nil
}

// Check looks up the latest dist-tag and records it against this build.
func (u *Updater) Check(ctx context.Context) (*LatestCheck, error) {
	latest, err := u.CheckLatestVersion(ctx)
	if err != nil {
		return nil, err
	}
	return &LatestCheck{
		Package:   u.packageName,
		Registry:  u.registryURL,
		Current:   u.currentVersion,
		Latest:    latest,
		CheckedAt: time.Now(),
	}, nil
}

// InstallArgs returns the npm arguments Update runs.
func (u *Updater) InstallArgs() []string {
	args := []string{"install", "-g", u.packageName + "@latest"}
	if u.mirror != "" {
		args = append(args, "--registry", u.mirror)
	}
	return args
}

// Update installs the latest published CLI globally through npm.
func (u *Updater) Update(ctx context.Context, stdout, stderr io.Writer) error {
	if err := u.run(ctx, stdout, stderr, "npm", u.InstallArgs()...); err != nil {
		return fmt.Errorf("npm install -g %s@latest: %w", u.packageName, err)
	}
	return nil
}

func runCommand(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	bin, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found on PATH: %w", name, err)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}
