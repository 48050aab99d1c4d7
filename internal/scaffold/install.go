package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bio-labs/bio/internal/catalog"
	"github.com/bio-labs/bio/internal/manifest"
	"github.com/bio-labs/bio/internal/registry"
)

// Fetcher resolves and downloads scaffold packages. *registry.Client
// implements it.
type Fetcher interface {
	Resolve(ctx context.Context, name, constraint string) (*registry.Resolved, error)
	Fetch(ctx context.Context, r *registry.Resolved, destDir string) error
}

// Installer materializes scaffolds into a project.
type Installer struct {
	Fetcher Fetcher
	// Hook runs before anything is fetched. Nil skips it.
	Hook   Hook
	Logger *slog.Logger
	// InstallDeps runs npm install in the scaffold after it is in place.
	InstallDeps bool
	// Stdout receives the output of npm install.
	Stdout io.Writer

	now func() time.Time
}

func (in *Installer) logger() *slog.Logger {
	if in.Logger != nil {
		return in.Logger
	}
	return slog.Default()
}

func (in *Installer) clock() time.Time {
	if in.now != nil {
		return in.now()
	}
	return time.Now().UTC()
}

// Install runs the pre-install hook in targetDir, then resolves, downloads
// and unpacks desc into targetDir and records the result.
//
// The package is unpacked into a staging directory beside targetDir and only
// moved into place once complete. At that point the entries of a previous
// install in targetDir are removed, so a reinstall leaves no stale files.
// When a later step fails, everything that was downloaded is removed again
// and the previous version is not restored; files produced by the hook stay.
func (in *Installer) Install(ctx context.Context, desc catalog.Descriptor, targetDir string) (_ *Installed, err error) {
	log := in.logger().With("scaffold", desc.FullName)
	fail := func(stage Stage, cause error) error {
		return &InstallError{Stage: stage, Scaffold: desc.FullName, Err: cause}
	}

	if in.Hook != nil {
		log.Debug("running pre-install hook", "dir", targetDir)
		if err := in.Hook.Run(ctx, targetDir); err != nil {
			return nil, fail(StageHook, err)
		}
	}

	if in.Fetcher == nil {
		return nil, fail(StageResolve, errors.New("no registry configured"))
	}
	resolved, err := in.Fetcher.Resolve(ctx, desc.FullName, desc.Version)
	if err != nil {
		return nil, fail(StageResolve, err)
	}
	log.Debug("resolved scaffold", "version", resolved.Version, "constraint", desc.Version)

	parent := filepath.Dir(targetDir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, fail(StageFetch, err)
	}
	staging, err := os.MkdirTemp(parent, ".staging-"+filepath.Base(targetDir)+"-")
	if err != nil {
		return nil, fail(StageFetch, fmt.Errorf("creating staging directory: %w", err))
	}
	defer os.RemoveAll(staging)

	if err := in.Fetcher.Fetch(ctx, resolved, staging); err != nil {
		return nil, fail(StageFetch, err)
	}

	if prev, err := ReadLock(targetDir); err == nil {
		log.Debug("replacing previous install", "version", prev.Version, "entries", len(prev.Entries))
		removeEntries(targetDir, append(prev.Entries, LockFileName))
	}

	moved, err := moveEntries(staging, targetDir)
	defer func() {
		if err != nil {
			removeEntries(targetDir, moved)
		}
	}()
	if err != nil {
		return nil, fail(StageFetch, err)
	}

	lock := LockRecord{
		Name:        resolved.Name,
		Version:     resolved.Version,
		Constraint:  desc.Version,
		Tarball:     resolved.Dist.Tarball,
		Integrity:   resolved.Dist.Integrity,
		InstalledAt: in.clock(),
		Entries:     slices.Clone(moved),
	}
	if err := writeLock(targetDir, lock); err != nil {
		return nil, fail(StageRecord, err)
	}
	moved = append(moved, LockFileName)

	m, err := manifest.Load(targetDir)
	if err != nil {
		return nil, fail(StageRecord, err)
	}

	inst := &Installed{
		Dir:      targetDir,
		Name:     m.Name,
		Version:  resolved.Version,
		Resolved: resolved,
		Manifest: m,
		Lock:     &lock,
	}
	if inst.Name == "" {
		inst.Name = resolved.Name
	}

	if in.InstallDeps {
		warning, err := InstallNodeDeps(ctx, targetDir, in.Stdout)
		if err != nil {
			return nil, fail(StageDeps, err)
		}
		if warning != "" {
			log.Warn(warning)
		}
	}

	log.Info("installed scaffold", "version", resolved.Version, "dir", targetDir)
	return inst, nil
}
