package scaffold

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/bio-labs/bio/internal/project"
)

// Hook runs before a scaffold is fetched, with the install directory as
// argument.
type Hook interface {
	Run(ctx context.Context, dir string) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, dir string) error

// Run calls f.
func (f HookFunc) Run(ctx context.Context, dir string) error { return f(ctx, dir) }

// configHook executes a declarative project.Hook.
type configHook struct {
	spec   project.Hook
	stdout io.Writer
	stderr io.Writer
}

// HookFromConfig returns a Hook that writes the configured files into the
// install directory and then runs the configured command there. A nil spec
// yields a nil Hook.
func HookFromConfig(spec *project.Hook, stdout, stderr io.Writer) Hook {
	if spec == nil {
		return nil
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &configHook{spec: *spec, stdout: stdout, stderr: stderr}
}

func (h *configHook) Run(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	names := make([]string, 0, len(h.spec.Files))
	for name := range h.spec.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !filepath.IsLocal(name) {
			return fmt.Errorf("hook file %q is outside the install directory", name)
		}
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(h.spec.Files[name]), 0644); err != nil {
			return fmt.Errorf("writing hook file %s: %w", name, err)
		}
	}

	if len(h.spec.Command) == 0 {
		return nil
	}
	cmd := exec.CommandContext(ctx, h.spec.Command[0], h.spec.Command[1:]...)
	cmd.Dir = dir
	cmd.Stdout = h.stdout
	cmd.Stderr = h.stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pre-install command %q: %w", h.spec.Command, err)
	}
	return nil
}
