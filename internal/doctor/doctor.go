package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/bio-labs/bio/internal/branding"
	"github.com/bio-labs/bio/internal/project"
	"github.com/bio-labs/bio/internal/scaffold"
)

// MinNodeVersion is the oldest node release scaffolds are expected to run on.
const MinNodeVersion = "8.9.1"

// Status is the outcome of a single check.
type Status int

const (
	OK Status = iota
	Warn
	Miss
	Fail
	Fixed
)

func (s Status) String() string {
	switch s {
	case OK:
		return " OK "
	case Warn:
		return "WARN"
	case Miss:
		return "MISS"
	case Fail:
		return "FAIL"
	case Fixed:
		return "FIX "
	}
	return "????"
}

// Result is one line of the report.
type Result struct {
	Section string
	Status  Status
	Message string
}

// Checker runs the diagnostics for the project at Root.
type Checker struct {
	Root  string
	Store *project.Store
	// Fix repairs what can be repaired without network access.
	Fix bool
	// LookPath defaults to exec.LookPath.
	LookPath func(file string) (string, error)
	// NodeVersion reports the installed node version; defaults to `node --version`.
	NodeVersion func(ctx context.Context) (string, error)
}

func (c *Checker) lookPath(file string) (string, error) {
	if c.LookPath != nil {
		return c.LookPath(file)
	}
	return exec.LookPath(file)
}

func (c *Checker) nodeVersion(ctx context.Context) (string, error) {
	if c.NodeVersion != nil {
		return c.NodeVersion(ctx)
	}
	out, err := exec.CommandContext(ctx, "node", "--version").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Run performs every check and returns the results in report order.
func (c *Checker) Run(ctx context.Context) []Result {
	var results []Result
	results = append(results, c.checkToolchain(ctx)...)
	results = append(results, c.checkProject()...)
	return results
}

func (c *Checker) checkToolchain(ctx context.Context) []Result {
	const section = "Toolchain"
	var out []Result
	for _, tool := range []string{"node", "npm", "npx"} {
		path, err := c.lookPath(tool)
		if err != nil {
			out = append(out, Result{section, Miss, fmt.Sprintf("%s not found on PATH", tool)})
			continue
		}
		out = append(out, Result{section, OK, fmt.Sprintf("%s found at %s", tool, path)})
		if tool == "node" {
			out = append(out, c.checkNodeVersion(ctx))
		}
	}
	return out
}

func (c *Checker) checkNodeVersion(ctx context.Context) Result {
	const section = "Toolchain"
	raw, err := c.nodeVersion(ctx)
	if err != nil {
		return Result{section, Fail, fmt.Sprintf("node --version: %v", err)}
	}
	v, err := semver.NewVersion(strings.TrimPrefix(raw, "v"))
	if err != nil {
		return Result{section, Warn, fmt.Sprintf("unrecognized node version %q", raw)}
	}
	if v.LessThan(semver.MustParse(MinNodeVersion)) {
		return Result{section, Fail, fmt.Sprintf("node %s is older than %s, please upgrade", v, MinNodeVersion)}
	}
	return Result{section, OK, fmt.Sprintf("node %s", v)}
}

func (c *Checker) checkProject() []Result {
	const section = "Project"
	store := c.Store
	if store == nil {
		store = project.NewStore("")
	}

	cfg, err := store.Load(c.Root)
	if errors.Is(err, project.ErrConfigNotFound) {
		return []Result{{section, Miss, fmt.Sprintf("%s not found; run '%s init'", store.Path(c.Root), branding.CLIName())}}
	}
	if err != nil {
		return []Result{{section, Fail, err.Error()}}
	}
	out := []Result{{section, OK, fmt.Sprintf("%s (registry %s)", store.Path(c.Root), cfg.RegistryURL)}}
	out = append(out, c.checkGitignore())

	desc, err := cfg.Selected()
	if err != nil {
		return append(out, Result{section, Fail, fmt.Sprintf("selected scaffold: %v", err)})
	}
	inst, err := scaffold.Locate(c.Root, desc.FullName)
	if err != nil {
		return append(out, Result{section, Miss, fmt.Sprintf("scaffold %s is not installed; run '%s init'", desc.FullName, branding.CLIName())})
	}
	out = append(out, Result{section, OK, fmt.Sprintf("scaffold %s %s (%d tasks)", inst.Name, inst.Version, len(inst.Manifest.Tasks))})
	if inst.Lock == nil {
		out = append(out, Result{section, Warn, fmt.Sprintf("%s has no %s; reinstall to record its origin", inst.Dir, scaffold.LockFileName)})
	}
	return out
}

func (c *Checker) checkGitignore() Result {
	const section = "Project"
	entry := project.GitignoreEntry()
	ignored, err := project.IsIgnored(c.Root, entry)
	if err != nil {
		return Result{section, Fail, err.Error()}
	}
	if ignored {
		return Result{section, OK, fmt.Sprintf(".gitignore lists %s", entry)}
	}
	if !c.Fix {
		return Result{section, Warn, fmt.Sprintf(".gitignore does not list %s", entry)}
	}
	if _, err := project.EnsureIgnored(c.Root, entry); err != nil {
		return Result{section, Fail, err.Error()}
	}
	return Result{section, Fixed, fmt.Sprintf("added %s to .gitignore", entry)}
}

// Report writes results grouped by section and returns the number of
// results that need attention.
func Report(w io.Writer, results []Result) int {
	problems := 0
	section := ""
	for _, r := range results {
		if r.Section != section {
			if section != "" {
				fmt.Fprintln(w)
			}
			section = r.Section
			fmt.Fprintf(w, "%s check:\n", section)
		}
		fmt.Fprintf(w, "  [%s] %s\n", r.Status, r.Message)
		if r.Status == Miss || r.Status == Fail || r.Status == Warn {
			problems++
		}
	}
	return problems
}
