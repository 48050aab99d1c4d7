package lint

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bio-labs/bio/internal/manifest"
	"github.com/bio-labs/bio/internal/runtime"
	"github.com/bio-labs/bio/internal/scaffold"
	"github.com/bio-labs/bio/internal/tasks"
)

// TaskName is the name lint runs are reported under.
const TaskName = "lint"

// DefaultTarget is linted when no target is given.
const DefaultTarget = "."

// Options selects what a lint run does.
type Options struct {
	Target string
	Fix    bool
	Watch  bool
}

// Runner runs ESLint in a project.
type Runner struct {
	Root  string
	Tasks *tasks.Facade
}

// NewRunner returns a Runner for the project at root.
func NewRunner(root string, process runtime.Options, log *slog.Logger) *Runner {
	return &Runner{Root: root, Tasks: tasks.New(root, process, log)}
}

// Command returns the command line a lint run executes.
func Command(opts Options) string {
	target := opts.Target
	if target == "" {
		target = DefaultTarget
	}
	parts := []string{"npx", "eslint", quote(target)}
	if opts.Fix {
		parts = append(parts, "--fix")
	}
	return strings.Join(parts, " ")
}

// Run lints the target once, or until ctx is canceled when watching. ESLint
// reporting problems surfaces as *tasks.TaskFailedError.
func (r *Runner) Run(ctx context.Context, opts Options) (*tasks.Outcome, error) {
	target := opts.Target
	if target == "" {
		target = DefaultTarget
	}
	inst := &scaffold.Installed{
		Dir:  r.Root,
		Name: TaskName,
		Manifest: &manifest.Scaffold{
			Name:    TaskName,
			Runtime: manifest.RuntimeExec,
			Tasks: map[string]manifest.TaskSpec{
				TaskName: {Run: Command(opts), Watch: []string{target}},
			},
		},
	}
	return r.Tasks.Run(ctx, inst, TaskName, tasks.Options{Watch: opts.Watch})
}

// quote single-quotes s when it holds characters the command splitter
// would otherwise interpret.
func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>(){}*?[]#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
