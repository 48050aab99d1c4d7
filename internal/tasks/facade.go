package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bio-labs/bio/internal/manifest"
	"github.com/bio-labs/bio/internal/runtime"
	"github.com/bio-labs/bio/internal/scaffold"
	"github.com/bio-labs/bio/internal/watch"
)

var (
	// ErrTaskNotFound is returned when the scaffold declares no such task.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNoScaffold is returned when no installed scaffold was given.
	ErrNoScaffold = errors.New("no installed scaffold")
)

// TaskFailedError reports a task that exited with a non-zero status.
type TaskFailedError struct {
	Task     string
	ExitCode int
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("task %q exited with code %d", e.Task, e.ExitCode)
}

// Options selects how a task is run.
type Options struct {
	Watch bool
	// Env is added to the task environment.
	Env map[string]string
}

// Outcome summarizes a finished Run.
type Outcome struct {
	Task string
	// ExitCode is the exit status of the last completed run.
	ExitCode int
	Runs     int
	// Interrupted is set when the run ended because the context was canceled.
	Interrupted bool
	Duration    time.Duration
}

// SourceFactory creates the change source of a watch session.
type SourceFactory func(root string, paths, ignore []string, log *slog.Logger) (watch.Source, error)

// Facade runs scaffold tasks in a project.
type Facade struct {
	// Root is the project root tasks run in.
	Root string
	// Process configures the runtimes selected from the scaffold manifest.
	Process runtime.Options
	// Runtime, when set, is used instead of the manifest's runtime.
	Runtime runtime.Runtime
	// NewSource defaults to watch.NewFSSource.
	NewSource SourceFactory
	// Debounce is passed to watch sessions.
	Debounce time.Duration
	Logger   *slog.Logger
}

// New returns a Facade for the project at root.
func New(root string, process runtime.Options, log *slog.Logger) *Facade {
	return &Facade{Root: root, Process: process, Logger: log}
}

func (f *Facade) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// Run executes taskName from inst. Without Watch the task runs once; a
// non-zero exit is returned as *TaskFailedError alongside the Outcome. With
// Watch the task re-runs on changes until ctx is canceled, which ends the
// session cleanly. An unknown task fails with ErrTaskNotFound before any
// process or watcher is started.
func (f *Facade) Run(ctx context.Context, inst *scaffold.Installed, taskName string, opts Options) (*Outcome, error) {
	if inst == nil || inst.Manifest == nil {
		return nil, ErrNoScaffold
	}
	task, ok := inst.Manifest.Task(taskName)
	if !ok {
		return nil, fmt.Errorf("%w: %q in scaffold %s (available: %s)",
			ErrTaskNotFound, taskName, inst.Name, strings.Join(inst.Manifest.TaskNames(), ", "))
	}

	inv := runtime.Invocation{
		ProjectRoot: f.Root,
		ScaffoldDir: inst.Dir,
		Scaffold:    inst.Manifest,
		Task:        task,
		Watch:       opts.Watch,
		Env:         opts.Env,
	}
	rt := f.Runtime
	if rt == nil {
		rt = runtime.DispatchRuntime(inst.Manifest.Runtime, f.Process)
	}

	if !opts.Watch {
		return f.runOnce(ctx, rt, inv)
	}
	return f.runWatched(ctx, rt, inv, inst.Manifest)
}

func (f *Facade) runOnce(ctx context.Context, rt runtime.Runtime, inv runtime.Invocation) (*Outcome, error) {
	log := f.logger().With("task", inv.Task.Name)
	log.Debug("running task", "dir", inv.ProjectRoot)

	out, err := rt.Run(ctx, inv)
	outcome := &Outcome{Task: inv.Task.Name, Runs: 1}
	if out != nil {
		outcome.ExitCode = out.ExitCode
		outcome.Duration = out.Duration
	}
	if errors.Is(err, runtime.ErrInterrupted) {
		outcome.Interrupted = true
		return outcome, nil
	}
	if err != nil {
		return nil, err
	}
	if outcome.ExitCode != 0 {
		return outcome, &TaskFailedError{Task: inv.Task.Name, ExitCode: outcome.ExitCode}
	}
	log.Debug("task finished", "duration", outcome.Duration)
	return outcome, nil
}

func (f *Facade) runWatched(ctx context.Context, rt runtime.Runtime, inv runtime.Invocation, m *manifest.Scaffold) (*Outcome, error) {
	log := f.logger().With("task", inv.Task.Name)
	newSource := f.NewSource
	if newSource == nil {
		newSource = func(root string, paths, ignore []string, log *slog.Logger) (watch.Source, error) {
			return watch.NewFSSource(root, paths, ignore, log)
		}
	}

	ignore := append(watch.DefaultIgnore(), m.Watch.Ignore...)
	src, err := newSource(f.Root, m.WatchPaths(inv.Task), ignore, log)
	if err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}

	outcome := &Outcome{Task: inv.Task.Name}
	start := time.Now()
	run := func(ctx context.Context) error {
		out, err := rt.Run(ctx, inv)
		if errors.Is(err, runtime.ErrInterrupted) {
			return ctx.Err()
		}
		if err != nil {
			return err
		}
		outcome.ExitCode = out.ExitCode
		if out.ExitCode != 0 {
			return &TaskFailedError{Task: inv.Task.Name, ExitCode: out.ExitCode}
		}
		return nil
	}

	session := watch.NewSession(src, run, watch.Options{
		Root:     f.Root,
		Ignore:   m.Watch.Ignore,
		Debounce: f.Debounce,
		Logger:   log,
	})
	log.Info("watching for changes", "paths", m.WatchPaths(inv.Task))

	stats, err := session.Run(ctx)
	if err != nil {
		return nil, err
	}
	outcome.Runs = stats.Runs
	outcome.Interrupted = true
	outcome.Duration = time.Since(start)
	return outcome, nil
}
