package runtime

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bio-labs/bio/internal/manifest"
)

// DefaultGracePeriod is how long a canceled task may take to exit after
// receiving an interrupt before it is killed.
const DefaultGracePeriod = 5 * time.Second

// Runtime defines the interface for executing a scaffold task.
type Runtime interface {
	// Run executes one invocation of a task and waits for it to exit.
	Run(ctx context.Context, inv Invocation) (*Output, error)
}

// Invocation describes a single task execution.
type Invocation struct {
	// ProjectRoot is the working directory of the task.
	ProjectRoot string
	// ScaffoldDir is the directory of the installed scaffold.
	ScaffoldDir string
	Scaffold    *manifest.Scaffold
	Task        manifest.Task
	// Watch reports whether the task runs under a watch session.
	Watch bool
	// Env holds extra variables layered over the inherited environment.
	Env map[string]string
}

// Output captures the result of a task execution.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Options configures the process handling shared by all runtimes.
type Options struct {
	// Stdout and Stderr default to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	// GracePeriod defaults to DefaultGracePeriod.
	GracePeriod time.Duration
}

// DispatchRuntime returns the appropriate Runtime implementation for the given
// runtime identifier. Returns an error-producing runtime for unknown values.
func DispatchRuntime(runtime string, opts Options) Runtime {
	switch runtime {
	case manifest.RuntimeExec, "":
		return &ExecRuntime{Options: opts}
	case manifest.RuntimeNode:
		return &NodeRuntime{Options: opts}
	default:
		return &unknownRuntime{name: runtime}
	}
}

// unknownRuntime is returned when the runtime identifier is not recognized.
type unknownRuntime struct {
	name string
}

func (u *unknownRuntime) Run(_ context.Context, _ Invocation) (*Output, error) {
	return nil, fmt.Errorf("unknown runtime %q: supported runtimes are %q", u.name, manifest.ValidRuntimes)
}
