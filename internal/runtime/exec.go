package runtime

import (
	"context"
	"fmt"
	goruntime "runtime"

	"github.com/mattn/go-shellwords"
)

// ExecRuntime runs a task's command line as a subprocess of the project root.
type ExecRuntime struct {
	Options
}

// Run splits the task's run line into argv and executes it. Lines containing
// pipes, redirects or command separators are handed to the system shell.
// Leading NAME=value words are added to the environment.
func (e *ExecRuntime) Run(ctx context.Context, inv Invocation) (*Output, error) {
	if inv.Task.Run == "" {
		return nil, fmt.Errorf("task %q has no run command", inv.Task.Name)
	}

	envs, argv, err := SplitCommand(inv.Task.Run)
	if err != nil {
		return nil, fmt.Errorf("parsing command of task %q: %w", inv.Task.Name, err)
	}

	env := BuildEnv(inv)
	for _, kv := range envs {
		env = setEnvPair(env, kv)
	}
	return e.runProcess(ctx, inv.ProjectRoot, env, argv)
}

// SplitCommand splits a command line into leading environment assignments
// and argv. When the line needs a shell, argv invokes the platform shell
// with the whole line.
func SplitCommand(line string) (envs []string, argv []string, err error) {
	p := shellwords.NewParser()
	envs, argv, err = p.ParseWithEnvs(line)
	if err != nil {
		return nil, nil, err
	}
	if p.Position >= 0 {
		return nil, shellCommand(line), nil
	}
	if len(argv) == 0 {
		return nil, nil, fmt.Errorf("command line %q has no program", line)
	}
	return envs, argv, nil
}

func shellCommand(line string) []string {
	if goruntime.GOOS == "windows" {
		return []string{"cmd", "/C", line}
	}
	return []string{"sh", "-c", line}
}
