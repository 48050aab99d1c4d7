package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrInterrupted is returned when the task context is canceled while the
// task is running.
var ErrInterrupted = errors.New("task interrupted")

// runProcess starts argv in dir and waits for it. Cancelling ctx sends an
// interrupt to the task's process group; whatever is still alive after the
// grace period is killed. Output is streamed to the configured writers and
// captured.
func (o Options) runProcess(ctx context.Context, dir string, env []string, argv []string) (*Output, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	bin, err := lookPath(argv[0], env)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", argv[0], err)
	}

	cmd := exec.CommandContext(ctx, bin, argv[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	startGroup(cmd)
	var canceledAt time.Time
	cmd.Cancel = func() error {
		canceledAt = time.Now()
		return interruptGroup(cmd.Process)
	}
	cmd.WaitDelay = o.gracePeriod()

	stdout := o.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := o.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = io.MultiWriter(stdout, &stdoutBuf)
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	start := time.Now()
	err = cmd.Run()

	output := &Output{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: time.Since(start),
	}

	if ctx.Err() != nil {
		if cmd.Process != nil && !canceledAt.IsZero() {
			reapGroup(cmd.Process, canceledAt.Add(o.gracePeriod()))
		}
		output.ExitCode = exitCode(err)
		return output, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			output.ExitCode = exitErr.ExitCode()
			return output, nil
		}
		return output, fmt.Errorf("executing %s: %w", argv[0], err)
	}

	output.ExitCode = 0
	return output, nil
}

// lookPath resolves name against the PATH of env rather than the PATH of the
// current process, so binaries in node_modules/.bin are found.
func lookPath(name string, env []string) (string, error) {
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return name, nil
	}
	for i := len(env) - 1; i >= 0; i-- {
		path, ok := strings.CutPrefix(env[i], "PATH=")
		if !ok {
			continue
		}
		for _, dir := range filepath.SplitList(path) {
			if dir == "" {
				continue
			}
			if bin, err := exec.LookPath(filepath.Join(dir, name)); err == nil {
				return bin, nil
			}
		}
		break
	}
	return exec.LookPath(name)
}

func (o Options) gracePeriod() time.Duration {
	if o.GracePeriod > 0 {
		return o.GracePeriod
	}
	return DefaultGracePeriod
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}
