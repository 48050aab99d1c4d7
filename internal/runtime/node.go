package runtime

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// NodeRuntime runs tasks through the scaffold's Node.js entry script.
type NodeRuntime struct {
	Options
}

// Run executes a task by invoking `node <scaffoldDir>/<entry> <task>` from the
// project root. A task with an explicit run line is executed as in the exec
// runtime instead.
func (n *NodeRuntime) Run(ctx context.Context, inv Invocation) (*Output, error) {
	if inv.Task.Run != "" {
		return (&ExecRuntime{Options: n.Options}).Run(ctx, inv)
	}

	// Verify Node.js is available.
	if _, err := exec.LookPath("node"); err != nil {
		return nil, fmt.Errorf("node runtime requires Node.js: %w", err)
	}

	if inv.Scaffold == nil || inv.Scaffold.Entry == "" {
		return nil, fmt.Errorf("node runtime requires an entry script")
	}
	entryPoint := filepath.Join(inv.ScaffoldDir, filepath.FromSlash(inv.Scaffold.Entry))
	if _, err := os.Stat(entryPoint); err != nil {
		return nil, fmt.Errorf("scaffold entry point not found at %s: %w", entryPoint, err)
	}

	return n.runProcess(ctx, inv.ProjectRoot, BuildEnv(inv), []string{"node", entryPoint, inv.Task.Name})
}
