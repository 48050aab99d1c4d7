//go:build integration

package integration_test

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const pureManifest = `# traditional project
name: bio-scaffold-pure
version: 1.2.3
description: traditional project
tasks:
  build:
    run: echo built
  fail:
    run: sh -c "exit 4"
  dev:
    run: echo tick
    watch: [src]
  serve:
    run: sh -c 'echo tick; exec sleep 30'
`

func purePackages() map[string]map[string]string {
	return map[string]map[string]string{
		"bio-scaffold-pure": {
			"package.json":  `{"name": "bio-scaffold-pure", "version": "1.2.3"}`,
			"scaffold.yaml": pureManifest,
		},
		"bio-scaffold-demo": {
			"package.json":  `{"name": "bio-scaffold-demo", "version": "0.1.0"}`,
			"scaffold.yaml": "name: bio-scaffold-demo\nversion: 0.1.0\ntasks:\n  build:\n    run: echo demo\n",
		},
	}
}

func TestFullFlowInitAndRun(t *testing.T) {
	env := setupTestEnv(t, purePackages())

	res := env.run(t, "init", "pure")
	if res.Code != 0 {
		t.Fatalf("init exit = %d\nstderr: %s", res.Code, res.Stderr)
	}

	installed := filepath.Join(env.ProjectDir, ".bio", "scaffolds", "bio-scaffold-pure")
	assertFileExists(t, filepath.Join(env.ProjectDir, ".biorc"))
	assertFileContains(t, filepath.Join(env.ProjectDir, ".gitignore"), ".bio/")
	assertFileContains(t, filepath.Join(installed, "scaffold.yaml"), "# traditional project")
	assertFileContains(t, filepath.Join(installed, ".bio-install.json"), `"version": "1.2.3"`)

	res = env.run(t, "run", "build", "--no-watch")
	if res.Code != 0 {
		t.Fatalf("run exit = %d\nstderr: %s", res.Code, res.Stderr)
	}
	if !strings.Contains(res.Stdout, "built") {
		t.Errorf("stdout = %q, want task output", res.Stdout)
	}
}

func TestFullFlowImplicitInit(t *testing.T) {
	env := setupTestEnv(t, purePackages())

	res := env.run(t, "run", "build", "-n")
	if res.Code != 0 {
		t.Fatalf("run exit = %d\nstderr: %s", res.Code, res.Stderr)
	}
	if !strings.Contains(res.Stderr, "No .biorc found") {
		t.Errorf("stderr = %q, want implicit init notice", res.Stderr)
	}
	assertFileExists(t, filepath.Join(env.ProjectDir, ".biorc"))
}

func TestFullFlowTaskExitCode(t *testing.T) {
	env := setupTestEnv(t, purePackages())
	if res := env.run(t, "init"); res.Code != 0 {
		t.Fatalf("init exit = %d\nstderr: %s", res.Code, res.Stderr)
	}

	res := env.run(t, "run", "fail", "-n")
	if res.Code != 4 {
		t.Errorf("exit = %d, want the task's code 4", res.Code)
	}
}

func TestFullFlowUnknownScaffold(t *testing.T) {
	env := setupTestEnv(t, purePackages())

	res := env.run(t, "scaffold", "show", "angular")
	if res.Code != 2 {
		t.Errorf("exit = %d, want 2", res.Code)
	}
	if !strings.Contains(res.Stdout, "scaffold not found") {
		t.Errorf("stdout = %q", res.Stdout)
	}

	res = env.run(t, "init", "angular")
	if res.Code != 2 {
		t.Errorf("init exit = %d, want 2", res.Code)
	}
	assertFileNotExists(t, filepath.Join(env.ProjectDir, ".biorc"))
}

func TestFullFlowCreateAndList(t *testing.T) {
	env := setupTestEnv(t, purePackages())

	res := env.run(t, "scaffold", "create", "--name", "my-site")
	if res.Code != 0 {
		t.Fatalf("create exit = %d\nstderr: %s", res.Code, res.Stderr)
	}
	created := filepath.Join(env.ProjectDir, ".bio", "scaffolds", "my-site")
	assertFileContains(t, filepath.Join(created, "package.json"), `"my-site"`)
	assertFileContains(t, filepath.Join(created, "scaffold.yaml"), "name: my-site")

	res = env.run(t, "scaffold", "list", "--json")
	if res.Code != 0 {
		t.Fatalf("list exit = %d\nstderr: %s", res.Code, res.Stderr)
	}
	var entries []struct {
		Name      string `json:"name"`
		Installed string `json:"installed"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &entries); err != nil {
		t.Fatalf("decoding list output: %v\n%s", err, res.Stdout)
	}
	found := false
	for _, e := range entries {
		if e.Name == "my-site" && e.Installed != "" {
			found = true
		}
	}
	if !found {
		t.Errorf("my-site not listed as installed: %+v", entries)
	}
}

func TestFullFlowWatchRerunsOnChange(t *testing.T) {
	env := setupTestEnv(t, purePackages())
	if res := env.run(t, "init"); res.Code != 0 {
		t.Fatalf("init exit = %d\nstderr: %s", res.Code, res.Stderr)
	}
	writeFile(t, filepath.Join(env.ProjectDir, "src", "index.js"), "1")

	cmd, ticks := startWithTicks(t, env, "run", "dev")
	waitTick(t, ticks)
	// The first run has finished once its output is seen, so the change
	// lands while the session is idle.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(env.ProjectDir, "src", "index.js"), "2")
	waitTick(t, ticks)

	interruptAndWait(t, cmd)
}

func TestFullFlowInterruptStopsRunningTask(t *testing.T) {
	env := setupTestEnv(t, purePackages())
	if res := env.run(t, "init"); res.Code != 0 {
		t.Fatalf("init exit = %d\nstderr: %s", res.Code, res.Stderr)
	}

	cmd, ticks := startWithTicks(t, env, "run", "serve", "-n")
	waitTick(t, ticks)
	interruptAndWait(t, cmd)
}

// startWithTicks starts bio and reports every "tick" line it prints.
func startWithTicks(t *testing.T, env *testEnv, args ...string) (*exec.Cmd, <-chan struct{}) {
	t.Helper()
	cmd := env.command(args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("starting bio: %v", err)
	}
	t.Cleanup(func() { cmd.Process.Kill() })

	ticks := make(chan struct{}, 16)
	go func() {
		sc := bufio.NewScanner(stdout)
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) == "tick" {
				select {
				case ticks <- struct{}{}:
				default:
				}
			}
		}
	}()
	return cmd, ticks
}

func waitTick(t *testing.T, ticks <-chan struct{}) {
	t.Helper()
	select {
	case <-ticks:
	case <-time.After(10 * time.Second):
		t.Fatal("task did not run")
	}
}

// interruptAndWait sends an interrupt to bio and expects a clean exit.
func interruptAndWait(t *testing.T, cmd *exec.Cmd) {
	t.Helper()
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		t.Fatalf("interrupting bio: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			t.Errorf("interrupted bio exited with %d, want 0", exitErr.ExitCode())
		} else if err != nil {
			t.Errorf("waiting for bio: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("bio did not stop after interrupt")
	}
}
