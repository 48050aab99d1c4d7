package doctor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bio-labs/bio/internal/project"
	"github.com/bio-labs/bio/internal/scaffold"
)

func allTools(file string) (string, error) { return "/usr/bin/" + file, nil }

func nodeAt(v string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return v, nil }
}

func find(results []Result, substr string) (Result, bool) {
	for _, r := range results {
		if strings.Contains(r.Message, substr) {
			return r, true
		}
	}
	return Result{}, false
}

func initProject(t *testing.T, root string) {
	t.Helper()
	store := project.NewStore("")
	cfg, err := store.Initialize(project.Defaults{})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Persist(root, cfg); err != nil {
		t.Fatal(err)
	}
}

func installScaffold(t *testing.T, root, name string) {
	t.Helper()
	dir := scaffold.InstallDir(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"package.json":  `{"name": "` + name + `", "version": "1.0.0"}`,
		"scaffold.yaml": "name: " + name + "\nversion: 1.0.0\ntasks:\n  build:\n    run: echo build\n",
	}
	for n, body := range files {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestToolchainChecks(t *testing.T) {
	tests := []struct {
		name     string
		lookPath func(string) (string, error)
		node     string
		want     Status
		message  string
	}{
		{"current node", allTools, "v20.11.1", OK, "node 20.11.1"},
		{"old node", allTools, "v6.17.1", Fail, "older than 8.9.1"},
		{"garbage version", allTools, "nightly", Warn, "unrecognized node version"},
		{"missing npx", func(f string) (string, error) {
			if f == "npx" {
				return "", errors.New("not found")
			}
			return "/usr/bin/" + f, nil
		}, "v20.0.0", Miss, "npx not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Checker{Root: t.TempDir(), LookPath: tt.lookPath, NodeVersion: nodeAt(tt.node)}
			r, ok := find(c.Run(context.Background()), tt.message)
			if !ok {
				t.Fatalf("no result mentioning %q", tt.message)
			}
			if r.Status != tt.want {
				t.Errorf("status = %v, want %v", r.Status, tt.want)
			}
		})
	}
}

func TestMissingProjectConfig(t *testing.T) {
	c := &Checker{Root: t.TempDir(), LookPath: allTools, NodeVersion: nodeAt("v20.0.0")}
	r, ok := find(c.Run(context.Background()), ".biorc not found")
	if !ok || r.Status != Miss {
		t.Errorf("result = %+v, found %v", r, ok)
	}
}

func TestScaffoldNotInstalled(t *testing.T) {
	root := t.TempDir()
	initProject(t, root)

	c := &Checker{Root: root, LookPath: allTools, NodeVersion: nodeAt("v20.0.0")}
	r, ok := find(c.Run(context.Background()), "bio-scaffold-pure is not installed")
	if !ok || r.Status != Miss {
		t.Errorf("result = %+v, found %v", r, ok)
	}
}

func TestHealthyProjectWithFix(t *testing.T) {
	root := t.TempDir()
	initProject(t, root)
	installScaffold(t, root, "bio-scaffold-pure")

	c := &Checker{Root: root, LookPath: allTools, NodeVersion: nodeAt("v20.0.0"), Fix: true}
	results := c.Run(context.Background())

	if r, ok := find(results, "scaffold bio-scaffold-pure 1.0.0 (1 tasks)"); !ok || r.Status != OK {
		t.Errorf("scaffold result = %+v, found %v", r, ok)
	}
	if r, ok := find(results, "added .bio/ to .gitignore"); !ok || r.Status != Fixed {
		t.Errorf("gitignore result = %+v, found %v", r, ok)
	}
	if r, ok := find(results, scaffold.LockFileName); !ok || r.Status != Warn {
		t.Errorf("lock result = %+v, found %v", r, ok)
	}

	var buf bytes.Buffer
	if n := Report(&buf, results); n != 1 {
		t.Errorf("problems = %d, want 1 (missing lock)\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "Toolchain check:") || !strings.Contains(buf.String(), "Project check:") {
		t.Errorf("report missing sections:\n%s", buf.String())
	}
}

func TestGitignoreWithoutFix(t *testing.T) {
	root := t.TempDir()
	initProject(t, root)

	c := &Checker{Root: root, LookPath: allTools, NodeVersion: nodeAt("v20.0.0")}
	if r, ok := find(c.Run(context.Background()), ".gitignore does not list"); !ok || r.Status != Warn {
		t.Errorf("result = %+v, found %v", r, ok)
	}
	if _, err := os.Stat(filepath.Join(root, ".gitignore")); !os.IsNotExist(err) {
		t.Error(".gitignore created without --fix")
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{OK: " OK ", Warn: "WARN", Miss: "MISS", Fail: "FAIL", Fixed: "FIX ", Status(9): "????"} {
		if got := s.String(); got != want {
			t.Errorf("Status(%d) = %q, want %q", s, got, want)
		}
	}
}
