package scaffold

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// excludedNames are staged entries never moved into an install directory.
var excludedNames = map[string]bool{
	"node_modules": true,
	".git":         true,
	".DS_Store":    true,
}

// moveEntries renames every top-level entry of src into dst, replacing
// existing entries of the same name. It returns the names moved so a failed
// install can take them back out.
func moveEntries(src, dst string) ([]string, error) {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, err
	}

	var moved []string
	for _, entry := range entries {
		if excludedNames[entry.Name()] {
			continue
		}
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if err := os.RemoveAll(to); err != nil {
			return moved, fmt.Errorf("replacing %s: %w", to, err)
		}
		if err := os.Rename(from, to); err != nil {
			return moved, fmt.Errorf("moving %s into place: %w", entry.Name(), err)
		}
		moved = append(moved, entry.Name())
	}
	return moved, nil
}

func removeEntries(dir string, names []string) {
	for _, name := range names {
		os.RemoveAll(filepath.Join(dir, name))
	}
}

// InstallNodeDeps runs npm install in dir if a package.json exists.
// It checks for Node.js availability first. If Node is not available, it returns
// a warning message instead of an error.
func InstallNodeDeps(ctx context.Context, dir string, out io.Writer) (string, error) {
	pkgJSON := filepath.Join(dir, "package.json")
	if _, err := os.Stat(pkgJSON); err != nil {
		return "", nil // no package.json, nothing to do
	}

	if _, err := exec.LookPath("node"); err != nil {
		return "Node.js not found, skipping npm install", nil
	}

	npmPath, err := exec.LookPath("npm")
	if err != nil {
		return "npm not found, skipping dependency installation", nil
	}

	if out == nil {
		out = io.Discard
	}
	cmd := exec.CommandContext(ctx, npmPath, "install", "--prefer-offline")
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("npm install in %s: %w", dir, err)
	}

	return "", nil
}
