package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bio-labs/bio/internal/branding"
)

// GitignoreEntry is the line that keeps installed scaffolds out of git.
func GitignoreEntry() string {
	return branding.HomeDir() + "/"
}

// IsIgnored reports whether root's .gitignore already lists line.
func IsIgnored(root, line string) (bool, error) {
	content, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading .gitignore: %w", err)
	}
	want := strings.TrimSuffix(line, "/")
	for _, l := range strings.Split(string(content), "\n") {
		l = strings.TrimPrefix(strings.TrimSpace(l), "/")
		if strings.TrimSuffix(l, "/") == want {
			return true, nil
		}
	}
	return false, nil
}

// EnsureIgnored appends line to root's .gitignore, creating the file when
// needed. It reports whether the file was changed.
func EnsureIgnored(root, line string) (bool, error) {
	present, err := IsIgnored(root, line)
	if err != nil || present {
		return false, err
	}

	path := filepath.Join(root, ".gitignore")
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("reading .gitignore: %w", err)
	}

	// Ensure there's a newline before our addition.
	suffix := line + "\n"
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		suffix = "\n" + suffix
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("opening .gitignore for append: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(suffix); err != nil {
		return false, fmt.Errorf("writing to .gitignore: %w", err)
	}
	return true, nil
}
