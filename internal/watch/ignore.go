package watch

import (
	"path/filepath"
	"strings"

	"github.com/bio-labs/bio/internal/branding"
)

// outputDirs are where scaffold builds, tests and bundlers write. Watching
// them would let a task re-trigger itself with its own output.
var outputDirs = []string{"dist", "build", "coverage", ".cache"}

// DefaultIgnore lists path components never watched.
func DefaultIgnore() []string {
	return append([]string{"node_modules", ".git", branding.HomeDir()}, outputDirs...)
}

// matcher decides whether a changed path is ignored. Entries without glob
// metacharacters match any path component; others are matched with
// filepath.Match against both the root-relative path and the base name.
type matcher struct {
	root     string
	names    map[string]bool
	patterns []string
}

func newMatcher(root string, ignore []string) *matcher {
	m := &matcher{root: root, names: map[string]bool{}}
	for _, entry := range ignore {
		entry = strings.TrimSuffix(filepath.ToSlash(entry), "/")
		if entry == "" {
			continue
		}
		if strings.ContainsAny(entry, "*?[/") {
			m.patterns = append(m.patterns, entry)
			continue
		}
		m.names[entry] = true
	}
	return m
}

func (m *matcher) ignored(path string) bool {
	rel := path
	if filepath.IsAbs(path) && m.root != "" {
		if r, err := filepath.Rel(m.root, path); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)

	for _, part := range strings.Split(rel, "/") {
		if m.names[part] {
			return true
		}
	}
	base := filepath.Base(path)
	for _, pat := range m.patterns {
		if rel == pat || strings.HasPrefix(rel, pat+"/") {
			return true
		}
		if ok, _ := filepath.Match(pat, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
	}
	return false
}
