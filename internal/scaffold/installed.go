package scaffold

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bio-labs/bio/internal/branding"
	"github.com/bio-labs/bio/internal/manifest"
	"github.com/bio-labs/bio/internal/registry"
)

// LockFileName is the install record written into every installed scaffold.
const LockFileName = ".bio-install.json"

// Installed is a scaffold materialized in a project.
type Installed struct {
	Dir     string
	Name    string
	Version string
	// Resolved is set when the scaffold was installed in this process.
	Resolved *registry.Resolved
	Manifest *manifest.Scaffold
	Lock     *LockRecord
}

// LockRecord describes where an installed scaffold came from.
type LockRecord struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Constraint  string    `json:"constraint,omitempty"`
	Tarball     string    `json:"tarball"`
	Integrity   string    `json:"integrity,omitempty"`
	InstalledAt time.Time `json:"installedAt"`
	// Entries are the top-level names unpacked from the package. A
	// reinstall removes them before moving the new version in.
	Entries []string `json:"entries,omitempty"`
}

// ScaffoldsDir returns the directory holding the scaffolds installed in root.
func ScaffoldsDir(root string) string {
	return filepath.Join(root, branding.HomeDir(), "scaffolds")
}

// InstallDir returns the install location of the scaffold named name.
// Scoped names ("@scope/pkg") map to nested directories.
func InstallDir(root, name string) string {
	return filepath.Join(ScaffoldsDir(root), filepath.FromSlash(name))
}

func writeLock(dir string, rec LockRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling install record: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(dir, LockFileName), data, 0644); err != nil {
		return fmt.Errorf("writing install record: %w", err)
	}
	return nil
}

// ReadLock reads the install record of the scaffold in dir.
func ReadLock(dir string) (*LockRecord, error) {
	data, err := os.ReadFile(filepath.Join(dir, LockFileName))
	if err != nil {
		return nil, err
	}
	var rec LockRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing install record in %s: %w", dir, err)
	}
	return &rec, nil
}

// Load reads the installed scaffold in dir. The scaffold's identity is the
// name declared by its manifest.
func Load(dir string) (*Installed, error) {
	m, err := manifest.Load(dir)
	if err != nil {
		return nil, err
	}
	inst := &Installed{Dir: dir, Name: m.Name, Version: m.Version, Manifest: m}

	lock, err := ReadLock(dir)
	switch {
	case err == nil:
		inst.Lock = lock
		if inst.Version == "" {
			inst.Version = lock.Version
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}
	return inst, nil
}

// List returns the scaffolds installed in root, sorted by name. Directories
// that do not hold a readable scaffold are skipped.
func List(root string) ([]*Installed, error) {
	base := ScaffoldsDir(root)
	entries, err := os.ReadDir(base)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", base, err)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(base, e.Name())
		if !strings.HasPrefix(e.Name(), "@") {
			dirs = append(dirs, dir)
			continue
		}
		scoped, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, s := range scoped {
			if s.IsDir() {
				dirs = append(dirs, filepath.Join(dir, s.Name()))
			}
		}
	}

	var out []*Installed
	for _, dir := range dirs {
		inst, err := Load(dir)
		if err != nil {
			continue
		}
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Locate finds the installed scaffold whose declared name is name.
func Locate(root, name string) (*Installed, error) {
	// Fast path: the conventional location.
	if inst, err := Load(InstallDir(root, name)); err == nil && inst.Name == name {
		return inst, nil
	}
	all, err := List(root)
	if err != nil {
		return nil, err
	}
	for _, inst := range all {
		if inst.Name == name {
			return inst, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotInstalled, name)
}
