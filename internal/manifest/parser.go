package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Parse decodes scaffold.yaml content. path is only used in error messages.
func Parse(data []byte, path string) (*Scaffold, error) {
	var s Scaffold
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if s.Runtime == "" {
		s.Runtime = RuntimeExec
	}
	s.Source = path
	return &s, nil
}

// ParseFile reads and decodes a scaffold.yaml file without validating it.
func ParseFile(path string) (*Scaffold, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Load reads the manifest of the scaffold installed in dir. scaffold.yaml is
// validated against the schema; when it is absent the package.json scripts
// become the task list.
func Load(dir string) (*Scaffold, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return loadManifest(data, path)
	case errors.Is(err, fs.ErrNotExist):
		pkg, err := ReadPackageJSON(dir)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrNoManifest, dir)
		}
		if err != nil {
			return nil, err
		}
		s := FromPackageJSON(pkg)
		s.Source = filepath.Join(dir, PackageJSONName)
		return s, nil
	default:
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
}

func loadManifest(data []byte, path string) (*Scaffold, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w %s: %s", ErrInvalidManifest, path, result.Summary())
	}

	s, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	if s.Runtime == RuntimeExec {
		for _, name := range s.TaskNames() {
			if s.Tasks[name].Run == "" {
				return nil, fmt.Errorf("%w %s: task %q has no run command", ErrInvalidManifest, path, name)
			}
		}
	}
	return s, nil
}

// ReadPackageJSON reads dir/package.json. A missing file is reported with an
// error matching fs.ErrNotExist.
func ReadPackageJSON(dir string) (*PackageJSON, error) {
	path := filepath.Join(dir, PackageJSONName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &pkg, nil
}

// FromPackageJSON builds a scaffold whose tasks are the package's npm scripts.
func FromPackageJSON(pkg *PackageJSON) *Scaffold {
	s := &Scaffold{
		Name:        pkg.Name,
		Description: pkg.Description,
		Version:     pkg.Version,
		Runtime:     RuntimeExec,
		Tasks:       make(map[string]TaskSpec, len(pkg.Scripts)),
	}
	for name, script := range pkg.Scripts {
		s.Tasks[name] = TaskSpec{
			Run:         "npm run " + name,
			Description: script,
		}
	}
	return s
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
