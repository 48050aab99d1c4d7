package manifest

import (
	"errors"
	"slices"
	"sort"
)

// File names looked up in a scaffold directory.
const (
	FileName        = "scaffold.yaml"
	PackageJSONName = "package.json"
)

// Runtime constants for the runtime field.
const (
	RuntimeExec = "exec"
	RuntimeNode = "node"
)

// ValidRuntimes contains all valid runtime values.
var ValidRuntimes = []string{RuntimeExec, RuntimeNode}

var (
	// ErrNoManifest is returned when a directory has neither scaffold.yaml nor package.json.
	ErrNoManifest = errors.New("no scaffold manifest found")

	// ErrInvalidManifest is returned when scaffold.yaml fails schema validation.
	ErrInvalidManifest = errors.New("invalid scaffold manifest")
)

// Scaffold is the parsed description of an installed scaffold.
type Scaffold struct {
	Name        string              `yaml:"name" json:"name"`
	Description string              `yaml:"description,omitempty" json:"description,omitempty"`
	Version     string              `yaml:"version,omitempty" json:"version,omitempty"`
	Runtime     string              `yaml:"runtime,omitempty" json:"runtime,omitempty"`
	Entry       string              `yaml:"entry,omitempty" json:"entry,omitempty"`
	Watch       WatchConfig         `yaml:"watch,omitempty" json:"watch,omitempty"`
	Tasks       map[string]TaskSpec `yaml:"tasks,omitempty" json:"tasks,omitempty"`

	// Source is the file the scaffold was read from.
	Source string `yaml:"-" json:"-"`
}

// WatchConfig lists the paths observed in watch mode, relative to the project root.
type WatchConfig struct {
	Paths  []string `yaml:"paths,omitempty" json:"paths,omitempty"`
	Ignore []string `yaml:"ignore,omitempty" json:"ignore,omitempty"`
}

// TaskSpec is a task as declared in scaffold.yaml.
type TaskSpec struct {
	Run         string   `yaml:"run,omitempty" json:"run,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Watch       []string `yaml:"watch,omitempty" json:"watch,omitempty"`
}

// Task is a named, runnable task.
type Task struct {
	Name        string
	Run         string
	Description string
	Watch       []string
}

// PackageJSON is the subset of package.json read by bio.
type PackageJSON struct {
	Name        string            `json:"name"`
	Version     string            `json:"version,omitempty"`
	Description string            `json:"description,omitempty"`
	Main        string            `json:"main,omitempty"`
	Scripts     map[string]string `json:"scripts,omitempty"`
}

// Task looks up a task by name.
func (s *Scaffold) Task(name string) (Task, bool) {
	spec, ok := s.Tasks[name]
	if !ok {
		return Task{}, false
	}
	return Task{
		Name:        name,
		Run:         spec.Run,
		Description: spec.Description,
		Watch:       slices.Clone(spec.Watch),
	}, true
}

// TaskNames returns the declared task names in sorted order.
func (s *Scaffold) TaskNames() []string {
	names := make([]string, 0, len(s.Tasks))
	for name := range s.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WatchPaths returns the paths to observe while t runs in watch mode:
// the task's own list, then the scaffold-wide list, then the project root.
func (s *Scaffold) WatchPaths(t Task) []string {
	if len(t.Watch) > 0 {
		return t.Watch
	}
	if len(s.Watch.Paths) > 0 {
		return s.Watch.Paths
	}
	return []string{"."}
}
