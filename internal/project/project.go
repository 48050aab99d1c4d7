// Package project owns the per-project configuration file (.biorc): checking
// whether a project has been initialized, merging caller defaults with the
// built-in ones, and writing the file back atomically.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bio-labs/bio/internal/catalog"
)

// DefaultFileName is the configuration file name used when a Store leaves it empty.
const DefaultFileName = ".biorc"

// DefaultRegistryURL is the registry scaffolds are fetched from unless overridden.
const DefaultRegistryURL = "https://registry.npmjs.org/"

// DefaultScaffold is the scaffold selected when init is given no name.
const DefaultScaffold = "pure"

var (
	// ErrConfigNotFound means the project root has no configuration file yet.
	ErrConfigNotFound = errors.New("project config not found")

	// ErrConfigWrite marks a failure while persisting the configuration file.
	ErrConfigWrite = errors.New("writing project config")
)

// Config is the persisted per-project record.
type Config struct {
	ConfigFileName string           `json:"configFileName"`
	RegistryURL    string           `json:"registry"`
	Scaffold       ScaffoldSettings `json:"scaffold"`
}

// ScaffoldSettings records the selected scaffold, the catalog it was chosen
// from, and the hook to run before each install.
type ScaffoldSettings struct {
	Name       string               `json:"name"`
	Version    string               `json:"version"`
	List       []catalog.Descriptor `json:"list"`
	PreInstall *Hook                `json:"preInstall,omitempty"`
}

// Hook is the serializable form of a pre-install hook. Files are written
// relative to the install directory before Command (if any) runs there.
type Hook struct {
	Files   map[string]string `json:"files,omitempty"`
	Command []string          `json:"command,omitempty"`
}

// Table builds a catalog table from the configured scaffold list.
func (c *Config) Table() (*catalog.Table, error) {
	return catalog.NewTable(c.Scaffold.List...)
}

// Selected returns the descriptor of the configured scaffold.
func (c *Config) Selected() (catalog.Descriptor, error) {
	table, err := c.Table()
	if err != nil {
		return catalog.Descriptor{}, err
	}
	if d, ok := table.FindByFullName(c.Scaffold.Name); ok {
		if c.Scaffold.Version != "" {
			d.Version = c.Scaffold.Version
		}
		return d, nil
	}
	// A scaffold outside the catalog (e.g. a renamed one) is still installable.
	return catalog.Descriptor{
		ShortName: c.Scaffold.Name,
		FullName:  c.Scaffold.Name,
		Version:   c.Scaffold.Version,
	}, nil
}

// Store reads and writes the configuration file inside project roots.
type Store struct {
	FileName string
}

// NewStore returns a Store using fileName, or DefaultFileName when empty.
func NewStore(fileName string) *Store {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &Store{FileName: fileName}
}

func (s *Store) fileName() string {
	if s.FileName == "" {
		return DefaultFileName
	}
	return s.FileName
}

// Path returns the full path to the configuration file for a project root.
func (s *Store) Path(root string) string {
	return filepath.Join(root, s.fileName())
}

// Exists reports whether the project root already has a configuration file.
func (s *Store) Exists(root string) bool {
	info, err := os.Stat(s.Path(root))
	return err == nil && !info.IsDir()
}

// Load reads and parses the configuration file. A missing file yields an
// error wrapping ErrConfigNotFound.
func (s *Store) Load(root string) (*Config, error) {
	path := s.Path(root)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading project config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing project config %s: %w", path, err)
	}
	return &cfg, nil
}
