package project

import (
	"fmt"
	"maps"
	"slices"

	"github.com/bio-labs/bio/internal/catalog"
)

// Defaults are caller-supplied values layered over the built-ins by Initialize.
// Zero fields keep the built-in value.
type Defaults struct {
	RegistryURL string
	// Scaffold is a short name from the catalog or a full package name.
	Scaffold   string
	Version    string
	List       []catalog.Descriptor
	PreInstall *Hook
}

// BuiltinHook returns the hook installed by default: an empty .npmrc in the
// install directory, which package-manager mirror settings can later fill in.
func BuiltinHook() *Hook {
	return &Hook{Files: map[string]string{".npmrc": ""}}
}

// Initialize merges d with the built-in defaults and returns the resulting
// configuration. It touches nothing on disk; call Persist to write it.
// Equal inputs always produce structurally equal results.
func (s *Store) Initialize(d Defaults) (*Config, error) {
	table, err := catalog.Default().Extend(d.List...)
	if err != nil {
		return nil, fmt.Errorf("merging scaffold list: %w", err)
	}

	cfg := &Config{
		ConfigFileName: s.fileName(),
		RegistryURL:    DefaultRegistryURL,
		Scaffold: ScaffoldSettings{
			List:       table.List(),
			PreInstall: BuiltinHook(),
		},
	}
	if d.RegistryURL != "" {
		cfg.RegistryURL = d.RegistryURL
	}
	if d.PreInstall != nil {
		cfg.Scaffold.PreInstall = cloneHook(d.PreInstall)
	}

	name := d.Scaffold
	if name == "" {
		name = DefaultScaffold
	}
	desc, err := table.Resolve(name)
	if err != nil {
		found, ok := table.FindByFullName(name)
		if !ok {
			return nil, err
		}
		desc = found
	}
	cfg.Scaffold.Name = desc.FullName
	cfg.Scaffold.Version = desc.Version
	if d.Version != "" {
		cfg.Scaffold.Version = d.Version
	}

	return cfg, nil
}

func cloneHook(h *Hook) *Hook {
	return &Hook{
		Files:   maps.Clone(h.Files),
		Command: slices.Clone(h.Command),
	}
}
