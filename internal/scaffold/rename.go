package scaffold

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"go.yaml.in/yaml/v3"

	"github.com/bio-labs/bio/internal/manifest"
)

var namePattern = regexp.MustCompile(`^(@[a-z0-9][a-z0-9._-]*/)?[a-z0-9][a-z0-9._-]*$`)

// ValidateName checks that name is usable as a scaffold package name.
func ValidateName(name string) error {
	if len(name) > 214 || !namePattern.MatchString(name) {
		return fmt.Errorf("%w: invalid scaffold name %q (lowercase letters, digits, '-', '.', '_', optional @scope/)", ErrIncompatibleScaffold, name)
	}
	return nil
}

// Rename gives the installed scaffold a new package name by rewriting the
// name in package.json and, when present, scaffold.yaml. Renaming to the
// current name leaves the files unchanged.
func Rename(inst *Installed, newName string) (*Installed, error) {
	if err := ValidateName(newName); err != nil {
		return nil, err
	}
	if err := renamePackageJSON(filepath.Join(inst.Dir, manifest.PackageJSONName), newName); err != nil {
		return nil, err
	}
	yamlPath := filepath.Join(inst.Dir, manifest.FileName)
	if _, err := os.Stat(yamlPath); err == nil {
		if err := renameManifest(yamlPath, newName); err != nil {
			return nil, err
		}
	}

	m, err := manifest.Load(inst.Dir)
	if err != nil {
		return nil, fmt.Errorf("reloading renamed scaffold: %w", err)
	}
	out := *inst
	out.Name = newName
	out.Manifest = m
	return &out, nil
}

func renamePackageJSON(path, newName string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s is missing", ErrIncompatibleScaffold, manifest.PackageJSONName)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %s is not a JSON object: %v", ErrIncompatibleScaffold, manifest.PackageJSONName, err)
	}
	if raw, ok := fields["name"]; ok {
		var current string
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("%w: package name is not a string", ErrIncompatibleScaffold)
		}
		if current == newName {
			return nil
		}
	}

	encoded, err := json.Marshal(newName)
	if err != nil {
		return err
	}
	fields["name"] = encoded
	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return writePreservingMode(path, append(out, '\n'))
}

// renameManifest edits the name through the yaml node tree so comments and
// key order survive.
func renameManifest(path, newName string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrIncompatibleScaffold, manifest.FileName, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("%w: %s is not a mapping", ErrIncompatibleScaffold, manifest.FileName)
	}

	root := doc.Content[0]
	found := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "name" {
			continue
		}
		v := root.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: %s name is not a string", ErrIncompatibleScaffold, manifest.FileName)
		}
		if v.Value == newName {
			return nil
		}
		v.Value = newName
		v.Tag = "!!str"
		found = true
	}
	if !found {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "name"}
		val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: newName}
		root.Content = append([]*yaml.Node{key, val}, root.Content...)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return writePreservingMode(path, buf.Bytes())
}

func writePreservingMode(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
