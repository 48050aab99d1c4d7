package lint

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/bio-labs/bio/internal/branding"
)

const (
	// ConfigFileName is the ESLint configuration written by Init.
	ConfigFileName = ".eslintrc.json"
	// IgnoreFileName lists paths ESLint skips.
	IgnoreFileName = ".eslintignore"
)

// Type selects the language level of the generated configuration.
type Type string

const (
	TypeES6 Type = "es6"
	TypeES5 Type = "es5"
)

// DefaultType is used when no type is given.
const DefaultType = TypeES6

var (
	// ErrUnknownType is returned for types other than es6 and es5.
	ErrUnknownType = errors.New("unknown lint type")

	// ErrConfigExists is returned by Init when a configuration is already present.
	ErrConfigExists = errors.New("lint configuration already exists")
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// ParseType maps a flag value to a Type. An empty value selects DefaultType.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case "":
		return DefaultType, nil
	case TypeES6, TypeES5:
		return Type(s), nil
	}
	return "", fmt.Errorf("%w %q (want %s or %s)", ErrUnknownType, s, TypeES6, TypeES5)
}

type configData struct {
	Modules     bool
	EcmaVersion int
	SourceType  string
	Indent      int
	HomeDir     string
}

func dataFor(t Type) configData {
	d := configData{Indent: 4, HomeDir: branding.HomeDir()}
	if t == TypeES5 {
		d.EcmaVersion = 5
		d.SourceType = "script"
		return d
	}
	d.Modules = true
	d.EcmaVersion = 2018
	d.SourceType = "module"
	return d
}

// Render returns the .eslintrc.json content for t.
func Render(t Type) ([]byte, error) {
	return render("eslintrc.json.tmpl", dataFor(t))
}

func render(name string, data configData) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// InitOptions configures Init.
type InitOptions struct {
	Type Type
	// Force overwrites an existing configuration.
	Force bool
}

// Init writes .eslintrc.json and, when missing, .eslintignore into root.
// It returns the paths it wrote.
func Init(root string, opts InitOptions) ([]string, error) {
	t := opts.Type
	if t == "" {
		t = DefaultType
	}
	if _, err := ParseType(string(t)); err != nil {
		return nil, err
	}

	configPath := filepath.Join(root, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		return nil, fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, configPath)
	}

	data := dataFor(t)
	config, err := render("eslintrc.json.tmpl", data)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(configPath, config, 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", ConfigFileName, err)
	}
	written := []string{configPath}

	ignorePath := filepath.Join(root, IgnoreFileName)
	if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
		ignore, err := render("eslintignore.tmpl", data)
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(ignorePath, ignore, 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", IgnoreFileName, err)
		}
		written = append(written, ignorePath)
	}
	return written, nil
}
