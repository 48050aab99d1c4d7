package project

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bio-labs/bio/internal/catalog"
)

func TestExists(t *testing.T) {
	root := t.TempDir()
	s := NewStore("")

	if s.Exists(root) {
		t.Fatal("Exists() = true for empty project")
	}
	if err := os.WriteFile(filepath.Join(root, ".biorc"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if !s.Exists(root) {
		t.Error("Exists() = false after writing config file")
	}
}

func TestExistsIgnoresDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".biorc"), 0755); err != nil {
		t.Fatal(err)
	}
	if NewStore("").Exists(root) {
		t.Error("Exists() = true for a directory named like the config file")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := NewStore("").Load(t.TempDir())
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Load() error = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadCorrupted(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, ".biorc"), []byte("not json{{"), 0644)

	_, err := NewStore("").Load(root)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, ErrConfigNotFound) {
		t.Error("corrupted file reported as missing")
	}
}

func TestInitializeBuiltins(t *testing.T) {
	cfg, err := NewStore("").Initialize(Defaults{})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if cfg.ConfigFileName != ".biorc" {
		t.Errorf("ConfigFileName = %q", cfg.ConfigFileName)
	}
	if cfg.RegistryURL != DefaultRegistryURL {
		t.Errorf("RegistryURL = %q", cfg.RegistryURL)
	}
	if cfg.Scaffold.Name != "bio-scaffold-pure" || cfg.Scaffold.Version != "latest" {
		t.Errorf("scaffold = %s@%s, want bio-scaffold-pure@latest", cfg.Scaffold.Name, cfg.Scaffold.Version)
	}
	if len(cfg.Scaffold.List) != len(catalog.Builtin()) {
		t.Errorf("List has %d entries, want %d", len(cfg.Scaffold.List), len(catalog.Builtin()))
	}
	if cfg.Scaffold.PreInstall == nil {
		t.Fatal("PreInstall hook missing")
	}
	if _, ok := cfg.Scaffold.PreInstall.Files[".npmrc"]; !ok {
		t.Error("built-in hook does not write .npmrc")
	}
}

func TestInitializeMergesDefaults(t *testing.T) {
	s := NewStore(".customrc")
	cfg, err := s.Initialize(Defaults{
		RegistryURL: "https://npm.internal/",
		Scaffold:    "svelte",
		List: []catalog.Descriptor{
			{ShortName: "svelte", FullName: "bio-scaffold-svelte", Version: "^2.0.0"},
			{ShortName: "vue", FullName: "corp-vue"},
		},
		PreInstall: &Hook{Files: map[string]string{".npmrc": "registry=https://npm.internal/"}},
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if cfg.ConfigFileName != ".customrc" {
		t.Errorf("ConfigFileName = %q", cfg.ConfigFileName)
	}
	if cfg.RegistryURL != "https://npm.internal/" {
		t.Errorf("RegistryURL = %q", cfg.RegistryURL)
	}
	if cfg.Scaffold.Name != "bio-scaffold-svelte" || cfg.Scaffold.Version != "^2.0.0" {
		t.Errorf("scaffold = %s@%s", cfg.Scaffold.Name, cfg.Scaffold.Version)
	}
	table, err := cfg.Table()
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if d, _ := table.Resolve("vue"); d.FullName != "corp-vue" {
		t.Errorf("vue override lost: %+v", d)
	}
	if got := cfg.Scaffold.PreInstall.Files[".npmrc"]; !strings.Contains(got, "npm.internal") {
		t.Errorf("hook not overridden: %q", got)
	}
}

func TestInitializeAcceptsFullName(t *testing.T) {
	cfg, err := NewStore("").Initialize(Defaults{Scaffold: "bio-scaffold-react", Version: "1.2.0"})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if cfg.Scaffold.Name != "bio-scaffold-react" || cfg.Scaffold.Version != "1.2.0" {
		t.Errorf("scaffold = %s@%s", cfg.Scaffold.Name, cfg.Scaffold.Version)
	}
}

func TestInitializeUnknownScaffold(t *testing.T) {
	_, err := NewStore("").Initialize(Defaults{Scaffold: "angular"})
	if !errors.Is(err, catalog.ErrScaffoldNotFound) {
		t.Errorf("error = %v, want ErrScaffoldNotFound", err)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	root := t.TempDir()
	s := NewStore("")
	d := Defaults{
		Scaffold:   "vue",
		PreInstall: &Hook{Files: map[string]string{".npmrc": "x"}, Command: []string{"true"}},
	}

	first, err := s.Initialize(d)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Initialize(d)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Initialize not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}

	// The caller's hook must not alias the config.
	d.PreInstall.Files[".npmrc"] = "changed"
	if first.Scaffold.PreInstall.Files[".npmrc"] != "x" {
		t.Error("config shares the caller's hook map")
	}

	if s.Exists(root) {
		t.Error("Initialize wrote to disk")
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := NewStore("")

	configs := []*Config{
		mustInit(t, s, Defaults{}),
		mustInit(t, s, Defaults{
			RegistryURL: "https://registry.example.com/",
			Scaffold:    "react",
			Version:     "~3.1.0",
			PreInstall:  &Hook{Files: map[string]string{".npmrc": "a=b\nc=d", "sub/dir/.env": "X=1"}, Command: []string{"npm", "config", "list"}},
		}),
		{
			ConfigFileName: ".biorc",
			RegistryURL:    "http://localhost:4873/",
			Scaffold: ScaffoldSettings{
				Name:    "my-scaffold",
				Version: "0.0.1",
				List:    []catalog.Descriptor{{ShortName: "mine", FullName: "my-scaffold", Desc: "ünïcödé", Version: "0.0.1"}},
			},
		},
	}

	for i, cfg := range configs {
		if err := s.Persist(root, cfg); err != nil {
			t.Fatalf("[%d] Persist: %v", i, err)
		}
		loaded, err := s.Load(root)
		if err != nil {
			t.Fatalf("[%d] Load: %v", i, err)
		}
		if !reflect.DeepEqual(cfg, loaded) {
			t.Errorf("[%d] round trip mismatch:\nwant: %+v\ngot:  %+v", i, cfg, loaded)
		}
	}
}

func TestPersistOverwritesAtomically(t *testing.T) {
	root := t.TempDir()
	s := NewStore("")
	os.WriteFile(s.Path(root), []byte(`{"registry":"old"}`), 0644)

	cfg := mustInit(t, s, Defaults{})
	if err := s.Persist(root, cfg); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded, err := s.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RegistryURL != DefaultRegistryURL {
		t.Errorf("RegistryURL = %q, want overwritten value", loaded.RegistryURL)
	}
	assertNoTempFiles(t, root)
}

func TestPersistFailureMissingDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")
	err := NewStore("").Persist(root, &Config{})
	if !errors.Is(err, ErrConfigWrite) {
		t.Fatalf("error = %v, want ErrConfigWrite", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("underlying cause not preserved: %v", err)
	}
}

func TestPersistFailureLeavesNoPartialFile(t *testing.T) {
	root := t.TempDir()
	s := NewStore("")
	// A non-empty directory in place of the config file makes the final rename fail.
	if err := os.MkdirAll(filepath.Join(s.Path(root), "child"), 0755); err != nil {
		t.Fatal(err)
	}

	err := s.Persist(root, mustInit(t, s, Defaults{}))
	if !errors.Is(err, ErrConfigWrite) {
		t.Fatalf("error = %v, want ErrConfigWrite", err)
	}
	assertNoTempFiles(t, root)
}

func TestPersistNilConfig(t *testing.T) {
	if err := NewStore("").Persist(t.TempDir(), nil); !errors.Is(err, ErrConfigWrite) {
		t.Errorf("error = %v, want ErrConfigWrite", err)
	}
}

func TestSelected(t *testing.T) {
	cfg := mustInit(t, NewStore(""), Defaults{Scaffold: "vue", Version: "^1.0.0"})
	d, err := cfg.Selected()
	if err != nil {
		t.Fatal(err)
	}
	if d.ShortName != "vue" || d.Version != "^1.0.0" {
		t.Errorf("Selected() = %+v", d)
	}

	cfg.Scaffold.Name = "renamed-scaffold"
	d, err = cfg.Selected()
	if err != nil {
		t.Fatal(err)
	}
	if d.FullName != "renamed-scaffold" {
		t.Errorf("Selected() for off-catalog name = %+v", d)
	}
}

func mustInit(t *testing.T, s *Store, d Defaults) *Config {
	t.Helper()
	cfg, err := s.Initialize(d)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return cfg
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}
