// Package catalog holds the table of known scaffolds: short names such as
// "pure" or "vue" mapped to the registry packages that implement them.
//
// A Table is an ordinary value. Callers build one (usually from Default) and
// pass it to whatever needs to resolve names; extending the catalog means
// building a larger table, not mutating a shared one.
package catalog

import (
	"errors"
	"fmt"
	"sort"
)

// ErrScaffoldNotFound is returned when a short name has no catalog entry.
var ErrScaffoldNotFound = errors.New("scaffold not found")

// Descriptor identifies a scaffold package in the registry.
type Descriptor struct {
	ShortName string `json:"shortName"`
	FullName  string `json:"fullName"`
	Desc      string `json:"desc"`
	Version   string `json:"version"`
}

// String renders the descriptor as "<fullName>@<version>".
func (d Descriptor) String() string {
	return d.FullName + "@" + d.Version
}

// DefaultVersion is the constraint used when a descriptor leaves Version empty.
const DefaultVersion = "latest"

// DemoShortName is the catalog entry used as the starting point for new scaffolds.
const DemoShortName = "demo"

var builtin = []Descriptor{
	{ShortName: "pure", FullName: "bio-scaffold-pure", Desc: "traditional project", Version: DefaultVersion},
	{ShortName: "vue", FullName: "bio-scaffold-vue", Desc: "vue project", Version: DefaultVersion},
	{ShortName: "react", FullName: "bio-scaffold-react", Desc: "react project", Version: DefaultVersion},
	{ShortName: DemoShortName, FullName: "bio-scaffold-demo", Desc: "starting point for authoring a scaffold", Version: DefaultVersion},
}

// Table is an immutable lookup of descriptors keyed by short name.
type Table struct {
	order   []string
	entries map[string]Descriptor
}

// Default returns a fresh table holding the built-in scaffolds.
func Default() *Table {
	t, err := NewTable(builtin...)
	if err != nil {
		// The built-in list is static; a duplicate here is a programming error.
		panic(err)
	}
	return t
}

// Builtin returns a copy of the built-in descriptors.
func Builtin() []Descriptor {
	out := make([]Descriptor, len(builtin))
	copy(out, builtin)
	return out
}

// NewTable builds a table from entries. Short names must be non-empty and unique.
func NewTable(entries ...Descriptor) (*Table, error) {
	t := &Table{entries: make(map[string]Descriptor, len(entries))}
	for _, d := range entries {
		if err := validate(d); err != nil {
			return nil, err
		}
		if _, dup := t.entries[d.ShortName]; dup {
			return nil, fmt.Errorf("duplicate scaffold short name %q", d.ShortName)
		}
		t.add(d)
	}
	return t, nil
}

// Extend returns a new table with entries layered over t. An entry whose short
// name already exists replaces the original in place.
func (t *Table) Extend(entries ...Descriptor) (*Table, error) {
	next := &Table{entries: make(map[string]Descriptor, len(t.entries)+len(entries))}
	for _, name := range t.order {
		next.add(t.entries[name])
	}
	seen := make(map[string]bool, len(entries))
	for _, d := range entries {
		if err := validate(d); err != nil {
			return nil, err
		}
		if seen[d.ShortName] {
			return nil, fmt.Errorf("duplicate scaffold short name %q", d.ShortName)
		}
		seen[d.ShortName] = true
		if _, ok := next.entries[d.ShortName]; ok {
			if d.Version == "" {
				d.Version = DefaultVersion
			}
			next.entries[d.ShortName] = d
			continue
		}
		next.add(d)
	}
	return next, nil
}

// Resolve looks up a descriptor by exact short name.
func (t *Table) Resolve(shortName string) (Descriptor, error) {
	d, ok := t.entries[shortName]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q (known: %v)", ErrScaffoldNotFound, shortName, t.Names())
	}
	return d, nil
}

// FindByFullName returns the descriptor whose package name is fullName.
func (t *Table) FindByFullName(fullName string) (Descriptor, bool) {
	for _, name := range t.order {
		if d := t.entries[name]; d.FullName == fullName {
			return d, true
		}
	}
	return Descriptor{}, false
}

// List returns the descriptors in insertion order.
func (t *Table) List() []Descriptor {
	out := make([]Descriptor, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.entries[name])
	}
	return out
}

// Names returns the sorted short names.
func (t *Table) Names() []string {
	names := make([]string, len(t.order))
	copy(names, t.order)
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.order) }

func (t *Table) add(d Descriptor) {
	if d.Version == "" {
		d.Version = DefaultVersion
	}
	t.entries[d.ShortName] = d
	t.order = append(t.order, d.ShortName)
}

func validate(d Descriptor) error {
	if d.ShortName == "" {
		return fmt.Errorf("scaffold descriptor for %q has an empty short name", d.FullName)
	}
	if d.FullName == "" {
		return fmt.Errorf("scaffold %q has an empty package name", d.ShortName)
	}
	return nil
}
