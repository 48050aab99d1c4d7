package registry

import "errors"

var (
	// ErrPackageNotFound is returned when the registry has no such package.
	ErrPackageNotFound = errors.New("package not found in registry")

	// ErrVersionNotFound is returned when no published version satisfies the constraint.
	ErrVersionNotFound = errors.New("no version satisfies constraint")

	// ErrIntegrity is returned when a downloaded tarball does not match its checksum.
	ErrIntegrity = errors.New("tarball integrity check failed")
)

// Packument is the subset of the registry's package document this client reads.
type Packument struct {
	Name     string                 `json:"name"`
	DistTags map[string]string      `json:"dist-tags"`
	Versions map[string]VersionInfo `json:"versions"`
}

// VersionInfo describes a single published version.
type VersionInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Dist        Dist   `json:"dist"`
}

// Dist holds the download location and checksums of a version's tarball.
type Dist struct {
	Tarball   string `json:"tarball"`
	Shasum    string `json:"shasum,omitempty"`
	Integrity string `json:"integrity,omitempty"`
}

// Resolved is a concrete, downloadable package version.
type Resolved struct {
	Name       string
	Version    string
	Constraint string
	Dist       Dist
}

// String renders the version as "<name>@<version>".
func (r *Resolved) String() string {
	return r.Name + "@" + r.Version
}
