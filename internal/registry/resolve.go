package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// DefaultTag is the dist-tag used when no constraint is given.
const DefaultTag = "latest"

// Resolve finds the published version of name that best satisfies constraint.
// The constraint may be a dist-tag ("latest", "next"), an exact version, or a
// semver range ("^1.2.0", "~2.x").
func (c *Client) Resolve(ctx context.Context, name, constraint string) (*Resolved, error) {
	p, err := c.Packument(ctx, name)
	if err != nil {
		return nil, err
	}
	return ResolveVersion(p, constraint)
}

// ResolveVersion picks a version from an already-fetched packument.
func ResolveVersion(p *Packument, constraint string) (*Resolved, error) {
	if constraint == "" {
		constraint = DefaultTag
	}

	version, err := pickVersion(p, constraint)
	if err != nil {
		return nil, err
	}

	info, ok := p.Versions[version]
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s (tag points at unpublished version %s)", ErrVersionNotFound, p.Name, constraint, version)
	}
	if info.Dist.Tarball == "" {
		return nil, fmt.Errorf("%s@%s has no tarball URL", p.Name, version)
	}

	return &Resolved{
		Name:       p.Name,
		Version:    version,
		Constraint: constraint,
		Dist:       info.Dist,
	}, nil
}

func pickVersion(p *Packument, constraint string) (string, error) {
	if v, ok := p.DistTags[constraint]; ok {
		return v, nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return "", fmt.Errorf("%w: %s@%s (not a dist-tag or valid range)", ErrVersionNotFound, p.Name, constraint)
	}

	candidates := make([]*semver.Version, 0, len(p.Versions))
	originals := make(map[*semver.Version]string, len(p.Versions))
	for raw := range p.Versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		candidates = append(candidates, v)
		originals[v] = raw
	}
	sort.Sort(sort.Reverse(semver.Collection(candidates)))

	for _, v := range candidates {
		if c.Check(v) {
			return originals[v], nil
		}
	}
	return "", fmt.Errorf("%w: %s@%s", ErrVersionNotFound, p.Name, constraint)
}

// IsNewer reports whether candidate, typically the version behind the latest
// dist-tag, should replace current. Both are semver strings as published on
// npm; a leading "v" from a git-tagged build is tolerated. A prerelease
// candidate is only offered to a prerelease build, so stable users are not
// moved onto a beta that was tagged latest by mistake.
func IsNewer(current, candidate string) (bool, error) {
	cv, err := semver.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", current, err)
	}
	nv, err := semver.NewVersion(candidate)
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", candidate, err)
	}
	if nv.Prerelease() != "" && cv.Prerelease() == "" {
		return false, nil
	}
	return nv.GreaterThan(cv), nil
}
