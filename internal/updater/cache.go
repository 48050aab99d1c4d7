package updater

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bio-labs/bio/internal/registry"
)

const (
	checkFileName = "latest-check.json"
	// CheckMaxAge is how long a lookup of the latest dist-tag is trusted.
	CheckMaxAge = 24 * time.Hour
)

// LatestCheck records the last lookup of the CLI's latest dist-tag.
type LatestCheck struct {
	Package   string    `json:"package"`
	Registry  string    `json:"registry"`
	Current   string    `json:"current"`
	Latest    string    `json:"latest"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Applies reports whether the check was made by this build against the same
// registry within maxAge of now.
func (c *LatestCheck) Applies(current, registry string, maxAge time.Duration, now time.Time) bool {
	if c == nil || c.Current != current || c.Registry != registry {
		return false
	}
	return now.Sub(c.CheckedAt) <= maxAge
}

// UpdateAvailable reports whether Latest should replace Current. Unparsable
// versions never trigger the banner.
func (c *LatestCheck) UpdateAvailable() bool {
	if c == nil || c.Latest == "" {
		return false
	}
	newer, err := registry.IsNewer(c.Current, c.Latest)
	return err == nil && newer
}

// LoadCheck reads the last check from dir. A missing file gives nil, nil.
func LoadCheck(dir string) (*LatestCheck, error) {
	data, err := os.ReadFile(filepath.Join(dir, checkFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest-version check: %w", err)
	}
	var c LatestCheck
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing latest-version check: %w", err)
	}
	return &c, nil
}

// Save writes the check into dir, creating it if needed.
func (c *LatestCheck) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling latest-version check: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, checkFileName), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing latest-version check: %w", err)
	}
	return nil
}
