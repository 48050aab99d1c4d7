package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Persist writes cfg to the project root. The data goes to a temporary file in
// the same directory which is synced and renamed over the target, so readers
// see either the old file or the complete new one. Every failure wraps
// ErrConfigWrite and leaves no temporary file behind.
func (s *Store) Persist(root string, cfg *Config) (err error) {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrConfigWrite)
	}
	path := s.Path(root)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling: %w", ErrConfigWrite, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	return nil
}
